package orchestrator

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy shapes one refresh-and-poll pass
type Policy struct {
	// SettleDelay is waited unconditionally after a successful refresh
	SettleDelay time.Duration
	// Attempts is the maximum number of report fetches
	Attempts int
	// Interval separates two fetches
	Interval time.Duration
	// Jitter adds up to this much random delay on top of Interval
	Jitter time.Duration
	// DemoDelay is waited before demo data is handed out
	DemoDelay time.Duration
}

// InitialPolicy drives competitor discovery
func InitialPolicy() Policy {
	return Policy{
		SettleDelay: 3000 * time.Millisecond,
		Attempts:    20,
		Interval:    2000 * time.Millisecond,
		DemoDelay:   2000 * time.Millisecond,
	}
}

// DeepPolicy drives the analysis pass after competitors are chosen: one
// fetch after a longer settle.
func DeepPolicy() Policy {
	return Policy{
		SettleDelay: 5000 * time.Millisecond,
		Attempts:    1,
		Interval:    2000 * time.Millisecond,
	}
}

// DiagnosticPolicy drives the Meta account diagnostic
func DiagnosticPolicy() Policy {
	return Policy{
		SettleDelay: 3500 * time.Millisecond,
		Attempts:    1,
	}
}

func (p Policy) wait() time.Duration {
	if p.Jitter <= 0 {
		return p.Interval
	}
	return p.Interval + time.Duration(rand.Int64N(int64(p.Jitter)+1))
}

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock Sleeper
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
