package stage

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/services/orchestrator"
)

type Stage string

const (
	Hero              Stage = "HERO"
	WaitingInitial    Stage = "WAITING_INITIAL"
	SelectCompetitors Stage = "SELECT_COMPETITORS"
	WaitingSecondary  Stage = "WAITING_SECONDARY"
	Dashboard         Stage = "DASHBOARD"
)

const maxAccountIDLength = 20

var (
	ErrInvalidDomain       = errors.New("INVALID_DOMAIN_SYNTAX")
	ErrWrongStage          = errors.New("operation not allowed in current stage")
	ErrSelectionIncomplete = errors.New("exactly 3 competitors must be selected")
)

var (
	schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	nonAlnum     = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Session is the state of one analysis run. Competitors and Analysis are
// set once by the stage that produces them.
type Session struct {
	Stage       Stage
	URL         string
	AccountID   string
	Competitors []domain.Competitor
	Analysis    *domain.AnalysisResult
	Degraded    []orchestrator.DegradedReason
}

func (s Session) clone() Session {
	s.Competitors = domain.CloneCompetitors(s.Competitors)
	if s.Analysis != nil {
		analysis := s.Analysis.Clone()
		s.Analysis = &analysis
	}
	s.Degraded = slices.Clone(s.Degraded)
	return s
}

// DemoMode reports whether any pass of the session fell back to canned data
func (s *Session) DemoMode() bool {
	return len(s.Degraded) > 0
}

// DeriveAccountID maps a URL to the backend account key. It is pure and
// idempotent: DeriveAccountID(DeriveAccountID(u)) == DeriveAccountID(u).
func DeriveAccountID(url string) string {
	id := schemePrefix.ReplaceAllString(url, "")
	id = strings.ToLower(nonAlnum.ReplaceAllString(id, ""))
	if len(id) > maxAccountIDLength {
		id = id[:maxAccountIDLength]
	}
	return id
}

func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if len(raw) < 4 || !strings.Contains(raw, ".") {
		return ErrInvalidDomain
	}
	return nil
}
