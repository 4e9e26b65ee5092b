package alerts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/metagrowth/growth-agent/pkg/store/sqlite"
)

const DefaultLimit = 50

type Store interface {
	Add(ctx context.Context, event *store.AlertEvent) error
	// List returns at most limit events, newest first
	List(ctx context.Context, limit int) ([]store.AlertEvent, error)
}

type alertStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &alertStore{
		db:  db,
		now: time.Now,
	}, nil
}

func (s *alertStore) Add(ctx context.Context, event *store.AlertEvent) error {
	if event == nil {
		return fmt.Errorf("alert event is nil")
	}
	if event.Severity == "" {
		event.Severity = "info"
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	event.CreatedAt = event.CreatedAt.UTC()

	metadata := []byte("{}")
	if event.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(event.Metadata); err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	res, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO alert_events (account_id, alert_type, severity, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.AccountID,
		event.AlertType,
		event.Severity,
		event.Message,
		string(metadata),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("alert id: %w", err)
	}
	event.ID = id
	return nil
}

func (s *alertStore) List(ctx context.Context, limit int) ([]store.AlertEvent, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT id, account_id, alert_type, severity, message, metadata, created_at
		FROM alert_events
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	events := make([]store.AlertEvent, 0)
	for rows.Next() {
		var (
			event    store.AlertEvent
			metadata string
		)
		if err := rows.Scan(
			&event.ID,
			&event.AccountID,
			&event.AlertType,
			&event.Severity,
			&event.Message,
			&metadata,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &event.Metadata); err != nil {
			return nil, fmt.Errorf("decode alert metadata: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return events, nil
}
