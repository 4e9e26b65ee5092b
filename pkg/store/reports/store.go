package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/metagrowth/growth-agent/pkg/store/sqlite"
)

var ErrNotFound = errors.New("report not found")

// Store persists generated report runs, one row per run
type Store interface {
	Add(ctx context.Context, run *store.ReportRun) error
	Latest(ctx context.Context, accountID string) (*store.ReportRun, error)
}

type reportStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{
		db:  db,
		now: time.Now,
	}, nil
}

func (s *reportStore) Add(ctx context.Context, run *store.ReportRun) error {
	if run == nil {
		return fmt.Errorf("report run is nil")
	}
	if run.AccountID == "" {
		return fmt.Errorf("account id is required")
	}
	if run.Timeframe == "" {
		run.Timeframe = "last_7d"
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	run.CreatedAt = run.CreatedAt.UTC()

	meta, err := marshalObject(run.MetaPayload)
	if err != nil {
		return fmt.Errorf("marshal meta payload: %w", err)
	}
	metadata, err := marshalObject(run.InsightMetadata)
	if err != nil {
		return fmt.Errorf("marshal insight metadata: %w", err)
	}
	competitor := "{}"
	if len(run.CompetitorPayload) > 0 {
		competitor = string(run.CompetitorPayload)
	}

	query := `
		INSERT INTO report_runs (
			account_id, timeframe, meta_payload, competitor_payload,
			insight_text, insight_metadata, artifacts_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, query,
		run.AccountID,
		run.Timeframe,
		meta,
		competitor,
		run.InsightText,
		metadata,
		run.ArtifactsPath,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("report run id: %w", err)
	}
	run.ID = id
	return nil
}

func (s *reportStore) Latest(ctx context.Context, accountID string) (*store.ReportRun, error) {
	query := `
		SELECT id, account_id, timeframe, meta_payload, competitor_payload,
			insight_text, insight_metadata, artifacts_path, created_at
		FROM report_runs
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var (
		run        store.ReportRun
		meta       string
		competitor string
		metadata   string
		artifacts  sql.NullString
	)
	err := sqlite.Conn(ctx, s.db).QueryRowContext(ctx, query, accountID).Scan(
		&run.ID,
		&run.AccountID,
		&run.Timeframe,
		&meta,
		&competitor,
		&run.InsightText,
		&metadata,
		&artifacts,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest report: %w", err)
	}

	if err := json.Unmarshal([]byte(meta), &run.MetaPayload); err != nil {
		return nil, fmt.Errorf("decode meta payload: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &run.InsightMetadata); err != nil {
		return nil, fmt.Errorf("decode insight metadata: %w", err)
	}
	run.CompetitorPayload = json.RawMessage(competitor)
	if artifacts.Valid {
		run.ArtifactsPath = &artifacts.String
	}
	return &run, nil
}

func marshalObject(v map[string]any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
