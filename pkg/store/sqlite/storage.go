package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const ReportRunsSchema = `
	CREATE TABLE IF NOT EXISTS report_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		timeframe TEXT NOT NULL DEFAULT 'last_7d',
		meta_payload TEXT NOT NULL DEFAULT '{}',
		competitor_payload TEXT NOT NULL DEFAULT '{}',
		insight_text TEXT NOT NULL DEFAULT '',
		insight_metadata TEXT NOT NULL DEFAULT '{}',
		artifacts_path TEXT NULL,
		created_at TIMESTAMP NOT NULL
	);
`

const ReportRunsIndex = `
	CREATE INDEX IF NOT EXISTS idx_report_runs_account ON report_runs (account_id, created_at);
`

const AlertEventsSchema = `
	CREATE TABLE IF NOT EXISTS alert_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT 'info',
		message TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL
	);
`

var bootQueries = []string{
	ReportRunsSchema,
	ReportRunsIndex,
	AlertEventsSchema,
}

type Settings struct {
	DbPath string
}

const memoryPath = ":memory:"

// NewDB opens the database and creates the schema. The pool holds a single
// connection, which also keeps an in-memory database alive between queries.
func NewDB(settings Settings) (*sql.DB, error) {
	path := settings.DbPath
	if path == "" {
		path = memoryPath
	}

	dsn := path
	if path != memoryPath && !strings.Contains(path, "?") {
		dsn = fmt.Sprintf("file:%s?mode=rwc", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if path != memoryPath {
		db.SetConnMaxLifetime(time.Hour)
	}

	ctx := context.Background()
	queries := append([]string{}, bootQueries...)
	if path != memoryPath {
		queries = append([]string{"PRAGMA journal_mode=WAL"}, queries...)
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("boot query: %w", err)
		}
	}
	return db, nil
}
