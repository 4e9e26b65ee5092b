package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/metagrowth/growth-agent/pkg/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := sqlite.NewDB(sqlite.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: s,
	}
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		s, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestStore_AddAndLatest(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	path := "reports/acme/run.md"

	first := &store.ReportRun{
		AccountID:   "acme",
		MetaPayload: map[string]any{"spend": 10.0},
		InsightText: "old",
		CreatedAt:   base,
	}
	second := &store.ReportRun{
		AccountID:         "acme",
		Timeframe:         "last_30d",
		MetaPayload:       map[string]any{"spend": 20.0, "purchase_roas": 1.4},
		CompetitorPayload: json.RawMessage(`{"rival.com":{"share":0.2}}`),
		InsightText:       "new",
		InsightMetadata:   map[string]any{"provider": "claude"},
		ArtifactsPath:     &path,
		CreatedAt:         base.Add(time.Hour),
	}

	require.NoError(t, f.store.Add(ctx, first))
	require.NoError(t, f.store.Add(ctx, second))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, "last_7d", first.Timeframe)

	got, err := f.store.Latest(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "last_30d", got.Timeframe)
	assert.Equal(t, "new", got.InsightText)
	assert.Equal(t, 1.4, got.MetaPayload["purchase_roas"])
	assert.JSONEq(t, `{"rival.com":{"share":0.2}}`, string(got.CompetitorPayload))
	assert.Equal(t, "claude", got.InsightMetadata["provider"])
	require.NotNil(t, got.ArtifactsPath)
	assert.Equal(t, path, *got.ArtifactsPath)
	assert.True(t, second.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_LatestNotFound(t *testing.T) {
	f := setupFixture(t)

	got, err := f.store.Latest(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, got)
}

func TestStore_AddDefaultsEmptyPayloads(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Add(ctx, &store.ReportRun{AccountID: "acme"}))

	got, err := f.store.Latest(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, got.MetaPayload)
	assert.JSONEq(t, `{}`, string(got.CompetitorPayload))
	assert.Nil(t, got.ArtifactsPath)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_AddValidation(t *testing.T) {
	f := setupFixture(t)

	assert.Error(t, f.store.Add(context.Background(), nil))
	assert.Error(t, f.store.Add(context.Background(), &store.ReportRun{}))
}

func TestStore_AddUsesContextTransaction(t *testing.T) {
	f := setupFixture(t)

	err := sqlite.InTx(context.Background(), f.db, func(ctx context.Context) error {
		require.NoError(t, f.store.Add(ctx, &store.ReportRun{AccountID: "acme"}))
		return errors.New("abort")
	})
	require.Error(t, err)

	_, err = f.store.Latest(context.Background(), "acme")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SQLErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Run("insert failure", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO report_runs").WillReturnError(errors.New("disk full"))

		err := s.Add(context.Background(), &store.ReportRun{AccountID: "acme"})
		assert.ErrorContains(t, err, "insert report run")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM report_runs").
			WithArgs("acme").
			WillReturnError(errors.New("locked"))

		_, err := s.Latest(context.Background(), "acme")
		assert.ErrorContains(t, err, "query latest report")
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt payload", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "account_id", "timeframe", "meta_payload", "competitor_payload",
			"insight_text", "insight_metadata", "artifacts_path", "created_at",
		}).AddRow(1, "acme", "last_7d", "{not json", "{}", "", "{}", nil, time.Now())
		mock.ExpectQuery("SELECT (.+) FROM report_runs").WithArgs("acme").WillReturnRows(rows)

		_, err := s.Latest(context.Background(), "acme")
		assert.ErrorContains(t, err, "decode meta payload")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
