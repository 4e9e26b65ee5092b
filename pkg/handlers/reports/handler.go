package reports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metagrowth/growth-agent/pkg/adapters"
	"github.com/metagrowth/growth-agent/pkg/handlers/response"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/metagrowth/growth-agent/pkg/services/workflow"
	reportstore "github.com/metagrowth/growth-agent/pkg/store/reports"
	"github.com/rs/zerolog"
)

// Reader finds the latest stored run of an account
type Reader interface {
	Latest(ctx context.Context, accountID string) (*store.ReportRun, error)
}

// Scheduler queues a refresh for an account
type Scheduler interface {
	Enqueue(ctx context.Context, accountID string, priority bool) (domain.RefreshJob, error)
}

type Handler struct {
	reader    Reader
	scheduler Scheduler
}

func NewHandler(reader Reader, scheduler Scheduler) *Handler {
	return &Handler{
		reader:    reader,
		scheduler: scheduler,
	}
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := chi.URLParam(r, "accountId")

	run, err := h.reader.Latest(ctx, accountID)
	if errors.Is(err, reportstore.ErrNotFound) {
		response.Error(w, r, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("account_id", accountID).Msg("failed to load report")
		response.Error(w, r, http.StatusInternalServerError, "Failed to load report")
		return
	}

	response.JSON(w, r, http.StatusOK, api.ReportResponse{Report: adapters.MapStoreReportRunToAPI(run)})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	accountID := chi.URLParam(r, "accountId")

	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.scheduler.Enqueue(ctx, accountID, req.Priority)
	if errors.Is(err, workflow.ErrQueueFull) {
		logger.Warn().Err(err).Str("account_id", accountID).Msg("refresh rejected")
		response.Error(w, r, http.StatusServiceUnavailable, "Refresh queue is full")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("account_id", accountID).Msg("failed to schedule refresh")
		response.Error(w, r, http.StatusInternalServerError, "Failed to schedule refresh")
		return
	}

	logger.Debug().Str("job_id", job.ID).Msg("refresh accepted")
	response.JSON(w, r, http.StatusAccepted, api.StatusResponse{Status: "scheduled"})
}
