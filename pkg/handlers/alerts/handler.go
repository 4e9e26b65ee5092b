package alerts

import (
	"context"
	"net/http"

	"github.com/metagrowth/growth-agent/pkg/adapters"
	"github.com/metagrowth/growth-agent/pkg/handlers/response"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/rs/zerolog"
)

const listLimit = 50

type Lister interface {
	List(ctx context.Context, limit int) ([]store.AlertEvent, error)
}

type Handler struct {
	alerts Lister
}

func NewHandler(alerts Lister) *Handler {
	return &Handler{alerts: alerts}
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.alerts.List(ctx, listLimit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list alerts")
		response.Error(w, r, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	out := make([]api.AlertResponse, 0, len(events))
	for _, e := range events {
		out = append(out, adapters.MapStoreAlertToAPI(e))
	}
	response.JSON(w, r, http.StatusOK, out)
}
