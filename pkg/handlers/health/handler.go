package health

import (
	"net/http"

	"github.com/metagrowth/growth-agent/pkg/handlers/response"
	"github.com/metagrowth/growth-agent/pkg/models/api"
)

type Handler struct {
	environment string
}

func NewHandler(environment string) *Handler {
	return &Handler{environment: environment}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, api.HealthResponse{Status: "ok", Environment: h.environment})
}
