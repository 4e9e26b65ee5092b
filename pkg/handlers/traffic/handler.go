package traffic

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metagrowth/growth-agent/pkg/adapters"
	"github.com/metagrowth/growth-agent/pkg/handlers/response"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/services/traffic"
)

type Handler struct {
	traffic traffic.Service
}

func NewHandler(svc traffic.Service) *Handler {
	return &Handler{traffic: svc}
}

func (h *Handler) GetTraffic(w http.ResponseWriter, r *http.Request) {
	data := h.traffic.Lookup(r.Context(), chi.URLParam(r, "domain"))
	response.JSON(w, r, http.StatusOK, adapters.MapDomainTrafficToAPI(data))
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var domains []string
	if !response.Decode(w, r, &domains) {
		return
	}

	results := h.traffic.Batch(r.Context(), domains)
	out := make(map[string]api.TrafficData, len(results))
	for d, t := range results {
		out[d] = adapters.MapDomainTrafficToAPI(t)
	}
	response.JSON(w, r, http.StatusOK, out)
}
