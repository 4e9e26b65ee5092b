package response

import (
	"encoding/json"
	"net/http"

	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/rs/zerolog"
)

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// Error writes the {"detail": ...} body every failing endpoint returns
func Error(w http.ResponseWriter, r *http.Request, status int, detail string) {
	JSON(w, r, status, api.ErrorResponse{Detail: detail})
}

// Decode reads a JSON request body into v and answers 400 when it cannot
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("invalid request body")
		Error(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
