package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/metagrowth/growth-agent/pkg/handlers/response"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/rs/zerolog"
)

const TokenType = "bearer"

type Config struct {
	Secret    string
	ExpiresIn time.Duration
	Now       func() time.Time
}

// Handler issues demo tokens. Any non-empty password is accepted.
type Handler struct {
	config Config
}

func NewHandler(config Config) *Handler {
	if config.ExpiresIn <= 0 {
		config.ExpiresIn = time.Hour
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Handler{config: config}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !response.Decode(w, r, &req) {
		return
	}
	if req.Password == "" {
		response.Error(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.Issue(req.Email)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to sign token")
		response.Error(w, r, http.StatusInternalServerError, "Could not issue token")
		return
	}
	response.JSON(w, r, http.StatusOK, api.LoginResponse{AccessToken: token, TokenType: TokenType})
}

// Issue signs an HS256 token with the subject and expiry claims
func (h *Handler) Issue(subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(h.config.Now().Add(h.config.ExpiresIn)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.config.Secret))
}
