package authhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/auth"
	"github.com/Boyan92/SalaryCalculatorNew/internal/requestctx"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/api"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/shared"
)

type Handler struct {
	Auth *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Auth: service}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	if h.Auth.DevMode() {
		api.Fail(w, http.StatusConflict, "auth_disabled", "authentication is disabled in development mode", requestID)
		return
	}

	var payload loginRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	session, err := h.Auth.Login(payload.Username, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("login failed", "username", strings.TrimSpace(payload.Username))
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err != nil {
		slog.Error("token issue failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", requestID)
		return
	}
	api.Success(w, loginResponse{Token: session.Token, TokenType: "Bearer", ExpiresAt: session.ExpiresAt, Role: session.Role}, requestID)
}
