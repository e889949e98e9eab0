package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mockprep/mockprep-go/internal/model"
	"github.com/mockprep/mockprep-go/internal/service"
)

// AuthHandler handles admin authentication requests.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// HandleLogin handles POST /api/admin/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired), errors.Is(err, service.ErrPasswordRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrInvalidCredentials):
			h.logger.Warn("admin login rejected", "email", req.Email, "remote", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		default:
			h.logger.Error("admin login failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
