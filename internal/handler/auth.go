package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/security/middleware"
	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// LoginRequest represents login request
type LoginRequest struct {
	Email string `json:"email"`
}

// PlanRequest represents a plan change
type PlanRequest struct {
	Plan domain.Plan `json:"plan"`
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.logger.Info("registration failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	if err := h.authService.Logout(r.Context(), claims.SessionID()); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdatePlan handles PUT /api/me/plan
func (h *AuthHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req PlanRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	updated, err := h.authService.UpdatePlan(r.Context(), user, req.Plan)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.logger.Info("plan changed",
		slog.String("user_id", user.ID),
		slog.String("plan", string(updated.Plan)),
	)
	writeJSON(w, http.StatusOK, updated)
}
