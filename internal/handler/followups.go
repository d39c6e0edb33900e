package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

// FollowUpHandler serves scheduling and the personal dashboard
type FollowUpHandler struct {
	followUps *service.FollowUpService
	logger    *slog.Logger
}

// NewFollowUpHandler creates a new follow-up handler
func NewFollowUpHandler(followUps *service.FollowUpService, logger *slog.Logger) *FollowUpHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowUpHandler{followUps: followUps, logger: logger}
}

// FollowUpRequest is the body of create and update calls
type FollowUpRequest struct {
	service.FollowUpInput
	Status domain.FollowUpStatus `json:"status,omitempty"`
}

// StatusRequest is the body of a status change
type StatusRequest struct {
	Status domain.FollowUpStatus `json:"status"`
}

// List handles GET /api/followups
func (h *FollowUpHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.followUps.GetFollowUps(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"followUps": items})
}

// Create handles POST /api/followups
func (h *FollowUpHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req FollowUpRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	f, err := h.followUps.AddFollowUp(r.Context(), user, req.FollowUpInput)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// Update handles PUT /api/followups/{id}
func (h *FollowUpHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req FollowUpRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	f, err := h.followUps.UpdateFollowUp(r.Context(), user, r.PathValue("id"), req.FollowUpInput, req.Status)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// UpdateStatus handles PUT /api/followups/{id}/status
func (h *FollowUpHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	f, err := h.followUps.UpdateFollowUpStatus(r.Context(), user, r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Dashboard handles GET /api/dashboard
func (h *FollowUpHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	stats, err := h.followUps.GetDashboardStats(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
