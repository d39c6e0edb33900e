package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

// LeadHandler serves the lead pipeline
type LeadHandler struct {
	leads     *service.LeadService
	followUps *service.FollowUpService
	logger    *slog.Logger
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads *service.LeadService, followUps *service.FollowUpService, logger *slog.Logger) *LeadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadHandler{leads: leads, followUps: followUps, logger: logger}
}

// List handles GET /api/leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	leads, err := h.leads.GetLeads(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

// Get handles GET /api/leads/{id}
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	lead, err := h.leads.GetLead(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Create handles POST /api/leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.LeadInput
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	lead, err := h.leads.AddLead(r.Context(), user, req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// Update handles PUT /api/leads/{id}
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.LeadInput
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	lead, err := h.leads.UpdateLead(r.Context(), user, r.PathValue("id"), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// FollowUps handles GET /api/leads/{id}/followups
func (h *LeadHandler) FollowUps(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.followUps.GetLeadFollowUps(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"followUps": items})
}
