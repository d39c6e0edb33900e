package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

// MemberHandler serves organization membership management
type MemberHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(accounts *service.AccountService, logger *slog.Logger) *MemberHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberHandler{accounts: accounts, logger: logger}
}

// List handles GET /api/members, the users the caller administers
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	users, err := h.accounts.GetManagedUsers(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": users})
}

// Organization handles GET /api/organization/members
func (h *MemberHandler) Organization(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	users, err := h.accounts.GetTeamMembers(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": users})
}

// Create handles POST /api/members
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.NewMember
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	member, err := h.accounts.AddTeamMember(r.Context(), user, req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// Update handles PUT /api/members/{id}
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.UserUpdate
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	updated, err := h.accounts.UpdateUser(r.Context(), user, r.PathValue("id"), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/members/{id}
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.accounts.DeleteUser(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
