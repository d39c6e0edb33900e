package handler

import (
	"net/http"
)

// Handlers groups every endpoint of the API
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Leads     *LeadHandler
	FollowUps *FollowUpHandler
	Members   *MemberHandler
	Reports   *ReportHandler
}

// Register mounts the API on mux
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health.Health)
	mux.HandleFunc("GET /readyz", h.Health.Ready)

	mux.HandleFunc("POST /api/register", h.Auth.Register)
	mux.HandleFunc("POST /api/login", h.Auth.Login)
	mux.HandleFunc("POST /api/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/me", h.Auth.Me)
	mux.HandleFunc("PUT /api/me/plan", h.Auth.UpdatePlan)

	mux.HandleFunc("GET /api/leads", h.Leads.List)
	mux.HandleFunc("POST /api/leads", h.Leads.Create)
	mux.HandleFunc("GET /api/leads/{id}", h.Leads.Get)
	mux.HandleFunc("PUT /api/leads/{id}", h.Leads.Update)
	mux.HandleFunc("GET /api/leads/{id}/followups", h.Leads.FollowUps)

	mux.HandleFunc("GET /api/followups", h.FollowUps.List)
	mux.HandleFunc("POST /api/followups", h.FollowUps.Create)
	mux.HandleFunc("PUT /api/followups/{id}", h.FollowUps.Update)
	mux.HandleFunc("PUT /api/followups/{id}/status", h.FollowUps.UpdateStatus)
	mux.HandleFunc("GET /api/dashboard", h.FollowUps.Dashboard)

	mux.HandleFunc("GET /api/members", h.Members.List)
	mux.HandleFunc("POST /api/members", h.Members.Create)
	mux.HandleFunc("PUT /api/members/{id}", h.Members.Update)
	mux.HandleFunc("DELETE /api/members/{id}", h.Members.Delete)
	mux.HandleFunc("GET /api/organization/members", h.Members.Organization)

	mux.HandleFunc("GET /api/reports", h.Reports.Detail)
	mux.HandleFunc("GET /api/reports/overview", h.Reports.Overview)
}
