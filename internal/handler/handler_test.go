package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/repository"
	"github.com/aryan0dhankhar/leadtrack/internal/security/auth"
	"github.com/aryan0dhankhar/leadtrack/internal/security/middleware"
	"github.com/aryan0dhankhar/leadtrack/internal/service"
	"github.com/aryan0dhankhar/leadtrack/pkg/cache"
	"github.com/aryan0dhankhar/leadtrack/pkg/database"
)

type testServer struct {
	handler http.Handler
	users   *repository.SQLUserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "handler.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	users := repository.NewSQLUserRepository(pool.DB(), nil)
	leads := repository.NewSQLLeadRepository(pool.DB(), nil)
	followUps := repository.NewSQLFollowUpRepository(pool.DB(), nil)
	sessions := repository.NewMemorySessionStore(cache.New())
	tokens := auth.NewTokenManager("test-secret", "leadtrack")
	overviews := service.NewOverviewCache(cache.New(), time.Minute)

	authSvc := service.NewAuthService(users, sessions, tokens, nil, nil, overviews, time.Hour, nil)
	h := &Handlers{
		Health:    NewHealthHandler(PingFunc(pool.Health), nil, nil),
		Auth:      NewAuthHandler(authSvc, nil),
		Leads:     NewLeadHandler(service.NewLeadService(users, leads, nil), service.NewFollowUpService(users, leads, followUps, overviews, nil), nil),
		FollowUps: NewFollowUpHandler(service.NewFollowUpService(users, leads, followUps, overviews, nil), nil),
		Members:   NewMemberHandler(service.NewAccountService(users, nil, nil, overviews, false, nil), nil),
		Reports:   NewReportHandler(service.NewReportService(users, leads, followUps, nil, overviews, nil), nil),
	}
	mux := http.NewServeMux()
	h.Register(mux)

	return &testServer{
		handler: middleware.JWTMiddleware(tokens, authSvc, slog.Default())(mux),
		users:   users,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func (s *testServer) register(t *testing.T, name, email, org string, plan domain.Plan) service.LoginResult {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/register", "", service.RegisterInput{Name: name, Email: email, Organization: org, Plan: plan})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[service.LoginResult](t, rec)
}

func TestPipelineFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "Sarah Green", "admin@verdant.example", "Verdant Corp", domain.PlanCompany)

	rec := s.do(t, http.MethodPost, "/api/members", admin.Token, service.NewMember{
		Name: "Sam", Email: "sam@verdant.example", Role: domain.RoleMember, TeamID: "Sales",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/login", "", LoginRequest{Email: "SAM@verdant.example"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	sam := decode[service.LoginResult](t, rec)

	rec = s.do(t, http.MethodPost, "/api/leads", sam.Token, service.LeadInput{Name: "Acme"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add lead: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	lead := decode[domain.Lead](t, rec)

	rec = s.do(t, http.MethodPost, "/api/followups", sam.Token, service.FollowUpInput{
		LeadID: lead.ID, ScheduledAt: time.Now().Add(-time.Hour), Type: domain.FollowUpCall,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add follow-up: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	f := decode[domain.FollowUp](t, rec)
	if f.Status != domain.FollowUpPending {
		t.Fatalf("expected pending follow-up, got %s", f.Status)
	}

	rec = s.do(t, http.MethodPut, "/api/followups/"+f.ID+"/status", sam.Token, StatusRequest{Status: domain.FollowUpCompleted})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/reports/overview?timeframe=week", admin.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	overview := decode[service.Overview](t, rec)
	if overview.OrgStats.Total != 1 || overview.OrgStats.CompletionRate != 100 {
		t.Fatalf("unexpected org stats: %+v", overview.OrgStats)
	}

	rec = s.do(t, http.MethodGet, "/api/reports/overview", sam.Token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member overview: expected 403, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/reports?scope=user&target=all&timeframe=all", sam.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d", rec.Code)
	}
	report := decode[service.ReportData](t, rec)
	if len(report.Tasks) != 1 || report.Tasks[0].LeadName != "Acme" || report.Tasks[0].UserName != "Sam" {
		t.Fatalf("unexpected report tasks: %+v", report.Tasks)
	}
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "Mike Orange", "admin@amber.example", "Amber Logistics", domain.PlanCompany)
	other := s.register(t, "Jessica Peel", "admin@citrus.example", "Citrus Financial", domain.PlanCompany)

	rec := s.do(t, http.MethodPost, "/api/leads", other.Token, service.LeadInput{Name: "Citrus lead"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add lead: expected 201, got %d", rec.Code)
	}
	foreign := decode[domain.Lead](t, rec)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/leads", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/leads", "garbage", nil, http.StatusUnauthorized},
		{"unknown login", http.MethodPost, "/api/login", "", LoginRequest{Email: "ghost@amber.example"}, http.StatusUnauthorized},
		{"duplicate registration", http.MethodPost, "/api/register", "", service.RegisterInput{Name: "X", Email: "admin@amber.example", Organization: "New Org"}, http.StatusConflict},
		{"bad timeframe", http.MethodGet, "/api/reports/overview?timeframe=year", admin.Token, nil, http.StatusBadRequest},
		{"bad scope", http.MethodGet, "/api/reports?scope=galaxy", admin.Token, nil, http.StatusBadRequest},
		{"other tenant's lead", http.MethodGet, "/api/leads/" + foreign.ID, admin.Token, nil, http.StatusNotFound},
		{"delete self", http.MethodDelete, "/api/members/" + admin.User.ID, admin.Token, nil, http.StatusBadRequest},
		{"invalid lead", http.MethodPost, "/api/leads", admin.Token, service.LeadInput{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLogoutEndsSession(t *testing.T) {
	s := newTestServer(t)
	r := s.register(t, "Solo", "solo@example.com", "Solo Shop", "")

	if rec := s.do(t, http.MethodGet, "/api/me", r.Token, nil); rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/api/logout", r.Token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/me", r.Token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	down := NewHealthHandler(PingFunc(func(context.Context) error { return errors.New("refused") }), nil, nil)
	rec := httptest.NewRecorder()
	down.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decode[ReadinessResponse](t, rec)
	if resp.Checks["database"] != "error: refused" || resp.Checks["redis"] != "not configured" {
		t.Fatalf("unexpected checks: %v", resp.Checks)
	}

	up := NewHealthHandler(PingFunc(func(context.Context) error { return nil }), nil, nil)
	rec = httptest.NewRecorder()
	up.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
