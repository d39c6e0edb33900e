package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/security/audit"
	"github.com/aryan0dhankhar/leadtrack/internal/security/auth"
	"github.com/aryan0dhankhar/leadtrack/internal/security/ratelimit"
)

type fakeAuthn map[string]*domain.User

func (f fakeAuthn) CurrentUser(_ context.Context, sessionID string) (*domain.User, error) {
	if u, ok := f[sessionID]; ok {
		return u, nil
	}
	if sessionID == "broken" {
		return nil, errors.New("redis down")
	}
	return nil, domain.ErrUnauthenticated
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func okHandler(t *testing.T, wantUser bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantUser && GetUserFromContext(r.Context()) == nil {
			t.Errorf("user missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddleware(t *testing.T) {
	tm := auth.NewTokenManager("secret", "")
	alice := &domain.User{ID: "u-1", Organization: "Verdant Corp"}
	authn := fakeAuthn{"s-live": alice}

	token := func(session string) string {
		tok, err := tm.GenerateToken(session, "u-1", "Verdant Corp", "member", time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		return "Bearer " + tok
	}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"public health", "/healthz", "", http.StatusOK},
		{"public login", "/api/login", "", http.StatusOK},
		{"missing header", "/api/leads", "", http.StatusUnauthorized},
		{"garbage token", "/api/leads", "Bearer nope", http.StatusUnauthorized},
		{"live session", "/api/leads", token("s-live"), http.StatusOK},
		{"logged out session", "/api/leads", token("s-gone"), http.StatusUnauthorized},
		{"session store down", "/api/leads", token("broken"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := JWTMiddleware(tm, authn, discard)(okHandler(t, tt.want == http.StatusOK && tt.header != ""))
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimitMiddlewarePerOrganization(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Stop()
	h := RateLimitMiddleware(limiter, discard)(okHandler(t, false))

	send := func(org string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		req = req.WithContext(WithUser(req.Context(), &domain.User{ID: "u", Organization: org}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("Verdant Corp"); code != http.StatusOK {
		t.Fatalf("first request: %d", code)
	}
	if code := send("Verdant Corp"); code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", code)
	}
	if code := send("Amber Logistics"); code != http.StatusOK {
		t.Fatalf("other organization: %d", code)
	}
}

func TestRequestIDAndAudit(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = audit.RequestID(r.Context())
	})
	h := RequestID(AuditMiddleware(audit.NewLogger(discard))(inner))

	req := httptest.NewRequest(http.MethodDelete, "/api/members/u-2", nil)
	req.Header.Set("X-Request-ID", "req-7")
	req = req.WithContext(WithUser(req.Context(), &domain.User{ID: "u-1", Organization: "Verdant Corp"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "req-7" || rec.Header().Get("X-Request-ID") != "req-7" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, rec.Header().Get("X-Request-ID"))
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(okHandler(t, false))
	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("origin not echoed")
	}
}

func TestValidateJSONContentType(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"form post", http.MethodPost, `name=x`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"json with charset", http.MethodPut, `{"name":"x"}`, "application/json; charset=utf-8", http.StatusOK},
		{"json lookalike", http.MethodPost, `{}`, "application/jsonp", http.StatusUnsupportedMediaType},
		{"empty logout", http.MethodPost, ``, "", http.StatusOK},
		{"get ignores type", http.MethodGet, ``, "text/plain", http.StatusOK},
	}
	h := ValidateJSONContentType(discard)(okHandler(t, false))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/leads", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLimitBody(t *testing.T) {
	h := LimitBody(16)(okHandler(t, false))
	req := httptest.NewRequest(http.MethodPost, "/api/followups", strings.NewReader(strings.Repeat("x", 17)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestSanitizePath(t *testing.T) {
	h := SanitizePath(discard)(okHandler(t, false))
	for path, want := range map[string]int{
		"/api/leads/l-1":        http.StatusOK,
		"/api/leads/../members": http.StatusBadRequest,
		"/api//members":         http.StatusBadRequest,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = path
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, want)
		}
	}
}
