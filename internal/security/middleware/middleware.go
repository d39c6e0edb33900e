package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/security/audit"
	"github.com/aryan0dhankhar/leadtrack/internal/security/auth"
	"github.com/aryan0dhankhar/leadtrack/internal/security/ratelimit"
)

type ClaimsContextKey struct{}
type UserContextKey struct{}

// Authenticator resolves a live session to its current user
type Authenticator interface {
	CurrentUser(ctx context.Context, sessionID string) (*domain.User, error)
}

var publicPaths = map[string]bool{
	"/healthz":      true,
	"/readyz":       true,
	"/metrics":      true,
	"/api/login":    true,
	"/api/register": true,
}

func isPublic(r *http.Request) bool {
	return publicPaths[r.URL.Path] || r.Method == http.MethodOptions
}

// JWTMiddleware verifies the bearer token, checks the session is still live and
// stores the claims and the freshly loaded user in the request context.
func JWTMiddleware(tm *auth.TokenManager, authn Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				jsonError(w, http.StatusUnauthorized, "missing auth")
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid auth")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := authn.CurrentUser(r.Context(), claims.SessionID())
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthenticated) && !errors.Is(err, domain.ErrNotFound) {
					log.Error("session lookup failed", slog.String("error", err.Error()))
					jsonError(w, http.StatusServiceUnavailable, "session store unavailable")
					return
				}
				jsonError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, UserContextKey{}, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware limits authenticated traffic per organization and
// login/register attempts per client address.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/login" || r.URL.Path == "/api/register" {
				if !limiter.AllowStrict(clientIP(r), 10, time.Minute) {
					log.Warn("login rate limit exceeded", slog.String("remote", clientIP(r)))
					jsonError(w, http.StatusTooManyRequests, "too many attempts")
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(GetOrganizationFromContext(r.Context())) {
				jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records member and plan mutations as they arrive
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user != nil && r.Method != http.MethodGet {
				switch {
				case strings.HasPrefix(r.URL.Path, "/api/members"):
					memberID := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/members"), "/")
					auditLog.LogMemberChange(r.Context(), user.Organization, user.ID, strings.ToLower(r.Method), memberID, "initiated", "")
				case r.URL.Path == "/api/me/plan":
					auditLog.LogPlanChange(r.Context(), user.Organization, user.ID, "", "initiated")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestID tags every request with an id, reusing X-Request-ID when present
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(audit.WithRequestID(r.Context(), id)))
	})
}

// CORS answers preflight requests for the allowed origins
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[strings.TrimSpace(o)] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowed["*"] || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetOrganizationFromContext(ctx context.Context) string {
	if u := GetUserFromContext(ctx); u != nil {
		return u.Organization
	}
	return ""
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(ClaimsContextKey{}).(*auth.Claims); ok {
		return c
	}
	return nil
}

func GetUserFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(UserContextKey{}).(*domain.User); ok {
		return u
	}
	return nil
}

// WithUser stores user in ctx, as JWTMiddleware does
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserContextKey{}, user)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
