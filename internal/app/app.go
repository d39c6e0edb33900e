// Package app assembles the LeadTrack services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/featureflags"
	"github.com/aryan0dhankhar/leadtrack/internal/handler"
	"github.com/aryan0dhankhar/leadtrack/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/leadtrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/leadtrack/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/leadtrack/internal/repository"
	"github.com/aryan0dhankhar/leadtrack/internal/security"
	"github.com/aryan0dhankhar/leadtrack/internal/security/audit"
	"github.com/aryan0dhankhar/leadtrack/internal/security/auth"
	"github.com/aryan0dhankhar/leadtrack/internal/security/middleware"
	"github.com/aryan0dhankhar/leadtrack/internal/security/ratelimit"
	"github.com/aryan0dhankhar/leadtrack/internal/seed"
	"github.com/aryan0dhankhar/leadtrack/internal/service"
	"github.com/aryan0dhankhar/leadtrack/internal/worker"
	"github.com/aryan0dhankhar/leadtrack/pkg/cache"
	"github.com/aryan0dhankhar/leadtrack/pkg/config"
	"github.com/aryan0dhankhar/leadtrack/pkg/database"
)

const maxBodyBytes = 1 << 20

// App holds every long-lived component of a running LeadTrack process
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DB    *database.ConnectionPool
	Redis *redis.Client

	Users     domain.UserRepository
	Leads     domain.LeadRepository
	FollowUps domain.FollowUpRepository
	Sessions  domain.SessionStore

	Tokens  *auth.TokenManager
	Authz   *security.AuthorizationService
	Audit   *audit.Logger
	Limiter *ratelimit.Limiter

	AuthService *service.AuthService
	LeadService *service.LeadService
	FollowUpSvc *service.FollowUpService
	Accounts    *service.AccountService
	Reports     *service.ReportService

	Worker *worker.BacklogWorker
}

// New connects to storage and builds the services. Sessions go to Redis when
// a URL is configured and stay in memory otherwise.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{Config: cfg, Logger: log}

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseURL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = pool

	a.Users = repository.NewSQLUserRepository(pool.DB(), log)
	a.Leads = repository.NewSQLLeadRepository(pool.DB(), log)
	a.FollowUps = repository.NewSQLFollowUpRepository(pool.DB(), log)

	var sweeper worker.Sweeper
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = pool.Close()
			return nil, err
		}
		a.Redis = client

		breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
		breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
			log.Warn("session store circuit changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		})
		a.Sessions = repository.NewRedisSessionStore(client, breaker, log)
	} else {
		mem := repository.NewMemorySessionStore(cache.New())
		a.Sessions = mem
		sweeper = mem
		log.Info("redis not configured, keeping sessions in memory")
	}

	a.Tokens = auth.NewTokenManager(cfg.JWTSecret, "leadtrack")
	a.Authz = security.NewAuthorizationService(log)
	a.Authz.OnDenied(func(role domain.Role, reason string) {
		metrics.ObserveAuthzDenial(string(role), reason)
	})
	a.Audit = audit.NewLogger(log)
	a.Limiter = ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)

	overviews := service.NewOverviewCache(cache.New(), cfg.ReportCacheTTL())
	strict := featureflags.Enabled(featureflags.StrictPlanRole)

	a.AuthService = service.NewAuthService(a.Users, a.Sessions, a.Tokens, a.Authz, a.Audit, overviews, cfg.SessionTTL(), log)
	a.LeadService = service.NewLeadService(a.Users, a.Leads, log)
	a.FollowUpSvc = service.NewFollowUpService(a.Users, a.Leads, a.FollowUps, overviews, log)
	a.Accounts = service.NewAccountService(a.Users, a.Authz, a.Audit, overviews, strict, log)
	a.Reports = service.NewReportService(a.Users, a.Leads, a.FollowUps, a.Authz, overviews, log)

	a.Worker = worker.NewBacklogWorker(a.Users, a.FollowUps, sweeper, log, cfg.StatsInterval())
	return a, nil
}

// Seed loads the demo organizations
func (a *App) Seed(ctx context.Context) (*seed.Result, error) {
	return seed.New(a.Users, a.Leads, a.FollowUps, a.Logger).Seed(ctx)
}

// Handler returns the HTTP API with its middleware chain:
// tracing, request id, CORS, path and body guards, auth, rate limit, audit,
// content type, metrics and finally the router.
func (a *App) Handler() http.Handler {
	var redisPinger handler.Pinger
	if a.Redis != nil {
		redisPinger = a.Redis
	}
	h := &handler.Handlers{
		Health:    handler.NewHealthHandler(handler.PingFunc(a.DB.Health), redisPinger, a.Logger),
		Auth:      handler.NewAuthHandler(a.AuthService, a.Logger),
		Leads:     handler.NewLeadHandler(a.LeadService, a.FollowUpSvc, a.Logger),
		FollowUps: handler.NewFollowUpHandler(a.FollowUpSvc, a.Logger),
		Members:   handler.NewMemberHandler(a.Accounts, a.Logger),
		Reports:   handler.NewReportHandler(a.Reports, a.Logger),
	}

	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	var root http.Handler = metrics.HTTPMetricsMiddleware(mux)
	root = middleware.ValidateJSONContentType(a.Logger)(root)
	root = middleware.AuditMiddleware(a.Audit)(root)
	root = middleware.RateLimitMiddleware(a.Limiter, a.Logger)(root)
	root = middleware.JWTMiddleware(a.Tokens, a.AuthService, a.Logger)(root)
	root = middleware.LimitBody(maxBodyBytes)(root)
	root = middleware.SanitizePath(a.Logger)(root)
	root = middleware.CORS(a.Config.CORSAllowedOrigins)(root)
	root = middleware.RequestID(root)
	return otelhttp.NewHandler(root, "leadtrack")
}

// Close releases the rate limiter, Redis and the database
func (a *App) Close() error {
	var errs []error
	if a.Limiter != nil {
		a.Limiter.Stop()
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
