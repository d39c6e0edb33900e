package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/leadtrack/internal/reliability/retry"
	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

// Sweeper drops expired entries from an in-process store
type Sweeper interface {
	Sweep() int
}

// OrgBacklog is the follow-up backlog of one organization
type OrgBacklog struct {
	Organization string
	Pending      int
	Overdue      int
}

// BacklogWorker periodically publishes the pending and overdue follow-up
// counts of every organization and sweeps expired in-memory sessions
type BacklogWorker struct {
	users     domain.UserRepository
	followUps domain.FollowUpRepository
	sessions  Sweeper
	logger    *slog.Logger
	interval  time.Duration
	retry     *retry.Config
	now       func() time.Time
}

// NewBacklogWorker creates a new backlog worker. sessions may be nil when
// sessions live in Redis.
func NewBacklogWorker(
	users domain.UserRepository,
	followUps domain.FollowUpRepository,
	sessions Sweeper,
	logger *slog.Logger,
	interval time.Duration,
) *BacklogWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &BacklogWorker{
		users:     users,
		followUps: followUps,
		sessions:  sessions,
		logger:    logger,
		interval:  interval,
		retry:     retry.DefaultConfig(),
		now:       time.Now,
	}
}

// Start runs the worker loop until ctx is done
func (w *BacklogWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("backlog worker started", slog.Duration("interval", w.interval))
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("backlog worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *BacklogWorker) tick(ctx context.Context) {
	if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("backlog refresh failed", slog.String("error", err.Error()))
	}
	if w.sessions != nil {
		if n := w.sessions.Sweep(); n > 0 {
			metrics.ObserveSessionsSwept(n)
			w.logger.Debug("expired sessions swept", slog.Int("count", n))
		}
	}
}

// RunOnce recomputes the backlog of every organization and publishes it
func (w *BacklogWorker) RunOnce(ctx context.Context) ([]OrgBacklog, error) {
	orgs, err := retry.Do(ctx, w.retry, w.logger, "list organizations", func(ctx context.Context) ([]string, error) {
		return w.users.ListOrganizations(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	now := w.now()
	out := make([]OrgBacklog, 0, len(orgs))
	for _, org := range orgs {
		b, err := w.backlog(ctx, org, now)
		if err != nil {
			w.logger.Warn("skipping organization backlog",
				slog.String("organization", org),
				slog.String("error", err.Error()),
			)
			continue
		}
		metrics.SetBacklog(org, b.Pending, b.Overdue)
		out = append(out, b)
	}
	return out, nil
}

func (w *BacklogWorker) backlog(ctx context.Context, org string, now time.Time) (OrgBacklog, error) {
	return retry.Do(ctx, w.retry, w.logger, "organization backlog", func(ctx context.Context) (OrgBacklog, error) {
		users, err := w.users.ListByOrganization(ctx, org)
		if err != nil {
			return OrgBacklog{}, err
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		items, err := w.followUps.ListByUsers(ctx, ids)
		if err != nil {
			return OrgBacklog{}, err
		}
		pending, overdue := service.Backlog(items, now)
		return OrgBacklog{Organization: org, Pending: pending, Overdue: overdue}, nil
	})
}
