package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/observability/metrics"
)

// FollowUpService schedules follow-ups and records their outcome
type FollowUpService struct {
	dir       *directory
	followUps domain.FollowUpRepository
	overviews *OverviewCache
	logger    *slog.Logger
	now       func() time.Time
}

// NewFollowUpService creates a new follow-up service
func NewFollowUpService(
	users domain.UserRepository,
	leads domain.LeadRepository,
	followUps domain.FollowUpRepository,
	overviews *OverviewCache,
	logger *slog.Logger,
) *FollowUpService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowUpService{
		dir:       &directory{users: users, leads: leads},
		followUps: followUps,
		overviews: overviews,
		logger:    logger,
		now:       time.Now,
	}
}

// FollowUpInput carries the schedulable fields of a follow-up
type FollowUpInput struct {
	LeadID      string              `json:"leadId"`
	ScheduledAt time.Time           `json:"scheduledAt"`
	Type        domain.FollowUpType `json:"type"`
	Notes       string              `json:"notes"`
}

func (in *FollowUpInput) validate() error {
	if in.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduledAt is required: %w", domain.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("unknown follow-up type %q: %w", in.Type, domain.ErrInvalidInput)
	}
	return nil
}

// DashboardStats are the counters of the personal dashboard
type DashboardStats struct {
	TotalLeads     int `json:"totalLeads"`
	TodayPending   int `json:"todayPending"`
	Overdue        int `json:"overdue"`
	CompletedToday int `json:"completedToday"`
}

// AddFollowUp schedules a pending follow-up owned by the actor on a visible lead.
// The lead lookup and the insert are not one transaction.
func (s *FollowUpService) AddFollowUp(ctx context.Context, actor *domain.User, in FollowUpInput) (*domain.FollowUp, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.dir.visibleLead(ctx, actor, in.LeadID); err != nil {
		return nil, err
	}

	f := &domain.FollowUp{
		ID:          uuid.NewString(),
		LeadID:      in.LeadID,
		UserID:      actor.ID,
		ScheduledAt: in.ScheduledAt,
		Type:        in.Type,
		Status:      domain.FollowUpPending,
		Notes:       strings.TrimSpace(in.Notes),
	}
	if err := s.followUps.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save follow-up: %w", err)
	}

	s.overviews.Invalidate(actor.Organization)
	s.logger.Info("follow-up scheduled",
		slog.String("follow_up_id", f.ID),
		slog.String("lead_id", f.LeadID),
		slog.String("type", string(f.Type)),
	)
	return f, nil
}

// UpdateFollowUpStatus records an explicit status change
func (s *FollowUpService) UpdateFollowUpStatus(ctx context.Context, actor *domain.User, id string, status domain.FollowUpStatus) (*domain.FollowUp, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown follow-up status %q: %w", status, domain.ErrInvalidInput)
	}

	f, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if f.Status == status {
		return f, nil
	}

	if err := s.followUps.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update follow-up status: %w", err)
	}
	metrics.ObserveFollowUpTransition(string(f.Status), string(status))
	s.overviews.Invalidate(actor.Organization)

	s.logger.Info("follow-up status changed",
		slog.String("follow_up_id", id),
		slog.String("from", string(f.Status)),
		slog.String("to", string(status)),
	)
	f.Status = status
	return f, nil
}

// UpdateFollowUp reschedules or edits a follow-up. The status field is
// applied as an explicit change when set.
func (s *FollowUpService) UpdateFollowUp(ctx context.Context, actor *domain.User, id string, in FollowUpInput, status domain.FollowUpStatus) (*domain.FollowUp, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown follow-up status %q: %w", status, domain.ErrInvalidInput)
	}

	f, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	from := f.Status

	f.ScheduledAt = in.ScheduledAt
	f.Type = in.Type
	f.Notes = strings.TrimSpace(in.Notes)
	if status != "" {
		f.Status = status
	}
	if err := s.followUps.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to update follow-up: %w", err)
	}
	if from != f.Status {
		metrics.ObserveFollowUpTransition(string(from), string(f.Status))
	}
	s.overviews.Invalidate(actor.Organization)
	return f, nil
}

// editable loads a follow-up the actor owns or whose lead they can see
func (s *FollowUpService) editable(ctx context.Context, actor *domain.User, id string) (*domain.FollowUp, error) {
	f, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID == actor.ID {
		return f, nil
	}
	if _, err := s.dir.visibleLead(ctx, actor, f.LeadID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("follow-up %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

// GetFollowUps lists the follow-ups of every visible lead joined with the
// lead, pending first, then by scheduled time.
func (s *FollowUpService) GetFollowUps(ctx context.Context, actor *domain.User) ([]*domain.FollowUpWithLead, error) {
	out := []*domain.FollowUpWithLead{}
	if actor == nil {
		return out, nil
	}

	leads, err := s.dir.visibleLeads(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	byID := make(map[string]*domain.Lead, len(leads))
	ids := make([]string, 0, len(leads))
	for _, l := range leads {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	items, err := s.followUps.ListByLeads(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load follow-ups: %w", err)
	}
	for _, f := range items {
		lead, ok := byID[f.LeadID]
		if !ok {
			continue
		}
		out = append(out, &domain.FollowUpWithLead{FollowUp: *f, Lead: lead})
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Status == domain.FollowUpPending, out[j].Status == domain.FollowUpPending
		if pi != pj {
			return pi
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

// GetLeadFollowUps lists the follow-ups of one visible lead, oldest first
func (s *FollowUpService) GetLeadFollowUps(ctx context.Context, actor *domain.User, leadID string) ([]*domain.FollowUp, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.dir.visibleLead(ctx, actor, leadID); err != nil {
		return nil, err
	}
	items, err := s.followUps.ListByLeads(ctx, []string{leadID})
	if err != nil {
		return nil, fmt.Errorf("failed to load follow-ups: %w", err)
	}
	if items == nil {
		items = []*domain.FollowUp{}
	}
	return items, nil
}

// GetDashboardStats counts visible leads and today's workload.
// Overdue means pending and scheduled before the start of today.
func (s *FollowUpService) GetDashboardStats(ctx context.Context, actor *domain.User) (*DashboardStats, error) {
	stats := &DashboardStats{}
	if actor == nil {
		return stats, nil
	}

	leads, err := s.dir.visibleLeads(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	stats.TotalLeads = len(leads)

	items, err := s.GetFollowUps(ctx, actor)
	if err != nil {
		return nil, err
	}

	today := StartOfDay(s.now())
	tomorrow := today.AddDate(0, 0, 1)
	for _, f := range items {
		isToday := !f.ScheduledAt.Before(today) && f.ScheduledAt.Before(tomorrow)
		switch {
		case f.Status == domain.FollowUpPending && f.ScheduledAt.Before(today):
			stats.Overdue++
		case f.Status == domain.FollowUpPending && isToday:
			stats.TodayPending++
		case f.Status == domain.FollowUpCompleted && isToday:
			stats.CompletedToday++
		}
	}
	return stats, nil
}
