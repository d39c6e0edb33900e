package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/observability/metrics"
)

// LeadService handles lead visibility and edits
type LeadService struct {
	dir    *directory
	logger *slog.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(users domain.UserRepository, leads domain.LeadRepository, logger *slog.Logger) *LeadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadService{
		dir:    &directory{users: users, leads: leads},
		logger: logger,
	}
}

// LeadInput carries the editable fields of a lead
type LeadInput struct {
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Phone  string            `json:"phone"`
	Notes  string            `json:"notes"`
	Status domain.LeadStatus `json:"status"`
}

func (in *LeadInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("lead name is required: %w", domain.ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = domain.LeadNew
	}
	if !in.Status.Valid() {
		return fmt.Errorf("unknown lead status %q: %w", in.Status, domain.ErrInvalidInput)
	}
	return nil
}

// GetLeads returns exactly the leads the actor's role entitles them to see.
// No actor yields an empty list.
func (s *LeadService) GetLeads(ctx context.Context, actor *domain.User) ([]*domain.Lead, error) {
	if actor == nil {
		return []*domain.Lead{}, nil
	}
	leads, err := s.dir.visibleLeads(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	if leads == nil {
		leads = []*domain.Lead{}
	}
	return leads, nil
}

// GetLead returns one visible lead
func (s *LeadService) GetLead(ctx context.Context, actor *domain.User, id string) (*domain.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.dir.visibleLead(ctx, actor, id)
}

// AddLead creates a lead owned by the actor in the actor's organization
func (s *LeadService) AddLead(ctx context.Context, actor *domain.User, in LeadInput) (*domain.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	lead := &domain.Lead{
		ID:             uuid.NewString(),
		UserID:         actor.ID,
		OrganizationID: actor.Organization,
		Name:           in.Name,
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Notes:          in.Notes,
		Status:         in.Status,
	}
	if err := s.dir.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	metrics.IncLeadsCreated()
	s.logger.Info("lead added",
		slog.String("lead_id", lead.ID),
		slog.String("organization", lead.OrganizationID),
		slog.String("user_id", actor.ID),
	)
	return lead, nil
}

// UpdateLead replaces the editable fields of a lead visible to the actor
func (s *LeadService) UpdateLead(ctx context.Context, actor *domain.User, id string, in LeadInput) (*domain.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	lead, err := s.dir.visibleLead(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	lead.Name = in.Name
	lead.Email = strings.TrimSpace(in.Email)
	lead.Phone = strings.TrimSpace(in.Phone)
	lead.Notes = in.Notes
	lead.Status = in.Status
	if err := s.dir.leads.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}
