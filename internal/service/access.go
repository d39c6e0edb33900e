package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/security"
)

// directory answers "who and what can this actor see" from the scope table
type directory struct {
	users domain.UserRepository
	leads domain.LeadRepository
}

// usersInScope returns the users of the actor's organization covered by the
// actor's scope over resource
func (d *directory) usersInScope(ctx context.Context, actor *domain.User, resource security.ResourceType) ([]*domain.User, error) {
	scope := security.ScopeFor(actor.Role, resource)
	switch scope {
	case security.ScopeNone:
		return nil, nil
	case security.ScopeSelf:
		return []*domain.User{actor}, nil
	}

	all, err := d.users.ListByOrganization(ctx, actor.Organization)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(all))
	for _, u := range all {
		if security.Covers(scope, actor, u) {
			out = append(out, u)
		}
	}
	return out, nil
}

// visibleLeads returns the leads the actor's role entitles them to see
func (d *directory) visibleLeads(ctx context.Context, actor *domain.User) ([]*domain.Lead, error) {
	scope := security.ScopeFor(actor.Role, security.ResourceLeads)
	if scope == security.ScopeNone {
		return nil, nil
	}

	leads, err := d.leads.ListByOrganization(ctx, actor.Organization)
	if err != nil {
		return nil, err
	}
	if scope == security.ScopeOrganization {
		return leads, nil
	}

	owners, err := d.usersInScope(ctx, actor, security.ResourceLeads)
	if err != nil {
		return nil, err
	}
	ids := userIDSet(owners)
	out := make([]*domain.Lead, 0, len(leads))
	for _, l := range leads {
		if ids[l.UserID] {
			out = append(out, l)
		}
	}
	return out, nil
}

// leadVisible reports whether a single lead is inside the actor's lead scope
func (d *directory) leadVisible(ctx context.Context, actor *domain.User, lead *domain.Lead) (bool, error) {
	if lead.OrganizationID != actor.Organization {
		return false, nil
	}
	scope := security.ScopeFor(actor.Role, security.ResourceLeads)
	switch scope {
	case security.ScopeOrganization:
		return true, nil
	case security.ScopeSelf:
		return lead.UserID == actor.ID, nil
	case security.ScopeTeam:
		owner, err := d.users.GetByID(ctx, lead.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return security.Covers(scope, actor, owner), nil
	}
	return false, nil
}

// visibleLead loads a lead and hides it behind ErrNotFound when out of scope
func (d *directory) visibleLead(ctx context.Context, actor *domain.User, id string) (*domain.Lead, error) {
	lead, err := d.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := d.leadVisible(ctx, actor, lead)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lead %s: %w", id, domain.ErrNotFound)
	}
	return lead, nil
}

func userIDSet(users []*domain.User) map[string]bool {
	ids := make(map[string]bool, len(users))
	for _, u := range users {
		ids[u.ID] = true
	}
	return ids
}

func userIDs(users []*domain.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func requireActor(actor *domain.User) error {
	if actor == nil {
		return fmt.Errorf("no current user: %w", domain.ErrUnauthenticated)
	}
	return nil
}
