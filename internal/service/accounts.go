package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/security"
	"github.com/aryan0dhankhar/leadtrack/internal/security/audit"
)

// AccountService manages the members of an organization
type AccountService struct {
	dir            *directory
	authz          *security.AuthorizationService
	audit          *audit.Logger
	overviews      *OverviewCache
	strictPlanRole bool
	logger         *slog.Logger
}

// NewAccountService creates a new account service. With strictPlanRole set,
// role changes must fit the user's plan.
func NewAccountService(
	users domain.UserRepository,
	authz *security.AuthorizationService,
	auditLog *audit.Logger,
	overviews *OverviewCache,
	strictPlanRole bool,
	logger *slog.Logger,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &AccountService{
		dir:            &directory{users: users},
		authz:          authz,
		audit:          auditLog,
		overviews:      overviews,
		strictPlanRole: strictPlanRole,
		logger:         logger,
	}
}

// NewMember represents an add-member request
type NewMember struct {
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	TeamID string      `json:"teamId"`
}

// UserUpdate carries profile edits. Nil Role or TeamID leaves them unchanged.
type UserUpdate struct {
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Role   *domain.Role `json:"role,omitempty"`
	TeamID *string      `json:"teamId,omitempty"`
}

// AddTeamMember creates a user in the actor's organization on the actor's plan.
// Team admins always add members to their own team; company admins pick role and team.
func (s *AccountService) AddTeamMember(ctx context.Context, actor *domain.User, in NewMember) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.authz.ValidatePermission(actor.Role, security.PermAddMember); err != nil {
		s.audit.LogDenied(ctx, actor.Organization, actor.ID, "add_member")
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("member name is required: %w", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	role, team := domain.RoleMember, strings.TrimSpace(in.TeamID)
	if actor.Role == domain.RoleTeamAdmin {
		team = actor.TeamID
	} else if in.Role != "" {
		role = in.Role
	}
	if !role.Valid() || role == domain.RoleSingleUser {
		return nil, fmt.Errorf("role %q cannot be assigned to a member: %w", role, domain.ErrInvalidInput)
	}
	if s.strictPlanRole {
		if err := domain.ValidatePlanRole(actor.Plan, role); err != nil {
			return nil, err
		}
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		Plan:         actor.Plan,
		Organization: actor.Organization,
		TeamID:       team,
	}
	if err := s.dir.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.overviews.Invalidate(actor.Organization)
	s.audit.LogMemberChange(ctx, actor.Organization, actor.ID, "add_member", user.ID, "success",
		fmt.Sprintf("role=%s team=%s", role, team))
	return user, nil
}

// DeleteUser removes a member. Team admins may only remove members of their
// own team, nobody can remove themselves, and owned leads and follow-ups stay.
func (s *AccountService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.authz.ValidatePermission(actor.Role, security.PermRemoveMember); err != nil {
		s.audit.LogDenied(ctx, actor.Organization, actor.ID, "remove_member")
		return err
	}
	if id == actor.ID {
		return fmt.Errorf("you cannot remove yourself: %w", domain.ErrInvalidInput)
	}

	target, err := s.dir.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateTenantAccess(actor.Organization, target.Organization); err != nil {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err := s.authz.ValidateUserAccess(actor, target, security.ResourceMembers); err != nil {
		return err
	}
	if actor.Role == domain.RoleTeamAdmin && target.Role != domain.RoleMember {
		return fmt.Errorf("team admins can only remove members: %w", domain.ErrForbidden)
	}

	if err := s.dir.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.overviews.Invalidate(actor.Organization)
	s.audit.LogMemberChange(ctx, actor.Organization, actor.ID, "remove_member", id, "success", target.Email)
	return nil
}

// UpdateUser edits a profile. Users may always edit their own name and email;
// editing others needs update_member within scope, and changing a role or
// team needs assign_role.
func (s *AccountService) UpdateUser(ctx context.Context, actor *domain.User, id string, in UserUpdate) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	target := actor
	if id != actor.ID {
		if err := s.authz.ValidatePermission(actor.Role, security.PermUpdateMember); err != nil {
			return nil, err
		}
		var err error
		if target, err = s.dir.users.GetByID(ctx, id); err != nil {
			return nil, err
		}
		if target.Organization != actor.Organization {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		if err := s.authz.ValidateUserAccess(actor, target, security.ResourceMembers); err != nil {
			return nil, err
		}
	}

	updated := *target
	if name := strings.TrimSpace(in.Name); name != "" {
		updated.Name = name
	}
	if in.Email != "" {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return nil, err
		}
		updated.Email = email
	}

	roleChange := in.Role != nil && *in.Role != target.Role
	teamChange := in.TeamID != nil && strings.TrimSpace(*in.TeamID) != target.TeamID
	if roleChange || teamChange {
		if err := s.authz.ValidatePermission(actor.Role, security.PermAssignRole); err != nil {
			return nil, err
		}
	}
	if roleChange {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("unknown role %q: %w", *in.Role, domain.ErrInvalidInput)
		}
		if id == actor.ID {
			return nil, fmt.Errorf("change your own role through your plan: %w", domain.ErrInvalidInput)
		}
		if s.strictPlanRole {
			if err := domain.ValidatePlanRole(updated.Plan, *in.Role); err != nil {
				return nil, err
			}
		}
		updated.Role = *in.Role
	}
	if teamChange {
		updated.TeamID = strings.TrimSpace(*in.TeamID)
	}

	if err := s.dir.users.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if roleChange || teamChange {
		s.overviews.Invalidate(actor.Organization)
		s.audit.LogMemberChange(ctx, actor.Organization, actor.ID, "update_member", updated.ID, "success",
			fmt.Sprintf("role=%s team=%s", updated.Role, updated.TeamID))
	}
	return &updated, nil
}

// GetManagedUsers lists the users the actor administers: the organization
// for company admins, their team for team admins, nobody otherwise.
func (s *AccountService) GetManagedUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if actor == nil {
		return []*domain.User{}, nil
	}
	if !s.authz.HasPermission(actor.Role, security.PermListMembers) {
		return []*domain.User{}, nil
	}
	users, err := s.dir.usersInScope(ctx, actor, security.ResourceMembers)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// GetTeamMembers lists every user of the actor's organization
func (s *AccountService) GetTeamMembers(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if actor == nil {
		return []*domain.User{}, nil
	}
	users, err := s.dir.users.ListByOrganization(ctx, actor.Organization)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}
