package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

// ResourceType identifies the kind of data being read
type ResourceType string

const (
	ResourceLeads   ResourceType = "leads"
	ResourceReports ResourceType = "reports"
	ResourceMembers ResourceType = "members"
)

// Scope is the breadth of rows a role may see
type Scope string

const (
	ScopeNone         Scope = "none"
	ScopeSelf         Scope = "self"
	ScopeTeam         Scope = "team"
	ScopeOrganization Scope = "organization"
)

// RoleScopes maps a role to its visibility per resource.
// Members and single users read leads organization-wide; reports stay personal.
var RoleScopes = map[domain.Role]map[ResourceType]Scope{
	domain.RoleCompanyAdmin: {
		ResourceLeads:   ScopeOrganization,
		ResourceReports: ScopeOrganization,
		ResourceMembers: ScopeOrganization,
	},
	domain.RoleTeamAdmin: {
		ResourceLeads:   ScopeTeam,
		ResourceReports: ScopeTeam,
		ResourceMembers: ScopeTeam,
	},
	domain.RoleMember: {
		ResourceLeads:   ScopeOrganization,
		ResourceReports: ScopeSelf,
		ResourceMembers: ScopeNone,
	},
	domain.RoleSingleUser: {
		ResourceLeads:   ScopeOrganization,
		ResourceReports: ScopeSelf,
		ResourceMembers: ScopeNone,
	},
}

// ScopeFor returns the scope of role over resource; unknown roles see nothing
func ScopeFor(role domain.Role, resource ResourceType) Scope {
	if s, ok := RoleScopes[role][resource]; ok {
		return s
	}
	return ScopeNone
}

// Covers reports whether target falls inside actor's scope
func Covers(scope Scope, actor, target *domain.User) bool {
	if actor == nil || target == nil {
		return false
	}
	switch scope {
	case ScopeOrganization:
		return actor.Organization == target.Organization
	case ScopeTeam:
		return actor.Organization == target.Organization && actor.TeamID == target.TeamID
	case ScopeSelf:
		return actor.ID == target.ID
	}
	return false
}

// ValidateUserAccess checks that target is inside the actor's scope for resource
func (as *AuthorizationService) ValidateUserAccess(actor, target *domain.User, resource ResourceType) error {
	if Covers(ScopeFor(actor.Role, resource), actor, target) {
		return nil
	}
	as.logger.Warn("resource access denied",
		slog.String("user_id", actor.ID),
		slog.String("target_id", target.ID),
		slog.String("resource_type", string(resource)),
	)
	as.denied(actor.Role, string(resource))
	return fmt.Errorf("access denied: %s of %s are outside your scope: %w", resource, target.Name, domain.ErrForbidden)
}
