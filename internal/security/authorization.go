package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermAddMember    Permission = "add_member"
	PermRemoveMember Permission = "remove_member"
	PermUpdateMember Permission = "update_member"
	PermListMembers  Permission = "list_members"
	PermAssignRole   Permission = "assign_role"
	PermViewOverview Permission = "view_overview"
	PermChangePlan   Permission = "change_plan"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleCompanyAdmin: {
		PermAddMember,
		PermRemoveMember,
		PermUpdateMember,
		PermListMembers,
		PermAssignRole,
		PermViewOverview,
		PermChangePlan,
	},
	domain.RoleTeamAdmin: {
		PermAddMember,
		PermRemoveMember,
		PermUpdateMember,
		PermListMembers,
		PermChangePlan,
	},
	domain.RoleMember: {},
	domain.RoleSingleUser: {
		PermChangePlan,
	},
}

var deniedMessages = map[Permission]string{
	PermAddMember:    "only admins can add members",
	PermRemoveMember: "only admins can remove members",
	PermUpdateMember: "only admins can edit other members",
	PermListMembers:  "only admins can list members",
	PermAssignRole:   "only company admins can assign roles and teams",
	PermViewOverview: "only company admins can view the organization overview",
	PermChangePlan:   "members cannot change the subscription plan",
}

// AuthorizationService answers role and scope questions from the policy tables
type AuthorizationService struct {
	logger   *slog.Logger
	onDenied func(role domain.Role, reason string)
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// OnDenied registers a callback invoked on every refused check
func (as *AuthorizationService) OnDenied(fn func(role domain.Role, reason string)) {
	as.onDenied = fn
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission returns an ErrForbidden-wrapping error when role lacks permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if as.HasPermission(role, permission) {
		return nil
	}
	as.logger.Warn("permission denied",
		slog.String("role", string(role)),
		slog.String("permission", string(permission)),
	)
	as.denied(role, string(permission))

	msg, ok := deniedMessages[permission]
	if !ok {
		msg = fmt.Sprintf("%s role cannot %s", role, permission)
	}
	return fmt.Errorf("%s: %w", msg, domain.ErrForbidden)
}

// GetRolePermissions returns all permissions for a role
func (as *AuthorizationService) GetRolePermissions(role domain.Role) []Permission {
	return RolePermissions[role]
}

// ValidateTenantAccess checks that a user belongs to the requested organization
func (as *AuthorizationService) ValidateTenantAccess(userOrganization, requestedOrganization string) error {
	if userOrganization != requestedOrganization {
		as.logger.Warn("tenant access denied",
			slog.String("user_organization", userOrganization),
			slog.String("requested_organization", requestedOrganization),
		)
		as.denied("", "tenant")
		return fmt.Errorf("access denied: other organization: %w", domain.ErrForbidden)
	}
	return nil
}

func (as *AuthorizationService) denied(role domain.Role, reason string) {
	if as.onDenied != nil {
		as.onDenied(role, reason)
	}
}
