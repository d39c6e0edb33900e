package domain

import (
	"context"
	"fmt"
	"time"
)

// Role is a user's position in the account hierarchy
type Role string

const (
	RoleCompanyAdmin Role = "company_admin"
	RoleTeamAdmin    Role = "team_admin"
	RoleMember       Role = "member"
	RoleSingleUser   Role = "single_user"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCompanyAdmin, RoleTeamAdmin, RoleMember, RoleSingleUser:
		return true
	}
	return false
}

// Plan is the subscription tier of a user
type Plan string

const (
	PlanSingle  Plan = "single"
	PlanTeam    Plan = "team"
	PlanCompany Plan = "company"
)

// Valid reports whether p is one of the known plans
func (p Plan) Valid() bool {
	switch p {
	case PlanSingle, PlanTeam, PlanCompany:
		return true
	}
	return false
}

// RoleForPlan returns the role a user receives when switching to plan
func RoleForPlan(p Plan) Role {
	switch p {
	case PlanCompany:
		return RoleCompanyAdmin
	case PlanTeam:
		return RoleTeamAdmin
	default:
		return RoleSingleUser
	}
}

// ValidatePlanRole checks that a role is allowed on a plan.
// Members may belong to team or company plans; admins must hold the plan matching their role.
func ValidatePlanRole(p Plan, r Role) error {
	ok := false
	switch r {
	case RoleCompanyAdmin:
		ok = p == PlanCompany
	case RoleTeamAdmin:
		ok = p == PlanTeam || p == PlanCompany
	case RoleMember:
		ok = p == PlanTeam || p == PlanCompany
	case RoleSingleUser:
		ok = p == PlanSingle
	}
	if !ok {
		return fmt.Errorf("role %s is not allowed on plan %s: %w", r, p, ErrInvalidInput)
	}
	return nil
}

// UnassignedTeam is the report bucket for users without a team
const UnassignedTeam = "Unassigned"

// User represents an account holder. Organization is the tenant boundary
// and TeamID (empty when absent) sub-groups users inside it.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	Plan         Plan      `json:"plan" db:"plan"`
	Organization string    `json:"organization" db:"organization"`
	TeamID       string    `json:"teamId,omitempty" db:"team_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// TeamBucket returns the team the user is reported under
func (u *User) TeamBucket() string {
	if u.TeamID == "" {
		return UnassignedTeam
	}
	return u.TeamID
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	ListByOrganization(ctx context.Context, organization string) ([]*User, error)
	ListOrganizations(ctx context.Context) ([]string, error)
}

// Session is a login handle. Only the user id is stored so profile
// changes are visible to the session immediately.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore keeps active sessions
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
