package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/security"
	"github.com/aryan0dhankhar/leadtrack/internal/security/audit"
	"github.com/aryan0dhankhar/leadtrack/internal/security/auth"
)

// DefaultTeam is the team a team-plan registrant starts in
const DefaultTeam = "General"

// AuthService handles registration, email login and sessions
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionStore
	tokens     *auth.TokenManager
	authz      *security.AuthorizationService
	audit      *audit.Logger
	overviews  *OverviewCache
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users domain.UserRepository,
	sessions domain.SessionStore,
	tokens *auth.TokenManager,
	authz *security.AuthorizationService,
	auditLog *audit.Logger,
	overviews *OverviewCache,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}

	return &AuthService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		authz:      authz,
		audit:      auditLog,
		overviews:  overviews,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterInput represents a sign-up request
type RegisterInput struct {
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Organization string      `json:"organization"`
	Plan         domain.Plan `json:"plan"`
}

// LoginResult represents login response
type LoginResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // seconds
	TokenType string       `json:"token_type"`
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("invalid email %q: %w", email, domain.ErrInvalidInput)
	}
	return email, nil
}

// Register creates the first account of a new organization and logs it in.
// The role follows the plan: single user, team admin of team General, or company admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	name := strings.TrimSpace(in.Name)
	org := strings.TrimSpace(in.Organization)
	if name == "" || org == "" {
		return nil, fmt.Errorf("name and organization are required: %w", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	plan := in.Plan
	if plan == "" {
		plan = domain.PlanSingle
	}
	if !plan.Valid() {
		return nil, fmt.Errorf("unknown plan %q: %w", plan, domain.ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	existing, err := s.users.ListByOrganization(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("organization %q already exists, ask an admin to add you: %w", org, domain.ErrConflict)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         domain.RoleForPlan(plan),
		Plan:         plan,
		Organization: org,
	}
	if plan == domain.PlanTeam {
		user.TeamID = DefaultTeam
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("organization registered",
		slog.String("organization", org),
		slog.String("user_id", user.ID),
		slog.String("plan", string(plan)),
	)
	return s.startSession(ctx, user)
}

// Login looks a user up by email, ignoring case, and opens a session.
// There is no password.
func (s *AuthService) Login(ctx context.Context, email string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("login attempt with unknown email", slog.String("email", email))
			return nil, fmt.Errorf("no account for %s: %w", email, domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	res, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("organization", user.Organization),
	)
	return res, nil
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.GenerateToken(session.ID, user.ID, user.Organization, string(user.Role), s.sessionTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresIn: int(s.sessionTTL.Seconds()),
		TokenType: "Bearer",
	}, nil
}

// Logout ends a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// CurrentUser resolves a session to its user, reloaded from storage so
// role and team changes apply immediately.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = s.sessions.Delete(ctx, sessionID)
			return nil, fmt.Errorf("account removed: %w", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// UpdatePlan switches the actor's own plan and the role that goes with it.
// A team admin may only change plan while the organization has no company admin.
func (s *AuthService) UpdatePlan(ctx context.Context, actor *domain.User, plan domain.Plan) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !plan.Valid() {
		return nil, fmt.Errorf("unknown plan %q: %w", plan, domain.ErrInvalidInput)
	}
	if err := s.authz.ValidatePermission(actor.Role, security.PermChangePlan); err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleTeamAdmin {
		members, err := s.users.ListByOrganization(ctx, actor.Organization)
		if err != nil {
			return nil, fmt.Errorf("failed to load organization: %w", err)
		}
		for _, m := range members {
			if m.Role == domain.RoleCompanyAdmin {
				return nil, fmt.Errorf("the plan is managed by your company admin: %w", domain.ErrForbidden)
			}
		}
	}

	updated := *actor
	updated.Plan = plan
	updated.Role = domain.RoleForPlan(plan)
	if plan == domain.PlanTeam && updated.TeamID == "" {
		updated.TeamID = DefaultTeam
	}
	if err := s.users.Update(ctx, &updated); err != nil {
		s.audit.LogPlanChange(ctx, actor.Organization, actor.ID, string(plan), "failed")
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	s.overviews.Invalidate(actor.Organization)
	s.audit.LogPlanChange(ctx, actor.Organization, actor.ID, string(plan), "success")
	return &updated, nil
}
