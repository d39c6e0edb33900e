package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

const userColumns = `id, email, name, role, plan, organization, team_id, created_at, updated_at`

// SQLUserRepository implements domain.UserRepository on top of sqlx
type SQLUserRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLUserRepository creates a new user repository
func NewSQLUserRepository(db *sqlx.DB, logger *slog.Logger) *SQLUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user, stamping created/updated times
func (r *SQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = now

	query := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :name, :role, :plan, :organization, :team_id, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if !isUniqueViolation(err) {
			r.logger.Error("failed to create user",
				slog.String("email", user.Email),
				slog.String("error", err.Error()),
			)
		}
		return translate(err, "user "+user.Email)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *SQLUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, user, query, id); err != nil {
		return nil, translate(err, "user "+id)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER(?)`)
	if err := r.db.GetContext(ctx, user, query, email); err != nil {
		return nil, translate(err, "user "+email)
	}
	return user, nil
}

// Update replaces the mutable fields of a user
func (r *SQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := `UPDATE users
		SET email = :email, name = :name, role = :role, plan = :plan,
			organization = :organization, team_id = :team_id, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return translate(err, "user "+user.Email)
	}
	return expectOne(res, "user "+user.ID)
}

// Delete removes a user row. Leads and follow-ups they owned are kept.
func (r *SQLUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOne(res, "user "+id)
}

// ListByOrganization lists all users of an organization
func (r *SQLUserRepository) ListByOrganization(ctx context.Context, organization string) ([]*domain.User, error) {
	var users []*domain.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users
		WHERE organization = ?
		ORDER BY created_at, name`)
	if err := r.db.SelectContext(ctx, &users, query, organization); err != nil {
		r.logger.Error("failed to list users by organization",
			slog.String("organization", organization),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListOrganizations returns every distinct organization name
func (r *SQLUserRepository) ListOrganizations(ctx context.Context) ([]string, error) {
	var orgs []string
	if err := r.db.SelectContext(ctx, &orgs, `SELECT DISTINCT organization FROM users ORDER BY organization`); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}
