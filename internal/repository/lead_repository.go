package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

const leadColumns = `id, user_id, organization_id, name, email, phone, notes, status, created_at, updated_at`

// SQLLeadRepository implements domain.LeadRepository
type SQLLeadRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLLeadRepository creates a new lead repository
func NewSQLLeadRepository(db *sqlx.DB, logger *slog.Logger) *SQLLeadRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLLeadRepository{db: db, logger: logger}
}

// Create inserts a lead
func (r *SQLLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.CreatedAt = lead.CreatedAt.UTC()
	lead.UpdatedAt = now

	query := `INSERT INTO leads (` + leadColumns + `)
		VALUES (:id, :user_id, :organization_id, :name, :email, :phone, :notes, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lead); err != nil {
		r.logger.Error("failed to create lead",
			slog.String("organization", lead.OrganizationID),
			slog.String("error", err.Error()),
		)
		return translate(err, "lead "+lead.ID)
	}
	return nil
}

// GetByID retrieves a lead by ID
func (r *SQLLeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	lead := &domain.Lead{}
	query := r.db.Rebind(`SELECT ` + leadColumns + ` FROM leads WHERE id = ?`)
	if err := r.db.GetContext(ctx, lead, query, id); err != nil {
		return nil, translate(err, "lead "+id)
	}
	return lead, nil
}

// Update rewrites the editable fields of one lead. Owner and organization never change.
func (r *SQLLeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	query := `UPDATE leads
		SET name = :name, email = :email, phone = :phone, notes = :notes,
			status = :status, updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, lead)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return expectOne(res, "lead "+lead.ID)
}

// ListByOrganization lists the leads of one tenant, newest first
func (r *SQLLeadRepository) ListByOrganization(ctx context.Context, organization string) ([]*domain.Lead, error) {
	var leads []*domain.Lead
	query := r.db.Rebind(`SELECT ` + leadColumns + ` FROM leads
		WHERE organization_id = ?
		ORDER BY created_at DESC, id`)
	if err := r.db.SelectContext(ctx, &leads, query, organization); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

// ListByIDs fetches the leads with the given ids; unknown ids are skipped
func (r *SQLLeadRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+leadColumns+` FROM leads WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build lead query: %w", err)
	}
	var leads []*domain.Lead
	if err := r.db.SelectContext(ctx, &leads, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}
