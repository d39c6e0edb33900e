package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

const followUpColumns = `id, lead_id, user_id, scheduled_at, type, status, notes, created_at, updated_at`

// SQLFollowUpRepository implements domain.FollowUpRepository
type SQLFollowUpRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLFollowUpRepository creates a new follow-up repository
func NewSQLFollowUpRepository(db *sqlx.DB, logger *slog.Logger) *SQLFollowUpRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLFollowUpRepository{db: db, logger: logger}
}

// Create inserts a follow-up
func (r *SQLFollowUpRepository) Create(ctx context.Context, f *domain.FollowUp) error {
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.CreatedAt = f.CreatedAt.UTC()
	f.UpdatedAt = now
	f.ScheduledAt = f.ScheduledAt.UTC()

	query := `INSERT INTO follow_ups (` + followUpColumns + `)
		VALUES (:id, :lead_id, :user_id, :scheduled_at, :type, :status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		r.logger.Error("failed to create follow-up",
			slog.String("lead_id", f.LeadID),
			slog.String("error", err.Error()),
		)
		return translate(err, "follow-up "+f.ID)
	}
	return nil
}

// GetByID retrieves a follow-up by ID
func (r *SQLFollowUpRepository) GetByID(ctx context.Context, id string) (*domain.FollowUp, error) {
	f := &domain.FollowUp{}
	query := r.db.Rebind(`SELECT ` + followUpColumns + ` FROM follow_ups WHERE id = ?`)
	if err := r.db.GetContext(ctx, f, query, id); err != nil {
		return nil, translate(err, "follow-up "+id)
	}
	return f, nil
}

// Update rewrites schedule, channel, status and notes of one follow-up
func (r *SQLFollowUpRepository) Update(ctx context.Context, f *domain.FollowUp) error {
	f.UpdatedAt = time.Now().UTC()
	f.ScheduledAt = f.ScheduledAt.UTC()
	query := `UPDATE follow_ups
		SET scheduled_at = :scheduled_at, type = :type, status = :status,
			notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, f)
	if err != nil {
		return fmt.Errorf("failed to update follow-up: %w", err)
	}
	return expectOne(res, "follow-up "+f.ID)
}

// UpdateStatus changes only the status column
func (r *SQLFollowUpRepository) UpdateStatus(ctx context.Context, id string, status domain.FollowUpStatus) error {
	query := r.db.Rebind(`UPDATE follow_ups SET status = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update follow-up status: %w", err)
	}
	return expectOne(res, "follow-up "+id)
}

// ListByUsers returns follow-ups owned by any of userIDs
func (r *SQLFollowUpRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*domain.FollowUp, error) {
	return r.listIn(ctx, "user_id", userIDs)
}

// ListByLeads returns follow-ups attached to any of leadIDs
func (r *SQLFollowUpRepository) ListByLeads(ctx context.Context, leadIDs []string) ([]*domain.FollowUp, error) {
	return r.listIn(ctx, "lead_id", leadIDs)
}

func (r *SQLFollowUpRepository) listIn(ctx context.Context, column string, ids []string) ([]*domain.FollowUp, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+followUpColumns+` FROM follow_ups
		WHERE `+column+` IN (?)
		ORDER BY scheduled_at, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build follow-up query: %w", err)
	}
	var out []*domain.FollowUp
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("failed to list follow-ups",
			slog.String("by", column),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return out, nil
}
