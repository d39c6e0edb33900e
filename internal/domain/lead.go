package domain

import (
	"context"
	"time"
)

// LeadStatus is the sales stage of a lead
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadWon       LeadStatus = "won"
	LeadLost      LeadStatus = "lost"
)

// Valid reports whether s is a known lead status
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadWon, LeadLost:
		return true
	}
	return false
}

// Lead is a prospect record owned by a user and tagged with its tenant
type Lead struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"userId" db:"user_id"`
	OrganizationID string     `json:"organizationId" db:"organization_id"`
	Name           string     `json:"name" db:"name"`
	Email          string     `json:"email" db:"email"`
	Phone          string     `json:"phone" db:"phone"`
	Notes          string     `json:"notes" db:"notes"`
	Status         LeadStatus `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// LeadRepository defines data access for leads
type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	Update(ctx context.Context, lead *Lead) error
	ListByOrganization(ctx context.Context, organization string) ([]*Lead, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Lead, error)
}
