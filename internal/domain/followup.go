package domain

import (
	"context"
	"time"
)

// FollowUpType is the communication channel
type FollowUpType string

const (
	FollowUpCall    FollowUpType = "call"
	FollowUpEmail   FollowUpType = "email"
	FollowUpMeeting FollowUpType = "meeting"
)

// Valid reports whether t is a known channel
func (t FollowUpType) Valid() bool {
	switch t {
	case FollowUpCall, FollowUpEmail, FollowUpMeeting:
		return true
	}
	return false
}

// FollowUpStatus is the lifecycle state of a follow-up
type FollowUpStatus string

const (
	FollowUpPending   FollowUpStatus = "pending"
	FollowUpCompleted FollowUpStatus = "completed"
	FollowUpSkipped   FollowUpStatus = "skipped"
)

// Valid reports whether s is a known status
func (s FollowUpStatus) Valid() bool {
	switch s {
	case FollowUpPending, FollowUpCompleted, FollowUpSkipped:
		return true
	}
	return false
}

// FollowUp is a scheduled or logged communication with a lead
type FollowUp struct {
	ID          string         `json:"id" db:"id"`
	LeadID      string         `json:"leadId" db:"lead_id"`
	UserID      string         `json:"userId" db:"user_id"`
	ScheduledAt time.Time      `json:"scheduledAt" db:"scheduled_at"`
	Type        FollowUpType   `json:"type" db:"type"`
	Status      FollowUpStatus `json:"status" db:"status"`
	Notes       string         `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// FollowUpWithLead is a follow-up joined with its lead
type FollowUpWithLead struct {
	FollowUp
	Lead *Lead `json:"lead"`
}

// FollowUpRepository defines data access for follow-ups
type FollowUpRepository interface {
	Create(ctx context.Context, followUp *FollowUp) error
	GetByID(ctx context.Context, id string) (*FollowUp, error)
	Update(ctx context.Context, followUp *FollowUp) error
	UpdateStatus(ctx context.Context, id string, status FollowUpStatus) error
	ListByUsers(ctx context.Context, userIDs []string) ([]*FollowUp, error)
	ListByLeads(ctx context.Context, leadIDs []string) ([]*FollowUp, error)
}
