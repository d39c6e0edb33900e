// Package seed loads the demo organizations used for local runs and tests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

// Company describes one demo organization
type Company struct {
	Name   string
	Domain string
	Admin  string
}

// Companies are the organizations Seed creates
var Companies = []Company{
	{Name: "Verdant Corp", Domain: "verdant.com", Admin: "Sarah Green"},
	{Name: "Amber Logistics", Domain: "amberlog.com", Admin: "Mike Orange"},
	{Name: "Citrus Financial", Domain: "citrusfin.com", Admin: "Jessica Peel"},
}

// Teams each company is split into
var Teams = []string{"Sales", "Support"}

const (
	membersPerTeam = 3
	leadsPerMember = 5
)

// Result counts what a Seed run created
type Result struct {
	Organizations int `json:"organizations"`
	Users         int `json:"users"`
	Leads         int `json:"leads"`
	FollowUps     int `json:"followUps"`
}

// Seeder writes demo data through the repositories
type Seeder struct {
	users     domain.UserRepository
	leads     domain.LeadRepository
	followUps domain.FollowUpRepository
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a seeder
func New(users domain.UserRepository, leads domain.LeadRepository, followUps domain.FollowUpRepository, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{users: users, leads: leads, followUps: followUps, logger: logger, now: time.Now}
}

// Seed creates every demo company whose admin account does not exist yet.
// Each company gets a company admin, a team admin per team and three members
// per team. Members own five leads with one follow-up each; admins own none.
func (s *Seeder) Seed(ctx context.Context) (*Result, error) {
	res := &Result{}
	for _, c := range Companies {
		adminEmail := "admin@" + c.Domain
		if _, err := s.users.GetByEmail(ctx, adminEmail); err == nil {
			s.logger.Debug("demo organization already present", slog.String("organization", c.Name))
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return res, fmt.Errorf("failed to check %s: %w", c.Name, err)
		}

		if err := s.seedCompany(ctx, c, res); err != nil {
			return res, fmt.Errorf("failed to seed %s: %w", c.Name, err)
		}
		res.Organizations++
		s.logger.Info("demo organization seeded", slog.String("organization", c.Name))
	}
	return res, nil
}

func (s *Seeder) seedCompany(ctx context.Context, c Company, res *Result) error {
	slug := strings.SplitN(c.Domain, ".", 2)[0]
	first := strings.Fields(c.Name)[0]
	now := s.now().UTC()

	addUser := func(u *domain.User) error {
		u.Plan = domain.PlanCompany
		u.Organization = c.Name
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		res.Users++
		return nil
	}

	if err := addUser(&domain.User{
		ID:    "u_" + slug + "_admin",
		Email: "admin@" + c.Domain,
		Name:  c.Admin,
		Role:  domain.RoleCompanyAdmin,
	}); err != nil {
		return err
	}

	n := 0
	for _, team := range Teams {
		key := strings.ToLower(team)
		if err := addUser(&domain.User{
			ID:     fmt.Sprintf("u_%s_%s_lead", slug, key),
			Email:  fmt.Sprintf("%s.lead@%s", key, c.Domain),
			Name:   fmt.Sprintf("%s %s Lead", first, team),
			Role:   domain.RoleTeamAdmin,
			TeamID: team,
		}); err != nil {
			return err
		}

		for i := 1; i <= membersPerTeam; i++ {
			n++
			member := &domain.User{
				ID:     fmt.Sprintf("u_%s_m%d", slug, n),
				Email:  fmt.Sprintf("user%d@%s", n, c.Domain),
				Name:   fmt.Sprintf("%s User %d", first, n),
				Role:   domain.RoleMember,
				TeamID: team,
			}
			if err := addUser(member); err != nil {
				return err
			}
			if err := s.seedPipeline(ctx, member, now, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedPipeline mixes overdue, upcoming and closed follow-ups spread over
// the last two months so every timeframe has data
func (s *Seeder) seedPipeline(ctx context.Context, owner *domain.User, now time.Time, res *Result) error {
	types := []domain.FollowUpType{domain.FollowUpEmail, domain.FollowUpCall, domain.FollowUpMeeting}
	offsets := []int{-1, 1, -4, -12, -40}
	statuses := []domain.FollowUpStatus{
		domain.FollowUpCompleted,
		domain.FollowUpPending,
		domain.FollowUpPending,
		domain.FollowUpCompleted,
		domain.FollowUpSkipped,
	}

	for i := 1; i <= leadsPerMember; i++ {
		status := domain.LeadContacted
		if i%2 == 0 {
			status = domain.LeadNew
		}
		lead := &domain.Lead{
			ID:             fmt.Sprintf("l_%s_%d", owner.ID, i),
			UserID:         owner.ID,
			OrganizationID: owner.Organization,
			Name:           fmt.Sprintf("Lead %d for %s", i, owner.Name),
			Email:          fmt.Sprintf("prospect%d@client.example", i),
			Phone:          fmt.Sprintf("555-010%d", i),
			Notes:          fmt.Sprintf("Interested in %s services. Needs follow up.", owner.Organization),
			Status:         status,
			CreatedAt:      now.AddDate(0, 0, -45),
		}
		if err := s.leads.Create(ctx, lead); err != nil {
			return err
		}
		res.Leads++

		f := &domain.FollowUp{
			ID:          "f_" + lead.ID,
			LeadID:      lead.ID,
			UserID:      owner.ID,
			ScheduledAt: now.AddDate(0, 0, offsets[i-1]),
			Type:        types[i%len(types)],
			Status:      statuses[i-1],
			Notes:       "Standard check-in procedure.",
		}
		if err := s.followUps.Create(ctx, f); err != nil {
			return err
		}
		res.FollowUps++
	}
	return nil
}
