package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("user %s: %w", u.Email, domain.ErrConflict)
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (m *memUserRepo) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

func (m *memUserRepo) ListByOrganization(_ context.Context, organization string) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.User{}
	for _, u := range m.byID {
		if u.Organization == organization {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepo) ListOrganizations(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, u := range m.byID {
		if !seen[u.Organization] {
			seen[u.Organization] = true
			out = append(out, u.Organization)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memLeadRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Lead
}

func newMemLeadRepo() *memLeadRepo {
	return &memLeadRepo{byID: map[string]*domain.Lead{}}
}

func (m *memLeadRepo) Create(_ context.Context, l *domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[l.ID]; ok {
		return fmt.Errorf("lead %s: %w", l.ID, domain.ErrConflict)
	}
	cp := *l
	m.byID[l.ID] = &cp
	return nil
}

func (m *memLeadRepo) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.byID[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, fmt.Errorf("lead %s: %w", id, domain.ErrNotFound)
}

func (m *memLeadRepo) Update(_ context.Context, l *domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[l.ID]; !ok {
		return fmt.Errorf("lead %s: %w", l.ID, domain.ErrNotFound)
	}
	cp := *l
	m.byID[l.ID] = &cp
	return nil
}

func (m *memLeadRepo) ListByOrganization(_ context.Context, organization string) ([]*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Lead{}
	for _, l := range m.byID {
		if l.OrganizationID == organization {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLeadRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Lead
	for _, id := range ids {
		if l, ok := m.byID[id]; ok {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memFollowUpRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.FollowUp
}

func newMemFollowUpRepo() *memFollowUpRepo {
	return &memFollowUpRepo{byID: map[string]*domain.FollowUp{}}
}

func (m *memFollowUpRepo) Create(_ context.Context, f *domain.FollowUp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[f.ID]; ok {
		return fmt.Errorf("follow-up %s: %w", f.ID, domain.ErrConflict)
	}
	cp := *f
	m.byID[f.ID] = &cp
	return nil
}

func (m *memFollowUpRepo) GetByID(_ context.Context, id string) (*domain.FollowUp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.byID[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, fmt.Errorf("follow-up %s: %w", id, domain.ErrNotFound)
}

func (m *memFollowUpRepo) Update(_ context.Context, f *domain.FollowUp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[f.ID]; !ok {
		return fmt.Errorf("follow-up %s: %w", f.ID, domain.ErrNotFound)
	}
	cp := *f
	m.byID[f.ID] = &cp
	return nil
}

func (m *memFollowUpRepo) UpdateStatus(_ context.Context, id string, status domain.FollowUpStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("follow-up %s: %w", id, domain.ErrNotFound)
	}
	f.Status = status
	return nil
}

func (m *memFollowUpRepo) ListByUsers(_ context.Context, userIDs []string) ([]*domain.FollowUp, error) {
	return m.list(func(f *domain.FollowUp) string { return f.UserID }, userIDs), nil
}

func (m *memFollowUpRepo) ListByLeads(_ context.Context, leadIDs []string) ([]*domain.FollowUp, error) {
	return m.list(func(f *domain.FollowUp) string { return f.LeadID }, leadIDs), nil
}

func (m *memFollowUpRepo) list(key func(*domain.FollowUp) string, ids []string) []*domain.FollowUp {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*domain.FollowUp
	for _, f := range m.byID {
		if want[key(f)] {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*domain.Session{}}
}

func (m *memSessionStore) Create(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// verdant is an organization with a company admin, two teams of one
// team admin and three members each, and a second tenant next door.
// Every member owns five leads with one follow-up each.
type verdant struct {
	users     *memUserRepo
	leads     *memLeadRepo
	followUps *memFollowUpRepo
	now       time.Time

	admin    *domain.User
	sales    *domain.User
	support  *domain.User
	members  map[string][]*domain.User
	outsider *domain.User
}

const verdantOrg = "Verdant Corp"

func newVerdant() *verdant {
	v := &verdant{
		users:     newMemUserRepo(),
		leads:     newMemLeadRepo(),
		followUps: newMemFollowUpRepo(),
		now:       time.Date(2026, 5, 20, 15, 0, 0, 0, time.UTC),
		members:   map[string][]*domain.User{},
	}
	ctx := context.Background()
	add := func(u *domain.User) *domain.User {
		if err := v.users.Create(ctx, u); err != nil {
			panic(err)
		}
		return u
	}

	v.admin = add(&domain.User{ID: "u-admin", Email: "admin@verdant.example", Name: "Sarah Green",
		Role: domain.RoleCompanyAdmin, Plan: domain.PlanCompany, Organization: verdantOrg})
	v.sales = add(&domain.User{ID: "u-sales-lead", Email: "sales.lead@verdant.example", Name: "Sam Sales",
		Role: domain.RoleTeamAdmin, Plan: domain.PlanCompany, Organization: verdantOrg, TeamID: "Sales"})
	v.support = add(&domain.User{ID: "u-support-lead", Email: "support.lead@verdant.example", Name: "Pat Support",
		Role: domain.RoleTeamAdmin, Plan: domain.PlanCompany, Organization: verdantOrg, TeamID: "Support"})
	v.outsider = add(&domain.User{ID: "u-amber", Email: "admin@amber.example", Name: "Mike Orange",
		Role: domain.RoleCompanyAdmin, Plan: domain.PlanCompany, Organization: "Amber Logistics"})

	types := []domain.FollowUpType{domain.FollowUpCall, domain.FollowUpEmail, domain.FollowUpMeeting}
	for _, team := range []string{"Sales", "Support"} {
		for i := 1; i <= 3; i++ {
			m := add(&domain.User{
				ID:    fmt.Sprintf("u-%s-%d", strings.ToLower(team), i),
				Email: fmt.Sprintf("%s%d@verdant.example", strings.ToLower(team), i),
				Name:  fmt.Sprintf("%s Member %d", team, i),
				Role:  domain.RoleMember, Plan: domain.PlanCompany,
				Organization: verdantOrg, TeamID: team,
			})
			v.members[team] = append(v.members[team], m)

			for j := 1; j <= 5; j++ {
				lead := &domain.Lead{
					ID: fmt.Sprintf("l-%s-%d", m.ID, j), UserID: m.ID, OrganizationID: verdantOrg,
					Name: fmt.Sprintf("Prospect %d of %s", j, m.Name), Status: domain.LeadNew,
				}
				_ = v.leads.Create(ctx, lead)

				// days ago: 1, 5, 12, 25, 60 so each window holds a different subset
				ago := []int{1, 5, 12, 25, 60}[j-1]
				status := domain.FollowUpPending
				if j%2 == 1 {
					status = domain.FollowUpCompleted
				}
				_ = v.followUps.Create(ctx, &domain.FollowUp{
					ID: "f-" + lead.ID, LeadID: lead.ID, UserID: m.ID,
					ScheduledAt: v.now.AddDate(0, 0, -ago),
					Type:        types[(i+j)%3], Status: status,
				})
			}
		}
	}

	_ = v.leads.Create(ctx, &domain.Lead{ID: "l-amber", UserID: v.outsider.ID, OrganizationID: "Amber Logistics",
		Name: "Amber prospect", Status: domain.LeadNew})
	_ = v.followUps.Create(ctx, &domain.FollowUp{ID: "f-amber", LeadID: "l-amber", UserID: v.outsider.ID,
		ScheduledAt: v.now.AddDate(0, 0, -1), Type: domain.FollowUpCall, Status: domain.FollowUpPending})
	return v
}

func (v *verdant) reports() *ReportService {
	s := NewReportService(v.users, v.leads, v.followUps, nil, nil, nil)
	s.now = func() time.Time { return v.now }
	return s
}

func (v *verdant) followUpService() *FollowUpService {
	s := NewFollowUpService(v.users, v.leads, v.followUps, nil, nil)
	s.now = func() time.Time { return v.now }
	return s
}
