package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/observability/metrics"
	"github.com/aryan0dhankhar/leadtrack/internal/security"
	"github.com/aryan0dhankhar/leadtrack/pkg/cache"
)

var tracer = otel.Tracer("github.com/aryan0dhankhar/leadtrack/internal/service")

const (
	unknownLead = "Unknown Lead"
	unknownUser = "Unknown User"

	lowOrgCompletionRate  = 50
	lowTeamCompletionRate = 40
)

// TeamStats is the rollup of one team bucket
type TeamStats struct {
	TeamID      string `json:"teamId"`
	MemberCount int    `json:"memberCount"`
	Stats       Stats  `json:"stats"`
}

// UserStats is the rollup of one user
type UserStats struct {
	UserID string      `json:"userId"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
	TeamID string      `json:"teamId"`
	Stats  Stats       `json:"stats"`
}

// Overview is the organization dashboard of a company admin
type Overview struct {
	Timeframe Timeframe   `json:"timeframe"`
	OrgStats  Stats       `json:"orgStats"`
	Teams     []TeamStats `json:"teams"`
	Users     []UserStats `json:"users"`
	Alerts    []string    `json:"alerts"`
}

func (o *Overview) clone() *Overview {
	cp := *o
	cp.Teams = append([]TeamStats(nil), o.Teams...)
	cp.Users = append([]UserStats(nil), o.Users...)
	cp.Alerts = append([]string(nil), o.Alerts...)
	return &cp
}

func emptyOverview(tf Timeframe) *Overview {
	return &Overview{Timeframe: tf, Teams: []TeamStats{}, Users: []UserStats{}, Alerts: []string{}}
}

// ReportScope selects how a report target is interpreted
type ReportScope string

const (
	ScopeUser ReportScope = "user"
	ScopeTeam ReportScope = "team"
	ScopeOrg  ReportScope = "org"

	// TargetAll asks for everything the actor may see
	TargetAll = "all"
)

// ParseReportScope accepts user, team or org; empty means org
func ParseReportScope(s string) (ReportScope, error) {
	switch ReportScope(s) {
	case "":
		return ScopeOrg, nil
	case ScopeUser, ScopeTeam, ScopeOrg:
		return ReportScope(s), nil
	}
	return "", fmt.Errorf("unknown report scope %q: %w", s, domain.ErrInvalidInput)
}

// ReportTask is a follow-up joined with the names of its lead and owner
type ReportTask struct {
	domain.FollowUp
	LeadName string `json:"leadName"`
	UserName string `json:"userName"`
}

// ReportData is a scoped report
type ReportData struct {
	Scope     ReportScope  `json:"scope"`
	Target    string       `json:"target"`
	Timeframe Timeframe    `json:"timeframe"`
	Stats     Stats        `json:"stats"`
	Tasks     []ReportTask `json:"tasks"`
}

// OverviewCache memoizes overviews per organization and timeframe
type OverviewCache struct {
	c   *cache.Cache
	ttl time.Duration
}

// NewOverviewCache creates a cache; a non-positive ttl disables it
func NewOverviewCache(c *cache.Cache, ttl time.Duration) *OverviewCache {
	if c == nil {
		c = cache.New()
	}
	return &OverviewCache{c: c, ttl: ttl}
}

func overviewKey(organization string, tf Timeframe) string {
	return "overview:" + organization + ":" + string(tf)
}

func (oc *OverviewCache) get(organization string, tf Timeframe) (*Overview, bool) {
	if oc == nil || oc.ttl <= 0 {
		return nil, false
	}
	v, ok := oc.c.Get(overviewKey(organization, tf))
	metrics.ObserveReportCache(ok)
	if !ok {
		return nil, false
	}
	return v.(*Overview).clone(), true
}

func (oc *OverviewCache) put(organization string, o *Overview) {
	if oc == nil || oc.ttl <= 0 {
		return
	}
	oc.c.Set(overviewKey(organization, o.Timeframe), o.clone(), oc.ttl)
}

// Invalidate drops every cached overview of organization
func (oc *OverviewCache) Invalidate(organization string) {
	if oc == nil {
		return
	}
	oc.c.Invalidate("overview:" + organization + ":")
}

// ReportService builds the overview rollup and scoped reports
type ReportService struct {
	dir       *directory
	followUps domain.FollowUpRepository
	authz     *security.AuthorizationService
	overviews *OverviewCache
	logger    *slog.Logger
	now       func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	users domain.UserRepository,
	leads domain.LeadRepository,
	followUps domain.FollowUpRepository,
	authz *security.AuthorizationService,
	overviews *OverviewCache,
	logger *slog.Logger,
) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	return &ReportService{
		dir:       &directory{users: users, leads: leads},
		followUps: followUps,
		authz:     authz,
		overviews: overviews,
		logger:    logger,
		now:       time.Now,
	}
}

// GetOverviewStats rolls up the follow-ups of the actor's whole organization
// at organization, team and user level. Only company admins may call it; no
// actor yields an empty overview.
func (s *ReportService) GetOverviewStats(ctx context.Context, actor *domain.User, tf Timeframe) (_ *Overview, err error) {
	ctx, span := tracer.Start(ctx, "ReportService.GetOverviewStats")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if actor == nil {
		return emptyOverview(tf), nil
	}
	span.SetAttributes(
		attribute.String("organization", actor.Organization),
		attribute.String("timeframe", string(tf)),
	)
	if err := s.authz.ValidatePermission(actor.Role, security.PermViewOverview); err != nil {
		return nil, err
	}

	if o, ok := s.overviews.get(actor.Organization, tf); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return o, nil
	}

	start := time.Now()
	defer func() { metrics.ObserveReport("overview", string(tf), time.Since(start)) }()

	users, err := s.dir.users.ListByOrganization(ctx, actor.Organization)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization users: %w", err)
	}
	items, err := s.followUps.ListByUsers(ctx, userIDs(users))
	if err != nil {
		return nil, fmt.Errorf("failed to load follow-ups: %w", err)
	}
	items = FilterByTimeframe(items, tf, s.now())

	o := buildOverview(tf, users, items)
	s.overviews.put(actor.Organization, o)
	return o, nil
}

func buildOverview(tf Timeframe, users []*domain.User, items []*domain.FollowUp) *Overview {
	o := emptyOverview(tf)
	o.OrgStats = CalculateStats(items)

	byUser := make(map[string][]*domain.FollowUp, len(users))
	for _, f := range items {
		byUser[f.UserID] = append(byUser[f.UserID], f)
	}

	teamItems := map[string][]*domain.FollowUp{}
	teamMembers := map[string]int{}
	for _, u := range users {
		bucket := u.TeamBucket()
		teamItems[bucket] = append(teamItems[bucket], byUser[u.ID]...)
		teamMembers[bucket]++

		o.Users = append(o.Users, UserStats{
			UserID: u.ID,
			Name:   u.Name,
			Role:   u.Role,
			TeamID: u.TeamID,
			Stats:  CalculateStats(byUser[u.ID]),
		})
	}
	for team, members := range teamMembers {
		o.Teams = append(o.Teams, TeamStats{
			TeamID:      team,
			MemberCount: members,
			Stats:       CalculateStats(teamItems[team]),
		})
	}

	sort.Slice(o.Teams, func(i, j int) bool {
		a, b := o.Teams[i], o.Teams[j]
		if a.Stats.CompletionRate != b.Stats.CompletionRate {
			return a.Stats.CompletionRate > b.Stats.CompletionRate
		}
		return a.TeamID < b.TeamID
	})
	sort.Slice(o.Users, func(i, j int) bool {
		a, b := o.Users[i], o.Users[j]
		if a.Stats.CompletionRate != b.Stats.CompletionRate {
			return a.Stats.CompletionRate > b.Stats.CompletionRate
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.UserID < b.UserID
	})

	if o.OrgStats.Total > 0 && o.OrgStats.CompletionRate < lowOrgCompletionRate {
		o.Alerts = append(o.Alerts, fmt.Sprintf("Overall completion rate is below %d%%.", lowOrgCompletionRate))
	}
	behind := 0
	for _, t := range o.Teams {
		if t.Stats.Total > 0 && t.Stats.CompletionRate < lowTeamCompletionRate {
			behind++
		}
	}
	if behind > 0 {
		o.Alerts = append(o.Alerts, fmt.Sprintf("%d teams are critically behind schedule.", behind))
	}
	return o
}

// GetReportData builds a report for a user, a team or everything the actor
// may see. The resolved users are always intersected with the actor's report
// scope, so a target outside it yields an empty report.
func (s *ReportService) GetReportData(ctx context.Context, actor *domain.User, target string, scope ReportScope, tf Timeframe) (_ *ReportData, err error) {
	ctx, span := tracer.Start(ctx, "ReportService.GetReportData")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	report := &ReportData{Scope: scope, Target: target, Timeframe: tf, Tasks: []ReportTask{}}
	if actor == nil {
		return report, nil
	}
	span.SetAttributes(
		attribute.String("organization", actor.Organization),
		attribute.String("scope", string(scope)),
		attribute.String("timeframe", string(tf)),
	)

	start := time.Now()
	defer func() { metrics.ObserveReport("detail_"+string(scope), string(tf), time.Since(start)) }()

	entitled, err := s.dir.usersInScope(ctx, actor, security.ResourceReports)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report scope: %w", err)
	}
	selected := selectReportUsers(entitled, target, scope)
	if len(selected) == 0 {
		return report, nil
	}

	items, err := s.followUps.ListByUsers(ctx, userIDs(selected))
	if err != nil {
		return nil, fmt.Errorf("failed to load follow-ups: %w", err)
	}
	items = FilterByTimeframe(items, tf, s.now())

	leadIDs := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, f := range items {
		if !seen[f.LeadID] {
			seen[f.LeadID] = true
			leadIDs = append(leadIDs, f.LeadID)
		}
	}
	leads, err := s.dir.leads.ListByIDs(ctx, leadIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}

	report.Stats = CalculateStats(items)
	report.Tasks = enrichTasks(items, leads, selected)
	return report, nil
}

func selectReportUsers(entitled []*domain.User, target string, scope ReportScope) []*domain.User {
	if target == TargetAll || target == "" || scope == ScopeOrg {
		return entitled
	}
	out := make([]*domain.User, 0, 1)
	for _, u := range entitled {
		switch scope {
		case ScopeUser:
			if u.ID == target {
				out = append(out, u)
			}
		case ScopeTeam:
			if u.TeamBucket() == target {
				out = append(out, u)
			}
		}
	}
	return out
}

// enrichTasks joins follow-ups to lead and owner names, newest first.
// Dangling references get placeholder names.
func enrichTasks(items []*domain.FollowUp, leads []*domain.Lead, users []*domain.User) []ReportTask {
	leadNames := make(map[string]string, len(leads))
	for _, l := range leads {
		leadNames[l.ID] = l.Name
	}
	userNames := make(map[string]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	tasks := make([]ReportTask, 0, len(items))
	for _, f := range items {
		t := ReportTask{FollowUp: *f, LeadName: unknownLead, UserName: unknownUser}
		if name, ok := leadNames[f.LeadID]; ok {
			t.LeadName = name
		}
		if name, ok := userNames[f.UserID]; ok {
			t.UserName = name
		}
		tasks = append(tasks, t)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].ScheduledAt.Equal(tasks[j].ScheduledAt) {
			return tasks[i].ScheduledAt.After(tasks[j].ScheduledAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}
