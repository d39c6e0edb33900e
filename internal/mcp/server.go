// Package mcp exposes read-only LeadTrack reports as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

const asDescription = "Email of the LeadTrack user to act as. Results are limited to what that user may see."

// Deps are the services the tools read from
type Deps struct {
	Users     domain.UserRepository
	Leads     *service.LeadService
	FollowUps *service.FollowUpService
	Reports   *service.ReportService
}

// NewServer creates an MCP server with every LeadTrack tool registered
func NewServer(deps Deps, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("leadtrack", version)
	registerTools(s, deps)
	return s
}

// Serve runs the stdio MCP server until stdin closes
func Serve(_ context.Context, deps Deps, version string) error {
	return mcpserver.ServeStdio(NewServer(deps, version))
}

func registerTools(s *mcpserver.MCPServer, deps Deps) {
	s.AddTool(mcp.NewTool("leads_list",
		mcp.WithDescription("List the leads visible to a user."),
		mcp.WithString("as", mcp.Description(asDescription), mcp.Required()),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleLeads(ctx, deps, req)
	})

	s.AddTool(mcp.NewTool("report_overview",
		mcp.WithDescription("Organization rollup of follow-up completion by team and user. Company admins only."),
		mcp.WithString("as", mcp.Description(asDescription), mcp.Required()),
		mcp.WithString("timeframe",
			mcp.Description("week = last 7 days, month = last 30 days, all = no filter."),
			mcp.Enum(string(service.TimeframeWeek), string(service.TimeframeMonth), string(service.TimeframeAll)),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleOverview(ctx, deps, req)
	})

	s.AddTool(mcp.NewTool("report_detail",
		mcp.WithDescription("Follow-up statistics and tasks for a user, a team or everything the caller may see."),
		mcp.WithString("as", mcp.Description(asDescription), mcp.Required()),
		mcp.WithString("target", mcp.Description("User id, team name or \"all\" (default).")),
		mcp.WithString("scope",
			mcp.Description("How target is read."),
			mcp.Enum(string(service.ScopeUser), string(service.ScopeTeam), string(service.ScopeOrg)),
		),
		mcp.WithString("timeframe",
			mcp.Description("week, month or all."),
			mcp.Enum(string(service.TimeframeWeek), string(service.TimeframeMonth), string(service.TimeframeAll)),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDetail(ctx, deps, req)
	})

	s.AddTool(mcp.NewTool("dashboard",
		mcp.WithDescription("Lead count plus today's pending, overdue and completed follow-ups for a user."),
		mcp.WithString("as", mcp.Description(asDescription), mcp.Required()),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDashboard(ctx, deps, req)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleLeads(ctx context.Context, deps Deps, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, res := actor(ctx, deps, req)
	if res != nil {
		return res, nil
	}
	leads, err := deps.Leads.GetLeads(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := make([]map[string]any, 0, len(leads))
	for _, l := range leads {
		out = append(out, map[string]any{
			"id":     l.ID,
			"name":   l.Name,
			"status": l.Status,
			"owner":  l.UserID,
		})
	}
	return jsonResult(map[string]any{"total": len(out), "leads": out})
}

func handleOverview(ctx context.Context, deps Deps, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, res := actor(ctx, deps, req)
	if res != nil {
		return res, nil
	}
	tf, err := service.ParseTimeframe(req.GetString("timeframe", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	overview, err := deps.Reports.GetOverviewStats(ctx, user, tf)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(overview)
}

func handleDetail(ctx context.Context, deps Deps, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, res := actor(ctx, deps, req)
	if res != nil {
		return res, nil
	}
	tf, err := service.ParseTimeframe(req.GetString("timeframe", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope, err := service.ParseReportScope(req.GetString("scope", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := deps.Reports.GetReportData(ctx, user, req.GetString("target", service.TargetAll), scope, tf)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func handleDashboard(ctx context.Context, deps Deps, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, res := actor(ctx, deps, req)
	if res != nil {
		return res, nil
	}
	stats, err := deps.FollowUps.GetDashboardStats(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// actor resolves the "as" argument, or returns the error result to send back
func actor(ctx context.Context, deps Deps, req mcp.CallToolRequest) (*domain.User, *mcp.CallToolResult) {
	email := req.GetString("as", "")
	if email == "" {
		return nil, mcp.NewToolResultError("as is required")
	}
	user, err := deps.Users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("no user with email %s", email))
	}
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return user, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
