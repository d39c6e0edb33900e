// Package reportcmd implements the `leadtrack report` commands.
package reportcmd

import (
	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/shared"
	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

type flags struct {
	as        string
	timeframe string
	target    string
	scope     string
}

// Command implements `leadtrack report`.
type Command struct {
	ctx   *shared.Context
	cmd   *cobra.Command
	flags flags
}

// New creates the report command with its overview and detail subcommands.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "report",
		Short: "Follow-up completion reports",
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	c.cmd.PersistentFlags().StringVar(&c.flags.as, "as", "", "Email of the user to act as")
	c.cmd.PersistentFlags().StringVar(&c.flags.timeframe, "timeframe", "all", "week, month or all")

	overview := &cobra.Command{
		Use:   "overview",
		Short: "Organization rollup by team and user (company admins)",
		Args:  cobra.NoArgs,
		RunE:  c.runOverview,
	}

	detail := &cobra.Command{
		Use:   "detail",
		Short: "Statistics and tasks for a user, a team or everything visible",
		Args:  cobra.NoArgs,
		RunE:  c.runDetail,
	}
	detail.Flags().StringVar(&c.flags.target, "target", service.TargetAll, "User id, team name or all")
	detail.Flags().StringVar(&c.flags.scope, "scope", string(service.ScopeOrg), "user, team or org")

	c.cmd.AddCommand(overview, detail)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runOverview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	tf, err := service.ParseTimeframe(c.flags.timeframe)
	if err != nil {
		return err
	}

	a, err := c.ctx.Open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	actor, err := shared.Actor(ctx, a, c.flags.as)
	if err != nil {
		return err
	}
	overview, err := a.Reports.GetOverviewStats(ctx, actor, tf)
	if err != nil {
		return err
	}
	return shared.PrintJSON(cmd.OutOrStdout(), overview)
}

func (c *Command) runDetail(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	tf, err := service.ParseTimeframe(c.flags.timeframe)
	if err != nil {
		return err
	}
	scope, err := service.ParseReportScope(c.flags.scope)
	if err != nil {
		return err
	}

	a, err := c.ctx.Open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	actor, err := shared.Actor(ctx, a, c.flags.as)
	if err != nil {
		return err
	}
	report, err := a.Reports.GetReportData(ctx, actor, c.flags.target, scope, tf)
	if err != nil {
		return err
	}
	return shared.PrintJSON(cmd.OutOrStdout(), report)
}
