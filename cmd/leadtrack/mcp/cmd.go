// Package mcpcmd implements the `leadtrack mcp` command.
package mcpcmd

import (
	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/shared"
	internalmcp "github.com/aryan0dhankhar/leadtrack/internal/mcp"
)

// version is reported to MCP clients
const version = "1.0.0"

// Command implements `leadtrack mcp`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the mcp command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "mcp",
		Short: "Start the LeadTrack MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	a, err := c.ctx.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return internalmcp.Serve(cmd.Context(), internalmcp.Deps{
		Users:     a.Users,
		Leads:     a.LeadService,
		FollowUps: a.FollowUpSvc,
		Reports:   a.Reports,
	}, version)
}
