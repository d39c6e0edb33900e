// Package migratecmd implements the `leadtrack migrate` command.
package migratecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/shared"
)

// Command implements `leadtrack migrate`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the migrate command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	// opening the pool applies the schema
	a, err := c.ctx.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", a.Config.DatabaseDriver)
	return nil
}
