// Package seedcmd implements the `leadtrack seed` command.
package seedcmd

import (
	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/shared"
)

// Command implements `leadtrack seed`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the seed command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "seed",
		Short: "Load the demo organizations; companies already present are skipped",
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

	res, err := a.Seed(cmd.Context())
	if err != nil {
		return err
	}
	return shared.PrintJSON(cmd.OutOrStdout(), res)
}
