// Package memberscmd implements the `leadtrack members` command.
package memberscmd

import (
	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/shared"
)

type flags struct {
	as  string
	org bool
}

// Command implements `leadtrack members`.
type Command struct {
	ctx   *shared.Context
	cmd   *cobra.Command
	flags flags
}

// New creates the members command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "members",
		Short: "List the users a user manages",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.flags.as, "as", "", "Email of the user to act as")
	c.cmd.Flags().BoolVar(&c.flags.org, "org", false, "List the whole organization instead")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := c.ctx.Open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	actor, err := shared.Actor(ctx, a, c.flags.as)
	if err != nil {
		return err
	}

	if c.flags.org {
		members, err := a.Accounts.GetTeamMembers(ctx, actor)
		if err != nil {
			return err
		}
		return shared.PrintJSON(cmd.OutOrStdout(), map[string]any{"members": members})
	}
	members, err := a.Accounts.GetManagedUsers(ctx, actor)
	if err != nil {
		return err
	}
	return shared.PrintJSON(cmd.OutOrStdout(), map[string]any{"members": members})
}
