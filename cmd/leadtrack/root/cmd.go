// Package rootcmd wires the root cobra.Command for the leadtrack CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	mcpcmd "github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/mcp"
	memberscmd "github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/members"
	migratecmd "github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/migrate"
	reportcmd "github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/report"
	seedcmd "github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/seed"
	"github.com/aryan0dhankhar/leadtrack/cmd/leadtrack/shared"
)

// New creates and returns the root cobra.Command for the leadtrack CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "leadtrack",
		Short:         "LeadTrack administration: schema, demo data, reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.PersistentFlags().StringVar(&ctx.ConfigPath, "config", "", "YAML config file (default: $LEADTRACK_CONFIG)")
	root.PersistentFlags().StringVar(&ctx.DatabaseURL, "database-url", "", "Override the configured database DSN")
	root.PersistentFlags().StringVar(&ctx.LogLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(
		migratecmd.New(ctx).Cmd(),
		seedcmd.New(ctx).Cmd(),
		reportcmd.New(ctx).Cmd(),
		memberscmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
	)

	return root
}
