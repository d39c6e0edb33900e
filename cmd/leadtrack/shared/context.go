// Package shared holds the state passed to all CLI commands.
package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aryan0dhankhar/leadtrack/internal/app"
	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/leadtrack/pkg/config"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// ConfigPath names a YAML file; it wins over LEADTRACK_CONFIG.
	ConfigPath string
	// DatabaseURL overrides the configured DSN.
	DatabaseURL string
	// LogLevel applies to the JSON logs written on stderr.
	LogLevel string
}

// Open loads the configuration and builds the application. Callers close it.
func (c *Context) Open(ctx context.Context) (*app.App, error) {
	if c.ConfigPath != "" {
		if err := os.Setenv("LEADTRACK_CONFIG", c.ConfigPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.DatabaseURL != "" {
		cfg.DatabaseURL = c.DatabaseURL
	}
	level := c.LogLevel
	if level == "" {
		level = "warn"
	}
	return app.New(ctx, cfg, logger.NewLogger(level))
}

// Actor looks up the user a command acts as.
func Actor(ctx context.Context, a *app.App, email string) (*domain.User, error) {
	if email == "" {
		return nil, errors.New("--as is required")
	}
	user, err := a.Users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no user with email %s", email)
	}
	return user, err
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
