package database

import (
	"context"
	"fmt"
	"strings"
)

// timestamp columns need the exact "timestamp" decltype for go-sqlite3 to
// scan them back into time.Time
func schemaStatements(driver string) []string {
	ts := "TIMESTAMP"
	if driver == DriverPostgres {
		ts = "TIMESTAMPTZ"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			email        TEXT NOT NULL,
			name         TEXT NOT NULL,
			role         TEXT NOT NULL,
			plan         TEXT NOT NULL,
			organization TEXT NOT NULL,
			team_id      TEXT NOT NULL DEFAULT '',
			created_at   {ts} NOT NULL,
			updated_at   {ts} NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS users_org_team_idx ON users (organization, team_id)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			name            TEXT NOT NULL,
			email           TEXT NOT NULL DEFAULT '',
			phone           TEXT NOT NULL DEFAULT '',
			notes           TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL,
			created_at      {ts} NOT NULL,
			updated_at      {ts} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS leads_org_idx ON leads (organization_id)`,
		`CREATE TABLE IF NOT EXISTS follow_ups (
			id           TEXT PRIMARY KEY,
			lead_id      TEXT NOT NULL,
			user_id      TEXT NOT NULL,
			scheduled_at {ts} NOT NULL,
			type         TEXT NOT NULL,
			status       TEXT NOT NULL,
			notes        TEXT NOT NULL DEFAULT '',
			created_at   {ts} NOT NULL,
			updated_at   {ts} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS follow_ups_user_idx ON follow_ups (user_id)`,
		`CREATE INDEX IF NOT EXISTS follow_ups_lead_idx ON follow_ups (lead_id)`,
	}
	for i, s := range stmts {
		stmts[i] = strings.ReplaceAll(s, "{ts}", ts)
	}
	return stmts
}

// Migrate creates missing tables and indexes. There are no foreign keys:
// leads and follow-ups outlive deleted users.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, s := range schemaStatements(cp.driver) {
		if _, err := cp.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("failed to apply schema: %w\nSQL: %s", err, s)
		}
	}
	return nil
}
