package rootcmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

func execute(c *qt.C, args ...string) (string, error) {
	root := New()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedThenReport(t *testing.T) {
	c := qt.New(t)
	db := filepath.Join(c.TempDir(), "cli.db")

	out, err := execute(c, "seed", "--database-url", db)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, `"organizations": 3`)

	out, err = execute(c, "report", "overview", "--database-url", db, "--as", "admin@citrusfin.com")
	c.Assert(err, qt.IsNil)
	var overview service.Overview
	c.Assert(json.Unmarshal([]byte(out), &overview), qt.IsNil)
	c.Assert(overview.OrgStats.Total, qt.Equals, 30)
	c.Assert(overview.Teams, qt.HasLen, 3)

	out, err = execute(c, "report", "detail", "--database-url", db,
		"--as", "sales.lead@citrusfin.com", "--scope", "team", "--timeframe", "all")
	c.Assert(err, qt.IsNil)
	var report service.ReportData
	c.Assert(json.Unmarshal([]byte(out), &report), qt.IsNil)
	c.Assert(report.Stats.Total, qt.Equals, 15)

	out, err = execute(c, "members", "--database-url", db, "--as", "sales.lead@citrusfin.com")
	c.Assert(err, qt.IsNil)
	var members struct {
		Members []domain.User `json:"members"`
	}
	c.Assert(json.Unmarshal([]byte(out), &members), qt.IsNil)
	c.Assert(members.Members, qt.HasLen, 4)
}

func TestCommandErrors(t *testing.T) {
	c := qt.New(t)
	db := filepath.Join(c.TempDir(), "cli.db")

	_, err := execute(c, "report", "overview", "--database-url", db)
	c.Assert(err, qt.ErrorMatches, "--as is required")

	_, err = execute(c, "report", "overview", "--database-url", db, "--timeframe", "decade", "--as", "x@y.z")
	c.Assert(err, qt.ErrorMatches, `unknown timeframe.*`)

	_, err = execute(c, "members", "--database-url", db, "--as", "nobody@verdant.com")
	c.Assert(err, qt.ErrorMatches, "no user with email nobody@verdant.com")
}
