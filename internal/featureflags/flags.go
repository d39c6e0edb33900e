package featureflags

import (
	"os"
	"strings"
)

const (
	// SeedDemo loads the demo organizations at server start
	SeedDemo = "seed_demo"
	// StrictPlanRole rejects role/plan combinations that do not match
	StrictPlanRole = "strict_plan_role"
)

// Known lists every flag the server reads
var Known = []string{SeedDemo, StrictPlanRole}

// EnvVar is the environment variable backing a flag
func EnvVar(name string) string {
	return "FLAG_" + strings.ToUpper(name)
}

// Enabled reports whether FLAG_<NAME> is set to true/1/yes/on (any case)
func Enabled(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvVar(name)))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Active returns the known flags that are switched on, for startup logs
func Active() []string {
	var on []string
	for _, name := range Known {
		if Enabled(name) {
			on = append(on, name)
		}
	}
	return on
}
