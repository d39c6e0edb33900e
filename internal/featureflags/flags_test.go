package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	tests := map[string]bool{
		"true": true, "1": true, "YES": true, "on": true,
		"false": false, "0": false, "": false, "maybe": false,
	}
	for value, want := range tests {
		t.Setenv("FLAG_STRICT_PLAN_ROLE", value)
		if got := Enabled(StrictPlanRole); got != want {
			t.Errorf("FLAG_STRICT_PLAN_ROLE=%q: got %v, want %v", value, got, want)
		}
	}
}

func TestActive(t *testing.T) {
	t.Setenv(EnvVar(SeedDemo), " on ")
	t.Setenv(EnvVar(StrictPlanRole), "")

	got := Active()
	if len(got) != 1 || got[0] != SeedDemo {
		t.Fatalf("Active() = %v, want [%s]", got, SeedDemo)
	}
}
