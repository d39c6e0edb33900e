package service

import (
	"testing"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

func followUp(status domain.FollowUpStatus, typ domain.FollowUpType) *domain.FollowUp {
	return &domain.FollowUp{Status: status, Type: typ}
}

func TestCalculateStats(t *testing.T) {
	tests := []struct {
		name  string
		items []*domain.FollowUp
		want  Stats
	}{
		{
			name: "empty set has zero rate",
			want: Stats{},
		},
		{
			name: "counts statuses and completed channels",
			items: []*domain.FollowUp{
				followUp(domain.FollowUpCompleted, domain.FollowUpCall),
				followUp(domain.FollowUpCompleted, domain.FollowUpEmail),
				followUp(domain.FollowUpCompleted, domain.FollowUpEmail),
				followUp(domain.FollowUpPending, domain.FollowUpMeeting),
				followUp(domain.FollowUpSkipped, domain.FollowUpCall),
			},
			want: Stats{
				Total: 5, Completed: 3, Pending: 1, Skipped: 1, CompletionRate: 60,
				ByType: TypeCounts{Call: 1, Email: 2},
			},
		},
		{
			name: "pending channels are not counted",
			items: []*domain.FollowUp{
				followUp(domain.FollowUpPending, domain.FollowUpCall),
				followUp(domain.FollowUpPending, domain.FollowUpMeeting),
			},
			want: Stats{Total: 2, Pending: 2},
		},
		{
			name: "rate rounds half up",
			items: []*domain.FollowUp{
				followUp(domain.FollowUpCompleted, domain.FollowUpMeeting),
				followUp(domain.FollowUpPending, domain.FollowUpCall),
				followUp(domain.FollowUpPending, domain.FollowUpCall),
				followUp(domain.FollowUpPending, domain.FollowUpCall),
				followUp(domain.FollowUpPending, domain.FollowUpCall),
				followUp(domain.FollowUpPending, domain.FollowUpCall),
				followUp(domain.FollowUpPending, domain.FollowUpCall),
				followUp(domain.FollowUpPending, domain.FollowUpCall),
			},
			// 1/8 = 12.5%
			want: Stats{Total: 8, Completed: 1, Pending: 7, CompletionRate: 13, ByType: TypeCounts{Meeting: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateStats(tt.items)
			if got != tt.want {
				t.Fatalf("CalculateStats() = %+v, want %+v", got, tt.want)
			}
			if got.Completed+got.Pending+got.Skipped != got.Total {
				t.Fatalf("status counts do not add up to total: %+v", got)
			}
			if got.ByType.Call+got.ByType.Email+got.ByType.Meeting != got.Completed {
				t.Fatalf("channel counts do not add up to completed: %+v", got)
			}
		})
	}
}

func TestCompletionRateBounds(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for completed := 0; completed <= total; completed++ {
			rate := completionRate(completed, total)
			if rate < 0 || rate > 100 {
				t.Fatalf("completionRate(%d, %d) = %d, out of range", completed, total, rate)
			}
			if total > 0 && completed == total && rate != 100 {
				t.Fatalf("completionRate(%d, %d) = %d, want 100", completed, total, rate)
			}
		}
	}
}

func TestParseTimeframe(t *testing.T) {
	for in, want := range map[string]Timeframe{"": TimeframeAll, "week": TimeframeWeek, "month": TimeframeMonth, "all": TimeframeAll} {
		got, err := ParseTimeframe(in)
		if err != nil || got != want {
			t.Fatalf("ParseTimeframe(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseTimeframe("year"); err == nil {
		t.Fatalf("expected error for unknown timeframe")
	}
}

func TestFilterByTimeframe(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	at := func(days int) *domain.FollowUp {
		return &domain.FollowUp{ScheduledAt: now.AddDate(0, 0, days)}
	}
	items := []*domain.FollowUp{at(-60), at(-30), at(-8), at(-7), at(-1), at(0), at(6)}

	week := FilterByTimeframe(items, TimeframeWeek, now)
	month := FilterByTimeframe(items, TimeframeMonth, now)
	all := FilterByTimeframe(items, TimeframeAll, now)

	if len(week) != 4 {
		t.Fatalf("expected 4 items in week (boundary and future-dated included), got %d", len(week))
	}
	if len(month) != 6 {
		t.Fatalf("expected 6 items in month, got %d", len(month))
	}
	if len(all) != len(items) {
		t.Fatalf("expected all items, got %d", len(all))
	}
	if !week[len(week)-1].ScheduledAt.Equal(now.AddDate(0, 0, 6)) {
		t.Fatalf("expected the future-dated item inside the week window")
	}
}

func TestBacklog(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	items := []*domain.FollowUp{
		{Status: domain.FollowUpPending, ScheduledAt: now.AddDate(0, 0, -2)},
		{Status: domain.FollowUpPending, ScheduledAt: now.Add(-time.Hour)},
		{Status: domain.FollowUpPending, ScheduledAt: now.AddDate(0, 0, 1)},
		{Status: domain.FollowUpCompleted, ScheduledAt: now.AddDate(0, 0, -3)},
	}
	pending, overdue := Backlog(items, now)
	if pending != 3 || overdue != 1 {
		t.Fatalf("Backlog() = %d, %d, want 3, 1", pending, overdue)
	}
}
