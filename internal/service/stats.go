package service

import (
	"fmt"
	"time"

	"github.com/aryan0dhankhar/leadtrack/internal/domain"
)

// TypeCounts counts completed follow-ups per channel
type TypeCounts struct {
	Call    int `json:"call"`
	Email   int `json:"email"`
	Meeting int `json:"meeting"`
}

// Stats summarizes a set of follow-ups
type Stats struct {
	Total          int        `json:"total"`
	Completed      int        `json:"completed"`
	Pending        int        `json:"pending"`
	Skipped        int        `json:"skipped"`
	CompletionRate int        `json:"completionRate"`
	ByType         TypeCounts `json:"byType"`
}

// CalculateStats counts statuses and completed channels over items.
// CompletionRate is completed/total as a percentage rounded half up, 0 for an empty set.
func CalculateStats(items []*domain.FollowUp) Stats {
	var s Stats
	for _, f := range items {
		s.Total++
		switch f.Status {
		case domain.FollowUpCompleted:
			s.Completed++
			switch f.Type {
			case domain.FollowUpCall:
				s.ByType.Call++
			case domain.FollowUpEmail:
				s.ByType.Email++
			case domain.FollowUpMeeting:
				s.ByType.Meeting++
			}
		case domain.FollowUpPending:
			s.Pending++
		case domain.FollowUpSkipped:
			s.Skipped++
		}
	}
	s.CompletionRate = completionRate(s.Completed, s.Total)
	return s
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// Timeframe selects follow-ups by scheduled time
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeAll   Timeframe = "all"
)

// ParseTimeframe accepts week, month or all; empty means all
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case "":
		return TimeframeAll, nil
	case TimeframeWeek, TimeframeMonth, TimeframeAll:
		return Timeframe(s), nil
	}
	return "", fmt.Errorf("unknown timeframe %q: %w", s, domain.ErrInvalidInput)
}

// Since returns the earliest scheduled time inside the window, and false for all
func (tf Timeframe) Since(now time.Time) (time.Time, bool) {
	switch tf {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7), true
	case TimeframeMonth:
		return now.AddDate(0, 0, -30), true
	}
	return time.Time{}, false
}

// FilterByTimeframe keeps follow-ups scheduled at or after the window start.
// There is no upper bound, so future-dated items are always kept.
func FilterByTimeframe(items []*domain.FollowUp, tf Timeframe, now time.Time) []*domain.FollowUp {
	since, bounded := tf.Since(now)
	if !bounded {
		return items
	}
	out := make([]*domain.FollowUp, 0, len(items))
	for _, f := range items {
		if !f.ScheduledAt.Before(since) {
			out = append(out, f)
		}
	}
	return out
}

// StartOfDay truncates t to local midnight in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Backlog counts pending follow-ups and, of those, the ones scheduled before today
func Backlog(items []*domain.FollowUp, now time.Time) (pending, overdue int) {
	today := StartOfDay(now)
	for _, f := range items {
		if f.Status != domain.FollowUpPending {
			continue
		}
		pending++
		if f.ScheduledAt.Before(today) {
			overdue++
		}
	}
	return pending, overdue
}
