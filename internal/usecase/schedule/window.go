package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/podscout/podscout/pkg/config"
)

// boundaryGuard keeps a run that fires just after a week boundary from
// flapping into an empty window.
const boundaryGuard = 6 * time.Hour

// Window is a resolved reporting period. Start is nil when the epoch
// source could not be reached; callers then fall back to a 7-day
// rolling window.
type Window struct {
	Start *time.Time
	Label string
}

// Key returns a filesystem- and object-safe identifier for the window.
func (w Window) Key() string {
	key := strings.ToLower(w.Label)
	return strings.ReplaceAll(key, " ", "-")
}

// Epoch is one externally defined reporting period, e.g. an FPL
// gameweek. Start is the prior epoch's boundary timestamp.
type Epoch struct {
	Label string
	Start *time.Time
}

// EpochSource resolves the current external epoch.
type EpochSource interface {
	Current(ctx context.Context) (*Epoch, error)
}

// Resolve maps a schedule policy and the current time to a reporting
// window. It is a pure function of its inputs; the epoch source is only
// consulted for the external_epoch policy.
func Resolve(ctx context.Context, cfg config.ScheduleConfig, now time.Time, epochs EpochSource) Window {
	now = now.UTC()

	switch cfg.Type {
	case config.ScheduleExternalEpoch:
		return resolveEpoch(ctx, now, epochs)
	case config.ScheduleCalendarDay:
		start := midnight(now)
		return Window{Start: &start, Label: now.Format("2006-01-02")}
	case config.ScheduleCalendarWeek:
		return resolveWeek(now, cfg.StartDay)
	case config.ScheduleRollingDays:
		return resolveRolling(now, cfg.Days)
	default:
		return resolveRolling(now, 7)
	}
}

// FallbackStart returns the window start, or a conservative 7-day
// default when the window is unbounded.
func (w Window) FallbackStart(now time.Time) time.Time {
	if w.Start != nil {
		return *w.Start
	}
	return now.UTC().AddDate(0, 0, -7)
}

func resolveRolling(now time.Time, days int) Window {
	if days <= 0 {
		days = 7
	}
	start := now.AddDate(0, 0, -days)
	return Window{Start: &start, Label: fmt.Sprintf("last %d days", days)}
}

func resolveWeek(now time.Time, startDay string) Window {
	target := weekday(startDay)
	daysSince := (int(now.Weekday()) - int(target) + 7) % 7

	start := midnight(now.AddDate(0, 0, -daysSince))
	if now.Sub(start) < boundaryGuard {
		start = start.AddDate(0, 0, -7)
	}

	_, week := start.ISOWeek()
	return Window{Start: &start, Label: fmt.Sprintf("week %d", week)}
}

func resolveEpoch(ctx context.Context, now time.Time, epochs EpochSource) Window {
	if epochs == nil {
		return Window{Label: now.Format("2006-01-02")}
	}
	epoch, err := epochs.Current(ctx)
	if err != nil || epoch == nil {
		return Window{Label: now.Format("2006-01-02")}
	}
	return Window{Start: epoch.Start, Label: epoch.Label}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekday(name string) time.Weekday {
	switch strings.ToLower(name) {
	case "sunday":
		return time.Sunday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}
