package cpm

import (
	"time"

	"github.com/chronoplan/chronoplan/internal/calendarc"
	"github.com/chronoplan/chronoplan/internal/domain"
)

// Advance moves a date forward (or back, for negative n) by n units of the
// regime's time flow: working days for RegimeWork, plain calendar days for
// RegimeEvent and RegimeDeadline (spec.md §4.3).
func Advance(cal *domain.Calendar, regime domain.Regime, from time.Time, n int) time.Time {
	if regime == domain.RegimeWork {
		return calendarc.AddWorkingDays(cal, from, n)
	}
	return calendarc.AddCalendarDays(from, n)
}

// RoundFloorConstraint rounds d the way a "no earlier than" (floor)
// constraint rounds under regime: forward to the next working day for
// RegimeWork, untouched for event/deadline regimes (spec.md §4.3: "exact
// dates, no rounding").
func RoundFloorConstraint(cal *domain.Calendar, regime domain.Regime, d time.Time) time.Time {
	if regime == domain.RegimeWork {
		return calendarc.RoundFloorWork(cal, d)
	}
	return d
}

// RoundCeilConstraint rounds d the way a "no later than" (ceiling)
// constraint rounds under regime: back to the previous working day for
// RegimeWork, untouched otherwise.
func RoundCeilConstraint(cal *domain.Calendar, regime domain.Regime, d time.Time) time.Time {
	if regime == domain.RegimeWork {
		return calendarc.RoundCeilWork(cal, d)
	}
	return d
}

// spanEnd computes where a duration-long span lands, counting from start.
// A fresh span treats start as its own first day (duration 1 leaves it
// unmoved); an inherited span treats start as a boundary already spent by
// whatever produced it, so the full duration is added after it. See the
// forward pass in cpm.go for why this distinction exists.
func spanEnd(cal *domain.Calendar, regime domain.Regime, start time.Time, duration int, fresh bool) time.Time {
	if duration <= 0 {
		return start
	}
	if fresh {
		return Advance(cal, regime, start, duration-1)
	}
	return Advance(cal, regime, start, duration)
}

// WorkingDaysBetween measures slack the way spec.md §4.4 defines it:
// always in working days of the governing calendar, regardless of either
// endpoint task's regime (an event-regime milestone still has a slack
// figure relative to the calendar it's plotted against).
func WorkingDaysBetween(cal *domain.Calendar, a, b time.Time) int {
	return calendarc.WorkingDaysBetween(cal, a, b)
}
