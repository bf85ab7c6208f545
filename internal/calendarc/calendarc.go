// Package calendarc implements all date shifting and interval arithmetic
// over a domain.Calendar (spec.md §4.2). Every function here is total and
// deterministic: none fails for a valid date, and zero-length intervals
// neither advance nor retreat.
package calendarc

import (
	"time"

	"github.com/chronoplan/chronoplan/internal/domain"
)

func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func key(d time.Time) string {
	return truncate(d).Format("2006-01-02")
}

// IsWorkingDay reports whether d is a working day under cal: an exception
// entry wins outright; otherwise the weekly pattern decides.
func IsWorkingDay(cal *domain.Calendar, d time.Time) bool {
	if cal == nil {
		cal = domain.DefaultCalendar("")
	}
	if ok, has := cal.Exceptions[key(d)]; has {
		return ok
	}
	rule, has := cal.Week[d.Weekday()]
	return has && rule.Hours > 0
}

// RoundFloorWork returns the smallest working day >= d.
func RoundFloorWork(cal *domain.Calendar, d time.Time) time.Time {
	cur := truncate(d)
	for !IsWorkingDay(cal, cur) {
		cur = cur.AddDate(0, 0, 1)
	}
	return cur
}

// RoundCeilWork returns the largest working day <= d.
func RoundCeilWork(cal *domain.Calendar, d time.Time) time.Time {
	cur := truncate(d)
	for !IsWorkingDay(cal, cur) {
		cur = cur.AddDate(0, 0, -1)
	}
	return cur
}

// AddWorkingDays advances from by n working days, skipping non-working
// days. Negative n retreats. n == 0 returns from unchanged (truncated to
// midnight), even if from itself isn't a working day — callers that need a
// working anchor call RoundFloorWork/RoundCeilWork first.
func AddWorkingDays(cal *domain.Calendar, from time.Time, n int) time.Time {
	cur := truncate(from)
	if n == 0 {
		return cur
	}
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		cur = cur.AddDate(0, 0, step)
		if IsWorkingDay(cal, cur) {
			n--
		}
	}
	return cur
}

// SubtractWorkingDays retreats to by n working days.
func SubtractWorkingDays(cal *domain.Calendar, to time.Time, n int) time.Time {
	return AddWorkingDays(cal, to, -n)
}

// WorkingDaysBetween returns the signed count of working days from a to b:
// positive when b is after a. It counts the working days from the earlier
// date (inclusive) to the later date (exclusive), so
// WorkingDaysBetween(a, a) == 0; when a is a working day, advancing a by
// that count under AddWorkingDays reaches RoundFloorWork(b) in either
// direction.
func WorkingDaysBetween(cal *domain.Calendar, a, b time.Time) int {
	a, b = truncate(a), truncate(b)
	if a.Equal(b) {
		return 0
	}
	sign := 1
	if b.Before(a) {
		a, b = b, a
		sign = -1
	}
	count := 0
	for cur := a; cur.Before(b); cur = cur.AddDate(0, 0, 1) {
		if IsWorkingDay(cal, cur) {
			count++
		}
	}
	return sign * count
}

// AddCalendarDays advances from by n plain calendar days.
func AddCalendarDays(from time.Time, n int) time.Time {
	return truncate(from).AddDate(0, 0, n)
}

// CalendarDaysBetween returns the signed count of calendar days from a to b.
func CalendarDaysBetween(a, b time.Time) int {
	a, b = truncate(a), truncate(b)
	return int(b.Sub(a).Hours() / 24)
}
