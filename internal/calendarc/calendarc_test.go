package calendarc

import (
	"testing"
	"time"

	"github.com/chronoplan/chronoplan/internal/domain"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddWorkingDays_SkipsWeekend(t *testing.T) {
	cal := domain.DefaultCalendar("std")
	// 2026-01-01 is a Thursday; +5 working days lands on 2026-01-08 (Thu).
	got := AddWorkingDays(cal, date(2026, 1, 1), 5)
	assert.Equal(t, date(2026, 1, 8), got)
}

func TestAddWorkingDays_ZeroIsNoOp(t *testing.T) {
	cal := domain.DefaultCalendar("std")
	got := AddWorkingDays(cal, date(2026, 1, 1), 0)
	assert.Equal(t, date(2026, 1, 1), got)
}

func TestIsWorkingDay_ExceptionOverridesWeeklyPattern(t *testing.T) {
	cal := domain.DefaultCalendar("std")
	cal.Exceptions["2026-01-01"] = false // holiday on a Thursday
	cal.Exceptions["2026-01-03"] = true  // mandated Saturday workday
	assert.False(t, IsWorkingDay(cal, date(2026, 1, 1)))
	assert.True(t, IsWorkingDay(cal, date(2026, 1, 3)))
}

func TestRoundFloorCeilWork(t *testing.T) {
	cal := domain.DefaultCalendar("std")
	sunday := date(2026, 1, 4)
	assert.Equal(t, date(2026, 1, 5), RoundFloorWork(cal, sunday))
	assert.Equal(t, date(2026, 1, 2), RoundCeilWork(cal, sunday))
}

func TestWorkingDaysBetween_SignedAndSymmetric(t *testing.T) {
	cal := domain.DefaultCalendar("std")
	a, b := date(2026, 1, 1), date(2026, 1, 8)
	assert.Equal(t, 5, WorkingDaysBetween(cal, a, b))
	assert.Equal(t, -5, WorkingDaysBetween(cal, b, a))
	assert.Equal(t, 0, WorkingDaysBetween(cal, a, a))
}

func TestCalendarDaysBetween(t *testing.T) {
	assert.Equal(t, 7, CalendarDaysBetween(date(2026, 1, 1), date(2026, 1, 8)))
}

func TestMerge_ExceptionsCompose(t *testing.T) {
	base := domain.DefaultCalendar("std")
	base.Exceptions["2026-01-01"] = false
	override := &domain.Calendar{Exceptions: map[string]bool{"2026-01-03": true}}
	merged := base.Merge(override)
	assert.False(t, IsWorkingDay(merged, date(2026, 1, 1)))
	assert.True(t, IsWorkingDay(merged, date(2026, 1, 3)))
}
