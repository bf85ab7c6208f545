package leveling

import (
	"time"

	"github.com/chronoplan/chronoplan/internal/calendarc"
	"github.com/chronoplan/chronoplan/internal/domain"
)

// searchCeiling bounds the slot search at 2000 working days (spec.md §4.7):
// past this many probed days the engine gives up and emits L002 rather than
// hang or panic.
const searchCeiling = 2000

// timeline is one resource's day-keyed booked-hours ledger: an ordered
// interval structure in spirit (spec.md §4.7 "stored as an ordered interval
// structure keyed by day"), implemented here as a sparse map since most days
// across a multi-year project carry no booking at all.
//
// A task assignment occupies the resource for the whole of every working
// day it's active, so the demand one assignment places on a day always
// equals that day's own effective capacity (spec.md §4.7: effective
// capacity = calendar_hours(day) × availability) — a second assignment on
// the same day then always overflows it, regardless of the resource's
// absolute availability fraction.
type timeline struct {
	cal          *domain.Calendar
	availability float64 // resource.EffectiveAvailability(), in (0,1]
	booked       map[string]float64
}

func newTimeline(cal *domain.Calendar, availability float64) *timeline {
	return &timeline{cal: cal, availability: availability, booked: make(map[string]float64)}
}

func dayKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// capacityOn returns d's effective capacity: its calendar hours scaled by
// the resource's availability (spec.md §4.7).
func (tl *timeline) capacityOn(d time.Time) float64 {
	return tl.cal.Week[d.Weekday()].Hours * tl.availability
}

func (tl *timeline) hasCapacity(d time.Time) bool {
	return tl.booked[dayKey(d)] <= 1e-9
}

func (tl *timeline) book(d time.Time) {
	tl.booked[dayKey(d)] += tl.capacityOn(d)
}

// findSlot returns the earliest working day on/after from at which the
// resource has room for a full-day booking on every one of
// durationWorkDays consecutive working days. When a blocked day is found
// mid-window, the search restarts at that exact day — because the inner
// capacity scan below walks the whole contiguous blocked run in one pass,
// this has the effect described in spec.md §4.7: "when a day is blocked,
// the algorithm skips to the end of the blocked run" — without a separate
// interval-boundary index.
func (tl *timeline) findSlot(from time.Time, durationWorkDays int) (time.Time, bool) {
	day := calendarc.RoundFloorWork(tl.cal, from)
	attempts := 0

	for attempts < searchCeiling {
		for !tl.hasCapacity(day) {
			day = calendarc.AddWorkingDays(tl.cal, day, 1)
			attempts++
			if attempts >= searchCeiling {
				return day, true
			}
		}

		ok := true
		cur := day
		for i := 0; i < durationWorkDays; i++ {
			if !tl.hasCapacity(cur) {
				ok = false
				day = cur
				break
			}
			cur = calendarc.AddWorkingDays(tl.cal, cur, 1)
		}
		if ok {
			return day, false
		}
		attempts++
	}
	return day, true
}

// bookSpan books every working day in the durationWorkDays-long window
// starting at start.
func (tl *timeline) bookSpan(start time.Time, durationWorkDays int) {
	cur := start
	for i := 0; i < durationWorkDays; i++ {
		tl.book(cur)
		cur = calendarc.AddWorkingDays(tl.cal, cur, 1)
	}
}
