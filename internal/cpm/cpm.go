// Package cpm implements the Critical Path Method engine: progress-aware
// forward/backward passes, calendar-aware date arithmetic, and the
// critical path (spec.md §4.4).
package cpm

import (
	"fmt"
	"math"
	"time"

	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/domain"
	"github.com/chronoplan/chronoplan/internal/graph"
)

// remainingTolerance is the configurable constant the Open Question in
// spec.md §9 asks for: the default is zero, so any difference between an
// explicit `remaining` and the linearly-derived one triggers P005. Widening
// it is a one-line change for callers that find the strict default noisy.
const remainingTolerance = 0

// Result is one leaf's complete CPM output (spec.md §3 Schedule entry,
// minus the fields rollup fills in for containers).
type Result struct {
	ES, EF time.Time
	LS, LF time.Time

	TotalSlack int
	FreeSlack  int
	IsCritical bool

	ForecastStart, ForecastFinish time.Time
	RemainingDuration             int
}

// Options configures one CPM run.
type Options struct {
	// StatusDate, if set, overrides project.StatusDate and today's date
	// (highest-wins resolution, spec.md §4.4).
	StatusDate *time.Time
	Explain    bool
}

func resolveStatusDate(p *domain.Project, opts Options) time.Time {
	if opts.StatusDate != nil {
		return *opts.StatusDate
	}
	if p.StatusDate != nil {
		return *p.StatusDate
	}
	return time.Now()
}

func calendarFor(p *domain.Project, t *domain.Task) *domain.Calendar {
	cal := p.CalendarFor("")
	if cal == nil {
		cal = domain.DefaultCalendar(p.DefaultCalendar)
	}
	for _, a := range t.Assignments {
		if a.ResourceID == "" {
			continue
		}
		res, ok := p.ResourceIndex()[a.ResourceID]
		if ok && res.CalendarID != "" {
			if override := p.Calendars[res.CalendarID]; override != nil {
				return cal.Merge(override)
			}
		}
	}
	return cal
}

// Run performs the forward and backward passes over the scheduling graph
// and returns one Result per leaf, plus the diagnostics the passes emitted.
func Run(g *graph.SchedulingGraph, p *domain.Project, opts Options) (map[string]*Result, []diagnostics.Diagnostic, error) {
	statusDate := resolveStatusDate(p, opts)
	results := make(map[string]*Result, len(g.Tasks))
	var diags []diagnostics.Diagnostic

	// --- Forward pass ---
	for _, id := range g.TopoOrder {
		t := g.Tasks[id]
		regime := t.ResolvedRegime()
		cal := calendarFor(p, t)
		if opts.Explain {
			diags = append(diags, diagnostics.Diagnostic{
				Code: diagnostics.InfoRegimeResolved, Severity: diagnostics.SeverityInfo,
				Stage: "cpm", TaskID: id, Message: fmt.Sprintf("resolved regime: %s", regime),
			})
		}

		r := &Result{}
		switch {
		case t.IsCompleted():
			r.ES, r.EF = *t.ActualStart, *t.ActualFinish
			r.ForecastStart, r.ForecastFinish = *t.ActualStart, *t.ActualFinish
			r.RemainingDuration = 0

		case t.IsInProgress():
			remaining, rd := deriveRemaining(t)
			diags = append(diags, rd...)
			r.ES = *t.ActualStart
			r.ForecastStart = *t.ActualStart
			r.EF = Advance(cal, regime, statusDate, remaining)
			r.ForecastFinish = r.EF
			r.RemainingDuration = remaining

		default:
			// es is either the task's own fresh start (project start, or an
			// explicit constraint that pushes it past every predecessor) or
			// a date inherited verbatim from a predecessor's finish. The
			// distinction matters for how duration is spent from es: a
			// fresh start consumes its own first working day as day one of
			// duration; a predecessor-inherited boundary does not, since
			// that calendar day already belongs to the predecessor's own
			// last working day (spec.md S1: b.es equals a.ef exactly, yet
			// b's 3-day duration still lands on b.ef=2026-01-12, three full
			// working days *after* that shared boundary).
			es := p.StartDate
			fresh := true
			for _, predID := range g.Predecessors[id] {
				predEF := results[predID].EF
				if predEF.After(es) {
					es = predEF
					fresh = false
				}
			}
			// Dependencies transfer dates, not regimes (spec.md §4.3): a
			// work-regime successor of an event-regime predecessor still
			// rounds onto its own calendar's next working day.
			es = RoundFloorConstraint(cal, regime, es)

			es, cdiags := applyStartConstraints(t, regime, cal, es)
			diags = append(diags, cdiags...)
			if c, ok := t.ConstraintOf(domain.ConstraintStartNoEarlierThan); ok {
				if RoundFloorConstraint(cal, regime, c.Date).Equal(es) {
					fresh = true
				}
			}

			ef := spanEnd(cal, regime, es, t.Duration, fresh)
			ef, fdiags := applyFinishConstraints(t, regime, cal, es, ef)
			diags = append(diags, fdiags...)

			r.ES, r.EF = es, ef
			r.ForecastStart, r.ForecastFinish = es, ef
			r.RemainingDuration = t.Duration
		}
		results[id] = r
	}

	Backward(g, p, results)

	diagnostics.Sort(diags)
	return results, diags, nil
}

// Backward runs the backward pass (LS/LF), slack, and critical-flag
// determination over results' already-set ES/EF/ForecastFinish. Run calls
// this once after the forward pass; callers that move ES/EF afterwards —
// resource leveling shifts tasks later, never earlier — must call Backward
// again before treating the schedule as final (spec.md §4.7 step 3: "after
// all tasks are placed, re-run the backward pass").
func Backward(g *graph.SchedulingGraph, p *domain.Project, results map[string]*Result) {
	var projectEnd time.Time
	for _, r := range results {
		if r.ForecastFinish.After(projectEnd) {
			projectEnd = r.ForecastFinish
		}
	}

	for i := len(g.TopoOrder) - 1; i >= 0; i-- {
		id := g.TopoOrder[i]
		t := g.Tasks[id]
		r := results[id]
		regime := t.ResolvedRegime()
		cal := calendarFor(p, t)

		if t.IsCompleted() {
			r.LS, r.LF = r.ES, r.EF
			continue
		}

		var lf time.Time
		if succs := g.Successors[id]; len(succs) > 0 {
			lf = results[succs[0]].LS
			for _, succID := range succs[1:] {
				if succLS := results[succID].LS; succLS.Before(lf) {
					lf = succLS
				}
			}
		} else {
			lf = projectEnd
		}

		// ls is defined, not merely derived: spec.md §4.4 states total_slack
		// equals working_days_between(es,ls) *and* working_days_between(ef,lf).
		// Computing ls as es shifted by the ef→lf offset makes that equality
		// hold by construction regardless of how es/ef themselves relate
		// (fresh start vs. inherited boundary — see spanEnd in regime.go).
		offset := WorkingDaysBetween(cal, r.EF, lf)
		ls := Advance(cal, regime, r.ES, offset)
		r.LS, r.LF = ls, lf
	}

	for _, id := range g.TopoOrder {
		t := g.Tasks[id]
		cal := calendarFor(p, t)
		r := results[id]

		r.TotalSlack = WorkingDaysBetween(cal, r.ES, r.LS)
		if r.TotalSlack < 0 {
			panic(fmt.Sprintf("cpm: invariant violated: task %s has negative total slack %d (es=%s ls=%s)",
				id, r.TotalSlack, r.ES, r.LS))
		}

		if succs := g.Successors[id]; len(succs) == 0 {
			r.FreeSlack = r.TotalSlack
		} else {
			minSuccES := results[succs[0]].ES
			for _, succID := range succs[1:] {
				if succES := results[succID].ES; succES.Before(minSuccES) {
					minSuccES = succES
				}
			}
			r.FreeSlack = WorkingDaysBetween(cal, r.EF, minSuccES)
		}

		r.IsCritical = r.TotalSlack == 0
	}
}

func deriveRemaining(t *domain.Task) (int, []diagnostics.Diagnostic) {
	linear := int(math.Round(float64(t.Duration) * (1 - t.Complete/100)))
	if t.Remaining == nil {
		return linear, nil
	}
	explicit := *t.Remaining
	if math.Abs(float64(explicit-linear)) > remainingTolerance {
		return explicit, []diagnostics.Diagnostic{{
			Code: diagnostics.P005RemainingConflict, Severity: diagnostics.SeverityHint,
			Stage: "cpm", TaskID: t.ID,
			Message: fmt.Sprintf("explicit remaining (%d) disagrees with derived remaining (%d); using explicit", explicit, linear),
		}}
	}
	return explicit, nil
}

func applyStartConstraints(t *domain.Task, regime domain.Regime, cal *domain.Calendar, es time.Time) (time.Time, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic
	if c, ok := t.ConstraintOf(domain.ConstraintStartNoEarlierThan); ok {
		floor := RoundFloorConstraint(cal, regime, c.Date)
		if floor.After(es) {
			es = floor
		}
	}
	if c, ok := t.ConstraintOf(domain.ConstraintStartNoLaterThan); ok {
		ceil := RoundCeilConstraint(cal, regime, c.Date)
		if es.After(ceil) {
			diags = append(diags, diagnostics.Diagnostic{
				Code: diagnostics.C001ConstraintExceeded, Severity: diagnostics.SeverityWarning,
				Stage: "cpm", TaskID: t.ID,
				Message: fmt.Sprintf("earliest start %s exceeds start_no_later_than %s", es.Format("2006-01-02"), ceil.Format("2006-01-02")),
			})
		}
	}
	return es, diags
}

func applyFinishConstraints(t *domain.Task, regime domain.Regime, cal *domain.Calendar, es, ef time.Time) (time.Time, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic
	if c, ok := t.ConstraintOf(domain.ConstraintFinishNoEarlierThan); ok {
		floor := RoundFloorConstraint(cal, regime, c.Date)
		if floor.After(ef) {
			ef = floor
		}
	}
	if c, ok := t.ConstraintOf(domain.ConstraintFinishNoLaterThan); ok {
		ceil := RoundCeilConstraint(cal, regime, c.Date)
		if ef.After(ceil) {
			diags = append(diags, diagnostics.Diagnostic{
				Code: diagnostics.C001ConstraintExceeded, Severity: diagnostics.SeverityWarning,
				Stage: "cpm", TaskID: t.ID,
				Message: fmt.Sprintf("forecast finish %s exceeds finish_no_later_than %s", ef.Format("2006-01-02"), ceil.Format("2006-01-02")),
			})
		}
	}
	return ef, diags
}
