// Package pipeline wires the scheduling stages — validation, graph, resource
// model, CPM, (optional) leveling, rollup, cost — in that order into the single entry point spec.md §5 describes:
// "one pass through a fixed stage order, no stage re-entrant." It is the
// only place outside cmd/chronoplan that decides stage order and reads
// cross-stage options.
package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/chronoplan/chronoplan/internal/cpm"
	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/domain"
	"github.com/chronoplan/chronoplan/internal/graph"
	"github.com/chronoplan/chronoplan/internal/leveling"
	"github.com/chronoplan/chronoplan/internal/resourcemodel"
	"github.com/chronoplan/chronoplan/internal/rollup"
)

// Options configures one scheduling run. The CLI's only job is to populate
// this struct from flags (spec.md §6); nothing here is read from the
// environment or a config file by the pipeline itself.
type Options struct {
	// AsOf overrides project.StatusDate and today's date (highest-wins
	// resolution, spec.md §4.4).
	AsOf *time.Time

	// Strict escalates diagnostics per diagnostics.Escalate before they're
	// returned (spec.md §7).
	Strict bool

	// Leveling selects which leveling pass runs, if any. The empty string
	// skips leveling entirely and returns CPM dates unleveled.
	Leveling leveling.Strategy

	// Explain turns on the INFO-severity regime/leveling trace diagnostics
	// (supplemented feature, SPEC_FULL.md).
	Explain bool
}

// Run executes the full scheduling pipeline and returns the resulting
// Schedule plus every diagnostic the stages emitted (already sorted and
// strict-escalated). A non-nil error means a stage failed structurally and
// no Schedule was produced (spec.md §7).
func Run(p *domain.Project, opts Options, obs Observer) (*domain.Schedule, []diagnostics.Diagnostic, error) {
	if obs == nil {
		obs = NoopObserver{}
	}
	var diags []diagnostics.Diagnostic

	if err := runStage(obs, "validate", func() error {
		return domain.ValidateProject(p)
	}); err != nil {
		return nil, nil, fmt.Errorf("pipeline: validate: %w", err)
	}

	var g *graph.SchedulingGraph
	if err := runStage(obs, "graph", func() error {
		built, err := graph.Build(p)
		g = built
		return err
	}); err != nil {
		return nil, nil, fmt.Errorf("pipeline: graph: %w", err)
	}

	var reg *resourcemodel.Registry
	if err := runStage(obs, "resourcemodel", func() error {
		built, err := resourcemodel.Build(p)
		reg = built
		return err
	}); err != nil {
		return nil, nil, fmt.Errorf("pipeline: resourcemodel: %w", err)
	}

	var cpmResults map[string]*cpm.Result
	if err := runStage(obs, "cpm", func() error {
		results, cdiags, err := cpm.Run(g, p, cpm.Options{StatusDate: opts.AsOf, Explain: opts.Explain})
		cpmResults = results
		diags = append(diags, cdiags...)
		return err
	}); err != nil {
		return nil, nil, fmt.Errorf("pipeline: cpm: %w", err)
	}

	finalLeaf := cpmResults
	if opts.Leveling != "" {
		var levResults map[string]*leveling.Result
		if err := runStage(obs, "leveling", func() error {
			results, ldiags, err := leveling.Run(g, p, cpmResults, opts.Leveling, opts.Explain)
			levResults = results
			diags = append(diags, ldiags...)
			return err
		}); err != nil {
			return nil, nil, fmt.Errorf("pipeline: leveling: %w", err)
		}
		finalLeaf = mergeLeveled(g, p, cpmResults, levResults)
	}

	var rollupResults map[string]*rollup.Result
	if err := runStage(obs, "rollup", func() error {
		results, rdiags, err := rollup.Run(p, finalLeaf)
		rollupResults = results
		diags = append(diags, rdiags...)
		return err
	}); err != nil {
		return nil, nil, fmt.Errorf("pipeline: rollup: %w", err)
	}

	var costDiags []diagnostics.Diagnostic
	if err := runStage(obs, "cost", func() error {
		for _, t := range p.Tasks {
			if !t.IsLeaf() || len(t.Assignments) == 0 {
				continue
			}
			_, tdiags, err := reg.Cost(t, p.CostPolicy, p.AbstractWarningThreshold)
			if err != nil {
				return err
			}
			costDiags = append(costDiags, tdiags...)
		}
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("pipeline: cost: %w", err)
	}
	diags = append(diags, costDiags...)

	schedule := assembleSchedule(p, g, finalLeaf, rollupResults)

	diags = diagnostics.Escalate(diags, opts.Strict)
	diagnostics.Sort(diags)
	return schedule, diags, nil
}

// mergeLeveled overlays leveled ES/EF onto the CPM results for tasks
// leveling actually touched, then re-runs the backward pass over the
// overlaid results: leveling only ever moves a task later, but LS/LF/slack/
// critical are derived from ES/EF, so they go stale the moment leveling
// changes ES/EF out from under them (spec.md §4.7 step 3: "after all tasks
// are placed, re-run CPM's backward pass... and emit the final schedule").
func mergeLeveled(g *graph.SchedulingGraph, p *domain.Project, cpmResults map[string]*cpm.Result, levResults map[string]*leveling.Result) map[string]*cpm.Result {
	merged := make(map[string]*cpm.Result, len(cpmResults))
	for id, r := range cpmResults {
		cr := *r
		if lr, ok := levResults[id]; ok {
			cr.ES, cr.EF = lr.ES, lr.EF
			cr.ForecastStart, cr.ForecastFinish = lr.ES, lr.EF
		}
		merged[id] = &cr
	}
	cpm.Backward(g, p, merged)
	return merged
}

func assembleSchedule(p *domain.Project, g *graph.SchedulingGraph, leafResults map[string]*cpm.Result, rollupResults map[string]*rollup.Result) *domain.Schedule {
	tasks := make(map[string]*domain.TaskSchedule, len(p.Tasks))
	var projectEnd time.Time
	var criticalPath, criticalContainers []string

	for _, id := range g.TopoOrder {
		if r := leafResults[id]; r != nil && r.IsCritical {
			criticalPath = append(criticalPath, id)
		}
	}

	for id, r := range leafResults {
		tasks[id] = &domain.TaskSchedule{
			TaskID: id,
			ES: r.ES, EF: r.EF, LS: r.LS, LF: r.LF,
			TotalSlack: r.TotalSlack, FreeSlack: r.FreeSlack,
			IsCritical: r.IsCritical,
			ForecastStart: r.ForecastStart, ForecastFinish: r.ForecastFinish,
			RemainingDuration: r.RemainingDuration,
		}
		if r.ForecastFinish.After(projectEnd) {
			projectEnd = r.ForecastFinish
		}
	}

	for id, rr := range rollupResults {
		tasks[id] = &domain.TaskSchedule{
			TaskID: id,
			ForecastStart: rr.ForecastStart, ForecastFinish: rr.ForecastFinish,
			IsCritical: rr.IsCritical, CompleteDerived: rr.CompleteDerived,
		}
		if t, ok := p.TaskIndex()[id]; ok {
			tasks[id].Complete = t.Complete
		}
		if rr.IsCritical {
			criticalContainers = append(criticalContainers, id)
		}
		if rr.ForecastFinish.After(projectEnd) {
			projectEnd = rr.ForecastFinish
		}
	}

	sort.Strings(criticalContainers)
	criticalPath = append(criticalPath, criticalContainers...)

	return &domain.Schedule{
		Tasks:        tasks,
		CriticalPath: criticalPath,
		ProjectStart: p.StartDate,
		ProjectEnd:   projectEnd,
	}
}
