// Package leveling implements resource leveling over an already-scheduled
// project: shifting tasks later (never earlier) until no shared concrete
// resource is over-booked (spec.md §4.7). Both the standard serial
// heuristic and the hybrid cluster leveler live here.
package leveling

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chronoplan/chronoplan/internal/cpm"
	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/domain"
	"github.com/chronoplan/chronoplan/internal/graph"
)

// Strategy selects which leveling algorithm runs (spec.md §4.7).
type Strategy string

const (
	StrategyStandard Strategy = "standard"
	StrategyHybrid   Strategy = "hybrid"
)

// Result is one task's leveled schedule entry: its shifted ES/EF plus
// whether leveling moved it at all.
type Result struct {
	ES, EF  time.Time
	Delayed bool
}

// Run levels every leaf in g against its CPM results and returns one Result
// per leaf plus the leveling diagnostics (R013/L001/L002). When explain is
// true, Run also emits an INFO diagnostic per leveled task naming its
// slot-search trace length (spec.md §6 --explain).
func Run(g *graph.SchedulingGraph, p *domain.Project, cpmResults map[string]*cpm.Result, strategy Strategy, explain bool) (map[string]*Result, []diagnostics.Diagnostic, error) {
	demand := resourceDemand(g, p)
	var diags []diagnostics.Diagnostic

	results := make(map[string]*Result, len(g.Tasks))
	for id, r := range cpmResults {
		results[id] = &Result{ES: r.ES, EF: r.EF}
	}

	contended := make(map[string]bool)
	for resID, taskIDs := range demand.byResource {
		if len(taskIDs) > 1 {
			contended[resID] = true
		}
	}
	if len(contended) == 0 {
		diags = append(diags, demand.abstractDiags...)
		diagnostics.Sort(diags)
		return results, diags, nil
	}

	clusters := clusterTasks(demand, contended)

	switch strategy {
	case StrategyHybrid:
		clusterDiags := levelClustersConcurrently(clusters, demand, g, p, cpmResults, results, explain)
		diags = append(diags, clusterDiags...)
	default:
		var all []string
		for _, c := range clusters {
			all = append(all, c...)
		}
		sort.Strings(all)
		diags = append(diags, levelCluster(all, demand, g, p, cpmResults, results, explain)...)
	}

	diags = append(diags, demand.abstractDiags...)
	diagnostics.Sort(diags)
	return results, diags, nil
}

// resourceState is the per-project demand picture leveling needs, built
// once up front.
type resourceState struct {
	byResource    map[string][]string // resource id -> task ids demanding it
	byTask        map[string][]string // task id -> resource ids it demands
	capacity      map[string]float64  // resource id -> effective availability
	calendars     map[string]*domain.Calendar
	abstractDiags []diagnostics.Diagnostic
}

func resourceDemand(g *graph.SchedulingGraph, p *domain.Project) *resourceState {
	st := &resourceState{
		byResource: make(map[string][]string),
		byTask:     make(map[string][]string),
		capacity:   make(map[string]float64),
		calendars:  make(map[string]*domain.Calendar),
	}
	resIdx := p.ResourceIndex()
	hasAbstract := make(map[string]bool)

	for id, t := range g.Tasks {
		for _, a := range t.Assignments {
			if a.IsAbstract() {
				hasAbstract[id] = true
				continue
			}
			st.byResource[a.ResourceID] = append(st.byResource[a.ResourceID], id)
			st.byTask[id] = append(st.byTask[id], a.ResourceID)
			if _, ok := st.capacity[a.ResourceID]; !ok {
				res := resIdx[a.ResourceID]
				cap := 1.0
				cal := p.CalendarFor("")
				if res != nil {
					cap = res.EffectiveAvailability()
					if res.CalendarID != "" {
						if override := p.Calendars[res.CalendarID]; override != nil {
							cal = cal.Merge(override)
						}
					}
				}
				if cal == nil {
					cal = domain.DefaultCalendar(p.DefaultCalendar)
				}
				st.capacity[a.ResourceID] = cap
				st.calendars[a.ResourceID] = cal
			}
		}
	}
	for resID, taskIDs := range st.byResource {
		sort.Strings(taskIDs)
		st.byResource[resID] = taskIDs
	}

	for id := range hasAbstract {
		st.abstractDiags = append(st.abstractDiags, diagnostics.Diagnostic{
			Code: diagnostics.R013ApproximateLeveling, Severity: diagnostics.SeverityWarning,
			Stage: "leveling", TaskID: id,
			Message: "task carries an abstract assignment; leveling against it is approximate",
		})
	}
	return st
}

// clusterTasks groups every task with at least one contended resource into
// connected components (conflict clusters, spec.md §4.7): two tasks are in
// the same cluster iff they transitively share a contended resource.
func clusterTasks(demand *resourceState, contended map[string]bool) [][]string {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for resID, taskIDs := range demand.byResource {
		if !contended[resID] {
			continue
		}
		for _, id := range taskIDs {
			if _, ok := parent[id]; !ok {
				parent[id] = id
			}
		}
		for i := 1; i < len(taskIDs); i++ {
			union(taskIDs[0], taskIDs[i])
		}
	}

	groups := make(map[string][]string)
	for id := range parent {
		root := find(id)
		groups[root] = append(groups[root], id)
	}

	var clusters [][]string
	var roots []string
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	for _, root := range roots {
		members := groups[root]
		sort.Strings(members)
		clusters = append(clusters, members)
	}
	return clusters
}

// levelClustersConcurrently runs the standard heuristic over each cluster in
// its own goroutine (spec.md §5: clusters are resource-disjoint by
// construction, so no shared mutable state exists across workers), merging
// diagnostics in cluster order for determinism.
func levelClustersConcurrently(clusters [][]string, demand *resourceState, g *graph.SchedulingGraph, p *domain.Project, cpmResults map[string]*cpm.Result, results map[string]*Result, explain bool) []diagnostics.Diagnostic {
	perCluster := make([][]diagnostics.Diagnostic, len(clusters))
	var wg sync.WaitGroup
	for i, cluster := range clusters {
		wg.Add(1)
		go func(i int, cluster []string) {
			defer wg.Done()
			perCluster[i] = levelCluster(cluster, demand, g, p, cpmResults, results, explain)
		}(i, cluster)
	}
	wg.Wait()

	var diags []diagnostics.Diagnostic
	for _, cd := range perCluster {
		diags = append(diags, cd...)
	}
	return diags
}

// levelCluster applies the standard serial heuristic to one cluster of
// tasks: rank, then place each task at the earliest slot every resource it
// needs has room for its full duration (spec.md §4.7 steps 1-2). results must
// already hold an entry for every task in the cluster; levelCluster only
// overwrites those entries in place (the map itself is only read), so
// concurrent callers on disjoint clusters touch disjoint entries.
func levelCluster(taskIDs []string, demand *resourceState, g *graph.SchedulingGraph, p *domain.Project, cpmResults map[string]*cpm.Result, results map[string]*Result, explain bool) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic

	timelines := make(map[string]*timeline)
	for _, id := range taskIDs {
		for _, resID := range demand.byTask[id] {
			if _, ok := timelines[resID]; !ok {
				timelines[resID] = newTimeline(demand.calendars[resID], demand.capacity[resID])
			}
		}
	}

	ranked := make([]rankable, 0, len(taskIDs))
	for _, id := range taskIDs {
		r := cpmResults[id]
		ranked = append(ranked, rankable{ID: id, IsCritical: r.IsCritical, TotalSlack: r.TotalSlack, ES: r.ES})
	}
	canonicalOrder(ranked)

	for _, rk := range ranked {
		id := rk.ID
		t := g.Tasks[id]
		cpmRes := cpmResults[id]
		resIDs := demand.byTask[id]

		start := cpmRes.ES
		ceilingHit := false
		rounds := 0
		for round := 0; round < len(resIDs)+1; round++ {
			rounds++
			moved := false
			for _, resID := range resIDs {
				slot, hit := timelines[resID].findSlot(start, t.Duration)
				if hit {
					ceilingHit = true
				}
				if slot.After(start) {
					start = slot
					moved = true
				}
			}
			if !moved {
				break
			}
		}

		for _, resID := range resIDs {
			timelines[resID].bookSpan(start, t.Duration)
		}

		ef := spanFromFreshStart(demand.calendars, resIDs, t, start)
		delayed := start.After(cpmRes.ES)
		*results[id] = Result{ES: start, EF: ef, Delayed: delayed}

		if delayed {
			diags = append(diags, diagnostics.Diagnostic{
				Code: diagnostics.L001DelayedByLeveling, Severity: diagnostics.SeverityWarning,
				Stage: "leveling", TaskID: id,
				Message: fmt.Sprintf("task delayed by leveling from %s to %s", cpmRes.ES.Format("2006-01-02"), start.Format("2006-01-02")),
			})
		}
		if ceilingHit {
			diags = append(diags, diagnostics.Diagnostic{
				Code: diagnostics.L002SlotSearchLimitHit, Severity: diagnostics.SeverityWarning,
				Stage: "leveling", TaskID: id,
				Message: "slot search ceiling (2000 working days) reached; task left at last attempted slot",
			})
		}
		if explain {
			diags = append(diags, diagnostics.Diagnostic{
				Code: diagnostics.InfoLevelingTrace, Severity: diagnostics.SeverityInfo,
				Stage:   "leveling",
				TaskID:  id,
				Message: fmt.Sprintf("slot search settled after %d round(s) across %d resource(s)", rounds, len(resIDs)),
				Data:    map[string]any{"rounds": rounds, "resources": len(resIDs)},
			})
		}
	}
	return diags
}

// spanFromFreshStart computes the leveled finish date: a leveled start is
// always a fresh assignment (never inherited from a predecessor boundary),
// so its duration counts the start day as day one, mirroring the forward
// pass's own fresh-start convention (see spanEnd in internal/cpm).
func spanFromFreshStart(calendars map[string]*domain.Calendar, resIDs []string, t *domain.Task, start time.Time) time.Time {
	if t.Duration <= 0 {
		return start
	}
	var cal *domain.Calendar
	if len(resIDs) > 0 {
		cal = calendars[resIDs[0]]
	}
	if cal == nil {
		cal = domain.DefaultCalendar("")
	}
	return cpm.Advance(cal, t.ResolvedRegime(), start, t.Duration-1)
}
