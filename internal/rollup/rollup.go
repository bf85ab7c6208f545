// Package rollup derives container attributes from their leaf descendants'
// CPM results by post-order traversal of the WBS (spec.md §4.5). Containers
// never receive independent dates from CPM; everything here is aggregation.
package rollup

import (
	"fmt"
	"time"

	"github.com/chronoplan/chronoplan/internal/cpm"
	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/domain"
)

// completeDriftThreshold is the difference, in percentage points of
// complete (0..100), beyond which an explicit container
// complete and its effort-weighted derivation are considered to disagree
// (spec.md §4.5: "differ by more than 10%").
const completeDriftThreshold = 10.0

// Result is one container's rolled-up schedule entry.
type Result struct {
	ForecastStart, ForecastFinish time.Time
	Effort                        float64
	IsCritical                    bool
	CompleteDerived               float64
}

// Run computes roll-ups for every container in p, given the leaf results
// CPM already produced. Containers are visited in an order that guarantees
// every child (leaf or container) is resolved before its parent.
func Run(p *domain.Project, leafResults map[string]*cpm.Result) (map[string]*Result, []diagnostics.Diagnostic, error) {
	idx := p.TaskIndex()
	results := make(map[string]*Result)
	var diags []diagnostics.Diagnostic

	order, err := postOrderContainers(p)
	if err != nil {
		return nil, nil, err
	}

	for _, id := range order {
		t := idx[id]
		agg, err := aggregate(t, idx, leafResults, results)
		if err != nil {
			return nil, nil, fmt.Errorf("rollup: container %s: %w", id, err)
		}

		if t.CompleteExplicit {
			if drift := abs(t.Complete - agg.CompleteDerived); drift > completeDriftThreshold {
				diags = append(diags, diagnostics.Diagnostic{
					Code: diagnostics.P006ContainerOverride, Severity: diagnostics.SeverityHint,
					Stage: "rollup", TaskID: id,
					Message: fmt.Sprintf("explicit complete %.1f differs from derived %.1f by more than %.0f%%", t.Complete, agg.CompleteDerived, completeDriftThreshold),
				})
			}
		}

		results[id] = agg
	}

	diagnostics.Sort(diags)
	return results, diags, nil
}

// aggregate computes one container's Result from its direct children, each
// of which is either a leaf (read from leafResults) or an already-resolved
// container (read from results, since postOrderContainers guarantees that).
func aggregate(t *domain.Task, idx map[string]*domain.Task, leafResults map[string]*cpm.Result, containerResults map[string]*Result) (*Result, error) {
	if len(t.Children) == 0 {
		return nil, fmt.Errorf("container %s has no children", t.ID)
	}

	agg := &Result{}
	var totalWeightedComplete, totalEffort, simpleCompleteSum float64
	first := true

	for _, childID := range t.Children {
		child, ok := idx[childID]
		if !ok {
			return nil, fmt.Errorf("unknown child reference %q", childID)
		}

		var start, finish time.Time
		var effort float64
		var isCritical bool
		var complete float64

		if child.IsLeaf() {
			lr, ok := leafResults[childID]
			if !ok {
				return nil, fmt.Errorf("no CPM result for leaf %q", childID)
			}
			start, finish = lr.ForecastStart, lr.ForecastFinish
			effort = child.Effort
			isCritical = lr.IsCritical
			complete = child.Complete
		} else {
			cr, ok := containerResults[childID]
			if !ok {
				return nil, fmt.Errorf("container %q resolved after its parent %q (postOrderContainers bug)", childID, t.ID)
			}
			start, finish = cr.ForecastStart, cr.ForecastFinish
			effort = cr.Effort
			isCritical = cr.IsCritical
			complete = cr.CompleteDerived
		}

		if first || start.Before(agg.ForecastStart) {
			agg.ForecastStart = start
		}
		if first || finish.After(agg.ForecastFinish) {
			agg.ForecastFinish = finish
		}
		first = false

		agg.Effort += effort
		agg.IsCritical = agg.IsCritical || isCritical
		totalWeightedComplete += complete * effort
		totalEffort += effort
		simpleCompleteSum += complete
	}

	if totalEffort > 0 {
		agg.CompleteDerived = totalWeightedComplete / totalEffort
	} else {
		agg.CompleteDerived = simpleCompleteSum / float64(len(t.Children))
	}
	return agg, nil
}

// postOrderContainers returns every container task id in an order where a
// container always follows all of its descendant containers — a leaf-first,
// parent-last visitation order over the WBS tree.
func postOrderContainers(p *domain.Project) ([]string, error) {
	idx := p.TaskIndex()
	var order []string
	visited := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if visited[id] {
			return nil
		}
		t, ok := idx[id]
		if !ok {
			return fmt.Errorf("unknown task %q", id)
		}
		if t.IsLeaf() {
			return nil
		}
		for _, childID := range t.Children {
			if err := visit(childID); err != nil {
				return err
			}
		}
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for _, t := range p.Tasks {
		if err := visit(t.ID); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
