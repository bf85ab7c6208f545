// Package graph builds the flat scheduling DAG from a hierarchical Project
// (spec.md §4.1). The WBS is presentation; this graph is what every
// scheduling algorithm downstream actually reads.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chronoplan/chronoplan/internal/domain"
)

// SchedulingGraph is a flat leaf DAG: every task in Tasks is a leaf, edges
// run predecessor -> successor, and TopoOrder is a single deterministic
// topological order (Kahn's algorithm, zero-in-degree ties broken by id).
type SchedulingGraph struct {
	Tasks       map[string]*domain.Task
	Successors  map[string][]string
	Predecessors map[string][]string
	TopoOrder   []string
}

// UnknownReferenceError reports a dependency naming a task that doesn't
// exist in the project.
type UnknownReferenceError struct{ Ref string }

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown task reference %q", e.Ref)
}

// NoLeavesError reports a container referenced as a dependency that has no
// leaf descendants to expand into.
type NoLeavesError struct{ ContainerID string }

func (e *NoLeavesError) Error() string {
	return fmt.Sprintf("container %q referenced as a dependency has no leaf descendants", e.ContainerID)
}

// CycleError reports a cycle in the resolved leaf graph; RemainingIDs lists
// the residual (still non-zero in-degree) task ids in sorted order, usable
// verbatim in error messages.
type CycleError struct{ RemainingIDs []string }

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected among tasks: %s", strings.Join(e.RemainingIDs, ", "))
}

// ContainerRegimeError reports a container that declared an explicit
// regime, which spec.md §4.3 forbids.
type ContainerRegimeError struct{ ContainerID string }

func (e *ContainerRegimeError) Error() string {
	return fmt.Sprintf("container %q may not declare a temporal regime", e.ContainerID)
}

// Build flattens p into a SchedulingGraph, resolving every dependency
// reference (leaf, container, or dotted path) to the union of leaf finish
// times it stands for, then topologically sorting the result.
func Build(p *domain.Project) (*SchedulingGraph, error) {
	byID := p.TaskIndex()
	childByName := make(map[string]map[string]string, len(byID))
	for _, t := range p.Tasks {
		if t.Parent == "" {
			continue
		}
		if childByName[t.Parent] == nil {
			childByName[t.Parent] = make(map[string]string)
		}
		childByName[t.Parent][t.Name] = t.ID
	}

	for _, t := range p.Tasks {
		if t.IsContainer() && t.Regime != nil {
			return nil, &ContainerRegimeError{ContainerID: t.ID}
		}
	}

	leafCache := make(map[string][]string)
	var leavesUnder func(id string) ([]string, error)
	leavesUnder = func(id string) ([]string, error) {
		if cached, ok := leafCache[id]; ok {
			return cached, nil
		}
		task, ok := byID[id]
		if !ok {
			return nil, &UnknownReferenceError{Ref: id}
		}
		var leaves []string
		if task.IsLeaf() {
			leaves = []string{task.ID}
		} else {
			for _, childID := range task.Children {
				childLeaves, err := leavesUnder(childID)
				if err != nil {
					return nil, err
				}
				leaves = append(leaves, childLeaves...)
			}
			if len(leaves) == 0 {
				return nil, &NoLeavesError{ContainerID: id}
			}
		}
		leafCache[id] = leaves
		return leaves, nil
	}

	resolveRef := func(ref string) (string, error) {
		segments := strings.Split(ref, ".")
		cur, ok := byID[segments[0]]
		if !ok {
			return "", &UnknownReferenceError{Ref: ref}
		}
		for _, seg := range segments[1:] {
			childID, ok := childByName[cur.ID][seg]
			if !ok {
				return "", &UnknownReferenceError{Ref: ref}
			}
			cur = byID[childID]
		}
		return cur.ID, nil
	}

	tasks := make(map[string]*domain.Task)
	successors := make(map[string][]string)
	predecessors := make(map[string][]string)

	for _, t := range p.Tasks {
		if t.IsLeaf() {
			tasks[t.ID] = t
			if _, ok := successors[t.ID]; !ok {
				successors[t.ID] = nil
			}
			if _, ok := predecessors[t.ID]; !ok {
				predecessors[t.ID] = nil
			}
		}
	}

	for _, t := range p.Tasks {
		if !t.IsLeaf() {
			continue
		}
		seen := make(map[string]bool)
		var preds []string
		for _, ref := range t.DependsOn {
			resolvedID, err := resolveRef(ref)
			if err != nil {
				return nil, err
			}
			leaves, err := leavesUnder(resolvedID)
			if err != nil {
				return nil, err
			}
			for _, leafID := range leaves {
				if !seen[leafID] {
					seen[leafID] = true
					preds = append(preds, leafID)
				}
			}
		}
		sort.Strings(preds)
		predecessors[t.ID] = preds
		for _, predID := range preds {
			successors[predID] = append(successors[predID], t.ID)
		}
	}
	for id, succ := range successors {
		sorted := append([]string(nil), succ...)
		sort.Strings(sorted)
		successors[id] = sorted
	}

	topo, err := topoSort(tasks, successors, predecessors)
	if err != nil {
		return nil, err
	}

	return &SchedulingGraph{
		Tasks:        tasks,
		Successors:   successors,
		Predecessors: predecessors,
		TopoOrder:    topo,
	}, nil
}

// topoSort runs Kahn's algorithm, breaking zero-in-degree ties by sorted
// task id so the result is reproducible across runs (spec.md §4.1).
func topoSort(tasks map[string]*domain.Task, successors, predecessors map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(tasks))
	for id := range tasks {
		inDegree[id] = len(predecessors[id])
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, succID := range successors[id] {
			inDegree[succID]--
			if inDegree[succID] == 0 {
				ready = append(ready, succID)
			}
		}
	}

	if len(order) != len(tasks) {
		var remaining []string
		for id, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, &CycleError{RemainingIDs: remaining}
	}
	return order, nil
}
