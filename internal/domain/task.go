package domain

import "time"

// Constraint pins one of a task's dates relative to a fixed calendar date.
type Constraint struct {
	Kind ConstraintKind
	Date time.Time
}

// Assignment is one resource or profile demand on a task. Exactly one of
// ProfileID/ResourceID is set; Quantity only applies to profile assignments
// (number of interchangeable abstract units requested).
type Assignment struct {
	ProfileID  string
	ResourceID string
	Quantity   int
}

func (a Assignment) IsAbstract() bool { return a.ProfileID != "" }

// Task is a WBS node: a container (Children non-empty, no own duration) or a
// leaf (no children; duration and/or effort apply).
type Task struct {
	ID     string
	Name   string
	Parent string // empty for root-level tasks
	Children []string // child task ids; empty for leaves

	// Duration is spent under the task's resolved regime: working days for
	// work, calendar days for event/deadline. 0 for containers and
	// pure-effort tasks. DurationUnit is carried over from the input, but the
	// scheduling passes do not read it.
	Duration     int
	DurationUnit DurationUnit
	Effort       float64 // person-days; zero if not specified

	DependsOn []string // raw dependency references as named by the parser (may be dotted paths)

	Assignments []Assignment
	Constraints []Constraint

	// Regime, if set explicitly, wins over the milestone-based default.
	// Containers may not set this (structural error, see graph.ContainerRegimeError).
	Regime *Regime

	ActualStart  *time.Time
	ActualFinish *time.Time
	Complete     float64 // 0..100
	// CompleteExplicit distinguishes "complete declared as 0" from "complete
	// not declared at all" on a container; rollup only compares against the
	// derived figure (spec.md §4.5) when this is true. Leaves don't need the
	// distinction — their Complete always governs forward-pass branching.
	CompleteExplicit bool
	Remaining    *int    // explicit remaining duration, counted like Duration; nil derives from Complete

	Milestone bool
}

func (t *Task) IsContainer() bool { return len(t.Children) > 0 }
func (t *Task) IsLeaf() bool      { return len(t.Children) == 0 }

// IsCompleted reports whether the task's progress locks its forecast dates.
func (t *Task) IsCompleted() bool { return t.Complete >= 100 }

// IsInProgress reports whether the task has partial, but not complete, progress.
func (t *Task) IsInProgress() bool { return t.Complete > 0 && t.Complete < 100 }

// ResolvedRegime applies the resolution rule from spec.md §4.3: explicit
// regime wins; otherwise milestone implies event; otherwise work.
func (t *Task) ResolvedRegime() Regime {
	if t.Regime != nil {
		return *t.Regime
	}
	if t.Milestone {
		return RegimeEvent
	}
	return RegimeWork
}

// ConstraintOf returns the task's constraint of the given kind, if any.
func (t *Task) ConstraintOf(kind ConstraintKind) (Constraint, bool) {
	for _, c := range t.Constraints {
		if c.Kind == kind {
			return c, true
		}
	}
	return Constraint{}, false
}
