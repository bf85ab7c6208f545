package domain

import "fmt"

// ValidateTask checks the per-task invariants from spec.md §3 that don't
// require graph or lattice context: containers carry no own duration,
// complete is in range, complete==100 implies remaining==0, and milestones
// carry zero duration.
func ValidateTask(t *Task) error {
	if t.IsContainer() {
		if t.Duration != 0 || t.Effort != 0 || len(t.DependsOn) != 0 {
			return fmt.Errorf("task %s: container may not declare duration, effort, or dependencies", t.ID)
		}
		if t.Regime != nil {
			return fmt.Errorf("task %s: container may not declare a regime", t.ID)
		}
	}
	if t.Complete < 0 || t.Complete > 100 {
		return fmt.Errorf("task %s: complete %.2f out of range [0,100]", t.ID, t.Complete)
	}
	if t.Complete == 100 && t.Remaining != nil && *t.Remaining != 0 {
		return fmt.Errorf("task %s: complete is 100 but remaining is %d, want 0", t.ID, *t.Remaining)
	}
	if t.Milestone && t.Duration != 0 {
		return fmt.Errorf("task %s: milestone carries nonzero duration %d", t.ID, t.Duration)
	}

	// Scheduling failures (spec.md §7): fatal, not diagnostics, because no
	// schedule can satisfy them at all.
	if t.Remaining != nil && *t.Remaining < 0 {
		return fmt.Errorf("task %s: remaining %d is negative", t.ID, *t.Remaining)
	}
	if se, ok := t.ConstraintOf(ConstraintStartNoEarlierThan); ok {
		if sl, ok := t.ConstraintOf(ConstraintStartNoLaterThan); ok && se.Date.After(sl.Date) {
			return fmt.Errorf("task %s: start_no_earlier_than %s is after start_no_later_than %s",
				t.ID, se.Date.Format("2006-01-02"), sl.Date.Format("2006-01-02"))
		}
	}
	if fe, ok := t.ConstraintOf(ConstraintFinishNoEarlierThan); ok {
		if fl, ok := t.ConstraintOf(ConstraintFinishNoLaterThan); ok && fe.Date.After(fl.Date) {
			return fmt.Errorf("task %s: finish_no_earlier_than %s is after finish_no_later_than %s",
				t.ID, fe.Date.Format("2006-01-02"), fl.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// ValidateProject runs ValidateTask over every task in the project.
func ValidateProject(p *Project) error {
	for _, t := range p.Tasks {
		if err := ValidateTask(t); err != nil {
			return err
		}
	}
	return nil
}
