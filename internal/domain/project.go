package domain

import "time"

// Project is the root entity handed to the scheduling core by the parser
// collaborator. It is read-only for the lifetime of a scheduling run.
type Project struct {
	StartDate    time.Time
	StatusDate   *time.Time // optional explicit "as-of" date; see pipeline status-date resolution
	Currency     string
	CostPolicy   CostPolicy
	// AbstractWarningThreshold is the fraction (0..1) of abstract (profile-only)
	// assignments on a task above which R001 escalates from hint to warning.
	AbstractWarningThreshold float64

	DefaultCalendar string // calendar id used when a task/resource names none

	// Tasks holds every task in the project, flat, containers and leaves
	// alike. The WBS tree is recovered via Task.Parent/Task.Children; this
	// flat form is what graph building, validation, and rollup all index
	// by id.
	Tasks     []*Task
	Resources []*Resource
	Profiles  []*ResourceProfile
	Traits    []*Trait
	Calendars map[string]*Calendar
}

// CalendarFor returns the project calendar with the given id, or the
// project's default calendar when calendarID is empty. It returns nil when
// no such calendar is declared; it does not look at tasks or resources.
func (p *Project) CalendarFor(calendarID string) *Calendar {
	if calendarID == "" {
		calendarID = p.DefaultCalendar
	}
	return p.Calendars[calendarID]
}

// TaskIndex is a by-id lookup over every task in the project, flat.
func (p *Project) TaskIndex() map[string]*Task {
	idx := make(map[string]*Task, len(p.Tasks))
	for _, t := range p.Tasks {
		idx[t.ID] = t
	}
	return idx
}

// RootTasks returns the tasks with no parent, in declaration order.
func (p *Project) RootTasks() []*Task {
	var roots []*Task
	for _, t := range p.Tasks {
		if t.Parent == "" {
			roots = append(roots, t)
		}
	}
	return roots
}

// ResourceIndex is a by-id lookup over project resources.
func (p *Project) ResourceIndex() map[string]*Resource {
	idx := make(map[string]*Resource, len(p.Resources))
	for _, r := range p.Resources {
		idx[r.ID] = r
	}
	return idx
}

// ProfileIndex is a by-id lookup over project resource profiles.
func (p *Project) ProfileIndex() map[string]*ResourceProfile {
	idx := make(map[string]*ResourceProfile, len(p.Profiles))
	for _, pr := range p.Profiles {
		idx[pr.ID] = pr
	}
	return idx
}

// TraitIndex is a by-id lookup over project traits.
func (p *Project) TraitIndex() map[string]*Trait {
	idx := make(map[string]*Trait, len(p.Traits))
	for _, tr := range p.Traits {
		idx[tr.ID] = tr
	}
	return idx
}
