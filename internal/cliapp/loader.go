// Package cliapp is the command-line driver around the scheduling core: the
// "CLI collaborator" spec.md §6 names as an external interface. It owns
// flag parsing, the JSON project format this repository accepts as the
// practical stand-in for the out-of-scope surface-syntax parser, and
// rendering the stable Schedule JSON shape (and a human-readable summary)
// to the terminal.
package cliapp

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/chronoplan/chronoplan/internal/domain"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// projectDoc is the JSON shape this CLI reads. Field names mirror the
// attribute vocabulary spec.md §3/§6 lists (project, task, resource,
// resource_profile, trait, calendar).
type projectDoc struct {
	StartDate                string                  `json:"start_date"`
	StatusDate               *string                 `json:"status_date,omitempty"`
	Currency                 string                  `json:"currency,omitempty"`
	CostPolicy               string                  `json:"cost_policy,omitempty"`
	AbstractWarningThreshold float64                 `json:"abstract_warning_threshold,omitempty"`
	DefaultCalendar          string                  `json:"default_calendar,omitempty"`
	Tasks                    []taskDoc               `json:"tasks"`
	Resources                []resourceDoc           `json:"resources,omitempty"`
	ResourceProfiles         []profileDoc            `json:"resource_profiles,omitempty"`
	Traits                   []traitDoc              `json:"traits,omitempty"`
	Calendars                map[string]calendarDoc  `json:"calendars,omitempty"`
}

type taskDoc struct {
	ID                string           `json:"id"`
	Name              string           `json:"name,omitempty"`
	Parent            string           `json:"parent,omitempty"`
	Children          []string         `json:"children,omitempty"`
	Duration          int              `json:"duration,omitempty"`
	DurationUnit      string           `json:"duration_unit,omitempty"`
	Effort            float64          `json:"effort,omitempty"`
	DependsOn         []string         `json:"depends_on,omitempty"`
	Assignments       []assignmentDoc  `json:"assignments,omitempty"`
	Constraints       []constraintDoc  `json:"constraints,omitempty"`
	Regime            string           `json:"regime,omitempty"`
	ActualStart       *string          `json:"actual_start,omitempty"`
	ActualFinish      *string          `json:"actual_finish,omitempty"`
	Complete          *float64         `json:"complete,omitempty"`
	Remaining         *int             `json:"remaining,omitempty"`
	Milestone         bool             `json:"milestone,omitempty"`
}

type assignmentDoc struct {
	ProfileID  string `json:"profile_id,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
}

type constraintDoc struct {
	Kind string `json:"kind"`
	Date string `json:"date"`
}

type resourceDoc struct {
	ID           string   `json:"id"`
	Specializes  string   `json:"specializes,omitempty"`
	Availability float64  `json:"availability,omitempty"`
	Rate         *float64 `json:"rate,omitempty"`
	CalendarID   string   `json:"calendar_id,omitempty"`
}

type profileDoc struct {
	ID          string    `json:"id"`
	Specializes string    `json:"specializes,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	Traits      []string  `json:"traits,omitempty"`
	Range       *rangeDoc `json:"range,omitempty"`
}

type rangeDoc struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency,omitempty"`
}

type traitDoc struct {
	ID             string  `json:"id"`
	RateMultiplier float64 `json:"rate_multiplier"`
	Description    string  `json:"description,omitempty"`
}

type calendarDoc struct {
	Week       map[string]float64 `json:"week,omitempty"`
	Exceptions map[string]bool    `json:"exceptions,omitempty"`
}

// LoadProject decodes a project document from r into a domain.Project.
func LoadProject(r io.Reader) (*domain.Project, error) {
	var doc projectDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cliapp: decoding project document: %w", err)
	}
	return doc.toDomain()
}

func (d *projectDoc) toDomain() (*domain.Project, error) {
	start, err := parseDate(d.StartDate)
	if err != nil {
		return nil, fmt.Errorf("project.start_date: %w", err)
	}

	p := &domain.Project{
		StartDate:                start,
		Currency:                 d.Currency,
		CostPolicy:               domain.CostPolicy(d.CostPolicy),
		AbstractWarningThreshold: d.AbstractWarningThreshold,
		DefaultCalendar:          d.DefaultCalendar,
	}
	if d.StatusDate != nil {
		sd, err := parseDate(*d.StatusDate)
		if err != nil {
			return nil, fmt.Errorf("project.status_date: %w", err)
		}
		p.StatusDate = &sd
	}

	if len(d.Calendars) > 0 {
		p.Calendars = make(map[string]*domain.Calendar, len(d.Calendars))
		for id, c := range d.Calendars {
			cal, err := c.toDomain(id)
			if err != nil {
				return nil, fmt.Errorf("calendars.%s: %w", id, err)
			}
			p.Calendars[id] = cal
		}
	}

	for i, td := range d.Tasks {
		t, err := td.toDomain()
		if err != nil {
			return nil, fmt.Errorf("tasks[%d] (%s): %w", i, td.ID, err)
		}
		p.Tasks = append(p.Tasks, t)
	}
	for _, rd := range d.Resources {
		p.Resources = append(p.Resources, rd.toDomain())
	}
	for _, pd := range d.ResourceProfiles {
		p.Profiles = append(p.Profiles, pd.toDomain())
	}
	for _, trd := range d.Traits {
		p.Traits = append(p.Traits, &domain.Trait{ID: trd.ID, RateMultiplier: trd.RateMultiplier, Description: trd.Description})
	}

	return p, nil
}

func (td *taskDoc) toDomain() (*domain.Task, error) {
	t := &domain.Task{
		ID: td.ID, Name: td.Name, Parent: td.Parent, Children: td.Children,
		Duration: td.Duration, Effort: td.Effort, DependsOn: td.DependsOn,
		Milestone: td.Milestone, Remaining: td.Remaining,
	}
	if td.Name == "" {
		t.Name = td.ID
	}
	if td.DurationUnit != "" {
		u := domain.DurationUnit(td.DurationUnit)
		t.DurationUnit = u
	}
	if td.Regime != "" {
		r := domain.Regime(td.Regime)
		t.Regime = &r
	}
	if td.Complete != nil {
		t.Complete = *td.Complete
		t.CompleteExplicit = true
	}
	if td.ActualStart != nil {
		d, err := parseDate(*td.ActualStart)
		if err != nil {
			return nil, fmt.Errorf("actual_start: %w", err)
		}
		t.ActualStart = &d
	}
	if td.ActualFinish != nil {
		d, err := parseDate(*td.ActualFinish)
		if err != nil {
			return nil, fmt.Errorf("actual_finish: %w", err)
		}
		t.ActualFinish = &d
	}
	for _, a := range td.Assignments {
		t.Assignments = append(t.Assignments, domain.Assignment{ProfileID: a.ProfileID, ResourceID: a.ResourceID, Quantity: a.Quantity})
	}
	for _, c := range td.Constraints {
		date, err := parseDate(c.Date)
		if err != nil {
			return nil, fmt.Errorf("constraint %s: %w", c.Kind, err)
		}
		t.Constraints = append(t.Constraints, domain.Constraint{Kind: domain.ConstraintKind(c.Kind), Date: date})
	}
	return t, nil
}

// idOrSynthetic fills in a random UUID when the document omits an id: the
// loader guarantees every resource/profile has an id, the way a real parser
// collaborator would, even though this JSON format lets authors skip it for
// anonymous, purely-abstract entries. The synthetic id is not stable: it
// differs each time the same document is loaded.
func idOrSynthetic(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func (rd *resourceDoc) toDomain() *domain.Resource {
	return &domain.Resource{
		ID: idOrSynthetic(rd.ID), Specializes: rd.Specializes, Availability: rd.Availability,
		Rate: rd.Rate, CalendarID: rd.CalendarID,
	}
}

func (pd *profileDoc) toDomain() *domain.ResourceProfile {
	prof := &domain.ResourceProfile{ID: idOrSynthetic(pd.ID), Specializes: pd.Specializes, Skills: pd.Skills, Traits: pd.Traits}
	if pd.Range != nil {
		prof.Range = &domain.RateRange{Min: pd.Range.Min, Max: pd.Range.Max, Currency: pd.Range.Currency}
	}
	return prof
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

func (cd *calendarDoc) toDomain(id string) (*domain.Calendar, error) {
	cal := &domain.Calendar{ID: id, Week: make(map[time.Weekday]domain.DayRule), Exceptions: make(map[string]bool)}
	for name, hours := range cd.Week {
		wd, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		cal.Week[wd] = domain.DayRule{Hours: hours}
	}
	for d, ok := range cd.Exceptions {
		if _, err := parseDate(d); err != nil {
			return nil, fmt.Errorf("exception date: %w", err)
		}
		cal.Exceptions[d] = ok
	}
	return cal, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
