// Package diagnostics implements the structured, coded, severity-tagged
// message stream described in spec.md §7: a channel separate from Go
// errors. A Go error stops the pipeline; a Diagnostic is data the pipeline
// still produced a schedule around.
package diagnostics

import "sort"

// Severity is one of the four levels spec.md §6/§7 define.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityHint
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Code identifies the kind of condition a Diagnostic reports. Values are
// the literal codes spec.md §7 enumerates.
type Code string

const (
	R001AbstractAssignment Code = "R001"
	R002CollapsedRange      Code = "R002"
	R003MixedAssignment     Code = "R003"
	R004RefinementHint      Code = "R004"
	R010WideCostRange       Code = "R010"
	R011NoRateDefined       Code = "R011"
	R012TraitStackHigh      Code = "R012"
	R013ApproximateLeveling Code = "R013"
	R014CalendarConflict    Code = "R014"
	L001DelayedByLeveling   Code = "L001"
	L002SlotSearchLimitHit  Code = "L002"
	P005RemainingConflict   Code = "P005"
	P006ContainerOverride   Code = "P006"
	InfoRegimeResolved      Code = "INFO_REGIME"
	InfoConstraintRecorded  Code = "INFO_CONSTRAINT"
	InfoLevelingTrace       Code = "INFO_LEVELING_TRACE"
	C001ConstraintExceeded  Code = "C001"
)

// defaultSeverity is the catalog of each code's severity before any
// project-specific escalation (e.g. the abstract-warning threshold) or
// --strict escalation is applied.
var defaultSeverity = map[Code]Severity{
	R001AbstractAssignment: SeverityHint,
	R002CollapsedRange:     SeverityHint,
	R003MixedAssignment:    SeverityHint,
	R004RefinementHint:     SeverityHint,
	R010WideCostRange:      SeverityWarning,
	R011NoRateDefined:      SeverityWarning,
	R012TraitStackHigh:     SeverityWarning,
	R013ApproximateLeveling: SeverityWarning,
	R014CalendarConflict:   SeverityWarning,
	L001DelayedByLeveling:  SeverityWarning,
	L002SlotSearchLimitHit: SeverityWarning,
	P005RemainingConflict:  SeverityHint,
	P006ContainerOverride:  SeverityHint,
	InfoRegimeResolved:     SeverityInfo,
	InfoConstraintRecorded: SeverityInfo,
	InfoLevelingTrace:      SeverityInfo,
	C001ConstraintExceeded: SeverityWarning,
}

// DefaultSeverity returns the catalog severity for a code, defaulting to
// SeverityInfo for codes constructed ad hoc (e.g. by a test).
func DefaultSeverity(c Code) Severity {
	if s, ok := defaultSeverity[c]; ok {
		return s
	}
	return SeverityInfo
}

// Diagnostic is one structured message emitted by a pipeline stage.
type Diagnostic struct {
	Code       Code
	Severity   Severity
	Stage      string
	Message    string
	TaskID     string
	ResourceID string
	Data       map[string]any
}

// Sort orders diags deterministically: by stage, then by task id, then by
// code (spec.md §7 "Propagation").
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		return a.Code < b.Code
	})
}

// Escalate implements --strict: hints become warnings, warnings become
// errors. It returns a new slice; the input is left unmodified.
func Escalate(diags []Diagnostic, strict bool) []Diagnostic {
	if !strict {
		return diags
	}
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		switch d.Severity {
		case SeverityHint:
			d.Severity = SeverityWarning
		case SeverityWarning:
			d.Severity = SeverityError
		}
		out[i] = d
	}
	return out
}

// HasErrors reports whether any diagnostic carries error severity — the
// condition that maps to exit code 1 at the CLI boundary (spec.md §6).
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
