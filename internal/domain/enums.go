package domain

// Regime selects the temporal semantics a task's dates are computed under.
type Regime string

const (
	RegimeWork     Regime = "work"
	RegimeEvent    Regime = "event"
	RegimeDeadline Regime = "deadline"
)

// CostPolicy selects how a cost range collapses to a single expected value.
type CostPolicy string

const (
	CostMidpoint   CostPolicy = "midpoint"
	CostOptimistic CostPolicy = "optimistic"
	CostPessimistic CostPolicy = "pessimistic"
)

// ConstraintKind names the four date constraints a task may carry.
type ConstraintKind string

const (
	ConstraintStartNoEarlierThan  ConstraintKind = "start_no_earlier_than"
	ConstraintStartNoLaterThan    ConstraintKind = "start_no_later_than"
	ConstraintFinishNoEarlierThan ConstraintKind = "finish_no_earlier_than"
	ConstraintFinishNoLaterThan   ConstraintKind = "finish_no_later_than"
)

// DurationUnit distinguishes calendar-day from working-day interval lengths.
type DurationUnit string

const (
	DurationCalendarDays DurationUnit = "calendar_days"
	DurationWorkingDays  DurationUnit = "working_days"
)
