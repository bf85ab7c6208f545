package cpm

import (
	"testing"
	"time"

	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/domain"
	"github.com/chronoplan/chronoplan/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func leaf(id, parent string, duration int, dependsOn ...string) *domain.Task {
	return &domain.Task{ID: id, Name: id, Parent: parent, Duration: duration, DependsOn: dependsOn}
}

func container(id, parent string, children ...string) *domain.Task {
	return &domain.Task{ID: id, Name: id, Parent: parent, Children: children}
}

func buildAndRun(t *testing.T, p *domain.Project, opts Options) (map[string]*Result, []diagnostics.Diagnostic) {
	t.Helper()
	g, err := graph.Build(p)
	require.NoError(t, err)
	results, diags, err := Run(g, p, opts)
	require.NoError(t, err)
	return results, diags
}

// Mirrors spec.md S1 exactly: phase1{a} -> phase2{b}. a gets a fresh start
// at project_start, so its 5-day duration counts that first day as day one
// (es=2026-01-01, ef=2026-01-07). b's es is inherited verbatim from a's ef
// (the shared boundary, 2026-01-07), and its own 3-day duration is spent
// *after* that boundary, landing ef on 2026-01-12.
func TestForwardPass_CrossContainerDependency(t *testing.T) {
	p := &domain.Project{
		StartDate: date("2026-01-01"),
		Tasks: []*domain.Task{
			container("phase1", "", "a"),
			leaf("a", "phase1", 5),
			container("phase2", "", "b"),
			leaf("b", "phase2", 3, "phase1"),
		},
	}
	results, _ := buildAndRun(t, p, Options{})

	assert.True(t, results["a"].ES.Equal(date("2026-01-01")))
	assert.True(t, results["a"].EF.Equal(date("2026-01-07")), "got %s", results["a"].EF)

	assert.True(t, results["b"].ES.Equal(results["a"].EF))
	assert.True(t, results["b"].EF.Equal(date("2026-01-12")), "got %s", results["b"].EF)
}

// spec.md S2: a milestone dated on a Sunday under the event regime keeps its
// exact date (no rounding); a work-regime successor still rounds onto the
// next working day, because dependencies transfer dates, not regimes.
func TestForwardPass_EventRegimeOnSunday(t *testing.T) {
	sunday := date("2024-06-02")
	p := &domain.Project{
		StartDate: sunday,
		Tasks: []*domain.Task{
			{ID: "release", Name: "release", Milestone: true,
				Constraints: []domain.Constraint{{Kind: domain.ConstraintStartNoEarlierThan, Date: sunday}}},
			leaf("rollout", "", 5, "release"),
		},
	}
	results, _ := buildAndRun(t, p, Options{})

	assert.True(t, results["release"].ForecastStart.Equal(sunday))
	assert.True(t, results["release"].ForecastFinish.Equal(sunday))

	assert.True(t, results["rollout"].ES.Equal(date("2024-06-03")))
}

// spec.md S3: an in-progress task's forecast_finish is derived from the
// status date and the remaining duration, not from duration alone.
func TestForwardPass_ProgressAwareForecast(t *testing.T) {
	actualStart := date("2026-01-05")
	statusDate := date("2026-01-12")
	p := &domain.Project{
		StartDate: date("2026-01-01"),
		StatusDate: &statusDate,
		Tasks: []*domain.Task{
			{ID: "impl", Name: "impl", Duration: 10, ActualStart: &actualStart, Complete: 50},
		},
	}
	results, diags := buildAndRun(t, p, Options{})

	r := results["impl"]
	assert.True(t, r.ForecastStart.Equal(actualStart))
	assert.Equal(t, 5, r.RemainingDuration)
	assert.True(t, r.ForecastFinish.Equal(date("2026-01-19")), "got %s", r.ForecastFinish)

	for _, d := range diags {
		assert.NotEqual(t, diagnostics.P005RemainingConflict, d.Code, "no explicit remaining was given; shouldn't conflict")
	}
}

// spec.md S4: a completed task's dates are locked regardless of what its
// predecessors would otherwise compute, and dependents see actual_finish.
func TestForwardPass_CompletedTaskLocked(t *testing.T) {
	actualStart := date("2026-01-05")
	actualFinish := date("2026-01-14")
	p := &domain.Project{
		StartDate: date("2026-01-01"),
		Tasks: []*domain.Task{
			{ID: "impl", Name: "impl", Duration: 10, ActualStart: &actualStart, ActualFinish: &actualFinish, Complete: 100},
			leaf("next", "", 2, "impl"),
		},
	}
	results, _ := buildAndRun(t, p, Options{})

	r := results["impl"]
	assert.True(t, r.EF.Equal(actualFinish))
	assert.Equal(t, 0, r.RemainingDuration)
	assert.True(t, results["next"].ES.Equal(actualFinish))
}

// Invariant #1 (spec.md §8): total_slack must never be negative, and a
// single-chain project with no slack anywhere is entirely critical.
func TestSlack_SingleChainIsFullyCritical(t *testing.T) {
	p := &domain.Project{
		StartDate: date("2026-01-01"),
		Tasks: []*domain.Task{
			leaf("a", "", 3),
			leaf("b", "", 2, "a"),
			leaf("c", "", 4, "b"),
		},
	}
	results, _ := buildAndRun(t, p, Options{})

	for id, r := range results {
		assert.GreaterOrEqual(t, r.TotalSlack, 0, "task %s", id)
		assert.True(t, r.IsCritical, "task %s should be on the critical path", id)
	}
}

// Invariant #3: successor.es >= predecessor.ef in working days of the
// successor's regime.
func TestInvariant_SuccessorStartsNoEarlierThanPredecessorFinish(t *testing.T) {
	p := &domain.Project{
		StartDate: date("2026-01-01"),
		Tasks: []*domain.Task{
			leaf("a", "", 5),
			leaf("b", "", 3, "a"),
		},
	}
	results, _ := buildAndRun(t, p, Options{})
	assert.False(t, results["b"].ES.Before(results["a"].EF))
}

// Backward is factored out of Run so callers that move ES/EF after CPM has
// already run once (resource leveling) can recompute LS/LF/slack/critical
// without redoing the forward pass. After y is moved behind x, rerunning it
// must leave y with ES <= LS and, as the task that now ends the project,
// zero slack.
func TestBackward_RerunAfterMovingATaskIsConsistent(t *testing.T) {
	p := &domain.Project{
		StartDate: date("2026-01-01"),
		Tasks: []*domain.Task{
			leaf("x", "", 5),
			leaf("y", "", 5),
		},
	}
	g, err := graph.Build(p)
	require.NoError(t, err)
	results, _, err := Run(g, p, Options{})
	require.NoError(t, err)

	// Simulate leveling pushing y out behind x, the way resource contention
	// would, then re-run the backward pass the way pipeline.mergeLeveled does.
	results["y"].ES = results["x"].EF
	results["y"].EF = results["x"].EF.AddDate(0, 0, 7)
	results["y"].ForecastStart, results["y"].ForecastFinish = results["y"].ES, results["y"].EF

	Backward(g, p, results)

	assert.False(t, results["y"].ES.After(results["y"].LS))
	assert.True(t, results["y"].IsCritical)
	assert.Equal(t, 0, results["y"].TotalSlack)
}
