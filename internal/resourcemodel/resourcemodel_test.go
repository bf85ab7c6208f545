package resourcemodel

import (
	"testing"

	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_DetectsSpecializationCycle(t *testing.T) {
	p := &domain.Project{
		Profiles: []*domain.ResourceProfile{
			{ID: "a", Specializes: "b"},
			{ID: "b", Specializes: "a"},
		},
	}
	_, err := Build(p)
	require.Error(t, err)
}

func TestBuild_DetectsInvertedRange(t *testing.T) {
	p := &domain.Project{
		Profiles: []*domain.ResourceProfile{
			{ID: "dev", Range: &domain.RateRange{Min: 100, Max: 50}},
		},
	}
	_, err := Build(p)
	require.Error(t, err)
}

func TestBuild_DetectsUnknownTraitAndProfile(t *testing.T) {
	p := &domain.Project{
		Profiles: []*domain.ResourceProfile{
			{ID: "dev", Traits: []string{"ghost"}},
		},
		Resources: []*domain.Resource{
			{ID: "alice", Specializes: "ghost-profile"},
		},
	}
	_, err := Build(p)
	require.Error(t, err)
}

func TestBuild_RejectsWidenedChildRange(t *testing.T) {
	p := &domain.Project{
		Profiles: []*domain.ResourceProfile{
			{ID: "base", Range: &domain.RateRange{Min: 100, Max: 200}},
			{ID: "child", Specializes: "base", Range: &domain.RateRange{Min: 50, Max: 250}},
		},
	}
	_, err := Build(p)
	require.Error(t, err)
}

func TestEffectiveRange_InheritsAndNarrows(t *testing.T) {
	p := &domain.Project{
		Profiles: []*domain.ResourceProfile{
			{ID: "base", Range: &domain.RateRange{Min: 100, Max: 200}},
			{ID: "child", Specializes: "base", Range: &domain.RateRange{Min: 120, Max: 180}},
			{ID: "grandchild", Specializes: "child"}, // inherits child's range verbatim
		},
	}
	reg, err := Build(p)
	require.NoError(t, err)

	rng, err := reg.EffectiveRange("grandchild")
	require.NoError(t, err)
	require.NotNil(t, rng)
	assert.Equal(t, 120.0, rng.Min)
	assert.Equal(t, 180.0, rng.Max)
}

func TestTraitMultiplier_MultipliesAcrossChain(t *testing.T) {
	p := &domain.Project{
		Traits: []*domain.Trait{
			{ID: "senior", RateMultiplier: 1.5},
			{ID: "oncall", RateMultiplier: 1.2},
		},
		Profiles: []*domain.ResourceProfile{
			{ID: "base", Range: &domain.RateRange{Min: 100, Max: 100}, Traits: []string{"senior"}},
			{ID: "child", Specializes: "base", Traits: []string{"oncall"}},
		},
	}
	reg, err := Build(p)
	require.NoError(t, err)
	assert.InDelta(t, 1.8, reg.TraitMultiplier("child"), 1e-9)
}

func TestCost_MatchesScenarioS5(t *testing.T) {
	// spec.md S5: effort 40d, assign developer x2, rate {450,700} -> best 36000, worst 56000, expected 46000.
	p := &domain.Project{
		Profiles: []*domain.ResourceProfile{
			{ID: "developer", Range: &domain.RateRange{Min: 450, Max: 700}},
		},
	}
	reg, err := Build(p)
	require.NoError(t, err)

	task := &domain.Task{
		ID:     "dev",
		Effort: 40,
		Assignments: []domain.Assignment{
			{ProfileID: "developer", Quantity: 2},
		},
	}
	cost, diags, err := reg.Cost(task, domain.CostMidpoint, 0)
	require.NoError(t, err)
	assert.Equal(t, 36000.0, cost.Best)
	assert.Equal(t, 56000.0, cost.Worst)
	assert.Equal(t, 46000.0, cost.Expected)

	hasR001 := false
	for _, d := range diags {
		if d.Code == diagnostics.R001AbstractAssignment {
			hasR001 = true
		}
	}
	assert.True(t, hasR001, "expected R001 abstract-assignment hint")
}
