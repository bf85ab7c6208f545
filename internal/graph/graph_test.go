package graph

import (
	"testing"

	"github.com/chronoplan/chronoplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(id, parent string, dependsOn ...string) *domain.Task {
	return &domain.Task{ID: id, Name: id, Parent: parent, Duration: 1, DependsOn: dependsOn}
}

func container(id, parent string, children ...string) *domain.Task {
	return &domain.Task{ID: id, Name: id, Parent: parent, Children: children}
}

func TestBuild_CrossContainerDependency(t *testing.T) {
	// Mirrors spec.md S1: phase1{a} -> phase2{b}, b depends on phase1.
	p := &domain.Project{
		Tasks: []*domain.Task{
			container("phase1", "", "a"),
			leaf("a", "phase1"),
			container("phase2", "", "b"),
			leaf("b", "phase2", "phase1"),
		},
	}

	g, err := Build(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, g.Predecessors["b"])
	assert.Equal(t, []string{"b"}, g.Successors["a"])
	assert.Equal(t, []string{"a", "b"}, g.TopoOrder)
}

func TestBuild_DottedPathResolvesToInnermostTask(t *testing.T) {
	p := &domain.Project{
		Tasks: []*domain.Task{
			container("phase1", "", "sub"),
			leaf("sub", "phase1"),
			leaf("b", "", "phase1.sub"),
		},
	}
	g, err := Build(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub"}, g.Predecessors["b"])
}

func TestBuild_DuplicatePredecessorEdgesAreDeduplicated(t *testing.T) {
	p := &domain.Project{
		Tasks: []*domain.Task{
			container("phase1", "", "a", "a2"),
			leaf("a", "phase1"),
			leaf("a2", "phase1"),
			leaf("b", "", "a", "phase1"), // "a" named directly and again via container expansion
		},
	}
	g, err := Build(p)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "a2"}, g.Predecessors["b"])
}

func TestBuild_UnknownReference(t *testing.T) {
	p := &domain.Project{
		Tasks: []*domain.Task{
			leaf("b", "", "ghost"),
		},
	}
	_, err := Build(p)
	require.Error(t, err)
	var urErr *UnknownReferenceError
	assert.ErrorAs(t, err, &urErr)
}

func TestBuild_ContainerWithNoLeaves(t *testing.T) {
	p := &domain.Project{
		Tasks: []*domain.Task{
			container("empty", ""),
			leaf("b", "", "empty"),
		},
	}
	_, err := Build(p)
	require.Error(t, err)
	var nlErr *NoLeavesError
	assert.ErrorAs(t, err, &nlErr)
}

func TestBuild_CycleDetected(t *testing.T) {
	p := &domain.Project{
		Tasks: []*domain.Task{
			leaf("a", "", "b"),
			leaf("b", "", "a"),
		},
	}
	_, err := Build(p)
	require.Error(t, err)
	var cErr *CycleError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, []string{"a", "b"}, cErr.RemainingIDs)
}

func TestBuild_ContainerExplicitRegimeIsStructuralError(t *testing.T) {
	regime := domain.RegimeEvent
	p := &domain.Project{
		Tasks: []*domain.Task{
			{ID: "c", Name: "c", Children: []string{"a"}, Regime: &regime},
			leaf("a", "c"),
		},
	}
	_, err := Build(p)
	require.Error(t, err)
	var rErr *ContainerRegimeError
	assert.ErrorAs(t, err, &rErr)
}

func TestBuild_TopoOrderTieBreaksByID(t *testing.T) {
	p := &domain.Project{
		Tasks: []*domain.Task{
			leaf("z", ""),
			leaf("m", ""),
			leaf("a", ""),
		},
	}
	g, err := Build(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "z"}, g.TopoOrder)
}
