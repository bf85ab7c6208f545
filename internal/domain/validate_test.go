package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateTask_RejectsContainerWithOwnDuration(t *testing.T) {
	task := &Task{ID: "p", Children: []string{"c"}, Duration: 5}
	assert.Error(t, ValidateTask(task))
}

func TestValidateTask_RejectsCompleteOutOfRange(t *testing.T) {
	assert.Error(t, ValidateTask(&Task{ID: "a", Complete: 101}))
	assert.Error(t, ValidateTask(&Task{ID: "a", Complete: -1}))
}

func TestValidateTask_RejectsNegativeRemaining(t *testing.T) {
	remaining := -2
	task := &Task{ID: "a", Duration: 5, Remaining: &remaining}
	err := ValidateTask(task)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "negative")
	}
}

func TestValidateTask_AllowsNonNegativeRemaining(t *testing.T) {
	remaining := 0
	task := &Task{ID: "a", Duration: 5, Remaining: &remaining}
	assert.NoError(t, ValidateTask(task))
}

func TestValidateTask_RejectsImpossibleStartConstraintPair(t *testing.T) {
	task := &Task{
		ID: "a", Duration: 5,
		Constraints: []Constraint{
			{Kind: ConstraintStartNoEarlierThan, Date: mustDate("2026-02-01")},
			{Kind: ConstraintStartNoLaterThan, Date: mustDate("2026-01-01")},
		},
	}
	err := ValidateTask(task)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "start_no_earlier_than")
	}
}

func TestValidateTask_RejectsImpossibleFinishConstraintPair(t *testing.T) {
	task := &Task{
		ID: "a", Duration: 5,
		Constraints: []Constraint{
			{Kind: ConstraintFinishNoEarlierThan, Date: mustDate("2026-02-01")},
			{Kind: ConstraintFinishNoLaterThan, Date: mustDate("2026-01-01")},
		},
	}
	err := ValidateTask(task)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "finish_no_earlier_than")
	}
}

func TestValidateTask_AllowsConsistentConstraintPair(t *testing.T) {
	task := &Task{
		ID: "a", Duration: 5,
		Constraints: []Constraint{
			{Kind: ConstraintStartNoEarlierThan, Date: mustDate("2026-01-01")},
			{Kind: ConstraintStartNoLaterThan, Date: mustDate("2026-02-01")},
		},
	}
	assert.NoError(t, ValidateTask(task))
}
