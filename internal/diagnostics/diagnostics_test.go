package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSort_ByStageThenTaskThenCode(t *testing.T) {
	diags := []Diagnostic{
		{Stage: "cpm", TaskID: "b", Code: R001AbstractAssignment},
		{Stage: "cpm", TaskID: "a", Code: R003MixedAssignment},
		{Stage: "cpm", TaskID: "a", Code: R001AbstractAssignment},
		{Stage: "leveling", TaskID: "a", Code: L001DelayedByLeveling},
	}
	Sort(diags)
	assert.Equal(t, []Code{R001AbstractAssignment, R003MixedAssignment, R001AbstractAssignment, L001DelayedByLeveling}, []Code{
		diags[0].Code, diags[1].Code, diags[2].Code, diags[3].Code,
	})
	assert.Equal(t, "cpm", diags[0].Stage)
	assert.Equal(t, "a", diags[0].TaskID)
}

func TestEscalate_StrictBumpsSeverityOneStep(t *testing.T) {
	diags := []Diagnostic{
		{Code: R001AbstractAssignment, Severity: SeverityHint},
		{Code: R010WideCostRange, Severity: SeverityWarning},
	}
	escalated := Escalate(diags, true)
	assert.Equal(t, SeverityWarning, escalated[0].Severity)
	assert.Equal(t, SeverityError, escalated[1].Severity)
	// Original untouched.
	assert.Equal(t, SeverityHint, diags[0].Severity)
}

func TestEscalate_NonStrictIsNoop(t *testing.T) {
	diags := []Diagnostic{{Code: R001AbstractAssignment, Severity: SeverityHint}}
	assert.Equal(t, diags, Escalate(diags, false))
}

func TestHasErrors(t *testing.T) {
	assert.False(t, HasErrors([]Diagnostic{{Severity: SeverityWarning}}))
	assert.True(t, HasErrors([]Diagnostic{{Severity: SeverityError}}))
}
