package cliapp

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSchedule(t *testing.T, input string, extraArgs ...string) (scheduleDoc, string, error) {
	t.Helper()
	app := &App{Interactive: false}
	root := NewRootCmd(app)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	args := append([]string{"schedule", "--input", "-"}, extraArgs...)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(input))

	err := root.Execute()

	var doc scheduleDoc
	if stdout.Len() > 0 {
		_ = json.Unmarshal(stdout.Bytes(), &doc)
	}
	return doc, stderr.String(), err
}

func TestScheduleCmd_S1_ProducesExpectedDates(t *testing.T) {
	input := `{
		"start_date": "2026-01-01",
		"tasks": [
			{"id": "phase1", "children": ["a"]},
			{"id": "a", "parent": "phase1", "duration": 5},
			{"id": "phase2", "children": ["b"]},
			{"id": "b", "parent": "phase2", "duration": 3, "depends_on": ["phase1"]}
		]
	}`
	doc, _, err := runSchedule(t, input)
	require.NoError(t, err)

	byID := make(map[string]taskScheduleDoc)
	for _, ts := range doc.Tasks {
		byID[ts.ID] = ts
	}
	assert.Equal(t, "2026-01-07", byID["phase1"].ForecastFinish)
	assert.Equal(t, "2026-01-12", byID["phase2"].ForecastFinish)
	assert.Equal(t, "2026-01-12", doc.ProjectEnd)
}

func TestScheduleCmd_MalformedInput_ExitsParserFailure(t *testing.T) {
	_, _, err := runSchedule(t, `{not json`)
	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitParserFailure, exitErr.Code)
}

func TestScheduleCmd_UnknownLevelingStrategy_ExitsUsage(t *testing.T) {
	input := `{"start_date": "2026-01-01", "tasks": [{"id": "a", "duration": 1}]}`
	_, _, err := runSchedule(t, input, "--leveling-strategy", "bogus")
	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitUsage, exitErr.Code)
}
