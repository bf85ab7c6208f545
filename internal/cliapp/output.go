package cliapp

import (
	"sort"
	"time"

	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/domain"
)

// scheduleDoc is the stable JSON shape spec.md §6 specifies for exporters.
type scheduleDoc struct {
	ProjectStart string           `json:"project_start"`
	ProjectEnd   string           `json:"project_end"`
	CriticalPath []string         `json:"critical_path"`
	Tasks        []taskScheduleDoc `json:"tasks"`
	Diagnostics  []diagnosticDoc  `json:"diagnostics"`
}

type taskScheduleDoc struct {
	ID                string  `json:"id"`
	ES                string  `json:"es,omitempty"`
	EF                string  `json:"ef,omitempty"`
	LS                string  `json:"ls,omitempty"`
	LF                string  `json:"lf,omitempty"`
	TotalSlack        int     `json:"total_slack,omitempty"`
	FreeSlack         int     `json:"free_slack,omitempty"`
	IsCritical        bool    `json:"is_critical"`
	ForecastStart     string  `json:"forecast_start"`
	ForecastFinish    string  `json:"forecast_finish"`
	Remaining         int     `json:"remaining,omitempty"`
	Complete          float64 `json:"complete"`
}

type diagnosticDoc struct {
	Code       string `json:"code"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	TaskID     string `json:"task_id,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
}

func toScheduleDoc(s *domain.Schedule, diags []diagnostics.Diagnostic) scheduleDoc {
	doc := scheduleDoc{
		ProjectStart: formatDate(s.ProjectStart),
		ProjectEnd:   formatDate(s.ProjectEnd),
		CriticalPath: s.CriticalPath,
	}
	for id, ts := range s.Tasks {
		doc.Tasks = append(doc.Tasks, taskScheduleDoc{
			ID: id,
			ES: formatDate(ts.ES), EF: formatDate(ts.EF),
			LS: formatDate(ts.LS), LF: formatDate(ts.LF),
			TotalSlack: ts.TotalSlack, FreeSlack: ts.FreeSlack,
			IsCritical:     ts.IsCritical,
			ForecastStart:  formatDate(ts.ForecastStart),
			ForecastFinish: formatDate(ts.ForecastFinish),
			Remaining:      ts.RemainingDuration,
			Complete:       ts.Complete,
		})
	}
	sort.Slice(doc.Tasks, func(i, j int) bool { return doc.Tasks[i].ID < doc.Tasks[j].ID })

	for _, d := range diags {
		doc.Diagnostics = append(doc.Diagnostics, diagnosticDoc{
			Code: string(d.Code), Severity: d.Severity.String(), Message: d.Message,
			TaskID: d.TaskID, ResourceID: d.ResourceID,
		})
	}
	return doc
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
