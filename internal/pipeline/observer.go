package pipeline

import (
	"io"
	"log/slog"
	"time"
)

// StageEvent captures lightweight execution telemetry for one pipeline
// stage, mirroring the teacher's service.UseCaseEvent.
type StageEvent struct {
	Stage     string
	Duration  time.Duration
	Success   bool
	Err       error
	StartedAt time.Time
}

// Observer receives one event per pipeline stage. No stage in
// internal/cpm, internal/rollup, internal/leveling, or internal/graph talks
// to an Observer directly — only this package does, keeping the scheduling
// stages pure functions over their inputs (spec.md §5).
type Observer interface {
	ObserveStage(event StageEvent)
}

// NoopObserver ignores all events; it is the default.
type NoopObserver struct{}

func (NoopObserver) ObserveStage(StageEvent) {}

type slogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver writes structured stage telemetry to w, one line per
// stage completion.
func NewSlogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &slogObserver{logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

func (o *slogObserver) ObserveStage(event StageEvent) {
	attrs := []any{
		"stage", event.Stage,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.Error("pipeline_stage", attrs...)
		return
	}
	o.logger.Info("pipeline_stage", attrs...)
}

// runStage runs fn, timing it and reporting the outcome to obs, and
// returns fn's error unchanged.
func runStage(obs Observer, stage string, fn func() error) error {
	started := time.Now()
	err := fn()
	obs.ObserveStage(StageEvent{
		Stage:     stage,
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		StartedAt: started,
	})
	return err
}
