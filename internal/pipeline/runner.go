package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/autodocs/internal/logfields"
	"git.home.luguber.info/inful/autodocs/internal/metrics"
)

// runStages executes stages in order, recording timing and stopping on the first error.
// Cancellation is checked before each stage.
func runStages(ctx context.Context, st *runState, stages []stageDef, rec metrics.Recorder) error {
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			rec.IncStageResult(string(s.Name), metrics.ResultCanceled)
			slog.Warn("Run canceled before stage", logfields.Stage(string(s.Name)))
			return err
		}
		warningsBefore := len(st.warnings)
		t0 := time.Now()
		err := s.Fn(ctx, st)
		dur := time.Since(t0)
		st.durations[s.Name] = dur
		rec.ObserveStageDuration(string(s.Name), dur)
		rec.IncStageResult(string(s.Name), stageResult(err, len(st.warnings) > warningsBefore))
		if err != nil {
			slog.Error("Stage failed",
				logfields.Stage(string(s.Name)),
				logfields.DurationMS(float64(dur.Milliseconds())),
				logfields.Error(err))
			return err
		}
		slog.Info("Stage complete",
			logfields.Stage(string(s.Name)),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}

func stageResult(err error, warned bool) metrics.ResultLabel {
	switch {
	case err == nil && warned:
		return metrics.ResultWarning
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}
