package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// RunOutcomeLabel is the final status of a whole run.
type RunOutcomeLabel string

const (
	RunSuccess  RunOutcomeLabel = "success"
	RunWarning  RunOutcomeLabel = "warning"
	RunFailed   RunOutcomeLabel = "failed"
	RunCanceled RunOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for run, stage and collaborator metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome RunOutcomeLabel)
	IncLLMRequest(section string, success bool)
	IncRasterizeResult(success bool)
	ObserveCorpusChars(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(RunOutcomeLabel)              {}
func (NoopRecorder) IncLLMRequest(string, bool)                 {}
func (NoopRecorder) IncRasterizeResult(bool)                    {}
func (NoopRecorder) ObserveCorpusChars(int)                     {}
