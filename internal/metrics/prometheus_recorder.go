package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "autodocs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	llmRequests   *prom.CounterVec
	rasterResults *prom.CounterVec
	corpusChars   prom.Gauge
}

// NewPrometheusRecorder constructs and registers metrics on reg (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total pipeline duration",
			Buckets:   prom.ExponentialBuckets(1, 2, 10),
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Runs by final status",
		}, []string{"outcome"}),
		llmRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Language model requests by report section and result",
		}, []string{"section", "result"}),
		rasterResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rasterize_results_total",
			Help:      "SVG to PNG conversions by result",
		}, []string{"result"}),
		corpusChars: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_chars",
			Help:      "Untruncated length of the extracted corpus in characters",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.runOutcome,
		pr.llmRequests, pr.rasterResults, pr.corpusChars)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// WriteTextfile writes all gathered metrics to path in the text exposition format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if p == nil || p.reg == nil {
		return nil
	}
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcomeLabel) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncLLMRequest(section string, success bool) {
	if p == nil || p.llmRequests == nil {
		return
	}
	p.llmRequests.WithLabelValues(section, resultLabel(success)).Inc()
}

func (p *PrometheusRecorder) IncRasterizeResult(success bool) {
	if p == nil || p.rasterResults == nil {
		return
	}
	p.rasterResults.WithLabelValues(resultLabel(success)).Inc()
}

func (p *PrometheusRecorder) ObserveCorpusChars(n int) {
	if p == nil || p.corpusChars == nil {
		return
	}
	p.corpusChars.Set(float64(n))
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
