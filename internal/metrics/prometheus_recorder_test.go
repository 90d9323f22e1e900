package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("build", 150*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncStageResult("build", ResultSuccess)
	pr.IncRunOutcome(RunSuccess)
	pr.IncLLMRequest("summary", true)
	pr.IncLLMRequest("summary", false)
	pr.IncRasterizeResult(false)
	pr.ObserveCorpusChars(12000)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
	for _, mf := range mfs {
		if mf.GetName() != "autodocs_llm_requests_total" {
			continue
		}
		if n := len(mf.GetMetric()); n != 2 {
			t.Fatalf("expected success and failed series, got %d", n)
		}
		return
	}
	t.Fatalf("llm request counter not gathered")
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncRunOutcome(RunFailed)

	path := filepath.Join(t.TempDir(), "autodocs.prom")
	if err := pr.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `autodocs_run_outcomes_total{outcome="failed"} 1`) {
		t.Fatalf("textfile missing run outcome:\n%s", data)
	}
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("build", time.Second)
	pr.IncStageResult("build", ResultFatal)
	pr.IncLLMRequest("todos", true)
	if err := pr.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil recorder WriteTextfile: %v", err)
	}
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncRunOutcome(RunCanceled)
	r.ObserveCorpusChars(1)
}
