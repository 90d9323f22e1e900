// Package metrics provides observability hooks for autodocs runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	p := pipeline.New(deps) // Recorder defaults to metrics.NoopRecorder{}
//
// When --metrics-file is given the CLI injects a PrometheusRecorder and, once the run
// has finished, writes its registry in the node_exporter textfile format with
// WriteTextfile.
package metrics
