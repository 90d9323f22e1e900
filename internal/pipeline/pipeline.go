// Package pipeline runs the documentation stages strictly in sequence:
// build, rasterize, extract, summarize, publish. Data only flows forward and the
// first failing stage ends the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/autodocs/internal/config"
	"git.home.luguber.info/inful/autodocs/internal/doxygen"
	"git.home.luguber.info/inful/autodocs/internal/extract"
	"git.home.luguber.info/inful/autodocs/internal/logfields"
	"git.home.luguber.info/inful/autodocs/internal/metrics"
	"git.home.luguber.info/inful/autodocs/internal/publish"
	"git.home.luguber.info/inful/autodocs/internal/summarize"
)

// Deps are the collaborators of a run, constructed once by the caller.
type Deps struct {
	Generator  *doxygen.Generator
	Rasterizer *doxygen.Rasterizer
	Summarizer *summarize.Summarizer
	Publisher  *publish.Publisher
	Recorder   metrics.Recorder
	// Tasks defaults to summarize.DefaultTasks.
	Tasks []summarize.Task
}

// Result summarizes a finished run.
type Result struct {
	ReportPath     string
	ReportHTMLPath string
	ArchivePath    string
	URL            string
	Symbols        []string
	Warnings       []string
	Durations      map[StageName]time.Duration
}

// Pipeline executes runs against a fixed set of collaborators.
type Pipeline struct {
	deps Deps
}

// New validates deps and fills defaults.
func New(deps Deps) (*Pipeline, error) {
	if deps.Generator == nil || deps.Summarizer == nil || deps.Publisher == nil {
		return nil, errors.New("pipeline requires generator, summarizer and publisher")
	}
	if deps.Rasterizer == nil {
		deps.Rasterizer = doxygen.NewRasterizer(nil, config.DefaultRasterizer)
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	if len(deps.Tasks) == 0 {
		deps.Tasks = summarize.DefaultTasks()
	}
	return &Pipeline{deps: deps}, nil
}

type runState struct {
	cfg       *config.BuildConfig
	build     *doxygen.BuildResult
	corpus    extract.Corpus
	legend    string
	symbols   []extract.Symbol
	report    *summarize.Report
	published *publish.Output
	warnings  []string
	durations map[StageName]time.Duration
}

// Run executes every stage for cfg. The returned Result is populated as far as the run
// got, even on error.
func (p *Pipeline) Run(ctx context.Context, cfg *config.BuildConfig) (*Result, error) {
	st := &runState{cfg: cfg, durations: make(map[StageName]time.Duration)}
	stages := []stageDef{
		{Name: StageBuild, Fn: p.stageBuild},
		{Name: StageRasterize, Fn: p.stageRasterize},
		{Name: StageExtract, Fn: p.stageExtract},
		{Name: StageSummarize, Fn: p.stageSummarize},
		{Name: StagePublish, Fn: p.stagePublish},
	}

	slog.Info("Starting documentation run",
		logfields.Path(cfg.RepoRoot),
		logfields.Version(cfg.Version.Tag))
	start := time.Now()
	err := runStages(ctx, st, stages, p.deps.Recorder)
	p.deps.Recorder.ObserveRunDuration(time.Since(start))
	p.deps.Recorder.IncRunOutcome(runOutcome(err, len(st.warnings) > 0))

	return st.result(), err
}

func (p *Pipeline) stageBuild(ctx context.Context, st *runState) error {
	res, err := p.deps.Generator.Build(ctx, st.cfg)
	if err != nil {
		return err
	}
	st.build = res
	return nil
}

func (p *Pipeline) stageRasterize(ctx context.Context, st *runState) error {
	if !st.cfg.Features.Rasterize {
		slog.Debug("Rasterize disabled", logfields.Stage(string(StageRasterize)))
		return nil
	}
	results, err := p.deps.Rasterizer.ConvertAll(ctx, st.build.XMLDir, st.cfg.Paths.ImagesDir)
	for _, r := range results {
		p.deps.Recorder.IncRasterizeResult(r.Err == nil)
	}
	st.warnings = append(st.warnings, doxygen.Warnings(results)...)
	return err
}

func (p *Pipeline) stageExtract(_ context.Context, st *runState) error {
	cfg := st.cfg
	if cfg.Features.GenerateHTML {
		corpus, err := extract.Text(st.build.HTMLDir, extract.Options{
			MaxChars: cfg.Extract.MaxChars,
			Sorted:   cfg.Extract.Sorted,
		})
		if err != nil {
			return err
		}
		st.corpus = corpus
		p.deps.Recorder.ObserveCorpusChars(corpus.FullLength)
		if corpus.Truncated {
			slog.Info("Corpus truncated",
				logfields.Chars(corpus.FullLength),
				slog.Int("limit", cfg.Extract.MaxChars))
		}

		legend, err := extract.Legend(st.build.HTMLDir, cfg.Extract.LegendMaxChars)
		if err != nil {
			return err
		}
		st.legend = legend
	}
	if cfg.Features.GenerateXML {
		symbols, err := extract.Symbols(st.build.XMLDir, cfg.Extract.SymbolKinds)
		if err != nil {
			return err
		}
		st.symbols = symbols
		slog.Info("Collected symbols", logfields.Count(len(symbols)))
	}
	if st.corpus.Text == "" && len(st.symbols) > 0 {
		// XML-only runs summarize the symbol list.
		st.corpus = extract.Corpus{Text: strings.Join(extract.Names(st.symbols), "\n")}
	}
	return nil
}

func (p *Pipeline) stageSummarize(ctx context.Context, st *runState) error {
	report, err := p.deps.Summarizer.Run(ctx, p.deps.Tasks, summarize.Input{
		Corpus:  st.corpus.Text,
		Symbols: extract.Names(st.symbols),
	})
	st.report = report
	if err != nil {
		return err
	}
	report.Add(summarize.SectionDependencyGraph, "Dependency Graph Overview", st.legend)
	if len(st.symbols) > 0 {
		report.Add(summarize.SectionSymbols, "Symbol Index", symbolIndex(st.symbols))
	}
	return nil
}

func (p *Pipeline) stagePublish(ctx context.Context, st *runState) error {
	tree := st.build.HTMLDir
	if !st.cfg.Features.GenerateHTML {
		tree = st.build.XMLDir
	}
	out, err := p.deps.Publisher.Publish(ctx, publish.Input{Config: st.cfg, Tree: tree, Report: st.report})
	if err != nil {
		return err
	}
	st.published = out
	return nil
}

func (st *runState) result() *Result {
	r := &Result{
		Symbols:   extract.Names(st.symbols),
		Warnings:  st.warnings,
		Durations: st.durations,
	}
	if st.published != nil {
		r.ReportPath = st.published.ReportPath
		r.ReportHTMLPath = st.published.ReportHTMLPath
		r.ArchivePath = st.published.ArchivePath
		r.URL = st.published.URL
	}
	return r
}

func symbolIndex(symbols []extract.Symbol) string {
	var b strings.Builder
	for i, s := range symbols {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- `%s` (%s)", s.Name, s.Kind)
	}
	return b.String()
}

func runOutcome(err error, warned bool) metrics.RunOutcomeLabel {
	switch {
	case err == nil && warned:
		return metrics.RunWarning
	case err == nil:
		return metrics.RunSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.RunCanceled
	default:
		return metrics.RunFailed
	}
}
