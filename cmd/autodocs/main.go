// Command autodocs builds API documentation for a repository with doxygen, summarizes it
// with a language model and publishes the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/autodocs/internal/config"
	"git.home.luguber.info/inful/autodocs/internal/doxygen"
	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
	"git.home.luguber.info/inful/autodocs/internal/git"
	"git.home.luguber.info/inful/autodocs/internal/llm"
	"git.home.luguber.info/inful/autodocs/internal/logfields"
	"git.home.luguber.info/inful/autodocs/internal/metrics"
	"git.home.luguber.info/inful/autodocs/internal/pipeline"
	"git.home.luguber.info/inful/autodocs/internal/publish"
	"git.home.luguber.info/inful/autodocs/internal/storage"
	"git.home.luguber.info/inful/autodocs/internal/summarize"
	"git.home.luguber.info/inful/autodocs/internal/version"
)

// CLI definition. Boolean feature flags are negatable; only flags present on the command
// line override the configuration file.
type CLI struct {
	Repo string `arg:"" help:"Path to the local repository to document" type:"path"`

	Config    string           `short:"c" help:"Configuration file path (default: autodocs.yaml in the repository)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogLevel  string           `help:"Log level (debug, info, warn, error)"`
	LogFormat string           `help:"Log format (text, json)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Upload    string `help:"Archive upload backend (none, azure, s3, fs)"`
	Container string `help:"Blob container or bucket name"`
	BlobName  string `help:"Blob name of the uploaded archive"`
	Model     string `help:"Language model name"`

	LocalCopy  bool `negatable:"" help:"Copy the HTML docs to docs/latest and docs/<tag>"`
	Versioned  bool `negatable:"" help:"Write the version marker and the docs/<tag> copy"`
	Rasterize  bool `negatable:"" help:"Convert generated SVG diagrams to PNG"`
	Structured bool `negatable:"" help:"Generate XML output and add a symbol index"`
	ReportHTML bool `negatable:"" help:"Also render the summary report as HTML"`

	MetricsFile string `help:"Write Prometheus metrics to this textfile after the run" type:"path"`

	logOut io.Writer `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.LogLevelInfo
	if c.LogLevel != "" {
		level = config.NormalizeLogLevel(c.LogLevel)
	}
	if c.Verbose {
		level = config.LogLevelDebug
	}
	slog.SetDefault(newLogger(c.logOut, level, config.NormalizeLogFormat(c.LogFormat)))
	return nil
}

func newLogger(w io.Writer, level config.LogLevel, format config.LogFormat) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// exitCode is raised by kong's exit hook (--help, --version) and recovered in run.
type exitCode int

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	cli := &CLI{logOut: stderr}
	parser, err := kong.New(cli,
		kong.Name("autodocs"),
		kong.Description("Generate, summarize and publish API documentation for a repository."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 10
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		var perr *kong.ParseError
		if errors.As(err, &perr) && perr.Context != nil {
			_ = perr.Context.PrintUsage(false)
		}
		parser.Errorf("%s", err)
		return aerrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(aerrors.UsageError(err.Error()))
	}

	return execute(ctx, cli, explicitFlags(kctx), stdout, stderr)
}

// explicitFlags returns the names of flags that appeared on the command line.
func explicitFlags(kctx *kong.Context) map[string]bool {
	set := make(map[string]bool)
	for _, p := range kctx.Path {
		if p.Flag != nil {
			set[p.Flag.Name] = true
		}
	}
	return set
}

func (c *CLI) options(set map[string]bool) config.Options {
	flag := func(name string, v bool) *bool {
		if !set[name] {
			return nil
		}
		return &v
	}
	return config.Options{
		RepoPath:   c.Repo,
		ConfigPath: c.Config,
		Upload:     c.Upload,
		Container:  c.Container,
		BlobName:   c.BlobName,
		Model:      c.Model,
		LogLevel:   c.LogLevel,
		LogFormat:  c.LogFormat,
		Verbose:    c.Verbose,
		LocalCopy:  flag("local-copy", c.LocalCopy),
		Versioned:  flag("versioned", c.Versioned),
		Rasterize:  flag("rasterize", c.Rasterize),
		Structured: flag("structured", c.Structured),
		ReportHTML: flag("report-html", c.ReportHTML),
	}
}

func execute(ctx context.Context, cli *CLI, set map[string]bool, stdout, stderr io.Writer) int {
	runID := uuid.NewString()
	logger := slog.Default().With(logfields.RunID(runID))
	adapter := aerrors.NewCLIErrorAdapter(cli.Verbose, logger)

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prometheusRecorder *metrics.PrometheusRecorder
	if cli.MetricsFile != "" {
		prometheusRecorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		recorder = prometheusRecorder
	}
	defer func() {
		if prometheusRecorder == nil {
			return
		}
		if err := prometheusRecorder.WriteTextfile(cli.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics textfile", logfields.Path(cli.MetricsFile), logfields.Error(err))
		}
	}()

	if loaded, err := config.LoadEnvFiles(cli.Repo); err != nil {
		return adapter.Handle(aerrors.ConfigLoadFailed(".env", err), stderr)
	} else if len(loaded) > 0 {
		logger.Debug("Loaded environment files", slog.Any("files", loaded))
	}

	start := time.Now()
	cfg, err := config.NewResolver(git.HeadCommit).Resolve(cli.options(set))
	recorder.ObserveStageDuration(string(pipeline.StageResolve), time.Since(start))
	if err != nil {
		recorder.IncStageResult(string(pipeline.StageResolve), metrics.ResultFatal)
		recorder.IncRunOutcome(metrics.RunFailed)
		return adapter.Handle(err, stderr)
	}
	recorder.IncStageResult(string(pipeline.StageResolve), metrics.ResultSuccess)

	logger = newLogger(cli.logOut, cfg.Logging.Level, cfg.Logging.Format).With(logfields.RunID(runID))
	slog.SetDefault(logger)
	adapter = aerrors.NewCLIErrorAdapter(cli.Verbose, logger)

	p, err := buildPipeline(ctx, cfg, recorder)
	if err != nil {
		return adapter.Handle(err, stderr)
	}
	res, err := p.Run(ctx, cfg)
	if err != nil {
		return adapter.Handle(err, stderr)
	}

	for _, w := range res.Warnings {
		logger.Warn("Run warning", slog.String("warning", w))
	}
	_, _ = fmt.Fprintf(stdout, "Summary written to %s\n", res.ReportPath)
	if res.ReportHTMLPath != "" {
		_, _ = fmt.Fprintf(stdout, "HTML summary written to %s\n", res.ReportHTMLPath)
	}
	if res.URL != "" {
		_, _ = fmt.Fprintf(stdout, "Archive uploaded to %s\n", res.URL)
	}
	return 0
}

func buildPipeline(ctx context.Context, cfg *config.BuildConfig, recorder metrics.Recorder) (*pipeline.Pipeline, error) {
	runner := doxygen.ExecRunner{}

	model, err := llm.NewOpenAICompatible(cfg.LLM)
	if err != nil {
		return nil, aerrors.ConfigInvalid("llm", err.Error())
	}
	client := llm.NewResilient(model, cfg.LLM)

	store, err := newBlobStore(ctx, cfg.Publish)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Deps{
		Generator:  doxygen.NewGenerator(runner),
		Rasterizer: doxygen.NewRasterizer(runner, cfg.Generator.Rasterizer),
		Summarizer: summarize.New(client).WithRecorder(recorder),
		Publisher:  publish.New(store),
		Recorder:   recorder,
	})
}

func newBlobStore(ctx context.Context, pc config.PublishConfig) (storage.BlobStore, error) {
	var (
		store storage.BlobStore
		err   error
	)
	switch pc.Upload {
	case config.UploadAzure:
		store, err = storage.NewAzureStore(pc.ConnString, pc.Container)
	case config.UploadS3:
		store, err = storage.NewS3Store(ctx, pc.Container, pc.S3Region)
	case config.UploadFS:
		store, err = storage.NewFSStore(pc.FSRoot, pc.Container)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, aerrors.StorageFailed("connect", err, false)
	}
	return store, nil
}
