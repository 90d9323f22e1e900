package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
)

// Defaults.
const (
	DefaultProjectName    = "AutoDocs"
	DefaultGenerator      = "doxygen"
	DefaultRasterizer     = "rsvg-convert"
	DefaultImageFormat    = "svg"
	DefaultMaxChars       = 12000
	DefaultLegendMaxChars = 3000
	DefaultLLMBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultLLMModel       = "gemini-2.0-flash"
	DefaultLLMTimeout     = 2 * time.Minute
	DefaultGenTimeout     = 30 * time.Minute
	DefaultPublishTimeout = 5 * time.Minute
	DefaultContainer      = "autodocs"
)

// Options carries values given on the command line. Nil pointers and empty strings mean
// "not given" and leave lower-precedence sources in effect.
type Options struct {
	RepoPath   string
	ConfigPath string
	Upload     string
	Container  string
	BlobName   string
	Model      string
	LogLevel   string
	LogFormat  string
	Verbose    bool
	LocalCopy  *bool
	Versioned  *bool
	Rasterize  *bool
	Structured *bool
	ReportHTML *bool
}

// Resolver turns options, an optional YAML file and the environment into a BuildConfig.
type Resolver struct {
	Getenv Getenv
	// HeadCommit looks up the HEAD commit of a repository; used only when version.from_git is set.
	HeadCommit func(repoPath string) (string, error)
}

// NewResolver returns a resolver reading the process environment.
func NewResolver(head func(string) (string, error)) *Resolver {
	return &Resolver{Getenv: os.Getenv, HeadCommit: head}
}

// Resolve validates everything up front so that no external call happens with a
// configuration that cannot succeed.
func (r *Resolver) Resolve(opts Options) (*BuildConfig, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if strings.TrimSpace(opts.RepoPath) == "" {
		return nil, aerrors.UsageError("repository path is required")
	}
	root, err := filepath.Abs(opts.RepoPath)
	if err != nil {
		return nil, aerrors.ConfigInvalid("repo", err.Error())
	}
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return nil, aerrors.ConfigInvalid("repo", "not a directory: "+root)
	}

	cfg := defaults(root)

	fc, err := r.loadFile(root, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	fromGit := false
	if fc != nil {
		applyFile(cfg, fc, root)
		fromGit = fc.Version.FromGit
	}
	applyEnv(cfg, getenv)
	applyOptions(cfg, opts)

	commit := getenv(EnvGitHubSHA)
	if commit == "" && fromGit && r.HeadCommit != nil {
		if head, herr := r.HeadCommit(root); herr == nil {
			commit = head
		}
	}
	if commit == "" {
		commit = DefaultCommit
	}
	cfg.Version = VersionInfo{Commit: commit, Tag: VersionTag(commit)}
	cfg.Paths = DerivePaths(root, cfg.Version.Tag)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults(root string) *BuildConfig {
	source := filepath.Join(root, "source")
	if st, err := os.Stat(source); err != nil || !st.IsDir() {
		source = root
	}
	return &BuildConfig{
		RepoRoot:    root,
		SourceDir:   source,
		ProjectName: DefaultProjectName,
		Features: Features{
			CallGraphs:    true,
			ClassDiagrams: true,
			ImageFormat:   DefaultImageFormat,
			GenerateHTML:  true,
		},
		Generator: GeneratorConfig{Binary: DefaultGenerator, Rasterizer: DefaultRasterizer, Timeout: DefaultGenTimeout},
		Extract: ExtractConfig{
			MaxChars:       DefaultMaxChars,
			LegendMaxChars: DefaultLegendMaxChars,
			Sorted:         true,
			SymbolKinds:    []string{"class", "struct"},
		},
		LLM: LLMConfig{
			BaseURL: DefaultLLMBaseURL,
			Model:   DefaultLLMModel,
			Timeout: DefaultLLMTimeout,
			Retry:   defaultRetry(),
		},
		Publish: PublishConfig{
			Upload:    UploadNone,
			Container: DefaultContainer,
			BlobName:  ArchiveFileName,
			LocalCopy: true,
			Versioned: true,
			Timeout:   DefaultPublishTimeout,
			Retry:     defaultRetry(),
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
}

func defaultRetry() RetryConfig {
	return RetryConfig{
		Mode:       RetryBackoffExponential,
		Initial:    2 * time.Second,
		Max:        30 * time.Second,
		MaxRetries: 2,
	}
}

func (r *Resolver) loadFile(root, explicit string) (*FileConfig, error) {
	path := explicit
	if path == "" {
		candidate := filepath.Join(root, DefaultFileName)
		if _, err := os.Stat(candidate); err != nil {
			return nil, nil
		}
		path = candidate
	}
	fc, err := LoadFile(path)
	if err != nil {
		return nil, aerrors.ConfigLoadFailed(path, err)
	}
	return fc, nil
}

func applyFile(cfg *BuildConfig, fc *FileConfig, root string) {
	if fc.ProjectName != "" {
		cfg.ProjectName = fc.ProjectName
	}
	if fc.SourceDir != "" {
		cfg.SourceDir = resolveUnder(root, fc.SourceDir)
	}

	setBool(&cfg.Features.CallGraphs, fc.Features.CallGraphs)
	setBool(&cfg.Features.ClassDiagrams, fc.Features.ClassDiagrams)
	setBool(&cfg.Features.GenerateHTML, fc.Features.HTML)
	setBool(&cfg.Features.GenerateXML, fc.Features.XML)
	setBool(&cfg.Features.Rasterize, fc.Features.Rasterize)
	setString(&cfg.Features.ImageFormat, strings.ToLower(fc.Features.ImageFormat))

	setString(&cfg.Generator.Binary, fc.Generator.Binary)
	setString(&cfg.Generator.Rasterizer, fc.Generator.Rasterizer)
	setDuration(&cfg.Generator.Timeout, fc.Generator.Timeout)

	if fc.Extract.MaxChars > 0 {
		cfg.Extract.MaxChars = fc.Extract.MaxChars
	}
	if fc.Extract.LegendMaxChars > 0 {
		cfg.Extract.LegendMaxChars = fc.Extract.LegendMaxChars
	}
	setBool(&cfg.Extract.Sorted, fc.Extract.Sorted)
	if len(fc.Extract.SymbolKinds) > 0 {
		cfg.Extract.SymbolKinds = fc.Extract.SymbolKinds
	}

	setString(&cfg.LLM.BaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLM.Model, fc.LLM.Model)
	if fc.LLM.Timeout > 0 {
		cfg.LLM.Timeout = fc.LLM.Timeout
	}
	if fc.LLM.RequestsPerMinute > 0 {
		cfg.LLM.RequestsPerMinute = fc.LLM.RequestsPerMinute
	}
	applyRetry(&cfg.LLM.Retry, fc.LLM.Retry)

	if fc.Publish.Upload != "" {
		cfg.Publish.Upload = NormalizeUploadBackend(fc.Publish.Upload)
	}
	setString(&cfg.Publish.Container, fc.Publish.Container)
	setString(&cfg.Publish.BlobName, fc.Publish.BlobName)
	setString(&cfg.Publish.S3Region, fc.Publish.S3Region)
	if fc.Publish.FSRoot != "" {
		cfg.Publish.FSRoot = resolveUnder(root, fc.Publish.FSRoot)
	}
	setBool(&cfg.Publish.LocalCopy, fc.Publish.LocalCopy)
	setBool(&cfg.Publish.Versioned, fc.Publish.Versioned)
	setBool(&cfg.Publish.ReportHTML, fc.Publish.ReportHTML)
	setDuration(&cfg.Publish.Timeout, fc.Publish.Timeout)
	applyRetry(&cfg.Publish.Retry, fc.Publish.Retry)

	if fc.Logging.Level != "" {
		cfg.Logging.Level = NormalizeLogLevel(fc.Logging.Level)
	}
	if fc.Logging.Format != "" {
		cfg.Logging.Format = NormalizeLogFormat(fc.Logging.Format)
	}
}

func applyRetry(dst *RetryConfig, fr FileRetry) {
	if m := NormalizeRetryBackoff(fr.Backoff); m != "" {
		dst.Mode = m
	}
	setDuration(&dst.Initial, fr.Initial)
	setDuration(&dst.Max, fr.Max)
	if fr.MaxRetries != nil && *fr.MaxRetries >= 0 {
		dst.MaxRetries = *fr.MaxRetries
	}
}

func applyEnv(cfg *BuildConfig, getenv Getenv) {
	cfg.LLM.APIKey = getenv(EnvGeminiAPIKey)
	cfg.Publish.ConnString = getenv(EnvAzureConnString)
	setString(&cfg.LLM.BaseURL, getenv(EnvLLMBaseURL))
	setString(&cfg.LLM.Model, getenv(EnvLLMModel))
	if cfg.Publish.S3Region == "" {
		cfg.Publish.S3Region = getenv(EnvS3Region)
	}
	if lvl := getenv(EnvLogLevel); lvl != "" {
		cfg.Logging.Level = NormalizeLogLevel(lvl)
	}
}

func applyOptions(cfg *BuildConfig, opts Options) {
	if opts.Upload != "" {
		cfg.Publish.Upload = NormalizeUploadBackend(opts.Upload)
	}
	setString(&cfg.Publish.Container, opts.Container)
	setString(&cfg.Publish.BlobName, opts.BlobName)
	setString(&cfg.LLM.Model, opts.Model)
	setBool(&cfg.Publish.LocalCopy, opts.LocalCopy)
	setBool(&cfg.Publish.Versioned, opts.Versioned)
	setBool(&cfg.Publish.ReportHTML, opts.ReportHTML)
	setBool(&cfg.Features.Rasterize, opts.Rasterize)
	setBool(&cfg.Features.GenerateXML, opts.Structured)
	if opts.LogLevel != "" {
		cfg.Logging.Level = NormalizeLogLevel(opts.LogLevel)
	}
	if opts.Verbose {
		cfg.Logging.Level = LogLevelDebug
	}
	if opts.LogFormat != "" {
		cfg.Logging.Format = NormalizeLogFormat(opts.LogFormat)
	}
}

func validate(cfg *BuildConfig) error {
	if cfg.LLM.APIKey == "" {
		return aerrors.ConfigRequired(EnvGeminiAPIKey)
	}
	// Diagrams are rasterized from the XML tree.
	if cfg.Features.Rasterize {
		cfg.Features.GenerateXML = true
	}
	if !cfg.Features.GenerateHTML && !cfg.Features.GenerateXML {
		return aerrors.ConfigInvalid("features", "at least one of html or xml output must be enabled")
	}
	switch cfg.Features.ImageFormat {
	case "svg", "png", "jpg", "gif":
	default:
		return aerrors.ConfigInvalid("features.image_format", "unsupported format "+cfg.Features.ImageFormat)
	}
	switch cfg.Publish.Upload {
	case UploadNone:
	case UploadAzure:
		if cfg.Publish.ConnString == "" {
			return aerrors.ConfigRequired(EnvAzureConnString)
		}
	case UploadS3:
		if cfg.Publish.S3Region == "" {
			return aerrors.ConfigRequired("publish.s3_region")
		}
	case UploadFS:
		if cfg.Publish.FSRoot == "" {
			cfg.Publish.FSRoot = filepath.Join(cfg.Paths.OutputDir, "blobs")
		}
	default:
		return aerrors.ConfigInvalid("publish.upload", "expected none, azure, s3 or fs")
	}
	if cfg.Publish.UploadEnabled() && (cfg.Publish.Container == "" || cfg.Publish.BlobName == "") {
		return aerrors.ConfigRequired("publish.container")
	}
	if err := validateRetry("llm.retry", cfg.LLM.Retry); err != nil {
		return err
	}
	return validateRetry("publish.retry", cfg.Publish.Retry)
}

func validateRetry(field string, rc RetryConfig) error {
	if rc.Initial > rc.Max {
		return aerrors.ConfigInvalid(field, "initial delay exceeds max delay")
	}
	return nil
}

func resolveUnder(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
