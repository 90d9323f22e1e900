package config

import "time"

// UploadBackend selects where the zipped documentation archive is pushed.
type UploadBackend string

const (
	UploadNone  UploadBackend = "none"
	UploadAzure UploadBackend = "azure"
	UploadS3    UploadBackend = "s3"
	UploadFS    UploadBackend = "fs"
)

// NormalizeUploadBackend maps user input to a backend, returning "" for unknown values.
func NormalizeUploadBackend(raw string) UploadBackend {
	switch UploadBackend(normalizeToken(raw)) {
	case UploadNone, "":
		return UploadNone
	case UploadAzure:
		return UploadAzure
	case UploadS3:
		return UploadS3
	case UploadFS:
		return UploadFS
	default:
		return ""
	}
}

// BuildConfig is the immutable result of configuration resolution. It is created once at
// startup and only read afterwards.
type BuildConfig struct {
	RepoRoot    string
	SourceDir   string
	ProjectName string

	Features  Features
	Generator GeneratorConfig
	Extract   ExtractConfig
	LLM       LLMConfig
	Publish   PublishConfig
	Version   VersionInfo
	Paths     Paths
	Logging   LoggingConfig
}

// Features are the documentation feature flags handed to the generator.
type Features struct {
	CallGraphs    bool
	ClassDiagrams bool
	ImageFormat   string
	GenerateHTML  bool
	GenerateXML   bool // structured index output, enables symbol extraction
	Rasterize     bool // convert generated SVG diagrams to PNG
}

// GeneratorConfig names the external binaries. Timeout bounds one generator run.
type GeneratorConfig struct {
	Binary     string
	Rasterizer string
	Timeout    time.Duration
}

// ExtractConfig bounds the extracted corpus.
type ExtractConfig struct {
	MaxChars       int
	LegendMaxChars int
	Sorted         bool
	SymbolKinds    []string
}

// LLMConfig configures the language model collaborator.
type LLMConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
	Retry             RetryConfig
}

// RetryConfig holds raw retry settings; internal/retry turns them into a Policy.
type RetryConfig struct {
	Mode       RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int
}

// PublishConfig controls archive upload, local copies and the report.
type PublishConfig struct {
	Upload     UploadBackend
	Container  string
	BlobName   string
	ConnString string
	S3Region   string
	FSRoot     string
	LocalCopy  bool
	Versioned  bool
	ReportHTML bool
	// Timeout bounds each blob store call; Retry covers transient store failures.
	Timeout time.Duration
	Retry   RetryConfig
}

// UploadEnabled reports whether a remote (or fs) blob store is configured.
func (p PublishConfig) UploadEnabled() bool {
	return p.Upload != "" && p.Upload != UploadNone
}

// VersionInfo carries the commit identifier and the derived tag.
type VersionInfo struct {
	Commit string
	Tag    string
}

// LoggingConfig is resolved from flags and AUTODOCS_LOG_LEVEL.
type LoggingConfig struct {
	Level  LogLevel
	Format LogFormat
}
