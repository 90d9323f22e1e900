package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the repository root when --config is not given.
const DefaultFileName = "autodocs.yaml"

// FileConfig is the optional YAML configuration. Pointer fields distinguish "unset" from
// an explicit zero value.
type FileConfig struct {
	ProjectName string        `yaml:"project_name"`
	SourceDir   string        `yaml:"source_dir"`
	Features    FileFeatures  `yaml:"features"`
	Generator   FileGenerator `yaml:"generator"`
	Extract     FileExtract   `yaml:"extract"`
	LLM         FileLLM       `yaml:"llm"`
	Publish     FilePublish   `yaml:"publish"`
	Version     FileVersion   `yaml:"version"`
	Logging     FileLogging   `yaml:"logging"`
}

type FileFeatures struct {
	CallGraphs    *bool  `yaml:"call_graphs"`
	ClassDiagrams *bool  `yaml:"class_diagrams"`
	ImageFormat   string `yaml:"image_format"`
	HTML          *bool  `yaml:"html"`
	XML           *bool  `yaml:"xml"`
	Rasterize     *bool  `yaml:"rasterize"`
}

type FileGenerator struct {
	Binary     string        `yaml:"binary"`
	Rasterizer string        `yaml:"rasterizer"`
	Timeout    time.Duration `yaml:"timeout"`
}

type FileExtract struct {
	MaxChars       int      `yaml:"max_chars"`
	LegendMaxChars int      `yaml:"legend_max_chars"`
	Sorted         *bool    `yaml:"sorted"`
	SymbolKinds    []string `yaml:"symbol_kinds"`
}

type FileLLM struct {
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Retry             FileRetry     `yaml:"retry"`
}

type FileRetry struct {
	Backoff    string        `yaml:"backoff"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxRetries *int          `yaml:"max_retries"`
}

type FilePublish struct {
	Upload     string        `yaml:"upload"`
	Container  string        `yaml:"container"`
	BlobName   string        `yaml:"blob_name"`
	S3Region   string        `yaml:"s3_region"`
	FSRoot     string        `yaml:"fs_root"`
	LocalCopy  *bool         `yaml:"local_copy"`
	Versioned  *bool         `yaml:"versioned"`
	ReportHTML *bool         `yaml:"report_html"`
	Timeout    time.Duration `yaml:"timeout"`
	Retry      FileRetry     `yaml:"retry"`
}

type FileVersion struct {
	FromGit bool `yaml:"from_git"`
}

type FileLogging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadFile reads a YAML configuration file, expanding ${VAR} references first.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &fc, nil
}
