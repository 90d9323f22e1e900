package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func newTestResolver(env map[string]string) *Resolver {
	return &Resolver{Getenv: MapEnv(env)}
}

func TestVersionTag(t *testing.T) {
	cases := map[string]string{
		"":                                         "v-dev",
		"dev":                                      "v-dev",
		"abc":                                      "v-abc",
		"0123456789abcdef0123456789abcdef01234567": "v-0123456",
	}
	for in, want := range cases {
		assert.Equal(t, want, VersionTag(in), "commit %q", in)
	}
}

func TestDerivePathsIsPure(t *testing.T) {
	p := DerivePaths("/repo", "v-1234567")
	assert.Equal(t, "/repo/outputs", p.OutputDir)
	assert.Equal(t, "/repo/outputs/html", p.HTMLDir)
	assert.Equal(t, "/repo/outputs/xml", p.XMLDir)
	assert.Equal(t, "/repo/outputs/html_output.zip", p.ArchivePath)
	assert.Equal(t, "/repo/docs/latest", p.LatestDir)
	assert.Equal(t, "/repo/docs/v-1234567", p.VersionedDir)
	assert.Equal(t, "/repo/docs/images", p.ImagesDir)
	assert.Equal(t, "/repo/AUTODOCS_SUMMARY.md", p.ReportPath)
	assert.Equal(t, p, DerivePaths("/repo", "v-1234567"))
}

func TestResolveDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: root})
	require.NoError(t, err)

	assert.Equal(t, "k", cfg.LLM.APIKey)
	assert.Equal(t, "v-dev", cfg.Version.Tag)
	assert.Equal(t, root, cfg.SourceDir, "falls back to root when source/ is missing")
	assert.Equal(t, DefaultProjectName, cfg.ProjectName)
	assert.Equal(t, UploadNone, cfg.Publish.Upload)
	assert.True(t, cfg.Publish.LocalCopy)
	assert.True(t, cfg.Publish.Versioned)
	assert.Equal(t, 12000, cfg.Extract.MaxChars)
	assert.Equal(t, 3000, cfg.Extract.LegendMaxChars)
	assert.Equal(t, filepath.Join(root, "docs", "v-dev"), cfg.Paths.VersionedDir)
}

func TestResolveUsesSourceDirWhenPresent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "source"), 0o750))
	cfg, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: root})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "source"), cfg.SourceDir)
}

func TestResolveCommitFromEnv(t *testing.T) {
	root := t.TempDir()
	cfg, err := newTestResolver(map[string]string{
		EnvGeminiAPIKey: "k",
		EnvGitHubSHA:    "deadbeefcafebabe",
	}).Resolve(Options{RepoPath: root})
	require.NoError(t, err)
	assert.Equal(t, "deadbeefcafebabe", cfg.Version.Commit)
	assert.Equal(t, "v-deadbee", cfg.Version.Tag)
}

func TestResolveMissingAPIKey(t *testing.T) {
	_, err := newTestResolver(nil).Resolve(Options{RepoPath: t.TempDir()})
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))
	ae, _ := aerrors.As(err)
	assert.Equal(t, EnvGeminiAPIKey, ae.Context["field"])
}

func TestResolveAzureRequiresConnString(t *testing.T) {
	root := t.TempDir()
	_, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: root, Upload: "azure"})
	require.Error(t, err)
	ae, ok := aerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, EnvAzureConnString, ae.Context["field"])

	cfg, err := newTestResolver(map[string]string{
		EnvGeminiAPIKey:    "k",
		EnvAzureConnString: "AccountName=acct;AccountKey=a2V5",
	}).Resolve(Options{RepoPath: root, Upload: "azure"})
	require.NoError(t, err)
	assert.True(t, cfg.Publish.UploadEnabled())
}

func TestResolveRejectsUnknownUpload(t *testing.T) {
	_, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: t.TempDir(), Upload: "ftp"})
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))
}

func TestResolveMissingRepo(t *testing.T) {
	_, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))
}

func TestResolvePrecedence(t *testing.T) {
	root := t.TempDir()
	yamlCfg := `
project_name: Widgets
source_dir: src
features:
  xml: true
  rasterize: true
llm:
  model: from-file
  timeout: 45s
  retry:
    backoff: linear
    max_retries: 1
publish:
  upload: fs
  local_copy: false
  container: ${AUTODOCS_TEST_CONTAINER}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFileName), []byte(yamlCfg), 0o600))
	t.Setenv("AUTODOCS_TEST_CONTAINER", "from-env-expansion")

	cfg, err := newTestResolver(map[string]string{
		EnvGeminiAPIKey: "k",
		EnvLLMModel:     "from-env",
	}).Resolve(Options{RepoPath: root, Model: "from-flag", LocalCopy: boolPtr(true)})
	require.NoError(t, err)

	assert.Equal(t, "Widgets", cfg.ProjectName)
	assert.Equal(t, filepath.Join(root, "src"), cfg.SourceDir)
	assert.True(t, cfg.Features.GenerateXML)
	assert.True(t, cfg.Features.Rasterize)
	assert.Equal(t, "from-flag", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, RetryBackoffLinear, cfg.LLM.Retry.Mode)
	assert.Equal(t, 1, cfg.LLM.Retry.MaxRetries)
	assert.Equal(t, UploadFS, cfg.Publish.Upload)
	assert.Equal(t, filepath.Join(root, "outputs", "blobs"), cfg.Publish.FSRoot)
	assert.Equal(t, "from-env-expansion", cfg.Publish.Container)
	assert.True(t, cfg.Publish.LocalCopy, "flag overrides file")
}

func TestResolveCommitFromGitWhenEnabled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFileName), []byte("version:\n  from_git: true\n"), 0o600))

	r := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"})
	r.HeadCommit = func(string) (string, error) { return "feedface00112233", nil }
	cfg, err := r.Resolve(Options{RepoPath: root})
	require.NoError(t, err)
	assert.Equal(t, "v-feedfac", cfg.Version.Tag)

	r.HeadCommit = func(string) (string, error) { return "", errors.New("not a repository") }
	cfg, err = r.Resolve(Options{RepoPath: root})
	require.NoError(t, err)
	assert.Equal(t, "v-dev", cfg.Version.Tag)
}

func TestResolveBadConfigFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("features: [unterminated"), 0o600))
	_, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: root, ConfigPath: path})
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryConfig))
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, RetryBackoffExponential, NormalizeRetryBackoff(" Exponential "))
	assert.Equal(t, RetryBackoffMode(""), NormalizeRetryBackoff("weird"))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("chatty"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("json"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat("xml"))
	assert.Equal(t, UploadAzure, NormalizeUploadBackend("Azure"))
	assert.Equal(t, UploadBackend(""), NormalizeUploadBackend("ftp"))
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTODOCS_TEST_A=file\nAUTODOCS_TEST_B=file\n"), 0o600))
	t.Setenv("AUTODOCS_TEST_A", "process")
	t.Setenv("AUTODOCS_TEST_B", "")
	require.NoError(t, os.Unsetenv("AUTODOCS_TEST_B"))

	loaded, err := LoadEnvFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, ".env")}, loaded)
	assert.Equal(t, "process", os.Getenv("AUTODOCS_TEST_A"))
	assert.Equal(t, "file", os.Getenv("AUTODOCS_TEST_B"))
}

func TestResolveTimeoutsAndPublishRetry(t *testing.T) {
	root := t.TempDir()
	yamlCfg := `
generator:
  timeout: 10m
publish:
  timeout: 90s
  retry:
    backoff: fixed
    initial: 1s
    max: 1s
    max_retries: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFileName), []byte(yamlCfg), 0o600))
	cfg, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: root})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Generator.Timeout)
	assert.Equal(t, 90*time.Second, cfg.Publish.Timeout)
	assert.Equal(t, RetryConfig{Mode: RetryBackoffFixed, Initial: time.Second, Max: time.Second, MaxRetries: 4}, cfg.Publish.Retry)
	assert.Equal(t, DefaultLLMTimeout, cfg.LLM.Timeout)

	defaults, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DefaultGenTimeout, defaults.Generator.Timeout)
	assert.Equal(t, DefaultPublishTimeout, defaults.Publish.Timeout)
	assert.Equal(t, 2, defaults.Publish.Retry.MaxRetries)
}

func TestResolveRejectsInitialDelayAboveMax(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFileName),
		[]byte("llm:\n  retry:\n    initial: 1m\n    max: 10s\n"), 0o600))
	_, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).Resolve(Options{RepoPath: root})
	require.Error(t, err)
	ae, ok := aerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "llm.retry", ae.Context["field"])
}

func TestResolveRasterizeEnablesXML(t *testing.T) {
	cfg, err := newTestResolver(map[string]string{EnvGeminiAPIKey: "k"}).
		Resolve(Options{RepoPath: t.TempDir(), Rasterize: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, cfg.Features.Rasterize)
	assert.True(t, cfg.Features.GenerateXML)
}
