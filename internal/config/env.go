package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvAzureConnString = "AZURE_CONN_STRING"
	EnvGitHubSHA       = "GITHUB_SHA"
	EnvLogLevel        = "AUTODOCS_LOG_LEVEL"
	EnvLLMBaseURL      = "AUTODOCS_LLM_BASE_URL"
	EnvLLMModel        = "AUTODOCS_LLM_MODEL"
	EnvS3Region        = "AWS_REGION"
)

// Getenv looks up an environment variable; os.Getenv in production, a map in tests.
type Getenv func(key string) string

// MapEnv adapts a map to Getenv.
func MapEnv(m map[string]string) Getenv {
	return func(key string) string { return m[key] }
}

// LoadEnvFiles loads .env and .env.local from dir into the process environment.
// Variables already present in the environment are never overwritten. It returns the
// files that were loaded.
func LoadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
