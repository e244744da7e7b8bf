package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDatabase, EnvAddr, EnvLogLevel, EnvToken, EnvBaseURL} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(LoadOptions{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "topten.yaml", `
database: /var/lib/topten/movies.db
addr: ":8080"
tmdb:
  requests_per_second: 2.5
  burst: 1
`)

	cfg, err := Load(LoadOptions{File: path, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/topten/movies.db", cfg.Database)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2.5, cfg.TMDB.RequestsPerSecond)
	assert.Equal(t, 1, cfg.TMDB.Burst)
	assert.Equal(t, Default().TMDB.BaseURL, cfg.TMDB.BaseURL, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoad_EmptyYAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "empty.yaml", "")

	cfg, err := Load(LoadOptions{File: path, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bad.yaml", "databse: typo.db\n")

	_, err := Load(LoadOptions{File: path, EnvFiles: []string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "databse")
}

func TestLoad_MissingYAMLFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.yaml"), EnvFiles: []string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "topten.yaml", "database: from-file.db\n")
	t.Setenv(EnvDatabase, "from-env.db")
	t.Setenv(EnvToken, "secret")
	t.Setenv(EnvBaseURL, "http://localhost:9999/3")

	cfg, err := Load(LoadOptions{File: path, EnvFiles: []string{}})
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.Database)
	assert.Equal(t, "secret", cfg.TMDB.Token)
	assert.Equal(t, "http://localhost:9999/3", cfg.TMDB.BaseURL)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	first := writeFile(t, ".env", "TMDB_API_TOKEN=dotenv-token\nTOPTEN_LOG_LEVEL=debug\n")
	second := writeFile(t, ".env.local", "TMDB_API_TOKEN=ignored\nTOPTEN_ADDR=:7000\n")
	missing := filepath.Join(t.TempDir(), ".env.missing")

	cfg, err := Load(LoadOptions{EnvFiles: []string{missing, first, second}})
	require.NoError(t, err)

	assert.Equal(t, "dotenv-token", cfg.TMDB.Token, "earlier files win")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoad_ProcessEnvBeatsDotEnv(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "TMDB_API_TOKEN=dotenv-token\n")
	t.Setenv(EnvToken, "process-token")

	cfg, err := Load(LoadOptions{EnvFiles: []string{envFile}})
	require.NoError(t, err)
	assert.Equal(t, "process-token", cfg.TMDB.Token)
}

func TestLoad_MissingTokenIsNotAnError(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(LoadOptions{EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Empty(t, cfg.TMDB.Token)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty database", func(c *Config) { c.Database = "" }, "database"},
		{"addr without port", func(c *Config) { c.Addr = "localhost" }, "addr"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"relative base url", func(c *Config) { c.TMDB.BaseURL = "api.themoviedb.org" }, "base_url"},
		{"negative rate", func(c *Config) { c.TMDB.RequestsPerSecond = -1 }, "requests_per_second"},
		{"zero burst", func(c *Config) { c.TMDB.Burst = 0 }, "burst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Config{LogLevel: in}.SlogLevel(), in)
	}
}
