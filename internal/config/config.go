// Package config loads topten settings from defaults, an optional YAML file,
// .env files and the process environment, and validates the result against
// an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/topten/internal/tmdb"
)

//go:embed schema.cue
var schemaCUE string

// Environment variables read by Load.
const (
	EnvDatabase = "TOPTEN_DB"
	EnvAddr     = "TOPTEN_ADDR"
	EnvLogLevel = "TOPTEN_LOG_LEVEL"
	EnvToken    = "TMDB_API_TOKEN"
	EnvBaseURL  = "TMDB_API_BASE"
)

// Config holds every runtime setting.
type Config struct {
	Database string `yaml:"database" json:"database"`
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	TMDB     TMDB   `yaml:"tmdb" json:"tmdb"`
}

// TMDB holds the metadata provider settings.
type TMDB struct {
	Token             string  `yaml:"token" json:"token"`
	BaseURL           string  `yaml:"base_url" json:"base_url"`
	PosterBase        string  `yaml:"poster_base" json:"poster_base"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database: "top10-movies.db",
		Addr:     "127.0.0.1:5000",
		LogLevel: "info",
		TMDB: TMDB{
			BaseURL:           tmdb.DefaultBaseURL,
			PosterBase:        tmdb.DefaultPosterBase,
			RequestsPerSecond: 20,
			Burst:             5,
		},
	}
}

// LoadOptions says where Load looks for settings.
type LoadOptions struct {
	// File is an optional YAML config file. Empty means none.
	File string

	// EnvFiles are dotenv files consulted after the process environment.
	// Missing files are ignored. Nil means [".env"].
	EnvFiles []string
}

// Load layers defaults, the YAML file, then environment variables (a
// non-empty process variable wins over dotenv files). It does not validate;
// callers apply flag overrides and then call Validate.
//
// A missing TMDB token is not an error: the first API call fails instead.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.File != "" {
		if err := loadFile(opts.File, &cfg); err != nil {
			return Config{}, err
		}
	}

	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v := os.Getenv(key); v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	setFromEnv(&cfg.Database, EnvDatabase, lookup)
	setFromEnv(&cfg.Addr, EnvAddr, lookup)
	setFromEnv(&cfg.LogLevel, EnvLogLevel, lookup)
	setFromEnv(&cfg.TMDB.Token, EnvToken, lookup)
	setFromEnv(&cfg.TMDB.BaseURL, EnvBaseURL, lookup)

	return cfg, nil
}

// loadFile decodes a YAML config file over cfg, rejecting unknown keys.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// readEnvFiles merges dotenv files; earlier files win, as with godotenv.Load.
func readEnvFiles(files []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", f, err)
		}
		for k, v := range vals {
			if _, seen := merged[k]; !seen {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

func setFromEnv(dst *string, key string, lookup func(string) (string, bool)) {
	if v, ok := lookup(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks the config against the embedded CUE schema.
func (c Config) Validate() error {
	cctx := cuecontext.New()

	schema := cctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	val := cctx.Encode(c)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
