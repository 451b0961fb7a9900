// Package config loads application settings from defaults, an optional YAML
// file, a .env file, FLASHDECK_ environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	envPrefix = "FLASHDECK_"
	// DefaultFile is read when --config is not given and the file exists.
	DefaultFile = "flashdeck.yaml"
)

type Config struct {
	Storage  StorageConfig `koanf:"storage"`
	Log      LogConfig     `koanf:"log"`
	HTTP     HTTPConfig    `koanf:"http"`
	Study    StudyConfig   `koanf:"study"`
	Import   ImportConfig  `koanf:"import"`
	SeedDemo bool          `koanf:"seed_demo"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" validate:"oneof=memory sqlite"`
	DSN    string `koanf:"dsn" validate:"required_if=Driver sqlite"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

type HTTPConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type StudyConfig struct {
	MaxLives int `koanf:"max_lives" validate:"min=1,max=99"`
}

type ImportConfig struct {
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

// Flags returns a flag set whose flag names match the config keys, so the
// flag defaults are also the config defaults.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "Path to a YAML config file (default "+DefaultFile+" if present)")
	fs.String("storage.driver", "sqlite", "Storage backend: memory or sqlite")
	fs.String("storage.dsn", "flashdeck.db", "Path to the SQLite database file")
	fs.String("log.level", "info", "Log level: debug, info, warn or error")
	fs.String("log.format", "text", "Log format: json or text")
	fs.String("http.addr", ":8080", "Address the HTTP server listens on")
	fs.Duration("http.shutdown_timeout", 10*time.Second, "Graceful shutdown timeout")
	fs.Int("study.max_lives", 5, "Wrong answers allowed per study session")
	fs.String("import.repos_dir", "repos", "Directory for cloned deck repositories")
	fs.Bool("seed_demo", true, "Seed demo decks on first run")
	return fs
}

// Load builds a Config from fs, which must already be parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	k := koanf.New(".")

	path, _ := fs.GetString("config")
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// FLASHDECK_HTTP__SHUTDOWN_TIMEOUT -> http.shutdown_timeout
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
