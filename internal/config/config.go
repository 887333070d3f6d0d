// Package config loads betstats settings.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// the environment (a local .env file is loaded first and never overrides
// variables already set). Environment variables use the BETSTATS prefix,
// e.g. BETSTATS_SERVER_PORT or BETSTATS_PIPELINE_INCOMPLETE_POLICY.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BETSTATS"

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "betstats.yaml"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int    `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	BodyLimitMB int    `yaml:"body_limit_mb" envconfig:"BODY_LIMIT_MB" validate:"min=1,max=512"`
	StaticDir   string `yaml:"static_dir" envconfig:"STATIC_DIR"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// PipelineConfig configures record reconstruction.
type PipelineConfig struct {
	IncompletePolicy string `yaml:"incomplete_policy" envconfig:"INCOMPLETE_POLICY" validate:"oneof=discard pad"`
	DeriveTables     bool   `yaml:"derive_tables" envconfig:"DERIVE_TABLES"`
	Trace            bool   `yaml:"trace" envconfig:"TRACE"`
}

// OutputConfig configures what the CLI writes.
type OutputConfig struct {
	Dir          string `yaml:"dir" envconfig:"DIR" validate:"required"`
	AmericanOdds bool   `yaml:"american_odds" envconfig:"AMERICAN_ODDS"`
	Chart        bool   `yaml:"chart" envconfig:"CHART"`
	Workbook     bool   `yaml:"workbook" envconfig:"WORKBOOK"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			BodyLimitMB: 50,
			StaticDir:   "static",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Pipeline: PipelineConfig{
			IncompletePolicy: "discard",
			DeriveTables:     true,
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// DefaultFile is used if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := loadFromFile(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current values.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
