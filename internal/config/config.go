// Package config holds the salesbrief configuration: input workbook layout,
// generation API settings, pipeline behavior, and output locations.
// Everything is loaded once at startup and validated before any work starts.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Pipeline modes for the first-stage generation loop.
const (
	ModeSequential = "sequential"
	ModeFanOut     = "fanout"
)

// Policies for activity rows whose staff is absent from the master list.
const (
	UnknownStaffDrop   = "drop"
	UnknownStaffBucket = "bucket"
)

// Config holds all salesbrief configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig describes the input workbook and the optional prompt override.
type InputConfig struct {
	WorkbookPath  string `yaml:"workbook_path"`
	MasterSheet   string `yaml:"master_sheet"`
	ActivitySheet string `yaml:"activity_sheet"`

	// TemplatePath optionally points at a prompt template file that
	// replaces the embedded default. A maintenance footer delimited by
	// the known marker is stripped before use.
	TemplatePath string `yaml:"template_path"`
}

// GeminiConfig configures the generative-language API client.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`

	// MaxPromptBytes is a hard pre-dispatch ceiling on the serialized
	// prompt size. Exceeding it fails before any HTTP call is made.
	MaxPromptBytes int `yaml:"max_prompt_bytes"`

	// MaxRetries bounds additional attempts after a transient failure.
	MaxRetries int `yaml:"max_retries"`

	// MaxConcurrent bounds simultaneous requests in fan-out mode.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// PipelineConfig configures the report synthesis pipeline.
type PipelineConfig struct {
	// Mode selects sequential or fanout first-stage generation.
	Mode string `yaml:"mode"`

	// UnknownStaffPolicy is "drop" or "bucket" (see Unknown* constants).
	UnknownStaffPolicy string `yaml:"unknown_staff_policy"`

	// TimeBudget is the wall-clock budget for the whole run, checked
	// before each expensive stage. Exceeding it aborts the run.
	TimeBudget string `yaml:"time_budget"`
}

// OutputConfig configures the report artifact and the run log.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	LogDir string `yaml:"log_dir"`
}

// LoggingConfig configures operator-facing logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			WorkbookPath:  "data/sales_activity.xlsx",
			MasterSheet:   "Master",
			ActivitySheet: "Activity",
		},
		Gemini: GeminiConfig{
			Model:          "gemini-2.0-flash",
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			Timeout:        "120s",
			MaxPromptBytes: 200_000,
			MaxRetries:     3,
			MaxConcurrent:  5,
		},
		Pipeline: PipelineConfig{
			Mode:               ModeFanOut,
			UnknownStaffPolicy: UnknownStaffDrop,
			TimeBudget:         "5m",
		},
		Output: OutputConfig{
			Dir:    "out",
			Prefix: "sales_report",
			LogDir: "out/logs",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, starting from defaults.
// A missing file yields the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if path := os.Getenv("SALESBRIEF_WORKBOOK"); path != "" {
		c.Input.WorkbookPath = path
	}
	if dir := os.Getenv("SALESBRIEF_OUT"); dir != "" {
		c.Output.Dir = dir
	}
}

// Validate checks the configuration once at startup. Any error here is
// fatal; the pipeline never starts with a partially valid config.
func (c *Config) Validate() error {
	if c.Input.WorkbookPath == "" {
		return fmt.Errorf("config: input.workbook_path is required")
	}
	if c.Input.MasterSheet == "" {
		return fmt.Errorf("config: input.master_sheet is required")
	}
	if c.Input.ActivitySheet == "" {
		return fmt.Errorf("config: input.activity_sheet is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("config: gemini.api_key is required (or set GEMINI_API_KEY)")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("config: gemini.model is required")
	}
	if c.Gemini.MaxPromptBytes <= 0 {
		return fmt.Errorf("config: gemini.max_prompt_bytes must be positive, got %d", c.Gemini.MaxPromptBytes)
	}
	if c.Gemini.MaxRetries < 0 {
		return fmt.Errorf("config: gemini.max_retries must not be negative, got %d", c.Gemini.MaxRetries)
	}
	if c.Gemini.MaxConcurrent <= 0 {
		return fmt.Errorf("config: gemini.max_concurrent must be positive, got %d", c.Gemini.MaxConcurrent)
	}
	switch c.Pipeline.Mode {
	case ModeSequential, ModeFanOut:
	default:
		return fmt.Errorf("config: pipeline.mode must be %q or %q, got %q", ModeSequential, ModeFanOut, c.Pipeline.Mode)
	}
	switch c.Pipeline.UnknownStaffPolicy {
	case UnknownStaffDrop, UnknownStaffBucket:
	default:
		return fmt.Errorf("config: pipeline.unknown_staff_policy must be %q or %q, got %q",
			UnknownStaffDrop, UnknownStaffBucket, c.Pipeline.UnknownStaffPolicy)
	}
	if _, err := time.ParseDuration(c.Pipeline.TimeBudget); err != nil {
		return fmt.Errorf("config: pipeline.time_budget: %w", err)
	}
	if _, err := time.ParseDuration(c.Gemini.Timeout); err != nil {
		return fmt.Errorf("config: gemini.timeout: %w", err)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("config: output.dir is required")
	}
	if c.Output.Prefix == "" {
		return fmt.Errorf("config: output.prefix is required")
	}
	return nil
}

// GetTimeout returns the Gemini HTTP timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetTimeBudget returns the pipeline wall-clock budget as a duration.
func (c *Config) GetTimeBudget() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.TimeBudget)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}
