// Package config provides configuration types and defaults for ciphergram.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/ciphergram/internal/log"
)

// Config holds all configuration options for ciphergram.
type Config struct {
	// Difficulty is the default difficulty for new games: easy, medium, hard.
	Difficulty string `mapstructure:"difficulty"`

	Database DatabaseConfig `mapstructure:"database"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Quotes   QuotesConfig   `mapstructure:"quotes"`
	UI       UIConfig       `mapstructure:"ui"`
	Theme    ThemeConfig    `mapstructure:"theme"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// DatabaseConfig holds game history storage options.
type DatabaseConfig struct {
	// Path to the games database file.
	// Default: ~/.local/share/ciphergram/games.db
	Path string `mapstructure:"path"`
}

// ScoringConfig holds score tuning constants.
type ScoringConfig struct {
	// MistakePenalty is the per-mistake deduction applied by the scoring
	// function. Exposed as configuration rather than a hidden constant.
	MistakePenalty int `mapstructure:"mistake_penalty"`
}

// QuotesConfig holds quote pack options.
type QuotesConfig struct {
	// File is an optional YAML quote pack merged with the builtin pack.
	// Edits to the file are picked up while the app runs.
	File string `mapstructure:"file"`

	// NoRepeatWindow is how long a served quote is excluded from the
	// random draw. Zero disables the filter.
	NoRepeatWindow time.Duration `mapstructure:"no_repeat_window"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowFrequency bool `mapstructure:"show_frequency"` // Show the letter-frequency strip
	ShowTimer     bool `mapstructure:"show_timer"`     // Show elapsed play time
}

// ThemeConfig holds color customization options.
type ThemeConfig struct {
	Highlight string `mapstructure:"highlight"` // Selected cipher letter
	Subtle    string `mapstructure:"subtle"`    // Placeholder and hints
	Error     string `mapstructure:"error"`     // Mistakes and the loss banner
	Success   string `mapstructure:"success"`   // Revealed letters and the win banner
}

// TracingConfig configures the optional OpenTelemetry pipeline.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"` // "none", "file", "stdout", "otlp"
	FilePath     string  `mapstructure:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	ServiceName  string  `mapstructure:"service_name"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Difficulty: "medium",
		Database: DatabaseConfig{
			Path: "", // Derived from the data dir at runtime
		},
		Scoring: ScoringConfig{
			MistakePenalty: 10,
		},
		Quotes: QuotesConfig{
			File:           "",
			NoRepeatWindow: 30 * time.Minute,
		},
		UI: UIConfig{
			ShowFrequency: true,
			ShowTimer:     true,
		},
		Theme: ThemeConfig{
			Highlight: "#3498DB",
			Subtle:    "#696969",
			Error:     "#FF8787",
			Success:   "#73F59F",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from the config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
			ServiceName:  "ciphergram",
		},
	}
}

// Validate checks the configuration for values that cannot be recovered from.
func (c Config) Validate() error {
	if c.Scoring.MistakePenalty < 0 {
		return fmt.Errorf("scoring.mistake_penalty must not be negative, got %d", c.Scoring.MistakePenalty)
	}
	if c.Quotes.NoRepeatWindow < 0 {
		return fmt.Errorf("quotes.no_repeat_window must not be negative, got %s", c.Quotes.NoRepeatWindow)
	}
	switch c.Tracing.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be one of none, file, stdout, otlp; got %q", c.Tracing.Exporter)
	}
	return nil
}

// DefaultDatabasePath returns the default location of the games database.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ciphergram", "games.db")
	}
	return filepath.Join(home, ".local", "share", "ciphergram", "games.db")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Ciphergram Configuration

# Default difficulty for new games: easy (8 tokens), medium (5), hard (3)
difficulty: medium

# Game history storage
# database:
#   path: /path/to/games.db

# Score tuning
scoring:
  mistake_penalty: 10   # Points deducted per wrong guess or hint

# Quote packs
quotes:
  # Optional YAML file with your own quotes, merged with the builtin pack.
  # Edits are picked up while the app is running.
  # file: ~/.config/ciphergram/quotes.yaml
  no_repeat_window: 30m # How long before a served quote may repeat

# UI settings
ui:
  show_frequency: true  # Show how often each cipher letter occurs
  show_timer: true      # Show elapsed play time

# Theme colors (hex)
theme:
  highlight: "#3498DB"
  subtle: "#696969"
  error: "#FF8787"
  success: "#73F59F"

# Tracing (for debugging; disabled by default)
# tracing:
#   enabled: true
#   exporter: stdout    # none, file, stdout, otlp
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
