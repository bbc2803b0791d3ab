package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, "medium", cfg.Difficulty)
	require.Equal(t, 10, cfg.Scoring.MistakePenalty)
	require.Equal(t, 30*time.Minute, cfg.Quotes.NoRepeatWindow)
	require.True(t, cfg.UI.ShowFrequency)
	require.True(t, cfg.UI.ShowTimer)
	require.False(t, cfg.Tracing.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"negative penalty", func(c *Config) { c.Scoring.MistakePenalty = -1 }, true},
		{"negative no-repeat window", func(c *Config) { c.Quotes.NoRepeatWindow = -time.Minute }, true},
		{"unknown exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, true},
		{"empty exporter", func(c *Config) { c.Tracing.Exporter = "" }, false},
		{"zero penalty allowed", func(c *Config) { c.Scoring.MistakePenalty = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// The template must be valid YAML matching the config shape.
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.Equal(t, "medium", parsed["difficulty"])

	scoring, ok := parsed["scoring"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 10, scoring["mistake_penalty"])
}

func TestDefaultDatabasePath(t *testing.T) {
	path := DefaultDatabasePath()
	require.NotEmpty(t, path)
	require.Equal(t, "games.db", filepath.Base(path))
}
