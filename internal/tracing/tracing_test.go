package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.False(t, cfg.Enabled, "tracing should be off by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, DefaultServiceName, cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())
	require.NotNil(t, provider.Tracer(), "disabled provider should still hand out a tracer")

	// Spans from the no-op tracer are invalid but safe to use
	_, span := provider.Tracer().Start(context.Background(), "game.guess")
	require.False(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Enabled_WithFileExporter(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:  true,
		Exporter: "file",
		FilePath: tracePath,
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "game.new",
		trace.WithAttributes(attribute.String("difficulty", "hard")))
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))

	// Span should be flushed to the file as one JSON object per line
	file, err := os.Open(tracePath)
	require.NoError(t, err)
	defer file.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, records, 1)
	require.Equal(t, "game.new", records[0].Name)
	require.Equal(t, "hard", records[0].Attributes["difficulty"])
}

func TestNewProvider_Enabled_WithNoExporter(t *testing.T) {
	provider, err := NewProvider(Config{
		Enabled:  true,
		Exporter: "none",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	// Spans are real even without an exporter
	_, span := provider.Tracer().Start(context.Background(), "game.hint")
	require.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporter_MissingPath(t *testing.T) {
	_, err := NewProvider(Config{
		Enabled:  true,
		Exporter: "file",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "file_path required")
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(Config{
		Enabled:  true,
		Exporter: "carrier-pigeon",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported exporter")
}

func TestFileExporter_AppendsToExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "traces.jsonl")

	require.NoError(t, os.WriteFile(tracePath, []byte("{\"existing\":true}\n"), 0o600))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Contains(t, string(data), "existing", "opening the exporter should not truncate the file")
}

func TestFileExporter_ExportEmptySpans(t *testing.T) {
	tmpDir := t.TempDir()
	exporter, err := NewFileExporter(filepath.Join(tmpDir, "traces.jsonl"))
	require.NoError(t, err)
	defer exporter.Shutdown(context.Background())

	require.NoError(t, exporter.ExportSpans(context.Background(), nil))
}

func TestFileExporter_Shutdown_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	exporter, err := NewFileExporter(filepath.Join(tmpDir, "traces.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()), "second shutdown should be a no-op")
}
