package cmd

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/ciphergram/internal/config"
)

// TestOpenDatabase_UsesConfiguredPath verifies the configured path wins over
// the default data-directory location.
func TestOpenDatabase_UsesConfiguredPath(t *testing.T) {
	tmpDir := t.TempDir()
	old := cfg
	t.Cleanup(func() { cfg = old })

	cfg = config.Defaults()
	cfg.Database.Path = filepath.Join(tmpDir, "games.db")

	db, err := openDatabase()
	require.NoError(t, err)
	defer db.Close()

	require.FileExists(t, cfg.Database.Path)
}

// TestBuildQuoteProvider_Builtin verifies the builtin pack alone yields a
// working provider.
func TestBuildQuoteProvider_Builtin(t *testing.T) {
	old := cfg
	t.Cleanup(func() { cfg = old })
	cfg = config.Defaults()
	cfg.Quotes.File = ""

	provider, cleanup, err := buildQuoteProvider(rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	defer cleanup()

	q, err := provider.Random(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, q.Text)
}

// TestBuildQuoteProvider_BrokenUserPack verifies a missing user pack does not
// prevent startup.
func TestBuildQuoteProvider_BrokenUserPack(t *testing.T) {
	old := cfg
	t.Cleanup(func() { cfg = old })
	cfg = config.Defaults()
	cfg.Quotes.File = filepath.Join(t.TempDir(), "missing.yaml")

	provider, cleanup, err := buildQuoteProvider(rand.New(rand.NewSource(1)))
	require.NoError(t, err, "a broken user pack should fall back to the builtin pool")
	defer cleanup()

	q, err := provider.Random(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, q.Text)
}
