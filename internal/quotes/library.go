package quotes

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/ciphergram/internal/log"
	"github.com/zjrosen/ciphergram/internal/watcher"
)

//go:embed quotes.json
var builtinPack []byte

// filePack is the YAML shape of a user quote pack.
type filePack struct {
	Quotes []Quote `yaml:"quotes"`
}

// Library serves quotes from the builtin pack plus an optional user pack.
// It is safe for concurrent use.
type Library struct {
	mu      sync.RWMutex
	rng     *rand.Rand
	rngMu   sync.Mutex
	builtin []Quote
	custom  []Quote
	path    string
	watch   *watcher.Watcher
}

var _ Provider = (*Library)(nil)

// NewLibrary creates a library backed by the builtin embedded pack.
// Randomness is injected so tests can seed the draw.
func NewLibrary(rng *rand.Rand) (*Library, error) {
	var builtin []Quote
	if err := json.Unmarshal(builtinPack, &builtin); err != nil {
		return nil, fmt.Errorf("parsing builtin quote pack: %w", err)
	}
	return newLibrary(rng, builtin), nil
}

func newLibrary(rng *rand.Rand, builtin []Quote) *Library {
	return &Library{rng: rng, builtin: builtin}
}

// AttachFile loads a user YAML quote pack and watches it for edits,
// reloading on change until Close is called. Entries without an id get one
// derived from their position.
func (l *Library) AttachFile(path string) error {
	l.mu.Lock()
	l.path = path
	l.mu.Unlock()

	if err := l.Reload(); err != nil {
		return err
	}

	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return fmt.Errorf("creating quote pack watcher: %w", err)
	}
	onChange, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return fmt.Errorf("starting quote pack watcher: %w", err)
	}
	l.watch = w

	go func() {
		for range onChange {
			log.Info(log.CatWatch, "Quote pack changed, reloading", "path", path)
			if err := l.Reload(); err != nil {
				log.ErrorErr(log.CatWatch, "Failed to reload quote pack", err, "path", path)
			}
		}
	}()

	return nil
}

// Reload re-reads the attached user pack. A no-op when no file is attached.
func (l *Library) Reload() error {
	l.mu.RLock()
	path := l.path
	l.mu.RUnlock()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is user-configured quote pack
	if err != nil {
		return fmt.Errorf("reading quote pack: %w", err)
	}

	var pack filePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("parsing quote pack: %w", err)
	}

	custom := make([]Quote, 0, len(pack.Quotes))
	for i, q := range pack.Quotes {
		if q.Text == "" {
			continue
		}
		if q.ID == "" {
			q.ID = fmt.Sprintf("file-%03d", i+1)
		}
		custom = append(custom, q)
	}

	l.mu.Lock()
	l.custom = custom
	l.mu.Unlock()

	log.Info(log.CatQuote, "Loaded quote pack", "path", path, "quotes", len(custom))
	return nil
}

// Random returns a quote drawn uniformly from the combined pool.
func (l *Library) Random(ctx context.Context) (Quote, error) {
	l.mu.RLock()
	pool := make([]Quote, 0, len(l.builtin)+len(l.custom))
	pool = append(pool, l.builtin...)
	pool = append(pool, l.custom...)
	l.mu.RUnlock()

	if len(pool) == 0 {
		return Quote{}, ErrNoQuotes
	}

	l.rngMu.Lock()
	idx := l.rng.Intn(len(pool))
	l.rngMu.Unlock()
	return pool[idx], nil
}

// Len returns the size of the combined pool.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.builtin) + len(l.custom)
}

// Close stops the quote pack watcher, if any.
func (l *Library) Close() error {
	if l.watch != nil {
		return l.watch.Stop()
	}
	return nil
}
