package kernel

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogWatcherEmitsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modules: []\n"), 0o600))

	logger := newTestLogger(t)
	bus := NewEventBus(logger)

	var mu sync.Mutex
	var payloads []CatalogChangedPayload
	_, err := bus.On(EventCatalogChanged, func(event Event) error {
		mu.Lock()
		defer mu.Unlock()
		if p, ok := event.Payload.(CatalogChangedPayload); ok {
			payloads = append(payloads, p)
		}
		return nil
	})
	require.NoError(t, err)

	watcher, err := WatchCatalogs(bus, logger, path)
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	require.NoError(t, os.WriteFile(path, []byte("modules: [] # edited\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(payloads) > 0
	}, 5*time.Second, 10*time.Millisecond, "expected catalog:changed after file edit")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, path, payloads[0].Path)
	assert.NotEmpty(t, payloads[0].Op)
}

func TestCatalogWatcherUnknownPath(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	_, err := WatchCatalogs(bus, newTestLogger(t), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestCatalogWatcherCloseIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modules: []\n"), 0o600))

	bus := NewEventBus(newTestLogger(t))
	watcher, err := WatchCatalogs(bus, newTestLogger(t), path)
	require.NoError(t, err)

	require.NoError(t, watcher.Close())
	require.NoError(t, watcher.Close())
}
