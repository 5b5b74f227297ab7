package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct {
	id  string
	err error
}

func (p failingProvider) ProviderID() string {
	return p.id
}

func (p failingProvider) Load(context.Context) ([]ModuleDefinition, error) {
	return nil, p.err
}

func TestModuleLoaderRegistersAllDefinitions(t *testing.T) {
	t.Parallel()
	registry := NewModuleRegistry(newTestLogger(t))
	loader := NewModuleLoader(registry, newTestLogger(t))

	defA, _ := definitionFor(testManifest("device.android.install", ActivationExclusive), nil)
	defB, _ := definitionFor(testManifest("device.harmony.install", ActivationExclusive), nil)
	defC, _ := definitionFor(testManifest("ui.panel.logs", ActivationParallel), nil)

	err := loader.LoadFromProviders(context.Background(),
		StaticProvider{ID: "android", Definitions: []ModuleDefinition{defA, defB}},
		StaticProvider{ID: "ui", Definitions: []ModuleDefinition{defC}},
	)
	require.NoError(t, err)

	defs := registry.List()
	require.Len(t, defs, 3)
	assert.Equal(t, "device.android.install", defs[0].Manifest.ID)
	assert.Equal(t, "device.harmony.install", defs[1].Manifest.ID)
	assert.Equal(t, "ui.panel.logs", defs[2].Manifest.ID)
}

func TestModuleLoaderFailsFastOnProviderError(t *testing.T) {
	t.Parallel()
	registry := NewModuleRegistry(newTestLogger(t))
	loader := NewModuleLoader(registry, newTestLogger(t))

	good, _ := definitionFor(testManifest("device.android.install", ActivationExclusive), nil)
	notReached, _ := definitionFor(testManifest("ui.panel.logs", ActivationParallel), nil)

	err := loader.LoadFromProviders(context.Background(),
		StaticProvider{ID: "first", Definitions: []ModuleDefinition{good}},
		failingProvider{id: "broken", err: errors.New("catalog corrupted")},
		StaticProvider{ID: "never", Definitions: []ModuleDefinition{notReached}},
	)
	require.ErrorIs(t, err, ErrProviderLoad)
	assert.Contains(t, err.Error(), "broken")

	// Definitions registered before the failure stay registered; the boot
	// caller is expected to abort rather than continue with them.
	assert.Len(t, registry.List(), 1)
}

func TestModuleLoaderFailsFastOnRegistrationError(t *testing.T) {
	t.Parallel()
	registry := NewModuleRegistry(newTestLogger(t))
	loader := NewModuleLoader(registry, newTestLogger(t))

	def, _ := definitionFor(testManifest("device.android.install", ActivationExclusive), nil)
	dup, _ := definitionFor(testManifest("device.android.install", ActivationExclusive), nil)

	err := loader.LoadFromProviders(context.Background(),
		StaticProvider{ID: "static", Definitions: []ModuleDefinition{def, dup}},
	)
	require.ErrorIs(t, err, ErrDuplicateModuleID)
	assert.Contains(t, err.Error(), "static")
}
