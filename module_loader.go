package kernel

import (
	"context"
	"fmt"
)

// ModuleProvider supplies module definitions to the kernel at boot. The
// built-in CatalogProvider reads definitions from manifest files; embedding
// applications typically add a static provider for compiled-in modules.
type ModuleProvider interface {
	// ProviderID identifies the provider in logs and errors.
	ProviderID() string

	// Load returns the module definitions this provider contributes.
	Load(ctx context.Context) ([]ModuleDefinition, error)
}

// StaticProvider is a ModuleProvider over a fixed definition list.
type StaticProvider struct {
	ID          string
	Definitions []ModuleDefinition
}

// ProviderID implements ModuleProvider.
func (p StaticProvider) ProviderID() string {
	return p.ID
}

// Load implements ModuleProvider.
func (p StaticProvider) Load(_ context.Context) ([]ModuleDefinition, error) {
	return p.Definitions, nil
}

// ModuleLoader pulls module definitions from providers into a
// ModuleRegistry during boot.
type ModuleLoader struct {
	registry *ModuleRegistry
	logger   Logger
}

// NewModuleLoader creates a loader that registers into registry.
func NewModuleLoader(registry *ModuleRegistry, logger Logger) *ModuleLoader {
	return &ModuleLoader{registry: registry, logger: logger}
}

// LoadFromProviders loads every provider in order and registers each
// resulting definition. Any provider or registration error aborts the whole
// sequence: a partially loaded module set is an unsafe state for the kernel
// to continue booting from.
func (l *ModuleLoader) LoadFromProviders(ctx context.Context, providers ...ModuleProvider) error {
	for _, provider := range providers {
		defs, err := provider.Load(ctx)
		if err != nil {
			return fmt.Errorf("%w: provider %s: %w", ErrProviderLoad, provider.ProviderID(), err)
		}

		for _, def := range defs {
			if err := l.registry.Register(def); err != nil {
				return fmt.Errorf("provider %s: %w", provider.ProviderID(), err)
			}
		}
		l.logger.Debug("Loaded module definitions", "provider", provider.ProviderID(), "count", len(defs))
	}
	return nil
}
