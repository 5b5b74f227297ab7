package kernel

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ModuleSnapshot is the read-model projection of the module subsystem:
// activation state plus every registered manifest, sorted by id for stable
// presentation.
type ModuleSnapshot struct {
	Activation ModuleActivationSnapshot `json:"activation"`
	Manifests  []ModuleManifest         `json:"manifests"`
}

// Snapshot is the consolidated kernel read model handed to presentation
// code. It is a value copy; mutating it has no effect on the kernel.
type Snapshot struct {
	Adapters AdapterSnapshot `json:"adapters"`
	Modules  ModuleSnapshot  `json:"modules"`
}

// Kernel is the top-level coordinator. It owns the event bus, the adapter
// and module registries and the module loader, sequences boot, exposes the
// consolidated read model, and forwards activation requests to the module
// manager it constructs during boot.
//
// A process is expected to hold exactly one Kernel, constructed explicitly
// by its entry point and passed to collaborators by dependency injection.
type Kernel struct {
	logger   Logger
	bus      *EventBus
	adapters *AdapterRegistry
	modules  *ModuleRegistry
	loader   *ModuleLoader

	mu      sync.RWMutex
	manager *ModuleManager
	booted  bool
}

// New creates an unbooted kernel.
func New(logger Logger) *Kernel {
	bus := NewEventBus(logger)
	modules := NewModuleRegistry(logger)
	return &Kernel{
		logger:   logger,
		bus:      bus,
		adapters: NewAdapterRegistry(logger),
		modules:  modules,
		loader:   NewModuleLoader(modules, logger),
	}
}

// Bus returns the kernel event bus. Presentation code subscribes here to
// re-render on lifecycle events.
func (k *Kernel) Bus() *EventBus {
	return k.bus
}

// Adapters returns the adapter registry. Adapters are registered before
// Boot; modules reach them only through the module context.
func (k *Kernel) Adapters() *AdapterRegistry {
	return k.adapters
}

// Modules returns the module registry.
func (k *Kernel) Modules() *ModuleRegistry {
	return k.modules
}

// RegisterAdapter adds a platform adapter to the kernel.
func (k *Kernel) RegisterAdapter(adapter Adapter) error {
	return k.adapters.Register(adapter)
}

// SetViewResolver propagates a presentation-layer view predicate into the
// module registry so manifests can be validated against views the kernel
// itself knows nothing about.
func (k *Kernel) SetViewResolver(resolver ViewResolver) {
	k.modules.SetViewResolver(resolver)
}

// Boot brings the kernel up: adapters are initialized, module definitions
// are loaded from the given providers, the module manager is constructed
// with a context bound to the adapter registry and the bus, and every
// enabled module is instantiated (background modules auto-activate). Any
// failure aborts boot; a partially initialized kernel is never handed out.
func (k *Kernel) Boot(ctx context.Context, providers ...ModuleProvider) error {
	k.mu.Lock()
	if k.booted {
		k.mu.Unlock()
		return ErrKernelAlreadyBooted
	}
	k.booted = true
	k.mu.Unlock()

	if err := k.adapters.InitializeAll(ctx); err != nil {
		return fmt.Errorf("kernel boot: %w", err)
	}
	k.emit(EventAdaptersInitialized, AdaptersInitializedPayload{AdapterIDs: k.adapterIDs()})

	if err := k.loader.LoadFromProviders(ctx, providers...); err != nil {
		return fmt.Errorf("kernel boot: %w", err)
	}

	manager := NewModuleManager(k.modules, &moduleContext{adapters: k.adapters, bus: k.bus}, k.bus, k.logger)
	k.mu.Lock()
	k.manager = manager
	k.mu.Unlock()

	if err := manager.InitAll(ctx); err != nil {
		return fmt.Errorf("kernel boot: %w", err)
	}

	k.logger.Info("Kernel booted", "adapters", len(k.adapterIDs()), "modules", len(manager.InstantiatedIDs()))
	return nil
}

// ActivateModule forwards to the module manager. A no-op before boot.
func (k *Kernel) ActivateModule(ctx context.Context, id string) error {
	if manager := k.getManager(); manager != nil {
		return manager.Activate(ctx, id)
	}
	return nil
}

// DeactivateModule forwards to the module manager. A no-op before boot.
func (k *Kernel) DeactivateModule(ctx context.Context, id string) error {
	if manager := k.getManager(); manager != nil {
		return manager.Deactivate(ctx, id)
	}
	return nil
}

// DeactivateAllModules forwards to the module manager. A no-op before boot.
func (k *Kernel) DeactivateAllModules(ctx context.Context) error {
	if manager := k.getManager(); manager != nil {
		return manager.DeactivateAll(ctx)
	}
	return nil
}

// Shutdown winds the kernel down: all modules are deactivated and disposed,
// then adapters are disposed and adapters:disposed is emitted. Hook errors
// abort the sequence and propagate, mirroring the fail-loud boot policy.
func (k *Kernel) Shutdown(ctx context.Context) error {
	if manager := k.getManager(); manager != nil {
		if err := manager.DeactivateAll(ctx); err != nil {
			return fmt.Errorf("kernel shutdown: %w", err)
		}
		if err := manager.DisposeAll(ctx); err != nil {
			return fmt.Errorf("kernel shutdown: %w", err)
		}
	}

	ids := k.adapterIDs()
	if err := k.adapters.DisposeAll(ctx); err != nil {
		return fmt.Errorf("kernel shutdown: %w", err)
	}
	k.emit(EventAdaptersDisposed, AdaptersDisposedPayload{AdapterIDs: ids})
	k.logger.Info("Kernel shut down")
	return nil
}

// Snapshot returns the consolidated kernel read model: the adapter snapshot
// plus activation state and all manifests sorted by id.
func (k *Kernel) Snapshot() Snapshot {
	manifests := make([]ModuleManifest, 0)
	for _, def := range k.modules.List() {
		manifests = append(manifests, def.Manifest)
	}
	slices.SortFunc(manifests, func(a, b ModuleManifest) int {
		return strings.Compare(a.ID, b.ID)
	})

	activation := ModuleActivationSnapshot{ActiveIDs: []string{}}
	if manager := k.getManager(); manager != nil {
		activation = manager.Snapshot()
	}

	return Snapshot{
		Adapters: k.adapters.Snapshot(),
		Modules: ModuleSnapshot{
			Activation: activation,
			Manifests:  manifests,
		},
	}
}

func (k *Kernel) getManager() *ModuleManager {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.manager
}

func (k *Kernel) adapterIDs() []string {
	adapters := k.adapters.List()
	ids := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		ids = append(ids, adapter.Metadata().ID)
	}
	return ids
}

func (k *Kernel) emit(name string, payload any) {
	if err := k.bus.Emit(name, payload); err != nil {
		k.logger.Error("Failed to emit kernel event", "event", name, "error", err)
	}
}

// moduleContext binds capability lookup to the adapter registry and event
// emission to the bus. It is the only thing module factories ever see.
type moduleContext struct {
	adapters *AdapterRegistry
	bus      *EventBus
}

func (c *moduleContext) GetAdapter(capability string) (Adapter, bool) {
	return c.adapters.FindByCapability(capability)
}

func (c *moduleContext) EmitEvent(name string, payload any) error {
	return c.bus.Emit(name, payload)
}
