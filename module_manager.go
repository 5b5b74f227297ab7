package kernel

import (
	"context"
	"fmt"
	"sync"
)

// ModuleActivationSnapshot is the externally observable activation state:
// the single active exclusive module (empty when none) and the full set of
// active module ids in activation order.
type ModuleActivationSnapshot struct {
	ActiveExclusiveID string   `json:"activeExclusiveId,omitempty"`
	ActiveIDs         []string `json:"activeIds"`
}

// ModuleManager instantiates modules, drives their lifecycle and enforces
// the activation-mode rules. Activation state lives in two overlapping
// planes: membership in the active set (any mode) and, separately, the
// identity of the single active exclusive module. This split lets one
// workspace module own the main view while any number of utility and
// background modules run alongside it.
//
// All mutating operations are serialized by an operation lock held across
// lifecycle hooks, so concurrent callers racing on the exclusive slot see a
// consistent ordering. Lifecycle hooks must therefore not call back into the
// manager.
type ModuleManager struct {
	registry *ModuleRegistry
	mc       ModuleContext
	bus      *EventBus
	logger   Logger

	opMu sync.Mutex // serializes InitAll/Activate/Deactivate/DisposeAll

	stateMu           sync.RWMutex
	instances         map[string]ModuleInstance
	instanceOrder     []string // instantiation order
	active            map[string]bool
	activeOrder       []string // activation order
	activeExclusiveID string
}

// NewModuleManager creates a manager over the given registry. The module
// context is shared by every predicate and factory the manager evaluates.
func NewModuleManager(registry *ModuleRegistry, mc ModuleContext, bus *EventBus, logger Logger) *ModuleManager {
	return &ModuleManager{
		registry:  registry,
		mc:        mc,
		bus:       bus,
		logger:    logger,
		instances: make(map[string]ModuleInstance),
		active:    make(map[string]bool),
	}
}

// InitAll instantiates every registered module definition in registration
// order. For each definition the Enabled and Supports predicates are
// evaluated first (absent predicates default to true) and instantiation is
// skipped entirely when either resolves false. Otherwise the factory runs,
// OnInit is invoked if implemented, and background modules are activated
// immediately. After all definitions are processed a modules:ready event is
// emitted with the instantiated module ids.
//
// Enablement is evaluated only here; it is not a live toggle. Predicate,
// factory and hook errors abort the sequence and propagate: a module that
// cannot initialize must not be treated as silently present.
func (m *ModuleManager) InitAll(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	for _, def := range m.registry.List() {
		id := def.Manifest.ID

		ok, err := m.evaluateGates(ctx, def.Manifest)
		if err != nil {
			return fmt.Errorf("module %s: %w", id, err)
		}
		if !ok {
			m.logger.Debug("Skipping disabled or unsupported module", "module", id)
			continue
		}

		instance, err := def.Factory(m.mc)
		if err != nil {
			return fmt.Errorf("module %s factory failed: %w", id, err)
		}

		m.stateMu.Lock()
		m.instances[id] = instance
		m.instanceOrder = append(m.instanceOrder, id)
		m.stateMu.Unlock()

		if init, isInit := instance.(Initializer); isInit {
			if err := init.OnInit(ctx); err != nil {
				return fmt.Errorf("module %s failed to init: %w", id, err)
			}
		}
		m.logger.Debug("Initialized module", "module", id, "mode", def.Manifest.Mode())

		if def.Manifest.Mode() == ActivationBackground {
			if err := m.activateLocked(ctx, id); err != nil {
				return err
			}
		}
	}

	m.stateMu.RLock()
	ready := append([]string(nil), m.instanceOrder...)
	m.stateMu.RUnlock()

	m.emit(EventModulesReady, ModulesReadyPayload{ModuleIDs: ready})
	m.logger.Info("Modules ready", "count", len(ready))
	return nil
}

// evaluateGates runs the Enabled and Supports predicates for a manifest.
func (m *ModuleManager) evaluateGates(ctx context.Context, manifest ModuleManifest) (bool, error) {
	for _, gate := range []struct {
		name string
		pred Predicate
	}{
		{"enabled", manifest.Enabled},
		{"supports", manifest.Supports},
	} {
		if gate.pred == nil {
			continue
		}
		ok, err := gate.pred(ctx, m.mc)
		if err != nil {
			return false, fmt.Errorf("%s predicate failed: %w", gate.name, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Activate makes the module with the given id active. Unknown and
// already-active ids are clean no-ops. For exclusive modules the currently
// active exclusive module, if different, is deactivated first — its
// OnDeactivate completes before the incoming module's OnActivate begins —
// while parallel and background modules are untouched. A module:activated
// event reflecting the post-activation state is emitted on success.
func (m *ModuleManager) Activate(ctx context.Context, id string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.activateLocked(ctx, id)
}

func (m *ModuleManager) activateLocked(ctx context.Context, id string) error {
	m.stateMu.RLock()
	instance, known := m.instances[id]
	alreadyActive := m.active[id]
	outgoingID := m.activeExclusiveID
	m.stateMu.RUnlock()

	if !known || alreadyActive {
		return nil
	}

	mode := instance.Manifest().Mode()
	if mode == ActivationExclusive && outgoingID != "" && outgoingID != id {
		if err := m.deactivateLocked(ctx, outgoingID, true); err != nil {
			return err
		}
	}

	m.stateMu.Lock()
	m.active[id] = true
	m.activeOrder = append(m.activeOrder, id)
	if mode == ActivationExclusive {
		m.activeExclusiveID = id
	}
	m.stateMu.Unlock()

	if activator, ok := instance.(Activator); ok {
		if err := activator.OnActivate(ctx); err != nil {
			return fmt.Errorf("module %s failed to activate: %w", id, err)
		}
	}

	snap := m.Snapshot()
	m.emit(EventModuleActivated, ModuleActivatedPayload{
		ModuleID:          id,
		Mode:              mode,
		ActiveExclusiveID: snap.ActiveExclusiveID,
		ActiveIDs:         snap.ActiveIDs,
	})
	m.logger.Info("Module activated", "module", id, "mode", mode)
	return nil
}

// Deactivate removes the module with the given id from the active set,
// invoking OnDeactivate first and clearing the exclusive slot when it held
// it. Inactive and unknown ids are clean no-ops. A module:deactivated event
// reflecting the post-deactivation state is emitted on success.
func (m *ModuleManager) Deactivate(ctx context.Context, id string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.deactivateLocked(ctx, id, true)
}

// deactivateLocked performs deactivation under the operation lock. The
// OnDeactivate hook runs before state is mutated so the module observes
// itself as still active, but the emitted event reflects the post-state.
func (m *ModuleManager) deactivateLocked(ctx context.Context, id string, emit bool) error {
	m.stateMu.RLock()
	instance, known := m.instances[id]
	isActive := m.active[id]
	m.stateMu.RUnlock()

	if !known || !isActive {
		return nil
	}

	if deactivator, ok := instance.(Deactivator); ok {
		if err := deactivator.OnDeactivate(ctx); err != nil {
			return fmt.Errorf("module %s failed to deactivate: %w", id, err)
		}
	}

	m.stateMu.Lock()
	delete(m.active, id)
	for i, activeID := range m.activeOrder {
		if activeID == id {
			m.activeOrder = append(m.activeOrder[:i:i], m.activeOrder[i+1:]...)
			break
		}
	}
	if m.activeExclusiveID == id {
		m.activeExclusiveID = ""
	}
	m.stateMu.Unlock()

	if emit {
		snap := m.Snapshot()
		m.emit(EventModuleDeactivated, ModuleDeactivatedPayload{
			ModuleID:          id,
			ActiveExclusiveID: snap.ActiveExclusiveID,
			ActiveIDs:         snap.ActiveIDs,
		})
	}
	m.logger.Info("Module deactivated", "module", id)
	return nil
}

// DeactivateAll deactivates every currently active module, awaiting each
// module's OnDeactivate before moving to the next, then emits a single
// modules:deactivated event listing everything that was deactivated.
func (m *ModuleManager) DeactivateAll(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.stateMu.RLock()
	ids := append([]string(nil), m.activeOrder...)
	m.stateMu.RUnlock()

	for _, id := range ids {
		if err := m.deactivateLocked(ctx, id, false); err != nil {
			return err
		}
	}

	m.emit(EventModulesDeactivated, ModulesDeactivatedPayload{ModuleIDs: ids})
	return nil
}

// DisposeAll invokes OnDispose on every instantiated module, active or not,
// in instantiation order, then clears all instance and activation state.
// Used at shutdown; the first hook error aborts the sequence and leaves the
// remaining state in place for the caller to inspect.
func (m *ModuleManager) DisposeAll(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.stateMu.RLock()
	ids := append([]string(nil), m.instanceOrder...)
	m.stateMu.RUnlock()

	for _, id := range ids {
		m.stateMu.RLock()
		instance := m.instances[id]
		m.stateMu.RUnlock()

		if disposer, ok := instance.(Disposer); ok {
			if err := disposer.OnDispose(ctx); err != nil {
				return fmt.Errorf("module %s failed to dispose: %w", id, err)
			}
		}
	}

	m.stateMu.Lock()
	m.instances = make(map[string]ModuleInstance)
	m.instanceOrder = nil
	m.active = make(map[string]bool)
	m.activeOrder = nil
	m.activeExclusiveID = ""
	m.stateMu.Unlock()

	m.logger.Info("Modules disposed", "count", len(ids))
	return nil
}

// InstantiatedIDs returns the ids of all instantiated modules in
// instantiation order.
func (m *ModuleManager) InstantiatedIDs() []string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return append([]string(nil), m.instanceOrder...)
}

// Snapshot returns the externally observable activation state.
func (m *ModuleManager) Snapshot() ModuleActivationSnapshot {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	return ModuleActivationSnapshot{
		ActiveExclusiveID: m.activeExclusiveID,
		ActiveIDs:         append([]string{}, m.activeOrder...),
	}
}

// emit publishes a kernel event, logging rather than propagating bus errors.
// Reserved event names are known valid, so failures here indicate a bug.
func (m *ModuleManager) emit(name string, payload any) {
	if err := m.bus.Emit(name, payload); err != nil {
		m.logger.Error("Failed to emit kernel event", "event", name, "error", err)
	}
}
