package kernel

import (
	"fmt"
	"sync"
)

// ViewResolver reports whether the presentation layer knows the given view
// id. It is pushed into the registry by bootstrap code so manifests can be
// cross-checked against a UI layer the kernel never imports.
type ViewResolver func(viewID string) bool

// ModuleRegistry stores module definitions keyed by id. It validates module
// identity and, when a view resolver has been configured, the consistency of
// manifest UI references.
type ModuleRegistry struct {
	mu           sync.RWMutex
	definitions  map[string]ModuleDefinition
	order        []string // registration order
	viewResolver ViewResolver
	logger       Logger
}

// NewModuleRegistry creates an empty module registry.
func NewModuleRegistry(logger Logger) *ModuleRegistry {
	return &ModuleRegistry{
		definitions: make(map[string]ModuleDefinition),
		logger:      logger,
	}
}

// SetViewResolver installs the predicate used to validate manifest view
// references at registration time. Passing nil disables the check.
func (r *ModuleRegistry) SetViewResolver(resolver ViewResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewResolver = resolver
}

// Register validates and stores a module definition. It fails with
// ErrInvalidModuleID when the id violates the module id grammar,
// ErrDuplicateModuleID when the id is already registered,
// ErrNilModuleFactory when the definition carries no factory, and
// ErrUnknownViewReference when the manifest declares a view id the
// configured resolver does not recognize. On any failure the registry is
// left unchanged.
func (r *ModuleRegistry) Register(def ModuleDefinition) error {
	id := def.Manifest.ID
	if err := ValidateModuleID(id); err != nil {
		return err
	}
	if def.Factory == nil {
		return fmt.Errorf("%w: %s", ErrNilModuleFactory, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModuleID, id)
	}
	if def.Manifest.View != nil && def.Manifest.View.ViewID != "" && r.viewResolver != nil {
		if !r.viewResolver(def.Manifest.View.ViewID) {
			return fmt.Errorf("%w: module %s references view %q", ErrUnknownViewReference, id, def.Manifest.View.ViewID)
		}
	}

	r.definitions[id] = def
	r.order = append(r.order, id)
	r.logger.Debug("Registered module definition", "module", id, "mode", def.Manifest.Mode())
	return nil
}

// Unregister removes the definition with the given id. Removing an unknown
// id is a no-op.
func (r *ModuleRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[id]; !exists {
		return
	}
	delete(r.definitions, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the definition registered under id, if present.
func (r *ModuleRegistry) Get(id string) (ModuleDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[id]
	return def, ok
}

// List returns all registered definitions in registration order.
func (r *ModuleRegistry) List() []ModuleDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ModuleDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.definitions[id])
	}
	return out
}
