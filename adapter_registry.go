package kernel

import (
	"context"
	"fmt"
	"sync"
)

// AdapterRegistry stores platform-capability providers. It owns the adapter
// map exclusively; the rest of the kernel and all modules reach adapters
// only through capability lookup or the read-only snapshot.
type AdapterRegistry struct {
	mu           sync.RWMutex
	adapters     []Adapter // registration order
	byID         map[string]Adapter
	availability map[string]AvailabilityInfo
	logger       Logger
}

// NewAdapterRegistry creates an empty adapter registry.
func NewAdapterRegistry(logger Logger) *AdapterRegistry {
	return &AdapterRegistry{
		byID:         make(map[string]Adapter),
		availability: make(map[string]AvailabilityInfo),
		logger:       logger,
	}
}

// Register adds an adapter. Fails with ErrDuplicateAdapterID if an adapter
// with the same id is already present.
func (r *AdapterRegistry) Register(adapter Adapter) error {
	meta := adapter.Metadata()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[meta.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAdapterID, meta.ID)
	}

	r.adapters = append(r.adapters, adapter)
	r.byID[meta.ID] = adapter
	r.logger.Debug("Registered adapter", "adapter", meta.ID, "platform", meta.Platform)
	return nil
}

// Unregister removes the adapter with the given id. Removing an unknown id
// is a no-op.
func (r *AdapterRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return
	}
	delete(r.byID, id)
	delete(r.availability, id)
	for i, adapter := range r.adapters {
		if adapter.Metadata().ID == id {
			r.adapters = append(r.adapters[:i:i], r.adapters[i+1:]...)
			break
		}
	}
}

// List returns all registered adapters in registration order.
func (r *AdapterRegistry) List() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Get returns the adapter with the given id, if registered.
func (r *AdapterRegistry) Get(id string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.byID[id]
	return adapter, ok
}

// FindByCapability returns the first adapter, in registration order, that
// supports the given capability. The boolean reports whether one was found;
// absence is not an error (callers degrade the dependent feature instead).
func (r *AdapterRegistry) FindByCapability(capability string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, adapter := range r.adapters {
		if adapter.Supports(capability) {
			return adapter, true
		}
	}
	return nil, false
}

// FindAllByCapability returns every adapter supporting the given capability,
// in registration order.
func (r *AdapterRegistry) FindAllByCapability(capability string) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Adapter
	for _, adapter := range r.adapters {
		if adapter.Supports(capability) {
			out = append(out, adapter)
		}
	}
	return out
}

// InitializeAll invokes the optional Initialize hook of every adapter in
// registration order. Adapters without the hook are skipped. The first hook
// error aborts the sequence.
func (r *AdapterRegistry) InitializeAll(ctx context.Context) error {
	for _, adapter := range r.List() {
		init, ok := adapter.(AdapterInitializer)
		if !ok {
			continue
		}
		id := adapter.Metadata().ID
		if err := init.Initialize(ctx); err != nil {
			return fmt.Errorf("adapter %s failed to initialize: %w", id, err)
		}
		r.logger.Debug("Initialized adapter", "adapter", id)
	}
	return nil
}

// DisposeAll invokes the optional Dispose hook of every adapter in
// registration order. The first hook error aborts the sequence.
func (r *AdapterRegistry) DisposeAll(ctx context.Context) error {
	for _, adapter := range r.List() {
		disposer, ok := adapter.(AdapterDisposer)
		if !ok {
			continue
		}
		id := adapter.Metadata().ID
		if err := disposer.Dispose(ctx); err != nil {
			return fmt.Errorf("adapter %s failed to dispose: %w", id, err)
		}
		r.logger.Debug("Disposed adapter", "adapter", id)
	}
	return nil
}

// ProbeAvailability runs CheckAvailability on every adapter implementing
// AvailabilityReporter and records the results for the snapshot. Adapters
// without the reporter keep status "unknown". Probe failures surface in the
// returned info, never as an error: an absent device tool must not take the
// kernel down.
func (r *AdapterRegistry) ProbeAvailability(ctx context.Context) []AdapterAvailability {
	results := make([]AdapterAvailability, 0, len(r.List()))

	for _, adapter := range r.List() {
		meta := adapter.Metadata()
		info := AvailabilityInfo{Status: AvailabilityUnknown}
		if reporter, ok := adapter.(AvailabilityReporter); ok {
			info = reporter.CheckAvailability(ctx)
		}

		r.mu.Lock()
		r.availability[meta.ID] = info
		r.mu.Unlock()

		results = append(results, AdapterAvailability{
			AdapterID: meta.ID,
			Platform:  meta.Platform,
			Info:      info,
		})
	}
	return results
}

// AdapterDescriptor is the read-model projection of a registered adapter.
type AdapterDescriptor struct {
	ID           string           `json:"id"`
	Platform     string           `json:"platform"`
	Version      string           `json:"version,omitempty"`
	Features     []string         `json:"features,omitempty"`
	Availability AvailabilityInfo `json:"availability"`
}

// AdapterSnapshot is an immutable read model of the registry: adapter
// identities, declared features and last known availability. This is the
// only form in which adapter state leaves the registry.
type AdapterSnapshot struct {
	Adapters []AdapterDescriptor `json:"adapters"`
}

// Snapshot returns the current read model, in registration order.
func (r *AdapterRegistry) Snapshot() AdapterSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := AdapterSnapshot{Adapters: make([]AdapterDescriptor, 0, len(r.adapters))}
	for _, adapter := range r.adapters {
		meta := adapter.Metadata()
		desc := AdapterDescriptor{
			ID:           meta.ID,
			Platform:     meta.Platform,
			Version:      meta.Version,
			Availability: AvailabilityInfo{Status: AvailabilityUnknown},
		}
		if info, ok := r.availability[meta.ID]; ok {
			desc.Availability = info
		}
		if enum, ok := adapter.(FeatureEnumerator); ok {
			desc.Features = append([]string(nil), enum.Features()...)
		}
		snap.Adapters = append(snap.Adapters, desc)
	}
	return snap
}
