package kernel

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// AvailabilityProber re-checks adapter availability on demand or on a cron
// schedule and publishes the consolidated status as adapters:probed. Device
// tools come and go while the app runs (a debug bridge gets installed, a
// PATH changes), so the presentation layer wants periodic refreshes without
// polling the kernel itself.
type AvailabilityProber struct {
	registry *AdapterRegistry
	bus      *EventBus
	logger   Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewAvailabilityProber creates a prober over the given registry.
func NewAvailabilityProber(registry *AdapterRegistry, bus *EventBus, logger Logger) *AvailabilityProber {
	return &AvailabilityProber{registry: registry, bus: bus, logger: logger}
}

// ProbeNow runs one probe pass across all registered adapters, records the
// results in the registry and emits adapters:probed. Probe failures are
// reported in the results, never as an error.
func (p *AvailabilityProber) ProbeNow(ctx context.Context) []AdapterAvailability {
	results := p.registry.ProbeAvailability(ctx)
	if err := p.bus.Emit(EventAdaptersProbed, AdaptersProbedPayload{Availability: results}); err != nil {
		p.logger.Error("Failed to emit probe event", "error", err)
	}
	p.logger.Debug("Probed adapter availability", "adapters", len(results))
	return results
}

// Start schedules recurring probes using a cron expression, e.g.
// "@every 5m" or "*/10 * * * *". Fails with ErrProbeAlreadyRunning when a
// schedule is already active and ErrInvalidProbeSchedule when the
// expression does not parse.
func (p *AvailabilityProber) Start(schedule string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrProbeAlreadyRunning
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		p.ProbeNow(context.Background())
	}); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidProbeSchedule, schedule, err)
	}

	c.Start()
	p.cron = c
	p.running = true
	p.logger.Info("Availability probing started", "schedule", schedule)
	return nil
}

// Stop cancels the probe schedule. Stopping an idle prober is a no-op.
func (p *AvailabilityProber) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.cron.Stop()
	p.cron = nil
	p.running = false
	p.logger.Info("Availability probing stopped")
}
