package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProber(t *testing.T, adapters ...Adapter) (*AvailabilityProber, *AdapterRegistry, *EventBus) {
	t.Helper()
	logger := newTestLogger(t)
	registry := NewAdapterRegistry(logger)
	for _, adapter := range adapters {
		require.NoError(t, registry.Register(adapter))
	}
	bus := NewEventBus(logger)
	return NewAvailabilityProber(registry, bus, logger), registry, bus
}

func TestProbeNowEmitsAndRecords(t *testing.T) {
	t.Parallel()
	adapter := newTestAdapter("adb", "android", "adb")
	adapter.availability = AvailabilityInfo{Status: AvailabilityUnavailable, Error: "command 'adb' not found"}
	prober, registry, bus := newTestProber(t, adapter)

	probed := &recordingHandler{}
	_, err := bus.On(EventAdaptersProbed, probed.handle)
	require.NoError(t, err)

	results := prober.ProbeNow(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, AvailabilityUnavailable, results[0].Info.Status)

	require.Len(t, probed.events, 1)
	payload, ok := probed.events[0].Payload.(AdaptersProbedPayload)
	require.True(t, ok)
	require.Len(t, payload.Availability, 1)
	assert.Equal(t, "adb", payload.Availability[0].AdapterID)

	snap := registry.Snapshot()
	assert.Equal(t, AvailabilityUnavailable, snap.Adapters[0].Availability.Status)
}

func TestProberStartRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()
	prober, _, _ := newTestProber(t)

	err := prober.Start("not a schedule")
	require.ErrorIs(t, err, ErrInvalidProbeSchedule)
}

func TestProberStartIsExclusive(t *testing.T) {
	t.Parallel()
	prober, _, _ := newTestProber(t, newTestAdapter("adb", "android", "adb"))
	t.Cleanup(prober.Stop)

	require.NoError(t, prober.Start("@every 1h"))
	err := prober.Start("@every 1h")
	require.ErrorIs(t, err, ErrProbeAlreadyRunning)
}

func TestProberStopIsIdempotent(t *testing.T) {
	t.Parallel()
	prober, _, _ := newTestProber(t)

	prober.Stop() // never started

	require.NoError(t, prober.Start("@every 1h"))
	prober.Stop()
	prober.Stop()

	// stopped prober can be restarted
	require.NoError(t, prober.Start("@every 1h"))
	prober.Stop()
}
