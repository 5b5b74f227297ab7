package kernel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusOnEmitUnsubscribe(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	handler := &recordingHandler{}
	unsubscribe, err := bus.On("device:connected", handler.handle)
	require.NoError(t, err)
	assert.Equal(t, 1, bus.ListenerCount("device:connected"))

	require.NoError(t, bus.Emit("device:connected", "payload-1"))
	require.Len(t, handler.events, 1)
	assert.Equal(t, "device:connected", handler.events[0].Name)
	assert.Equal(t, "payload-1", handler.events[0].Payload)

	unsubscribe()
	assert.Equal(t, 0, bus.ListenerCount("device:connected"))

	require.NoError(t, bus.Emit("device:connected", "payload-2"))
	assert.Len(t, handler.events, 1, "unsubscribed handler must not receive events")

	// unsubscribe is idempotent
	unsubscribe()
}

func TestEventBusRejectsInvalidNames(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	_, err := bus.On("Bad:Name", func(Event) error { return nil })
	require.ErrorIs(t, err, ErrInvalidEventName)

	err = bus.Emit("Module:Activated", nil)
	require.ErrorIs(t, err, ErrInvalidEventName)
}

func TestEventBusFailingHandlerDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	_, err := bus.On("device:connected", func(Event) error {
		return errors.New("handler bug")
	})
	require.NoError(t, err)

	second := &recordingHandler{}
	_, err = bus.On("device:connected", second.handle)
	require.NoError(t, err)

	require.NoError(t, bus.Emit("device:connected", "payload"))
	require.Len(t, second.events, 1)
	assert.Equal(t, "payload", second.events[0].Payload)
}

func TestEventBusPanickingHandlerIsContained(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	_, err := bus.On("device:connected", func(Event) error {
		panic("handler exploded")
	})
	require.NoError(t, err)

	after := &recordingHandler{}
	_, err = bus.On("device:connected", after.handle)
	require.NoError(t, err)

	require.NoError(t, bus.Emit("device:connected", nil))
	assert.Len(t, after.events, 1)
}

func TestEventBusEmitUsesSnapshotOfHandlers(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	late := &recordingHandler{}
	_, err := bus.On("device:connected", func(Event) error {
		// Subscribing mid-dispatch must not affect the current emission.
		_, subErr := bus.On("device:connected", late.handle)
		return subErr
	})
	require.NoError(t, err)

	require.NoError(t, bus.Emit("device:connected", nil))
	assert.Empty(t, late.events, "handler subscribed during dispatch must not run in same pass")

	require.NoError(t, bus.Emit("device:connected", nil))
	assert.Len(t, late.events, 1)
}

func TestEventBusUnsubscribeDuringDispatch(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	second := &recordingHandler{}
	var unsubscribeSecond func()

	_, err := bus.On("device:connected", func(Event) error {
		unsubscribeSecond()
		return nil
	})
	require.NoError(t, err)

	unsubscribeSecond, err = bus.On("device:connected", second.handle)
	require.NoError(t, err)

	// The emission snapshot was taken before the first handler ran, so the
	// second handler still receives this event.
	require.NoError(t, bus.Emit("device:connected", nil))
	assert.Len(t, second.events, 1)

	require.NoError(t, bus.Emit("device:connected", nil))
	assert.Len(t, second.events, 1)
}

func TestEventBusOff(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	handler := &recordingHandler{}
	_, err := bus.On("device:connected", handler.handle)
	require.NoError(t, err)

	bus.Off("device:connected", handler.handle)
	assert.Equal(t, 0, bus.ListenerCount("device:connected"))

	// removing an unknown handler is a no-op
	bus.Off("device:connected", handler.handle)
	bus.Off("device:disconnected", handler.handle)
}

func TestEventBusClear(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	h := &recordingHandler{}
	_, err := bus.On("device:connected", h.handle)
	require.NoError(t, err)
	_, err = bus.On("device:disconnected", h.handle)
	require.NoError(t, err)

	bus.Clear()
	assert.Equal(t, 0, bus.ListenerCount("device:connected"))
	assert.Equal(t, 0, bus.ListenerCount("device:disconnected"))

	require.NoError(t, bus.Emit("device:connected", nil))
	assert.Empty(t, h.events)
}

func TestEventBusPerEventFIFO(t *testing.T) {
	t.Parallel()
	bus := NewEventBus(newTestLogger(t))

	handler := &recordingHandler{}
	_, err := bus.On("device:connected", handler.handle)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Emit("device:connected", i))
	}

	require.Len(t, handler.events, 5)
	for i, event := range handler.events {
		assert.Equal(t, i, event.Payload)
	}
}
