package kernel

import (
	"context"
	"testing"
)

// testLogger routes kernel logs through the test log.
type testLogger struct {
	t *testing.T
}

func (l *testLogger) Info(msg string, args ...any)  { l.t.Logf("INFO: %s %v", msg, args) }
func (l *testLogger) Error(msg string, args ...any) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l *testLogger) Warn(msg string, args ...any)  { l.t.Logf("WARN: %s %v", msg, args) }
func (l *testLogger) Debug(msg string, args ...any) { l.t.Logf("DEBUG: %s %v", msg, args) }

func newTestLogger(t *testing.T) *testLogger {
	return &testLogger{t: t}
}

// testModule implements every lifecycle hook and counts invocations.
type testModule struct {
	ModuleBase
	initCalls       int
	activateCalls   int
	deactivateCalls int
	disposeCalls    int

	initErr       error
	activateErr   error
	deactivateErr error
	disposeErr    error
}

func (m *testModule) OnInit(context.Context) error {
	m.initCalls++
	return m.initErr
}

func (m *testModule) OnActivate(context.Context) error {
	m.activateCalls++
	return m.activateErr
}

func (m *testModule) OnDeactivate(context.Context) error {
	m.deactivateCalls++
	return m.deactivateErr
}

func (m *testModule) OnDispose(context.Context) error {
	m.disposeCalls++
	return m.disposeErr
}

// passiveModule implements no lifecycle hooks at all.
type passiveModule struct {
	ModuleBase
}

func testManifest(id string, mode ActivationMode) ModuleManifest {
	return ModuleManifest{
		ID:             id,
		Name:           id,
		Version:        "1.0.0",
		ActivationMode: mode,
	}
}

// definitionFor pairs a manifest with a factory returning the given module.
func definitionFor(manifest ModuleManifest, module *testModule) (ModuleDefinition, *testModule) {
	if module == nil {
		module = &testModule{}
	}
	module.ModuleBase = NewModuleBase(manifest)
	return ModuleDefinition{
		Manifest: manifest,
		Factory: func(ModuleContext) (ModuleInstance, error) {
			return module, nil
		},
	}, module
}

// testAdapter implements every optional adapter interface.
type testAdapter struct {
	meta         AdapterMetadata
	capabilities []string
	features     []string
	availability AvailabilityInfo

	initCalls    int
	disposeCalls int
	probeCalls   int
	initErr      error
	disposeErr   error
}

func newTestAdapter(id, platform string, capabilities ...string) *testAdapter {
	return &testAdapter{
		meta:         AdapterMetadata{ID: id, Platform: platform, Version: "1.0.0"},
		capabilities: capabilities,
		availability: AvailabilityInfo{Status: AvailabilityAvailable},
	}
}

func (a *testAdapter) Metadata() AdapterMetadata {
	return a.meta
}

func (a *testAdapter) Supports(capability string) bool {
	for _, c := range a.capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

func (a *testAdapter) Initialize(context.Context) error {
	a.initCalls++
	return a.initErr
}

func (a *testAdapter) Dispose(context.Context) error {
	a.disposeCalls++
	return a.disposeErr
}

func (a *testAdapter) Features() []string {
	return a.features
}

func (a *testAdapter) CheckAvailability(context.Context) AvailabilityInfo {
	a.probeCalls++
	return a.availability
}

// bareAdapter implements only the required Adapter interface.
type bareAdapter struct {
	meta         AdapterMetadata
	capabilities []string
}

func (a *bareAdapter) Metadata() AdapterMetadata {
	return a.meta
}

func (a *bareAdapter) Supports(capability string) bool {
	for _, c := range a.capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// recordingHandler captures events delivered to it.
type recordingHandler struct {
	events []Event
}

func (h *recordingHandler) handle(event Event) error {
	h.events = append(h.events, event)
	return nil
}
