package kernel

import (
	"fmt"
	"regexp"
)

// Reserved event names emitted by the kernel itself. Payload types for each
// name are fixed by convention:
//
//	adapters:initialized  AdaptersInitializedPayload
//	adapters:disposed     AdaptersDisposedPayload
//	adapters:probed       AdaptersProbedPayload
//	catalog:changed       CatalogChangedPayload
//	modules:ready         ModulesReadyPayload
//	module:activated      ModuleActivatedPayload
//	module:deactivated    ModuleDeactivatedPayload
//	modules:deactivated   ModulesDeactivatedPayload
const (
	EventAdaptersInitialized = "adapters:initialized"
	EventAdaptersDisposed    = "adapters:disposed"
	EventAdaptersProbed      = "adapters:probed"
	EventCatalogChanged      = "catalog:changed"
	EventModulesReady        = "modules:ready"
	EventModuleActivated     = "module:activated"
	EventModuleDeactivated   = "module:deactivated"
	EventModulesDeactivated  = "modules:deactivated"
)

// eventNamePattern is the canonical "domain:action" grammar: lowercase
// dot-segmented domain and action parts joined by a single colon.
var eventNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*(\.[a-z0-9-]+)*:[a-z][a-z0-9-]*(\.[a-z0-9-]+)*$`)

// IsValidEventName reports whether name matches the "domain:action" grammar,
// e.g. "module:activated" or "device.android:connected".
func IsValidEventName(name string) bool {
	return eventNamePattern.MatchString(name)
}

// AssertEventName returns ErrInvalidEventName if name does not match the
// "domain:action" grammar.
func AssertEventName(name string) error {
	if !IsValidEventName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidEventName, name)
	}
	return nil
}

// AdaptersInitializedPayload accompanies adapters:initialized.
type AdaptersInitializedPayload struct {
	AdapterIDs []string `json:"adapterIds"`
}

// AdaptersDisposedPayload accompanies adapters:disposed.
type AdaptersDisposedPayload struct {
	AdapterIDs []string `json:"adapterIds"`
}

// AdaptersProbedPayload accompanies adapters:probed and carries the
// consolidated availability status of every registered adapter.
type AdaptersProbedPayload struct {
	Availability []AdapterAvailability `json:"availability"`
}

// CatalogChangedPayload accompanies catalog:changed when a watched manifest
// catalog file is modified on disk. The kernel never reloads modules in
// response; the presentation layer decides what to do (typically prompt for
// a restart).
type CatalogChangedPayload struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}

// ModulesReadyPayload accompanies modules:ready at the end of InitAll.
type ModulesReadyPayload struct {
	ModuleIDs []string `json:"moduleIds"`
}

// ModuleActivatedPayload accompanies module:activated. It reflects the
// post-activation state.
type ModuleActivatedPayload struct {
	ModuleID          string         `json:"moduleId"`
	Mode              ActivationMode `json:"mode"`
	ActiveExclusiveID string         `json:"activeExclusiveId,omitempty"`
	ActiveIDs         []string       `json:"activeIds"`
}

// ModuleDeactivatedPayload accompanies module:deactivated. It reflects the
// post-deactivation state.
type ModuleDeactivatedPayload struct {
	ModuleID          string   `json:"moduleId"`
	ActiveExclusiveID string   `json:"activeExclusiveId,omitempty"`
	ActiveIDs         []string `json:"activeIds"`
}

// ModulesDeactivatedPayload accompanies modules:deactivated after a bulk
// DeactivateAll.
type ModulesDeactivatedPayload struct {
	ModuleIDs []string `json:"moduleIds"`
}
