package kernel

import (
	"context"
)

// AdapterMetadata identifies a platform-capability provider.
type AdapterMetadata struct {
	// ID is the unique adapter identifier, e.g. "adb" or "hdc".
	ID string `json:"id"`

	// Platform is the target platform tag, e.g. "android", "harmonyos", "ios".
	Platform string `json:"platform"`

	// Version is the adapter version, if known.
	Version string `json:"version,omitempty"`
}

// Adapter is the contract platform-capability providers implement. Concrete
// adapters (device CLI wrappers and the like) live outside the kernel;
// modules obtain them only through capability lookup on the module context,
// never by constructing them.
type Adapter interface {
	// Metadata returns the adapter's identity.
	Metadata() AdapterMetadata

	// Supports reports whether this adapter provides the named capability.
	// Capability strings are the sole basis for module-to-adapter binding.
	Supports(capability string) bool
}

// AdapterInitializer is implemented by adapters that need setup before use,
// typically resolving an external tool binary. Initialize is invoked by
// InitializeAll in registration order; an error aborts kernel boot.
type AdapterInitializer interface {
	Initialize(ctx context.Context) error
}

// AdapterDisposer is implemented by adapters that hold resources needing
// release at shutdown.
type AdapterDisposer interface {
	Dispose(ctx context.Context) error
}

// FeatureEnumerator is implemented by adapters that can enumerate the
// operations they expose (install, uninstall, screenshot, ...). Features
// appear in the adapter snapshot for presentation.
type FeatureEnumerator interface {
	Features() []string
}

// AvailabilityStatus reports whether an adapter's backing tool is usable.
type AvailabilityStatus string

const (
	// AvailabilityAvailable means the backing tool was found and responded.
	AvailabilityAvailable AvailabilityStatus = "available"

	// AvailabilityUnavailable means the backing tool is missing or failed
	// its probe.
	AvailabilityUnavailable AvailabilityStatus = "unavailable"

	// AvailabilityUnknown means the adapter has not been probed yet or does
	// not report availability.
	AvailabilityUnknown AvailabilityStatus = "unknown"
)

// AvailabilityInfo is the result of probing an adapter's backing tool.
type AvailabilityInfo struct {
	Status  AvailabilityStatus `json:"status"`
	Version string             `json:"version,omitempty"`
	Path    string             `json:"path,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// AvailabilityReporter is implemented by adapters whose backing tool may be
// absent from the host (an uninstalled debug bridge, for example). Probing
// never fails boot; an unavailable adapter simply reports as such in the
// snapshot so the presentation layer can disable the dependent features.
type AvailabilityReporter interface {
	CheckAvailability(ctx context.Context) AvailabilityInfo
}

// AdapterAvailability pairs an adapter identity with its last probe result.
type AdapterAvailability struct {
	AdapterID string           `json:"adapterId"`
	Platform  string           `json:"platform"`
	Info      AvailabilityInfo `json:"info"`
}
