// Package kernel provides the in-process module kernel for the Mobile Dev Toolkit.
// It coordinates the lifecycle of pluggable feature units ("modules") and
// platform-capability providers ("adapters"), mediates all communication between
// them through a synchronous event bus and capability lookup, and exposes a
// read-only snapshot of kernel state to a presentation layer.
//
// Basic usage:
//
//	k := kernel.New(logger)
//	k.RegisterAdapter(androidAdapter)
//	if err := k.Boot(ctx, providers...); err != nil {
//		log.Fatal(err)
//	}
//	snap := k.Snapshot()
package kernel

import (
	"context"
	"fmt"
	"regexp"
)

// ActivationMode controls how a module participates in the active set.
type ActivationMode string

const (
	// ActivationExclusive modules own the single workspace slot. Activating
	// one displaces the currently active exclusive module, if any.
	ActivationExclusive ActivationMode = "exclusive"

	// ActivationParallel modules run concurrently with any number of other
	// modules. Typical for utility panels.
	ActivationParallel ActivationMode = "parallel"

	// ActivationBackground modules behave like parallel modules but are
	// activated automatically during InitAll and stay active until
	// deactivated or disposed.
	ActivationBackground ActivationMode = "background"
)

// ViewKind classifies the UI surface a module contributes.
type ViewKind string

const (
	// ViewKindWorkspace views occupy the main content area.
	ViewKindWorkspace ViewKind = "workspace"

	// ViewKindUtility views render as auxiliary panels.
	ViewKindUtility ViewKind = "utility"
)

// ViewDescriptor describes the optional UI surface declared by a module
// manifest. The kernel never renders views; it only validates that ViewID is
// known to the presentation layer when a view resolver has been configured.
type ViewDescriptor struct {
	Kind        ViewKind `json:"kind" yaml:"kind" toml:"kind"`
	ViewID      string   `json:"viewId" yaml:"viewId" toml:"viewId"`
	Title       string   `json:"title,omitempty" yaml:"title" toml:"title"`
	Icon        string   `json:"icon,omitempty" yaml:"icon" toml:"icon"`
	Description string   `json:"description,omitempty" yaml:"description" toml:"description"`
}

// Predicate gates module instantiation. Predicates receive the module context
// so they can consult adapter availability (for example, skip an Android
// module when no adapter supports the "adb" capability). A nil Predicate is
// treated as true.
type Predicate func(ctx context.Context, mc ModuleContext) (bool, error)

// ModuleManifest declares a module's identity and behavior. Manifests are
// immutable once registered; the kernel hands out copies, never internal
// references.
type ModuleManifest struct {
	// ID is the globally unique module identifier. It must match the module
	// id grammar: two or more dot-separated segments of lowercase letters,
	// digits and hyphens, e.g. "device.android.install".
	ID string `json:"id" yaml:"id" toml:"id"`

	// Name is the human-readable display name.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Version is the module version string.
	Version string `json:"version" yaml:"version" toml:"version"`

	// Category optionally groups related modules for presentation.
	Category string `json:"category,omitempty" yaml:"category" toml:"category"`

	// Icon optionally names an icon for presentation.
	Icon string `json:"icon,omitempty" yaml:"icon" toml:"icon"`

	// ActivationMode selects exclusive, parallel or background activation.
	// Empty defaults to exclusive.
	ActivationMode ActivationMode `json:"activationMode,omitempty" yaml:"activationMode" toml:"activationMode"`

	// View optionally declares the UI surface this module contributes.
	View *ViewDescriptor `json:"view,omitempty" yaml:"view" toml:"view"`

	// Enabled optionally gates instantiation at boot. Evaluated once during
	// InitAll; not a live toggle.
	Enabled Predicate `json:"-" yaml:"-" toml:"-"`

	// Supports optionally gates instantiation on platform capability.
	// Evaluated once during InitAll, after Enabled.
	Supports Predicate `json:"-" yaml:"-" toml:"-"`
}

// Mode returns the effective activation mode, defaulting to exclusive.
func (m ModuleManifest) Mode() ActivationMode {
	if m.ActivationMode == "" {
		return ActivationExclusive
	}
	return m.ActivationMode
}

// ModuleFactory builds the runtime instance for a module. Factories receive
// only the module context; they must not reach into kernel internals.
type ModuleFactory func(mc ModuleContext) (ModuleInstance, error)

// ModuleDefinition pairs a manifest with the factory that builds its
// instance. Definitions are owned by the ModuleRegistry from registration
// until process end or explicit unregistration.
type ModuleDefinition struct {
	Manifest ModuleManifest
	Factory  ModuleFactory
}

// ModuleInstance is the runtime object created by the module manager at init
// time. Instances are owned exclusively by the manager and are never handed
// to the presentation layer.
//
// Lifecycle hooks are optional interfaces: an instance that also implements
// Initializer, Activator, Deactivator or Disposer has the corresponding hook
// invoked at the matching lifecycle transition, and a hook error propagates
// to the caller of the transition. An instance implementing none of them is
// entirely passive.
type ModuleInstance interface {
	// Manifest returns the manifest snapshot this instance was built from.
	Manifest() ModuleManifest
}

// Initializer is implemented by module instances that need setup after
// construction. OnInit is invoked exactly once, during InitAll.
type Initializer interface {
	OnInit(ctx context.Context) error
}

// Activator is implemented by module instances that react to activation.
type Activator interface {
	OnActivate(ctx context.Context) error
}

// Deactivator is implemented by module instances that react to deactivation.
type Deactivator interface {
	OnDeactivate(ctx context.Context) error
}

// Disposer is implemented by module instances that hold resources needing
// release at shutdown. OnDispose is invoked by DisposeAll regardless of
// activation state.
type Disposer interface {
	OnDispose(ctx context.Context) error
}

// ModuleContext is the only interface exposed to module factories and
// predicates. It carries capability lookup and event emission and nothing
// else: no application state, no stores, no rendering primitives.
type ModuleContext interface {
	// GetAdapter returns the first registered adapter supporting the given
	// capability. The boolean reports whether one was found; modules are
	// expected to degrade gracefully when a capability is unavailable.
	GetAdapter(capability string) (Adapter, bool)

	// EmitEvent publishes an event on the kernel bus. The name must match
	// the event name grammar; payload may be nil. Delivery is synchronous
	// and fire-and-forget.
	EmitEvent(name string, payload any) error
}

// ModuleBase provides a ready-made Manifest implementation for module
// instances. Embed it and add whichever lifecycle hooks the module needs.
type ModuleBase struct {
	manifest ModuleManifest
}

// NewModuleBase creates a ModuleBase carrying the given manifest snapshot.
func NewModuleBase(manifest ModuleManifest) ModuleBase {
	return ModuleBase{manifest: manifest}
}

// Manifest returns the manifest snapshot.
func (b ModuleBase) Manifest() ModuleManifest {
	return b.manifest
}

// moduleIDPattern is the module id grammar: two or more dot-separated
// segments of lowercase letters, digits and hyphens.
var moduleIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*(\.[a-z0-9][a-z0-9-]*)+$`)

// IsValidModuleID reports whether id matches the module id grammar,
// e.g. "device.android.install".
func IsValidModuleID(id string) bool {
	return moduleIDPattern.MatchString(id)
}

// ValidateModuleID returns ErrInvalidModuleID if id does not match the
// module id grammar.
func ValidateModuleID(id string) error {
	if !IsValidModuleID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidModuleID, id)
	}
	return nil
}
