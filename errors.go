package kernel

import (
	"errors"
)

// Kernel errors
var (
	// Module registry errors
	ErrInvalidModuleID      = errors.New("invalid module id")
	ErrDuplicateModuleID    = errors.New("module id already registered")
	ErrUnknownViewReference = errors.New("manifest references unknown view")
	ErrNilModuleFactory     = errors.New("module definition has nil factory")

	// Adapter registry errors
	ErrDuplicateAdapterID = errors.New("adapter id already registered")

	// Event errors
	ErrInvalidEventName = errors.New("invalid event name")

	// Loader and provider errors
	ErrProviderLoad          = errors.New("module provider load failed")
	ErrUnknownManifestFormat = errors.New("unknown manifest catalog format")
	ErrUnknownFactoryRef     = errors.New("catalog references unknown factory")

	// Lifecycle errors
	ErrKernelAlreadyBooted  = errors.New("kernel already booted")
	ErrProbeAlreadyRunning  = errors.New("availability prober already running")
	ErrInvalidProbeSchedule = errors.New("invalid probe schedule expression")
)
