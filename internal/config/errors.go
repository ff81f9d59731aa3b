package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so that callers can use
// errors.Is() while still getting a readable message.
var (
	// ErrEmptyDataDir is returned when no data directory is configured.
	ErrEmptyDataDir = errors.New("invalid data directory: must not be empty")

	// ErrInvalidCommandTimeout is returned when the command timeout is not positive.
	ErrInvalidCommandTimeout = errors.New("invalid command timeout: must be positive")

	// ErrEmptyPingTarget is returned when no ping target is configured.
	ErrEmptyPingTarget = errors.New("invalid ping target: must not be empty")

	// ErrInvalidPingCount is returned when the ping count is not positive.
	ErrInvalidPingCount = errors.New("invalid ping count: must be positive")

	// ErrInvalidPingTimeout is returned when the ping timeout is not positive.
	ErrInvalidPingTimeout = errors.New("invalid ping timeout: must be positive")

	// ErrInvalidConcurrency is returned when the collector concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrEmptyOptions is returned when a form choice list ends up empty.
	ErrEmptyOptions = errors.New("invalid form options: ides, shells, ciProviders and deploymentTargets must not be empty")
)
