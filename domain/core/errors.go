package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input defects: rejected per record, never fatal to the batch.
	ErrMalformedRecord    = errors.New("malformed annotation record")
	ErrMissingRepository  = fmt.Errorf("%w: empty repository id", ErrMalformedRecord)
	ErrEmptyCapabilities  = fmt.Errorf("%w: empty capability list", ErrMalformedRecord)
	ErrEmptyCapability    = fmt.Errorf("%w: empty capability name", ErrMalformedRecord)
	ErrUnknownDeclaration = fmt.Errorf("%w: unknown declaration kind", ErrMalformedRecord)

	// Insufficient data: surfaced as explicit result states, never as NaN.
	ErrInsufficientSample = errors.New("insufficient sample for statistic")
	ErrScoreUndefined     = errors.New("consistency score undefined: no pair observations")

	// Configuration errors: fatal at startup.
	ErrInvalidConfig = errors.New("invalid analysis configuration")
	ErrSeedRequired  = fmt.Errorf("%w: random seed must be set explicitly", ErrInvalidConfig)

	// Run-level errors.
	ErrNoUsableInput = errors.New("no usable records in input")
	ErrRunFinalized  = errors.New("aggregator already finalized")
)

// Error constructors with context
func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

func NewRecordError(repository, filePath string, reason error) error {
	return fmt.Errorf("record %s:%s rejected: %w", repository, filePath, reason)
}

// Error checking helpers
func IsRecordError(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientSample) ||
		errors.Is(err, ErrScoreUndefined)
}
