package domain

import (
	"errors"

	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// Sentinel errors for converter error conditions outside the conversion core.
// Use errors.Is() for matching - never compare error strings.
var (
	// A required input (query parameter, command argument) is absent.
	ErrMissingInput = errors.New("required input missing")

	// Input present but not acceptable (bad offset text, oversized value).
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidLocation = errors.New("unknown time zone location")

	// Operational errors
	ErrUnavailable = errors.New("service temporarily unavailable")

	// Configuration errors
	ErrConfigRequired = errors.New("required configuration key missing")
	ErrConfigInvalid  = errors.New("invalid configuration value")
)

// clientErrors enumerates errors caused by what the user typed.
var clientErrors = []error{
	ErrMissingInput,
	ErrInvalidInput,
	ErrInvalidLocation,
	timeconv.ErrEmptyInput,
	timeconv.ErrNotNumeric,
	timeconv.ErrInvalidDate,
	timeconv.ErrInvalidOffset,
}

// IsClientError returns true if the error represents a client-side issue
// that will not succeed on retry without different input.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRetryable returns true if the error represents a transient condition.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
