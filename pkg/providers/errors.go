package providers

import (
	"errors"
	"fmt"
)

// Configuration errors raised at provider construction time.
var (
	// ErrMissingAPIKey indicates the required credential is absent from the environment.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrUnknownProvider indicates an unrecognized provider name in the configuration.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ProviderError wraps any failure of an external completion call.
// Callers unwrap with errors.As to identify the failing backend.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a ProviderError for the named backend.
func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}
