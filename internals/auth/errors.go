package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkFailure is returned when the identity provider could not be reached
	ErrNetworkFailure = errors.New("could not reach identity provider")
	// ErrReauthRequired is returned when the refresh token itself has expired.
	// The caller must restart the device code flow. This is an expected,
	// recoverable condition and should surface as a re-login prompt.
	ErrReauthRequired = errors.New("session expired, please log in again")
	// ErrStoreUnavailable is returned when the credential store failed
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrNotFound is returned when an account does not exist
	ErrNotFound = errors.New("account not found")
)

// ProviderError is a non-success response from the identity provider
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("identity provider rejected request: %s (%s)", e.Code, e.Description)
	}
	return "identity provider rejected request: " + e.Code
}
