package multiblog

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound is returned when no tenant answers to a site identifier.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrArticleNotFound is returned when no post matches a (route, slug) pair.
	ErrArticleNotFound = errors.New("article not found")
	// ErrInvalidSettings is returned when a settings blob is not valid JSON.
	ErrInvalidSettings = errors.New("invalid tenant settings")
)

// SettingsError wraps the decode failure of a settings blob.
type SettingsError struct {
	Err error
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidSettings, e.Err)
}

func (e *SettingsError) Unwrap() []error {
	return []error{ErrInvalidSettings, e.Err}
}
