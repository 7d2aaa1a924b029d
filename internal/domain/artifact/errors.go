package artifact

import (
	"errors"
	"fmt"
	"strings"
)

// Acquisition errors. Typed errors below unwrap to one of these sentinels so callers
// can classify failures with errors.Is.
var (
	ErrNoArtifactsSpecified   = errors.New("no artifacts specified")
	ErrMismatchedVersionCount = errors.New("mismatched version count")
	ErrRegistryUnavailable    = errors.New("registry unavailable")
	ErrNoMatch                = errors.New("no matching artifact")
	ErrUserDeclined           = errors.New("user declined confirmation")
	ErrActivationFailed       = errors.New("activation failed")
	ErrVersionConflict        = errors.New("conflicting versions selected")
	ErrInvalidSpecifier       = errors.New("invalid artifact specifier")
)

// MismatchedVersionCountError is returned when the number of version overrides
// differs from the number of specifiers.
type MismatchedVersionCountError struct {
	Specifiers int
	Versions   int
}

func (e *MismatchedVersionCountError) Error() string {
	return fmt.Sprintf("%d artifacts specified, but %d --version switches", e.Specifiers, e.Versions)
}

func (e *MismatchedVersionCountError) Unwrap() error {
	return ErrMismatchedVersionCount
}

// NoMatchError reports a specifier whose constraint matched too few candidates.
type NoMatchError struct {
	Specifier Specifier
	Found     int
	Wanted    int
}

func (e *NoMatchError) Error() string {
	if e.Found == 0 {
		return fmt.Sprintf("unable to resolve artifact %s", e.Specifier)
	}
	return fmt.Sprintf("artifact %s matched %d versions, %d required", e.Specifier, e.Found, e.Wanted)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

// ActivationError records why a single artifact failed to activate.
type ActivationError struct {
	Name    string
	Version string
	Err     error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activating %s@%s: %v", e.Name, e.Version, e.Err)
}

// Unwrap exposes both the activation sentinel and the underlying cause.
func (e *ActivationError) Unwrap() []error {
	return []error{ErrActivationFailed, e.Err}
}

// VersionConflictError reports two selections for one name with different versions.
type VersionConflictError struct {
	Name     string
	Versions []string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("artifact %s selected at multiple versions: %s", e.Name, strings.Join(e.Versions, ", "))
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}
