package config

import (
	"errors"
	"fmt"

	"github.com/dshills/proofline/internal/config/loader"
)

var (
	// ErrSettingNotFound is returned when no layer sets a path.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch is returned when a value has the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidValue is returned by Validate for out-of-range values.
	ErrInvalidValue = errors.New("invalid value")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("config closed")
)

// ParseError is a syntax error in a configuration file.
type ParseError = loader.ParseError

// TypeError reports a value whose type does not fit the accessor used.
type TypeError struct {
	Path     string
	Expected string
	Actual   any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("setting %s: expected %s, got %T", e.Path, e.Expected, e.Actual)
}

// Is makes TypeError match ErrTypeMismatch.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ValidationError reports a setting outside its allowed range.
type ValidationError struct {
	Path    string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("setting %s = %v: %s", e.Path, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidValue
}
