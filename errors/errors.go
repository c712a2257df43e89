// Package errors provides error handling for gapscan.
//
// It re-exports github.com/cockroachdb/errors so every package gets stack
// traces, wrapping, and hint support from one import path.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	if errors.Is(err, errors.ErrConfig) {
//	    // abort before processing
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Sentinel errors for use with errors.Is(). Wrap these with errors.Wrap()
// to add context while preserving the type.
var (
	// ErrConfig indicates malformed or missing declarative configuration.
	// Fatal: raised before any object is processed.
	ErrConfig = New("invalid configuration")

	// ErrNotFound indicates a requested resource does not exist.
	ErrNotFound = New("not found")
)

// IsConfigError checks if an error is or wraps ErrConfig.
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrConfig)
}

// NewConfigError creates a configuration error with a formatted message.
func NewConfigError(format string, args ...interface{}) error {
	return Wrap(ErrConfig, Newf(format, args...).Error())
}
