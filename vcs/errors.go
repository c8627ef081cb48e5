package vcs

import (
	"errors"
	"fmt"
)

// Sentinel errors that can be checked with errors.Is().
// They wrap backend-specific failures behind a stable API.

// ErrTagExists is returned when creating a tag that already exists.
var ErrTagExists = errors.New("tag already exists")

// ErrRemoteMissing is returned when the named remote is not configured.
var ErrRemoteMissing = errors.New("remote does not exist")

// ErrResolveFailed is returned when HEAD or a revision cannot be resolved.
var ErrResolveFailed = errors.New("cannot resolve revision")

// ErrInvalidRef is returned for empty or malformed reference names.
var ErrInvalidRef = errors.New("invalid reference")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
