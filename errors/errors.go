// Package errors defines the error values returned by the cache and the block
// devices underneath it. Every error carries an errno-style code so callers can
// tell a saturated cache from a failing device without string matching.
package errors

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DriverError is a wrapper around system errno codes, with a customizable error message.
type DriverError interface {
	error
	Errno() Errno
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
	Unwrap() error
}

type driverError struct {
	errno         Errno
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e driverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return StrError(e.errno)
}

func (e driverError) Errno() Errno {
	return e.errno
}

func (e driverError) Unwrap() error {
	return e.originalError
}

// Is reports whether `target` is a DriverError with the same errno code. This
// lets `errors.Is(err, ErrIOFailed)` match any EIO error no matter what
// message was attached to it.
func (e driverError) Is(target error) bool {
	other, ok := target.(driverError)
	return ok && other.errno == e.errno
}

// WithMessage returns a new error with the same code and `message` appended to
// this error's message.
func (e driverError) WithMessage(message string) DriverError {
	return driverError{
		errno:         e.errno,
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e,
	}
}

// Wrap returns a new error with the same code that has both this error and
// `err` as causes.
func (e driverError) Wrap(err error) DriverError {
	return driverError{
		errno:         e.errno,
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// New creates a new [DriverError] with a default message derived from the
// system's error code.
func New(errnoCode Errno) DriverError {
	return driverError{
		errno:   errnoCode,
		message: StrError(errnoCode),
	}
}

// NewFromError creates a new [DriverError] caused by `originalError`.
func NewFromError(errnoCode Errno, originalError error) DriverError {
	return New(errnoCode).Wrap(originalError)
}

// NewWithMessage creates a new DriverError from a system error code with a
// custom message.
func NewWithMessage(errnoCode Errno, message string) DriverError {
	return driverError{
		errno:   errnoCode,
		message: fmt.Sprintf("%s: %s", StrError(errnoCode), message),
	}
}

// CodeOf returns the errno code of the first [DriverError] in `err`'s chain, or
// EIO if there is none. A nil error gives EOK.
func CodeOf(err error) Errno {
	if err == nil {
		return EOK
	}
	for err != nil {
		if driverErr, ok := err.(DriverError); ok {
			return driverErr.Errno()
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return EIO
}
