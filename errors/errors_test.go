package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/dargueta/diskcache/errors"
	"github.com/stretchr/testify/assert"
)

func TestDriverError__WithMessage(t *testing.T) {
	newErr := errors.ErrIOFailed.WithMessage("asdfqwerty")
	assert.Equal(t, "Input/output error: asdfqwerty", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, errors.ErrIOFailed)
	assert.Equal(t, errors.EIO, newErr.Errno())
}

func TestDriverError__Wrap(t *testing.T) {
	originalErr := stderrors.New("original error")
	newErr := errors.ErrReadOnlyFileSystem.Wrap(originalErr)

	assert.EqualValues(t, "Read-only file system: original error", newErr.Error())
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, errors.ErrReadOnlyFileSystem, "driver error not set as parent")
}

func TestDriverError__NewFromError(t *testing.T) {
	originalErr := stderrors.New("disk on fire")
	newErr := errors.NewFromError(errors.EIO, originalErr)

	assert.Equal(t, "Input/output error: disk on fire", newErr.Error())
	assert.Equal(t, errors.EIO, newErr.Errno())
	assert.ErrorIs(t, newErr, errors.ErrIOFailed)
	assert.ErrorIs(t, newErr, originalErr)
}

func TestDriverError__IsMatchesByCode(t *testing.T) {
	err := errors.NewWithMessage(errors.ENOBUFS, "something else entirely")
	assert.ErrorIs(t, err, errors.ErrCacheFull)
	assert.NotErrorIs(t, err, errors.ErrIOFailed)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, errors.EOK, errors.CodeOf(nil))
	assert.Equal(t, errors.EIO, errors.CodeOf(stderrors.New("plain")))

	wrapped := fmt.Errorf("acquiring: %w", errors.ErrCacheFull)
	assert.Equal(t, errors.ENOBUFS, errors.CodeOf(wrapped))
}

func TestStrError__Unknown(t *testing.T) {
	assert.Equal(t, "error 9999 not recognized.", errors.StrError(errors.Errno(9999)))
	assert.Equal(t, "No buffer space available", errors.ENOBUFS.String())
}
