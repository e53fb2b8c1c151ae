// POSIX-style error codes for the cache and its devices. The syscall package
// doesn't define all of these on every platform (ENOBUFS, EUCLEAN), so we keep
// our own numbering and messages.

package errors

import (
	"fmt"
)

type Errno int

const (
	EOK Errno = iota
	EIO
	EINVAL
	EROFS
	EDOM
	ENOTSUP
	ENOBUFS
	EUCLEAN
)

var errorMessagesByCode = map[Errno]string{
	EOK:     "Success",
	EIO:     "Input/output error",
	EINVAL:  "Invalid argument",
	EROFS:   "Read-only file system",
	EDOM:    "Numerical argument out of domain",
	ENOTSUP: "Operation not supported",
	ENOBUFS: "No buffer space available",
	EUCLEAN: "Structure needs cleaning",
}

var ErrIOFailed = New(EIO)
var ErrInvalidArgument = New(EINVAL)
var ErrReadOnlyFileSystem = New(EROFS)
var ErrArgumentOutOfRange = New(EDOM)
var ErrNotSupported = New(ENOTSUP)
var ErrCorrupted = New(EUCLEAN)

// ErrCacheFull is returned when a block cache needs a free slot but every
// resident entry is pinned by an outstanding handle. Callers can release
// handles and retry.
var ErrCacheFull = NewWithMessage(ENOBUFS, "all cache entries are pinned")

// StrError returns the standard message for an error code.
func StrError(code Errno) string {
	message, ok := errorMessagesByCode[code]
	if ok {
		return message
	}
	return fmt.Sprintf("error %d not recognized.", int(code))
}

func (code Errno) String() string {
	return StrError(code)
}
