// Package device provides the block devices a cache pool reads from and
// flushes to. A device only moves whole blocks; it knows nothing about what the
// blocks contain.
package device

import (
	"fmt"

	"github.com/dargueta/diskcache/common"
	"github.com/dargueta/diskcache/errors"
)

// BlockDevice is a fixed-size-block storage device.
//
// Implementations must be safe for concurrent use: a cache flushes different
// blocks from different goroutines while reading others.
type BlockDevice interface {
	// BytesPerBlock gives the size of a single block, in bytes.
	BytesPerBlock() uint
	// TotalBlocks gives the number of addressable blocks on the device.
	TotalBlocks() uint
	// ReadBlock fills `buffer` with the current contents of block `id`.
	// `buffer` is always exactly BytesPerBlock() bytes.
	ReadBlock(id common.BlockID, buffer []byte) error
	// WriteBlock persists `buffer` as the new contents of block `id`. All
	// restrictions on `buffer` in ReadBlock apply here too.
	WriteBlock(id common.BlockID, buffer []byte) error
}

// CheckIO verifies that `buffer` can be transferred to or from block `id` of
// `device`. If not, it returns an error describing exactly what went wrong.
func CheckIO(device BlockDevice, id common.BlockID, buffer []byte) error {
	if uint(id) >= device.TotalBlocks() {
		return errors.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"invalid block ID %d: not in range [0, %d)",
				id,
				device.TotalBlocks(),
			),
		)
	}

	if uint(len(buffer)) != device.BytesPerBlock() {
		return errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"buffer must be exactly one block (%d B), got %d",
				device.BytesPerBlock(),
				len(buffer),
			),
		)
	}
	return nil
}
