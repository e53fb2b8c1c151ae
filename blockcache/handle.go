package blockcache

import (
	"fmt"
	"sync/atomic"

	"github.com/dargueta/diskcache/common"
)

// Handle is one reference to a cached block. The block stays resident (pinned)
// for as long as at least one handle to it is live.
//
// A handle must be released exactly once; further calls to Release are no-ops,
// and any other use of a released handle panics.
type Handle struct {
	entry    *Entry
	released atomic.Bool
}

func newHandle(entry *Entry) *Handle {
	entry.retain()
	return &Handle{entry: entry}
}

func (handle *Handle) live() *Entry {
	if handle.released.Load() {
		panic(fmt.Sprintf("blockcache: use of released handle for block %d", handle.entry.id))
	}
	return handle.entry
}

// ID returns the ID of the block the handle refers to.
func (handle *Handle) ID() common.BlockID {
	return handle.live().ID()
}

// Dirty reports whether the block was modified since it was last flushed.
func (handle *Handle) Dirty() bool {
	return handle.live().Dirty()
}

// RefCount gives the number of live references to the block, including the
// pool's own and this one.
func (handle *Handle) RefCount() int {
	return handle.live().RefCount()
}

// BytesPerBlock gives the size of the block, in bytes.
func (handle *Handle) BytesPerBlock() uint {
	return uint(len(handle.live().buffer))
}

// View calls `fn` with a read-only window of `length` bytes beginning at
// `offset`. `fn` must not modify or retain the slice.
func (handle *Handle) View(offset, length uint, fn func(data []byte)) {
	handle.live().view(offset, length, fn)
}

// Update calls `fn` with a writable window of `length` bytes beginning at
// `offset`, and marks the block dirty. `fn` must not retain the slice.
func (handle *Handle) Update(offset, length uint, fn func(data []byte)) {
	handle.live().update(offset, length, fn)
}

// ReadAt copies bytes from the block into `buffer`, beginning at `offset`.
func (handle *Handle) ReadAt(buffer []byte, offset uint) {
	handle.View(offset, uint(len(buffer)), func(data []byte) {
		copy(buffer, data)
	})
}

// WriteAt copies `buffer` into the block at `offset`.
func (handle *Handle) WriteAt(buffer []byte, offset uint) {
	handle.Update(offset, uint(len(buffer)), func(data []byte) {
		copy(data, buffer)
	})
}

// Flush writes the block to the device now if it's dirty.
func (handle *Handle) Flush() error {
	return handle.live().Flush()
}

// Clone returns a new, independent handle to the same block.
func (handle *Handle) Clone() *Handle {
	return newHandle(handle.live())
}

// Release drops this handle's reference. If it was the last reference to the
// block (the pool already let go of it), the block is flushed and any error is
// returned.
func (handle *Handle) Release() error {
	if !handle.released.CompareAndSwap(false, true) {
		return nil
	}
	return handle.entry.release()
}
