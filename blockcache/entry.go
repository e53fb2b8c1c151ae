package blockcache

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dargueta/diskcache/common"
	"github.com/dargueta/diskcache/device"
	"github.com/dargueta/diskcache/errors"
)

// Entry is the in-memory copy of a single device block.
//
// An entry is shared: the pool that admitted it holds one reference and every
// live [Handle] holds another. When the count drops to zero the entry flushes
// itself.
type Entry struct {
	id     common.BlockID
	device device.BlockDevice
	order  binary.ByteOrder

	lock   sync.Mutex
	buffer []byte
	dirty  bool

	refs atomic.Int32
	// unpinned is called when the count drops back to 1, i.e. only one holder
	// remains. May be nil.
	unpinned func()
}

// newEntry reads block `id` from `dev` into a new entry. The returned entry has
// one reference, owned by the caller.
func newEntry(
	id common.BlockID,
	dev device.BlockDevice,
	order binary.ByteOrder,
	unpinned func(),
) (*Entry, error) {
	buffer := make([]byte, dev.BytesPerBlock())
	err := dev.ReadBlock(id, buffer)
	if err != nil {
		return nil, errors.ErrIOFailed.WithMessage(
			fmt.Sprintf("failed to load block %d from device: %s", id, err.Error()),
		)
	}

	entry := &Entry{
		id:       id,
		device:   dev,
		order:    order,
		buffer:   buffer,
		unpinned: unpinned,
	}
	entry.refs.Store(1)
	return entry, nil
}

// ID returns the ID of the block this entry mirrors.
func (entry *Entry) ID() common.BlockID {
	return entry.id
}

// Dirty reports whether the buffer was modified since the last flush.
func (entry *Entry) Dirty() bool {
	entry.lock.Lock()
	defer entry.lock.Unlock()
	return entry.dirty
}

// RefCount gives the number of live references to the entry, including the
// pool's own.
func (entry *Entry) RefCount() int {
	return int(entry.refs.Load())
}

// checkBounds panics if `length` bytes at `offset` don't fit in the block.
func (entry *Entry) checkBounds(offset, length uint) {
	if offset+length < offset || offset+length > uint(len(entry.buffer)) {
		panic(
			fmt.Sprintf(
				"blockcache: can't access %d bytes at offset %d of block %d; range not in [0, %d)",
				length,
				offset,
				entry.id,
				len(entry.buffer),
			),
		)
	}
}

// view runs `fn` on `length` bytes of the buffer beginning at `offset`. The
// slice passed to `fn` must not be retained after it returns.
func (entry *Entry) view(offset, length uint, fn func(data []byte)) {
	entry.checkBounds(offset, length)

	entry.lock.Lock()
	defer entry.lock.Unlock()
	fn(entry.buffer[offset : offset+length])
}

// update is like view, but the bytes may be modified. The block is marked
// dirty whether or not `fn` changes anything.
func (entry *Entry) update(offset, length uint, fn func(data []byte)) {
	entry.checkBounds(offset, length)

	entry.lock.Lock()
	defer entry.lock.Unlock()
	entry.dirty = true
	fn(entry.buffer[offset : offset+length])
}

// Flush writes the buffer back to the device if it's dirty, and marks it
// clean. If the write fails the entry stays dirty.
func (entry *Entry) Flush() error {
	entry.lock.Lock()
	defer entry.lock.Unlock()
	return entry.flushLocked()
}

func (entry *Entry) flushLocked() error {
	if !entry.dirty {
		return nil
	}

	err := entry.device.WriteBlock(entry.id, entry.buffer)
	if err != nil {
		return errors.ErrIOFailed.WithMessage(
			fmt.Sprintf("failed to flush block %d to device: %s", entry.id, err.Error()),
		)
	}
	entry.dirty = false
	return nil
}

func (entry *Entry) retain() {
	entry.refs.Add(1)
}

// release drops one reference. Dropping the last one flushes the entry.
func (entry *Entry) release() error {
	remaining := entry.refs.Add(-1)
	switch {
	case remaining < 0:
		panic(fmt.Sprintf("blockcache: block %d released more times than retained", entry.id))
	case remaining == 0:
		return entry.Flush()
	case remaining == 1 && entry.unpinned != nil:
		entry.unpinned()
	}
	return nil
}
