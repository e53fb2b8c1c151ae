package blockcache

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dargueta/diskcache/common"
	"github.com/dargueta/diskcache/device"
	"github.com/dargueta/diskcache/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Options configures a [Pool]. The zero value gives a pool with the defaults
// from the common package.
type Options struct {
	// Capacity is the maximum number of resident blocks. Defaults to
	// [common.PoolCapacity].
	Capacity uint
	// BlockSize is the size of a block, in bytes. Every device passed to
	// Acquire must use this block size. Defaults to [common.BlockSize].
	BlockSize uint
	// ByteOrder is used to encode and decode values in [Read] and [Modify].
	// Defaults to little-endian.
	ByteOrder binary.ByteOrder
	// Logger receives debug messages about misses and evictions, and warnings
	// about failures. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// Stats counts what a pool has done since it was created.
type Stats struct {
	Hits        uint64 `csv:"hits"`
	Misses      uint64 `csv:"misses"`
	Evictions   uint64 `csv:"evictions"`
	Saturations uint64 `csv:"saturations"`
}

// EntryInfo describes one resident block.
type EntryInfo struct {
	ID       common.BlockID `csv:"block"`
	Dirty    bool           `csv:"dirty"`
	RefCount int            `csv:"refs"`
	Pinned   bool           `csv:"pinned"`
}

type slot struct {
	id    common.BlockID
	entry *Entry
}

// Pool is a fixed-capacity cache of device blocks.
//
// The pool lock is held for the whole of Acquire, including the device read on
// a miss and the flush of an evicted block. All other pool operations wait
// behind that I/O.
type Pool struct {
	capacity  uint
	blockSize uint
	order     binary.ByteOrder
	log       logrus.FieldLogger

	lock    sync.Mutex
	entries []slot // oldest admission first
	stats   Stats

	// unpinnedSignal is closed and replaced whenever an entry loses its last
	// external handle.
	signalLock     sync.Mutex
	unpinnedSignal chan struct{}
}

// New creates an empty pool.
func New(options Options) *Pool {
	if options.Capacity == 0 {
		options.Capacity = common.PoolCapacity
	}
	if options.BlockSize == 0 {
		options.BlockSize = common.BlockSize
	}
	if options.ByteOrder == nil {
		options.ByteOrder = binary.LittleEndian
	}
	if options.Logger == nil {
		options.Logger = logrus.StandardLogger()
	}

	return &Pool{
		capacity:       options.Capacity,
		blockSize:      options.BlockSize,
		order:          options.ByteOrder,
		log:            options.Logger,
		entries:        make([]slot, 0, options.Capacity),
		unpinnedSignal: make(chan struct{}),
	}
}

// Capacity gives the maximum number of resident blocks.
func (pool *Pool) Capacity() uint {
	return pool.capacity
}

// BlockSize gives the size of the blocks this pool caches, in bytes.
func (pool *Pool) BlockSize() uint {
	return pool.blockSize
}

// Len gives the number of resident blocks.
func (pool *Pool) Len() int {
	pool.lock.Lock()
	defer pool.lock.Unlock()
	return len(pool.entries)
}

// Resident returns the IDs of all resident blocks, oldest admission first.
func (pool *Pool) Resident() []common.BlockID {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	ids := make([]common.BlockID, len(pool.entries))
	for i, s := range pool.entries {
		ids[i] = s.id
	}
	return ids
}

// Stats returns a copy of the pool's counters.
func (pool *Pool) Stats() Stats {
	pool.lock.Lock()
	defer pool.lock.Unlock()
	return pool.stats
}

// Snapshot describes every resident block, oldest admission first.
func (pool *Pool) Snapshot() []EntryInfo {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	infos := make([]EntryInfo, len(pool.entries))
	for i, s := range pool.entries {
		refs := s.entry.RefCount()
		infos[i] = EntryInfo{
			ID:       s.id,
			Dirty:    s.entry.Dirty(),
			RefCount: refs,
			Pinned:   refs > 1,
		}
	}
	return infos
}

// indexOf returns the position of block `id` in the pool, or -1 if it isn't
// resident. The caller must hold the pool lock.
func (pool *Pool) indexOf(id common.BlockID) int {
	for i, s := range pool.entries {
		if s.id == id {
			return i
		}
	}
	return -1
}

// findVictim returns the position of the oldest entry that only the pool holds
// a reference to, or -1 if every entry is pinned. The caller must hold the pool
// lock.
func (pool *Pool) findVictim() int {
	for i, s := range pool.entries {
		if s.entry.RefCount() == 1 {
			return i
		}
	}
	return -1
}

// Acquire returns a handle to block `id` of `dev`, reading it from the device
// if it isn't already resident. The caller must release the handle.
//
// Blocks are identified by ID alone: if block `id` is already resident, the
// existing entry is returned no matter which device it was loaded from.
//
// If the pool is full, the oldest unpinned block is flushed and evicted first.
// If every block is pinned, this fails with [errors.ErrCacheFull] and the pool
// is left untouched. If flushing the victim or reading the new block fails,
// the pool is also left untouched (though the victim may have been flushed).
func (pool *Pool) Acquire(id common.BlockID, dev device.BlockDevice) (*Handle, error) {
	if dev.BytesPerBlock() != pool.blockSize {
		return nil, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"device block size %d doesn't match cache block size %d",
				dev.BytesPerBlock(),
				pool.blockSize,
			),
		)
	}

	pool.lock.Lock()
	defer pool.lock.Unlock()

	index := pool.indexOf(id)
	if index >= 0 {
		pool.stats.Hits++
		return newHandle(pool.entries[index].entry), nil
	}

	pool.stats.Misses++
	logger := pool.log.WithField("block", id)
	logger.Debug("cache miss")

	victim := -1
	if uint(len(pool.entries)) >= pool.capacity {
		victim = pool.findVictim()
		if victim < 0 {
			pool.stats.Saturations++
			logger.Warn("can't admit block, all cache entries are pinned")
			return nil, errors.ErrCacheFull.WithMessage(
				fmt.Sprintf("can't load block %d, %d of %d entries pinned",
					id, len(pool.entries), pool.capacity),
			)
		}

		// The victim must be clean before it's unlinked.
		err := pool.entries[victim].entry.Flush()
		if err != nil {
			logger.WithError(err).
				WithField("victim", pool.entries[victim].id).
				Warn("failed to flush eviction victim")
			return nil, err
		}
	}

	entry, err := newEntry(id, dev, pool.order, pool.signalUnpinned)
	if err != nil {
		logger.WithError(err).Warn("failed to load block")
		return nil, err
	}

	if victim >= 0 {
		pool.evict(victim)
	}
	pool.entries = append(pool.entries, slot{id: id, entry: entry})
	return newHandle(entry), nil
}

// evict removes the entry at position `index` and drops the pool's reference
// to it. The caller must hold the pool lock, and the entry must be unpinned.
func (pool *Pool) evict(index int) {
	victim := pool.entries[index]
	pool.entries = append(pool.entries[:index], pool.entries[index+1:]...)
	pool.stats.Evictions++

	pool.log.WithField("block", victim.id).Debug("evicted block")

	err := victim.entry.release()
	if err != nil {
		pool.log.WithField("block", victim.id).WithError(err).Warn("flush on eviction failed")
	}
}

// AcquireWait is like [Pool.Acquire], except that if every block is pinned it
// waits for a handle to be released and tries again. It gives up when `ctx`
// is done.
func (pool *Pool) AcquireWait(
	ctx context.Context,
	id common.BlockID,
	dev device.BlockDevice,
) (*Handle, error) {
	for {
		// Take the signal before trying so a release between the failed attempt
		// and the wait isn't missed.
		unpinned := pool.waitForUnpin()

		handle, err := pool.Acquire(id, dev)
		if errors.CodeOf(err) != errors.ENOBUFS {
			return handle, err
		}

		select {
		case <-ctx.Done():
			return nil, errors.ErrCacheFull.Wrap(ctx.Err())
		case <-unpinned:
		}
	}
}

func (pool *Pool) waitForUnpin() <-chan struct{} {
	pool.signalLock.Lock()
	defer pool.signalLock.Unlock()
	return pool.unpinnedSignal
}

func (pool *Pool) signalUnpinned() {
	pool.signalLock.Lock()
	defer pool.signalLock.Unlock()
	close(pool.unpinnedSignal)
	pool.unpinnedSignal = make(chan struct{})
}

// FlushAll writes every dirty resident block to its device, oldest admission
// first. Nothing is evicted. A failure on one block doesn't stop the others
// from being flushed; all failures are returned together.
func (pool *Pool) FlushAll() error {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	var result *multierror.Error
	for _, s := range pool.entries {
		err := s.entry.Flush()
		if err != nil {
			pool.log.WithField("block", s.id).WithError(err).Warn("flush failed")
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Drain removes every block from the pool. Unpinned blocks are flushed now;
// pinned blocks are flushed when their last handle is released. Handles stay
// valid, but blocks acquired afterwards get fresh entries. Callers blocked in
// [Pool.AcquireWait] are woken.
func (pool *Pool) Drain() error {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	var result *multierror.Error
	for _, s := range pool.entries {
		err := s.entry.release()
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	pool.entries = pool.entries[:0]
	pool.signalUnpinned()
	return result.ErrorOrNil()
}
