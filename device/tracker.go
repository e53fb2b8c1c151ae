package device

import (
	"sync"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/diskcache/common"
)

// Tracker wraps a BlockDevice and records every transfer that succeeds. It's
// used to verify how much I/O a cache actually performs.
type Tracker struct {
	BlockDevice
	reads       map[common.BlockID]uint
	writes      map[common.BlockID]uint
	totalReads  uint
	totalWrites uint
	written     bitmap.Bitmap
	lock        sync.Mutex
}

// NewTracker wraps `device`.
func NewTracker(device BlockDevice) *Tracker {
	return &Tracker{
		BlockDevice: device,
		reads:       make(map[common.BlockID]uint),
		writes:      make(map[common.BlockID]uint),
		written:     bitmap.New(int(device.TotalBlocks())),
	}
}

func (tracker *Tracker) ReadBlock(id common.BlockID, buffer []byte) error {
	err := tracker.BlockDevice.ReadBlock(id, buffer)
	if err != nil {
		return err
	}

	tracker.lock.Lock()
	defer tracker.lock.Unlock()
	tracker.reads[id]++
	tracker.totalReads++
	return nil
}

func (tracker *Tracker) WriteBlock(id common.BlockID, buffer []byte) error {
	err := tracker.BlockDevice.WriteBlock(id, buffer)
	if err != nil {
		return err
	}

	tracker.lock.Lock()
	defer tracker.lock.Unlock()
	tracker.writes[id]++
	tracker.totalWrites++
	tracker.written.Set(int(id), true)
	return nil
}

// Reads gives the number of successful reads of block `id`.
func (tracker *Tracker) Reads(id common.BlockID) uint {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()
	return tracker.reads[id]
}

// Writes gives the number of successful writes to block `id`.
func (tracker *Tracker) Writes(id common.BlockID) uint {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()
	return tracker.writes[id]
}

// TotalReads gives the number of successful reads across all blocks.
func (tracker *Tracker) TotalReads() uint {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()
	return tracker.totalReads
}

// TotalWrites gives the number of successful writes across all blocks.
func (tracker *Tracker) TotalWrites() uint {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()
	return tracker.totalWrites
}

// WrittenBlocks returns the IDs of every block written at least once, in
// ascending order.
func (tracker *Tracker) WrittenBlocks() []common.BlockID {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()

	var ids []common.BlockID
	for i := 0; i < int(tracker.TotalBlocks()); i++ {
		if tracker.written.Get(i) {
			ids = append(ids, common.BlockID(i))
		}
	}
	return ids
}

// Reset clears all counters.
func (tracker *Tracker) Reset() {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()

	tracker.reads = make(map[common.BlockID]uint)
	tracker.writes = make(map[common.BlockID]uint)
	tracker.totalReads = 0
	tracker.totalWrites = 0
	tracker.written = bitmap.New(int(tracker.TotalBlocks()))
}
