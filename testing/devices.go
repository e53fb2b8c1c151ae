package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/dargueta/diskcache/blockcache"
	"github.com/dargueta/diskcache/common"
	"github.com/dargueta/diskcache/device"
	"github.com/dargueta/diskcache/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// CreateTrackedDevice creates an in-memory device wrapped in a [device.Tracker].
//
// `backingData` is optional; pass nil to get completely random data. If given,
// it must be exactly `bytesPerBlock * totalBlocks` bytes and is used directly
// as the device's storage, so the test can inspect what was flushed.
func CreateTrackedDevice(
	bytesPerBlock,
	totalBlocks uint,
	backingData []byte,
	t *testing.T,
) (*device.Tracker, *device.MemoryDevice) {
	if backingData == nil {
		backingData = CreateRandomImage(bytesPerBlock, totalBlocks, t)
	}
	require.EqualValues(
		t, bytesPerBlock*totalBlocks, len(backingData), "backing data is the wrong size")

	memory := device.NewMemoryDevice(backingData, bytesPerBlock)
	return device.NewTracker(memory), memory
}

// CreatePool creates a pool whose log output is captured instead of printed.
// The returned hook can be used to assert on what was logged.
func CreatePool(capacity, bytesPerBlock uint) (*blockcache.Pool, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	pool := blockcache.New(blockcache.Options{
		Capacity:  capacity,
		BlockSize: bytesPerBlock,
		Logger:    logger,
	})
	return pool, hook
}

// BlockContents returns a copy of block `id` as stored in `data`.
func BlockContents(data []byte, bytesPerBlock uint, id common.BlockID) []byte {
	start := uint(id) * bytesPerBlock
	contents := make([]byte, bytesPerBlock)
	copy(contents, data[start:start+bytesPerBlock])
	return contents
}

// FaultyDevice wraps a device and fails reads or writes on demand.
type FaultyDevice struct {
	device.BlockDevice
	FailReads  atomic.Bool
	FailWrites atomic.Bool
}

// NewFaultyDevice wraps `dev`. Nothing fails until one of the flags is set.
func NewFaultyDevice(dev device.BlockDevice) *FaultyDevice {
	return &FaultyDevice{BlockDevice: dev}
}

func (dev *FaultyDevice) ReadBlock(id common.BlockID, buffer []byte) error {
	if dev.FailReads.Load() {
		return errors.ErrIOFailed.WithMessage(fmt.Sprintf("injected read failure on block %d", id))
	}
	return dev.BlockDevice.ReadBlock(id, buffer)
}

func (dev *FaultyDevice) WriteBlock(id common.BlockID, buffer []byte) error {
	if dev.FailWrites.Load() {
		return errors.ErrIOFailed.WithMessage(fmt.Sprintf("injected write failure on block %d", id))
	}
	return dev.BlockDevice.WriteBlock(id, buffer)
}
