package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/dargueta/diskcache/common"
	"github.com/dargueta/diskcache/errors"
)

// StreamDevice is an abstraction layer around a stream to make it look like a
// block device, e.g. a file that can only be read from or written to in
// multiples of its fundamental unit, a "block".
type StreamDevice struct {
	stream        io.ReadWriteSeeker
	bytesPerBlock uint
	totalBlocks   uint
	// startOffset is an offset from the beginning of the stream, in bytes, that
	// will be considered the beginning of block 0 for the device. This is useful
	// for skipping over MBRs or other volumes stored on the same image.
	startOffset int64
	writable    bool
	// Seeking and transferring must happen as one step.
	lock sync.Mutex
}

// NewStreamDevice creates a block device on top of `stream`. If `writable` is
// false, all writes fail with [errors.EROFS].
func NewStreamDevice(
	stream io.ReadWriteSeeker,
	bytesPerBlock uint,
	totalBlocks uint,
	startOffset int64,
	writable bool,
) *StreamDevice {
	return &StreamDevice{
		stream:        stream,
		bytesPerBlock: bytesPerBlock,
		totalBlocks:   totalBlocks,
		startOffset:   startOffset,
		writable:      writable,
	}
}

// DetermineBlockCount gives the total number of blocks in a stream after
// `startOffset`, rounded down to the nearest block.
func DetermineBlockCount(stream io.Seeker, bytesPerBlock uint, startOffset int64) (uint, error) {
	end, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if end < startOffset {
		return 0, nil
	}
	return uint((end - startOffset) / int64(bytesPerBlock)), nil
}

func (device *StreamDevice) BytesPerBlock() uint {
	return device.bytesPerBlock
}

func (device *StreamDevice) TotalBlocks() uint {
	return device.totalBlocks
}

// Writable reports whether WriteBlock is permitted.
func (device *StreamDevice) Writable() bool {
	return device.writable
}

// BlockIDToFileOffset converts a block ID into a byte offset into the backing
// I/O stream.
func (device *StreamDevice) BlockIDToFileOffset(id common.BlockID) int64 {
	return device.startOffset + (int64(id) * int64(device.bytesPerBlock))
}

// seekToBlock positions the stream pointer at the byte offset where the given
// block starts. The caller must hold the lock.
func (device *StreamDevice) seekToBlock(id common.BlockID) error {
	_, err := device.stream.Seek(device.BlockIDToFileOffset(id), io.SeekStart)
	if err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	return nil
}

// ReadBlock reads one whole block. If the stream ends partway through the
// block, the remainder of `buffer` is zeroed.
func (device *StreamDevice) ReadBlock(id common.BlockID, buffer []byte) error {
	err := CheckIO(device, id, buffer)
	if err != nil {
		return err
	}

	device.lock.Lock()
	defer device.lock.Unlock()

	err = device.seekToBlock(id)
	if err != nil {
		return err
	}

	bytesRead, err := io.ReadFull(device.stream, buffer)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		for i := bytesRead; i < len(buffer); i++ {
			buffer[i] = 0
		}
		return nil
	} else if err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	return nil
}

// WriteBlock writes one whole block.
func (device *StreamDevice) WriteBlock(id common.BlockID, buffer []byte) error {
	if !device.writable {
		return errors.ErrReadOnlyFileSystem.WithMessage(
			fmt.Sprintf("attempted to write %d bytes to block %d", len(buffer), id),
		)
	}

	err := CheckIO(device, id, buffer)
	if err != nil {
		return err
	}

	device.lock.Lock()
	defer device.lock.Unlock()

	err = device.seekToBlock(id)
	if err != nil {
		return err
	}

	bytesWritten, err := device.stream.Write(buffer)
	if err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	if bytesWritten != len(buffer) {
		return errors.ErrIOFailed.WithMessage(
			fmt.Sprintf("short write to block %d: %d of %d bytes", id, bytesWritten, len(buffer)),
		)
	}
	return nil
}
