package device

import (
	"github.com/xaionaro-go/bytesextra"
)

// MemoryDevice is a writable block device backed by a byte slice. Writes go
// straight into the slice, so Bytes() always reflects what was flushed.
type MemoryDevice struct {
	*StreamDevice
	data []byte
}

// NewMemoryDevice creates a device over `data`. Trailing bytes that don't fill
// a whole block are not addressable.
func NewMemoryDevice(data []byte, bytesPerBlock uint) *MemoryDevice {
	totalBlocks := uint(len(data)) / bytesPerBlock
	return &MemoryDevice{
		StreamDevice: NewStreamDevice(
			bytesextra.NewReadWriteSeeker(data),
			bytesPerBlock,
			totalBlocks,
			0,
			true,
		),
		data: data,
	}
}

// NewBlankMemoryDevice creates a zero-filled device of `totalBlocks` blocks.
func NewBlankMemoryDevice(bytesPerBlock, totalBlocks uint) *MemoryDevice {
	return NewMemoryDevice(make([]byte, bytesPerBlock*totalBlocks), bytesPerBlock)
}

// Bytes returns the device's backing storage. It must not be modified while a
// cache is using the device.
func (device *MemoryDevice) Bytes() []byte {
	return device.data
}
