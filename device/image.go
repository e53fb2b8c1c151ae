package device

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dargueta/diskcache/errors"
	"github.com/dargueta/diskcache/utilities/compression"
)

// LoadCompressedImage expands a compressed disk image (RLE8, then gzip) into
// memory and returns a writable device over it. The uncompressed size must be
// a multiple of `bytesPerBlock`.
func LoadCompressedImage(input io.Reader, bytesPerBlock uint) (*MemoryDevice, error) {
	imageBytes, err := compression.DecompressImageToBytes(input)
	if err != nil {
		return nil, err
	}

	if uint(len(imageBytes))%bytesPerBlock != 0 {
		return nil, errors.ErrCorrupted.WithMessage(
			fmt.Sprintf(
				"image size %d is not a multiple of the block size %d",
				len(imageBytes),
				bytesPerBlock,
			),
		)
	}
	return NewMemoryDevice(imageBytes, bytesPerBlock), nil
}

// SaveCompressedImage writes the full contents of `device` to `output` in the
// format read by [LoadCompressedImage]. The returned int64 gives the number of
// uncompressed bytes written.
func SaveCompressedImage(device *MemoryDevice, output io.Writer) (int64, error) {
	imageBytes := device.Bytes()
	err := compression.CompressImage(bytes.NewReader(imageBytes), output)
	if err != nil {
		return 0, err
	}
	return int64(len(imageBytes)), nil
}
