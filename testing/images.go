// Package testing provides fixtures shared by the tests of the cache and its
// devices.
package testing

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/dargueta/diskcache/device"
	"github.com/dargueta/diskcache/utilities/compression"
	"github.com/stretchr/testify/require"
)

// CreateRandomImage creates an image with the given number of blocks and bytes
// per block. It is guaranteed to either return a valid slice or fail the test
// and abort.
func CreateRandomImage(bytesPerBlock, totalBlocks uint, t *testing.T) []byte {
	backingData := make([]byte, bytesPerBlock*totalBlocks)

	_, err := rand.Read(backingData)
	require.NoErrorf(
		t,
		err,
		"failed to initialize %d blocks of size %d with random bytes",
		totalBlocks,
		bytesPerBlock,
	)
	return backingData
}

// CompressImage compresses a raw image into the on-disk format read by
// [LoadDiskImage].
func CompressImage(t *testing.T, rawImage []byte) []byte {
	var compressed bytes.Buffer
	require.NoError(t, compression.CompressImage(bytes.NewReader(rawImage), &compressed))
	return compressed.Bytes()
}

// LoadDiskImage takes a compressed disk image and returns a device over the
// uncompressed data.
//
//   - Writes to the device do not affect `compressedImageBytes`.
//   - While the device can be written to, its size is fixed to
//     `bytesPerBlock * totalBlocks`.
func LoadDiskImage(
	t *testing.T, compressedImageBytes []byte, bytesPerBlock, totalBlocks uint,
) *device.MemoryDevice {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	dev, err := device.LoadCompressedImage(
		bytes.NewReader(compressedImageBytes), bytesPerBlock)
	require.NoError(t, err)
	require.EqualValues(t, totalBlocks, dev.TotalBlocks(), "uncompressed image is wrong size")
	return dev
}
