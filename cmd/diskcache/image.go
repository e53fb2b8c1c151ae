package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dargueta/diskcache/device"
	"github.com/dargueta/diskcache/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// image is a block device opened from a path on the command line. Gzipped
// images (*.gz) are expanded into memory and recompressed on Close if they
// were opened for writing.
type image struct {
	device.BlockDevice
	path     string
	writable bool
	file     *os.File
	memory   *device.MemoryDevice
}

func openImage(context *cli.Context, path string, writable bool) (*image, error) {
	bytesPerBlock := context.Uint("block-size")
	startOffset := context.Int64("offset")

	if strings.HasSuffix(path, ".gz") {
		if startOffset != 0 {
			return nil, errors.ErrNotSupported.WithMessage(
				"--offset can't be used with compressed images")
		}

		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		memory, err := device.LoadCompressedImage(file, bytesPerBlock)
		if err != nil {
			return nil, fmt.Errorf("failed to load `%s`: %w", path, err)
		}
		return &image{BlockDevice: memory, path: path, writable: writable, memory: memory}, nil
	}

	flags := os.O_RDONLY
	if writable {
		flags = os.O_RDWR
	}
	file, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, err
	}

	totalBlocks, err := device.DetermineBlockCount(file, bytesPerBlock, startOffset)
	if err != nil {
		file.Close()
		return nil, err
	}

	log.WithFields(log.Fields{"path": path, "blocks": totalBlocks}).Debug("opened image")
	return &image{
		BlockDevice: device.NewStreamDevice(file, bytesPerBlock, totalBlocks, startOffset, writable),
		path:        path,
		writable:    writable,
		file:        file,
	}, nil
}

// Close releases the image. The cache must have been flushed first.
func (img *image) Close() error {
	if img.file != nil {
		return img.file.Close()
	}
	if !img.writable {
		return nil
	}

	// Write to a sibling file first so a failure can't destroy the original.
	tempPath := img.path + ".tmp"
	output, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = device.SaveCompressedImage(img.memory, output)
	if closeErr := output.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, img.path)
}
