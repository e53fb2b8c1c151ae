package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/dargueta/diskcache/blockcache"
	"github.com/dargueta/diskcache/common"
	"github.com/gocarina/gocsv"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func parseUint(context *cli.Context, index int, name string) (uint, error) {
	raw := context.Args().Get(index)
	if raw == "" {
		return 0, fmt.Errorf("missing argument %s", name)
	}
	value, err := strconv.ParseUint(raw, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("bad value for %s: %w", name, err)
	}
	return uint(value), nil
}

// fits reports whether `length` bytes starting at `offset` lie inside a block
// of `size` bytes.
func fits(offset, length, size uint) bool {
	return offset <= size && length <= size-offset
}

func requireArgs(context *cli.Context, minimum int) error {
	if context.NArg() < minimum {
		cli.ShowSubcommandHelp(context)
		return fmt.Errorf("expected at least %d arguments, got %d", minimum, context.NArg())
	}
	return nil
}

// withBlock opens the image named by the first argument, acquires the block
// named by the second, and runs `fn` on it. Changes are synced before the
// image is closed.
func withBlock(
	context *cli.Context,
	writable bool,
	fn func(pool *blockcache.Pool, handle *blockcache.Handle) error,
) (err error) {
	img, err := openImage(context, context.Args().Get(0), writable)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := img.Close(); err == nil {
			err = closeErr
		}
	}()

	blockID, err := parseUint(context, 1, "BLOCK")
	if err != nil {
		return err
	}

	pool := newPool(context)
	handle, err := pool.Acquire(common.BlockID(blockID), img)
	if err != nil {
		return err
	}

	err = fn(pool, handle)
	if releaseErr := handle.Release(); err == nil {
		err = releaseErr
	}
	if err != nil {
		return err
	}
	return pool.FlushAll()
}

func readBlock(context *cli.Context) error {
	if err := requireArgs(context, 2); err != nil {
		return err
	}

	return withBlock(context, false, func(pool *blockcache.Pool, handle *blockcache.Handle) error {
		offset := uint(0)
		length := handle.BytesPerBlock()
		if context.NArg() >= 4 {
			var err error
			if offset, err = parseUint(context, 2, "OFFSET"); err != nil {
				return err
			}
			if length, err = parseUint(context, 3, "LENGTH"); err != nil {
				return err
			}
		}
		if !fits(offset, length, handle.BytesPerBlock()) {
			return fmt.Errorf(
				"can't read %d bytes at offset %d; block is only %d bytes",
				length, offset, handle.BytesPerBlock())
		}

		handle.View(offset, length, func(data []byte) {
			fmt.Print(hex.Dump(data))
		})
		return nil
	})
}

func writeBytes(context *cli.Context) error {
	if err := requireArgs(context, 4); err != nil {
		return err
	}

	return withBlock(context, true, func(pool *blockcache.Pool, handle *blockcache.Handle) error {
		offset, err := parseUint(context, 2, "OFFSET")
		if err != nil {
			return err
		}
		data, err := hex.DecodeString(context.Args().Get(3))
		if err != nil {
			return fmt.Errorf("bad value for HEXBYTES: %w", err)
		}
		if !fits(offset, uint(len(data)), handle.BytesPerBlock()) {
			return fmt.Errorf(
				"can't write %d bytes at offset %d; block is only %d bytes",
				len(data), offset, handle.BytesPerBlock())
		}

		handle.WriteAt(data, offset)
		return nil
	})
}

func putUint(context *cli.Context) error {
	if err := requireArgs(context, 4); err != nil {
		return err
	}

	return withBlock(context, true, func(pool *blockcache.Pool, handle *blockcache.Handle) error {
		offset, err := parseUint(context, 2, "OFFSET")
		if err != nil {
			return err
		}

		width := context.Uint("width")
		value, err := strconv.ParseUint(context.Args().Get(3), 0, int(width))
		if err != nil {
			return fmt.Errorf("bad value for VALUE: %w", err)
		}
		if !fits(offset, width/8, handle.BytesPerBlock()) {
			return fmt.Errorf("a %d-bit integer doesn't fit at offset %d", width, offset)
		}

		switch width {
		case 8:
			blockcache.Set(handle, offset, uint8(value))
		case 16:
			blockcache.Set(handle, offset, uint16(value))
		case 32:
			blockcache.Set(handle, offset, uint32(value))
		case 64:
			blockcache.Set(handle, offset, value)
		default:
			return fmt.Errorf("unsupported integer width %d", width)
		}
		return nil
	})
}

func fillBlocks(context *cli.Context) (err error) {
	if err := requireArgs(context, 4); err != nil {
		return err
	}

	img, err := openImage(context, context.Args().Get(0), true)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := img.Close(); err == nil {
			err = closeErr
		}
	}()

	first, err := parseUint(context, 1, "FIRST")
	if err != nil {
		return err
	}
	count, err := parseUint(context, 2, "COUNT")
	if err != nil {
		return err
	}
	fill, err := parseUint(context, 3, "BYTE")
	if err != nil {
		return err
	}
	if fill > 0xff {
		return fmt.Errorf("BYTE must be in [0, 255], got %d", fill)
	}

	pool := newPool(context)
	group, ctx := errgroup.WithContext(context.Context)
	group.SetLimit(int(pool.Capacity()))

	for i := uint(0); i < count; i++ {
		blockID := common.BlockID(first + i)
		group.Go(func() error {
			handle, err := pool.AcquireWait(ctx, blockID, img)
			if err != nil {
				return err
			}
			handle.Update(0, handle.BytesPerBlock(), func(data []byte) {
				for j := range data {
					data[j] = byte(fill)
				}
			})
			return handle.Release()
		})
	}

	// Blocks filled before a failure are still flushed.
	waitErr := group.Wait()
	flushErr := pool.FlushAll()
	if waitErr != nil {
		return multierror.Append(waitErr, flushErr)
	}
	log.WithField("blocks", count).Info("filled blocks")
	return flushErr
}

func printStats(context *cli.Context) (err error) {
	if err := requireArgs(context, 2); err != nil {
		return err
	}

	img, err := openImage(context, context.Args().Get(0), false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := img.Close(); err == nil {
			err = closeErr
		}
	}()

	pool := newPool(context)
	var handles []*blockcache.Handle
	defer func() {
		for _, handle := range handles {
			handle.Release()
		}
	}()

	// Every named block stays pinned until the snapshot is printed, so asking
	// for more blocks than the capacity shows saturation.
	for i := 1; i < context.NArg(); i++ {
		blockID, err := parseUint(context, i, "BLOCK")
		if err != nil {
			return err
		}
		handle, err := pool.Acquire(common.BlockID(blockID), img)
		if err != nil {
			log.WithError(err).WithField("block", blockID).Warn("couldn't load block")
			continue
		}
		handles = append(handles, handle)
	}

	err = gocsv.Marshal(pool.Snapshot(), os.Stdout)
	if err != nil {
		return err
	}
	fmt.Println()
	return gocsv.Marshal([]blockcache.Stats{pool.Stats()}, os.Stdout)
}
