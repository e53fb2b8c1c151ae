package main

import (
	"encoding/binary"
	"os"

	"github.com/dargueta/diskcache/blockcache"
	"github.com/dargueta/diskcache/common"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "diskcache",
		Usage: "Inspect and modify disk images through a block cache",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "block-size",
				Usage:   "size of a device block, in bytes",
				Value:   common.BlockSize,
				EnvVars: []string{"DISKCACHE_BLOCK_SIZE"},
			},
			&cli.UintFlag{
				Name:    "capacity",
				Usage:   "maximum number of blocks held in memory",
				Value:   common.PoolCapacity,
				EnvVars: []string{"DISKCACHE_CAPACITY"},
			},
			&cli.Int64Flag{
				Name:  "offset",
				Usage: "byte offset of block 0 within the image",
			},
			&cli.BoolFlag{
				Name:  "big-endian",
				Usage: "encode typed values big-endian instead of little-endian",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "one of panic, fatal, error, warn, info, debug, trace",
				Value:   "warn",
				EnvVars: []string{"DISKCACHE_LOG_LEVEL"},
			},
		},
		Before: configureLogging,
		Commands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "Hex-dump part of a block",
				ArgsUsage: "IMAGE BLOCK [OFFSET LENGTH]",
				Action:    readBlock,
			},
			{
				Name:      "write",
				Usage:     "Write hex-encoded bytes into a block",
				ArgsUsage: "IMAGE BLOCK OFFSET HEXBYTES",
				Action:    writeBytes,
			},
			{
				Name:      "put-uint",
				Usage:     "Store an unsigned integer in a block",
				ArgsUsage: "IMAGE BLOCK OFFSET VALUE",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  "width",
						Usage: "integer width in bits: 8, 16, 32, or 64",
						Value: 32,
					},
				},
				Action: putUint,
			},
			{
				Name:        "fill",
				Usage:       "Fill a run of blocks with one byte value",
				ArgsUsage:   "IMAGE FIRST COUNT BYTE",
				Description: fillDescription,
				Action:      fillBlocks,
			},
			{
				Name:      "stats",
				Usage:     "Load blocks and print the cache's state as CSV",
				ArgsUsage: "IMAGE BLOCK...",
				Action:    printStats,
			},
		},
	}
}

const fillDescription = `Blocks are filled concurrently. If some blocks can't be filled, the
ones that were are still written to the image, and the command fails.`

func configureLogging(context *cli.Context) error {
	level, err := log.ParseLevel(context.String("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

// newPool builds a cache pool from the global flags.
func newPool(context *cli.Context) *blockcache.Pool {
	var order binary.ByteOrder = binary.LittleEndian
	if context.Bool("big-endian") {
		order = binary.BigEndian
	}

	return blockcache.New(blockcache.Options{
		Capacity:  context.Uint("capacity"),
		BlockSize: context.Uint("block-size"),
		ByteOrder: order,
		Logger:    log.StandardLogger(),
	})
}
