// Package common contains definitions of fundamental types and constants shared
// by the cache and the block devices underneath it.
package common

// BlockID is the index of a block on a device. All block indices begin at 0.
type BlockID uint

const (
	// BlockSize is the default size of a device block, in bytes.
	BlockSize uint = 512

	// PoolCapacity is the default number of blocks a cache pool may hold.
	PoolCapacity uint = 16
)
