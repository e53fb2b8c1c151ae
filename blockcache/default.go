package blockcache

import (
	"sync"

	"github.com/dargueta/diskcache/common"
	"github.com/dargueta/diskcache/device"
)

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default returns the process-wide pool, creating it with default [Options] on
// first use. It is never torn down; call [SyncAll] before exiting.
//
// Code that can be handed a *Pool should take one instead of using this.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = New(Options{})
	})
	return defaultPool
}

// Acquire returns a handle to block `id` of `dev` from the default pool. See
// [Pool.Acquire].
func Acquire(id common.BlockID, dev device.BlockDevice) (*Handle, error) {
	return Default().Acquire(id, dev)
}

// SyncAll flushes every dirty block in the default pool. See [Pool.FlushAll].
func SyncAll() error {
	return Default().FlushAll()
}
