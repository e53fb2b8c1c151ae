// Package blockcache keeps recently used device blocks in memory and hands out
// shared handles to them.
//
// A [Pool] holds at most a fixed number of entries, one per block ID, in the
// order they were first admitted. Every [Handle] returned by [Pool.Acquire]
// pins its entry until the handle is released. When the pool is full and a new
// block is requested, the oldest unpinned entry is flushed and dropped; if every
// entry is pinned, Acquire fails with [errors.ErrCacheFull] and the caller can
// release handles and retry (or use [Pool.AcquireWait]).
//
// Block contents are accessed through views that run a closure while holding
// the entry's lock. [Read] and [Modify] decode a fixed-layout value at a byte
// offset, hand it to the closure, and (for Modify) encode it back. Any write
// view marks the block dirty; dirty blocks reach the device on [Handle.Flush],
// [Pool.FlushAll], eviction, or when the last reference goes away.
//
// Accessing bytes outside the block is a programming error and panics.
package blockcache
