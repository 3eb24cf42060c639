// Package atomicutil provides atomics that do not share a cache line with
// neighbouring fields.
//
// The coordinator's capacity is loaded by every writer on every ensure call
// while the growth state is hammered by CAS attempts during contention. Keeping
// them on separate cache lines prevents one from invalidating the other.
package atomicutil

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is the size of a CPU cache line on the build target.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// Int64 is an atomic.Int64 padded on both sides to a full cache line.
type Int64 struct {
	_ cpu.CacheLinePad
	atomic.Int64
	_ cpu.CacheLinePad
}

// Pointer is an atomic.Pointer padded on both sides to a full cache line.
type Pointer[T any] struct {
	_ cpu.CacheLinePad
	atomic.Pointer[T]
	_ cpu.CacheLinePad
}
