// Package resource implements a memory budget shared by pinned storages.
//
// A Controller tracks the bytes held by storage blocks and optionally enforces
// a hard limit. It satisfies storage.MemoryAcquirer, so a single controller can
// govern many collections:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB across all collections
//	})
//
//	col, err := pincol.NewDoubling[Event](pincol.WithMemoryAcquirer(rc))
//
// # Acquire Semantics
//
// AcquireMemory is fail-fast when the context carries no deadline: a request
// that does not fit returns ErrMemoryLimitExceeded immediately, so a growing
// goroutine never parks while others wait on it. With a deadline, the request
// waits until enough memory is released or the deadline passes.
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
