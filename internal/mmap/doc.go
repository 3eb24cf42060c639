// Package mmap provides anonymous memory mappings for off-heap block storage.
//
// # Overview
//
// Blocks of pointer-free elements can live outside the Go heap. The garbage
// collector never scans or moves them, and large collections do not inflate
// the GC's heap goal.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zeroed, read-write
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// # Thread Safety
//
// Bytes may be called concurrently. Close is idempotent, but callers must
// ensure no goroutine touches the memory after Close returns.
package mmap
