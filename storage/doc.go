// Package storage provides pinned block storage: vector-like containers whose
// slots never move once allocated.
//
// # Layout
//
// A Split storage is an append-only sequence of independently allocated
// blocks. Growing appends a block; existing blocks are never resized, copied
// or freed while the storage is alive, so a pointer obtained from SlotPtr stays
// valid for the storage's lifetime.
//
//	┌──────────┬──────────────────┬──────────────────────────────────┐
//	│ block 0  │ block 1          │ block 2                          │
//	│ 4 slots  │ 8 slots          │ 16 slots                         │
//	└──────────┴──────────────────┴──────────────────────────────────┘
//	index:  0..3      4..11              12..27
//
// A Growth policy decides block sizes and maps an index to its block and
// offset in O(1): Doubling (4, 8, 16, ...) or Linear (fixed-size blocks).
//
// The block directory has a fixed number of entries (the maximum number of
// blocks), so the sum of all block sizes is the maximum capacity reachable
// without exclusive access. ReserveMaximumCapacity enlarges the directory.
//
// # Concurrency Model
//
//   - Capacity and SlotPtr are lock-free and safe to call concurrently with
//     GrowTo.
//   - GrowTo serializes structural changes internally; it publishes each new
//     block before advancing the capacity.
//   - ReserveMaximumCapacity, Clear and Release require exclusive access.
//   - Reads and writes of individual slots are not synchronized at all.
//
// # Memory Accounting
//
// A MemoryAcquirer (see package resource) is consulted before every block
// allocation. A refusal surfaces as an *AllocationError and leaves the storage
// unchanged.
package storage
