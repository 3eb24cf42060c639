package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMaximumCapacity is returned when growing would exceed the maximum capacity.
	ErrMaximumCapacity = errors.New("storage: maximum capacity reached")
	// ErrAllocationFailed is returned when the allocator cannot provide a block.
	ErrAllocationFailed = errors.New("storage: allocation failed")
	// ErrPointerElements is returned when off-heap blocks are requested for an element type containing pointers.
	ErrPointerElements = errors.New("storage: off-heap blocks require pointer-free element types")
	// ErrInvalidCapacity is returned for negative capacities.
	ErrInvalidCapacity = errors.New("storage: invalid capacity")
)

// MaxBlocksLimit bounds the size of a block directory.
const MaxBlocksLimit = 65536

// Pinned is a vector-like container whose allocated slots never move.
type Pinned[T any] interface {
	// Capacity returns the number of allocated slots.
	Capacity() int

	// MaximumCapacity returns the capacity GrowTo can reach without
	// ReserveMaximumCapacity.
	MaximumCapacity() int

	// SlotPtr returns the address of slot index.
	// It is defined only for index < Capacity(); the address never changes.
	SlotPtr(index int) *T

	// GrowTo appends blocks until the capacity is at least capacity and
	// returns the new capacity. Existing blocks are never moved.
	GrowTo(ctx context.Context, capacity int) (int, error)

	// ReserveMaximumCapacity raises the maximum capacity to at least capacity.
	// Requires exclusive access.
	ReserveMaximumCapacity(capacity int) (int, error)

	// Clear drops every slot beyond the initial capacity and resets the rest.
	// Requires exclusive access.
	Clear()

	// Release frees all blocks. The storage must not be used afterwards.
	Release() error
}

// MemoryAcquirer is consulted before each block allocation.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

// AllocationError reports that a storage could not grow to the requested capacity.
//
// The underlying cause can be accessed via errors.Unwrap.
type AllocationError struct {
	Requested int
	Capacity  int
	cause     error
}

// NewAllocationError creates an AllocationError.
func NewAllocationError(requested, capacity int, cause error) *AllocationError {
	return &AllocationError{Requested: requested, Capacity: capacity, cause: cause}
}

func (e *AllocationError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("allocation error: cannot grow from %d to %d", e.Capacity, e.Requested)
	}
	return fmt.Sprintf("allocation error: cannot grow from %d to %d: %v", e.Capacity, e.Requested, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }

// Stats describes the allocation state of a storage.
type Stats struct {
	Blocks          int    // Current: allocated blocks
	Capacity        int    // Current: allocated slots
	MaximumCapacity int    // Current: growth ceiling
	BytesReserved   int64  // Current: bytes held by blocks
	Growths         uint64 // Historical: GrowTo calls that appended blocks
}
