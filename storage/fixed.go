package storage

import (
	"context"
	"fmt"
	"sync"
)

// Fixed is a pinned storage with a single block allocated up front.
// It never grows.
type Fixed[T any] struct {
	src      *blockSource[T]
	mu       sync.Mutex
	blk      *block[T]
	capacity int
}

var _ Pinned[int] = (*Fixed[int])(nil)

// NewFixed allocates a storage of exactly capacity slots.
// Only WithFill, WithMemoryAcquirer and WithOffHeap apply.
func NewFixed[T any](capacity int, opts ...Option[T]) (*Fixed[T], error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}

	src, err := newBlockSource(&cfg)
	if err != nil {
		return nil, err
	}

	f := &Fixed[T]{src: src, capacity: capacity}
	if capacity > 0 {
		blk, err := src.newBlock(context.Background(), capacity)
		if err != nil {
			return nil, NewAllocationError(capacity, 0, err)
		}
		f.blk = blk
	}

	return f, nil
}

// Capacity implements Pinned.
func (f *Fixed[T]) Capacity() int {
	return f.capacity
}

// MaximumCapacity implements Pinned.
func (f *Fixed[T]) MaximumCapacity() int {
	return f.capacity
}

// SlotPtr implements Pinned.
func (f *Fixed[T]) SlotPtr(index int) *T {
	return &f.blk.items[index]
}

// GrowTo implements Pinned. Requests beyond the fixed capacity always fail.
func (f *Fixed[T]) GrowTo(_ context.Context, capacity int) (int, error) {
	if capacity <= f.capacity {
		return f.capacity, nil
	}
	return f.capacity, NewAllocationError(capacity, f.capacity, ErrMaximumCapacity)
}

// ReserveMaximumCapacity implements Pinned. A fixed storage cannot raise its
// maximum capacity.
func (f *Fixed[T]) ReserveMaximumCapacity(capacity int) (int, error) {
	if capacity <= f.capacity {
		return f.capacity, nil
	}
	return f.capacity, NewAllocationError(capacity, f.capacity, fmt.Errorf("%w: fixed storage", ErrMaximumCapacity))
}

// Clear implements Pinned.
func (f *Fixed[T]) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.blk != nil {
		f.src.reset(f.blk)
	}
}

// Release implements Pinned.
func (f *Fixed[T]) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.src.free(f.blk)
	f.blk = nil
	return err
}

// Stats returns the current allocation statistics.
func (f *Fixed[T]) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := Stats{
		Capacity:        f.capacity,
		MaximumCapacity: f.capacity,
		BytesReserved:   f.src.reserved.Load(),
	}
	if f.blk != nil {
		st.Blocks = 1
	}
	return st
}

func (f *Fixed[T]) String() string {
	return fmt.Sprintf("Fixed{capacity: %d}", f.capacity)
}
