package pincol

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/pincol/internal/conv"
	"github.com/hupe1980/pincol/storage"
)

// Col is a growable collection whose slots never move once allocated.
//
// Any number of goroutines may call EnsureCapacityFor and then write the
// slots they own without further synchronization. Growth is arbitrated so
// that exactly one goroutine grows at a time, and writers inside the
// published capacity never wait for it.
//
// Col does not track which slots were written. Callers own the protocol
// that keeps two goroutines from writing the same slot.
type Col[T any] struct {
	storage storage.Pinned[T]
	coord   *coordinator
	logger  *Logger
}

// New wraps an existing pinned storage.
func New[T any](s storage.Pinned[T], optFns ...Option) *Col[T] {
	o := applyOptions(optFns)
	return newCol(s, &o)
}

// NewDoubling creates a collection over block storage whose blocks double in
// size, starting at 4 slots.
func NewDoubling[T any](optFns ...Option) (*Col[T], error) {
	o := applyOptions(optFns)

	s, err := storage.NewSplit(storage.NewDoubling(4), storageOptions[T](&o)...)
	if err != nil {
		return nil, err
	}

	return newCol[T](s, &o), nil
}

// NewLinear creates a collection over block storage with maxBlocks blocks of
// 1<<blockBits slots each.
func NewLinear[T any](blockBits, maxBlocks int, optFns ...Option) (*Col[T], error) {
	o := applyOptions(optFns)
	o.maxBlocks = maxBlocks

	s, err := storage.NewSplit(storage.NewLinear(blockBits), storageOptions[T](&o)...)
	if err != nil {
		return nil, err
	}

	return newCol[T](s, &o), nil
}

// NewFixed creates a collection of exactly capacity slots that never grows.
func NewFixed[T any](capacity int, optFns ...Option) (*Col[T], error) {
	o := applyOptions(optFns)

	var opts []storage.Option[T]
	if o.acquirer != nil {
		opts = append(opts, storage.WithMemoryAcquirer[T](o.acquirer))
	}
	if o.offHeap {
		opts = append(opts, storage.WithOffHeap[T]())
	}

	s, err := storage.NewFixed(capacity, opts...)
	if err != nil {
		return nil, err
	}

	return newCol[T](s, &o), nil
}

func newCol[T any](s storage.Pinned[T], o *options) *Col[T] {
	return &Col[T]{
		storage: s,
		coord:   newCoordinator(s, s.Capacity(), o),
		logger:  o.logger,
	}
}

// Capacity returns the published number of writable slots.
func (c *Col[T]) Capacity() int {
	return c.coord.current()
}

// MaximumCapacity returns the capacity growth can reach without
// ReserveMaximumCapacity.
func (c *Col[T]) MaximumCapacity() int {
	return c.storage.MaximumCapacity()
}

// GrowthState returns the current state of the growth protocol.
// It is meant for diagnostics; the value may be stale on return.
func (c *Col[T]) GrowthState() GrowthState {
	return c.coord.growthState()
}

// EnsureCapacityFor makes slot index writable, growing the storage if needed.
// See EnsureCapacityForContext.
func (c *Col[T]) EnsureCapacityFor(index int) error {
	return c.EnsureCapacityForContext(context.Background(), index)
}

// EnsureCapacityForContext makes slot index writable, growing the storage if
// needed. When index is already covered it returns without writing shared
// memory. Otherwise exactly one caller grows while the others wait; ctx
// bounds the wait and is handed to the storage's memory acquirer.
//
// A failed growth returns an *AllocationError. The collection stays usable
// and the call may be retried.
func (c *Col[T]) EnsureCapacityForContext(ctx context.Context, index int) error {
	if index < 0 {
		return ErrNegativeIndex
	}
	return c.coord.ensure(ctx, index)
}

// WriteUnchecked stores v in slot index.
//
// The caller must have seen EnsureCapacityFor(index) succeed and must be the
// only goroutine accessing the slot. Bounds are asserted only in builds with
// the pincoldebug tag.
func (c *Col[T]) WriteUnchecked(index int, v T) {
	c.assertCovered(index)
	*c.storage.SlotPtr(index) = v
}

// ReadUnchecked returns the value of slot index under the same contract as
// WriteUnchecked.
func (c *Col[T]) ReadUnchecked(index int) T {
	c.assertCovered(index)
	return *c.storage.SlotPtr(index)
}

// PtrUnchecked returns the stable address of slot index under the same
// contract as WriteUnchecked.
func (c *Col[T]) PtrUnchecked(index int) *T {
	c.assertCovered(index)
	return c.storage.SlotPtr(index)
}

// Slot ensures capacity for index and returns a handle to the slot.
func (c *Col[T]) Slot(index int) (Slot[T], error) {
	if err := c.EnsureCapacityFor(index); err != nil {
		return Slot[T]{}, err
	}
	return Slot[T]{ptr: c.storage.SlotPtr(index), index: index}, nil
}

// Write ensures capacity for index and stores v there.
func (c *Col[T]) Write(index int, v T) error {
	if err := c.EnsureCapacityFor(index); err != nil {
		return err
	}
	*c.storage.SlotPtr(index) = v
	return nil
}

// WriteN stores values in the slots starting at begin, growing once for the
// whole run.
func (c *Col[T]) WriteN(begin int, values []T) error {
	if begin < 0 {
		return ErrNegativeIndex
	}
	if len(values) == 0 {
		return nil
	}

	last := conv.SaturatingAdd(begin, len(values)-1)
	if err := c.EnsureCapacityFor(last); err != nil {
		return err
	}

	for i, v := range values {
		*c.storage.SlotPtr(begin+i) = v
	}
	return nil
}

// Get returns the value of slot index if it is within capacity.
// Slots that were never written hold their initial value.
func (c *Col[T]) Get(index int) (T, bool) {
	if index < 0 || index >= c.Capacity() {
		var zero T
		return zero, false
	}
	return *c.storage.SlotPtr(index), true
}

// Iter yields the first min(n, Capacity()) slots in index order.
// Concurrent writers to those slots race with the iteration.
func (c *Col[T]) Iter(n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		limit := min(n, c.Capacity())
		for i := 0; i < limit; i++ {
			if !yield(*c.storage.SlotPtr(i)) {
				return
			}
		}
	}
}

// ReserveMaximumCapacity raises the maximum capacity to at least n and
// returns the new maximum. No other goroutine may access the collection
// during the call.
func (c *Col[T]) ReserveMaximumCapacity(n int) (int, error) {
	return c.storage.ReserveMaximumCapacity(n)
}

// Clear returns the collection to its initial capacity and resets every
// remaining slot. No other goroutine may access the collection during the
// call.
func (c *Col[T]) Clear() {
	c.storage.Clear()
	capacity := c.storage.Capacity()
	c.coord.reset(capacity)
	c.logger.LogClear(context.Background(), capacity)
}

// Storage returns the underlying pinned storage.
func (c *Col[T]) Storage() storage.Pinned[T] {
	return c.storage
}

// Close releases all blocks. Subsequent ensures fail with ErrClosed.
// No other goroutine may access the collection during or after the call.
func (c *Col[T]) Close() error {
	if c.coord.closed.Swap(true) {
		return nil
	}
	c.coord.reset(0)

	err := c.storage.Release()
	c.logger.LogClose(context.Background(), err)
	return err
}

func (c *Col[T]) String() string {
	return fmt.Sprintf("Col{state: %s, capacity: %d, maximum_capacity: %d}",
		c.GrowthState(), c.Capacity(), c.MaximumCapacity())
}

func (c *Col[T]) assertCovered(index int) {
	if debugAssertions {
		if capacity := c.Capacity(); index < 0 || index >= capacity {
			panic(fmt.Sprintf("pincol: index %d outside capacity %d", index, capacity))
		}
	}
}
