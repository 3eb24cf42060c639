package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/pincol/internal/conv"
)

// Split is a pinned storage made of independently allocated blocks whose
// sizes follow a Growth policy.
type Split[T any] struct {
	growth Growth
	src    *blockSource[T]

	// dir has one entry per possible block. Entries are published with an
	// atomic store before the capacity that covers them.
	dir         []atomic.Pointer[block[T]]
	blocks      atomic.Int32
	capacity    atomic.Int64
	maxCapacity atomic.Int64

	mu            sync.Mutex // Serializes growth
	initialBlocks int
	growths       atomic.Uint64
}

var _ Pinned[int] = (*Split[int])(nil)

// NewSplit creates a block storage with the given growth policy.
// A nil policy defaults to NewDoubling(4).
func NewSplit[T any](growth Growth, opts ...Option[T]) (*Split[T], error) {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.initialCapacity < -1 {
		return nil, ErrInvalidCapacity
	}
	if growth == nil {
		growth = NewDoubling(4)
	}

	src, err := newBlockSource(&cfg)
	if err != nil {
		return nil, err
	}

	s := &Split[T]{
		growth: growth,
		src:    src,
		dir:    make([]atomic.Pointer[block[T]], cfg.maxBlocks),
	}
	s.maxCapacity.Store(int64(capacityOf(growth, cfg.maxBlocks)))

	initial := cfg.initialCapacity
	if initial < 0 {
		initial = growth.BlockSize(0)
	}
	if initial > 0 {
		if _, err := s.GrowTo(context.Background(), initial); err != nil {
			_ = s.Release()
			return nil, err
		}
	}
	s.initialBlocks = int(s.blocks.Load())
	s.growths.Store(0)

	return s, nil
}

// NewDoublingSplit creates a Split storage with doubling growth starting at 4 slots.
func NewDoublingSplit[T any](opts ...Option[T]) (*Split[T], error) {
	return NewSplit(NewDoubling(4), opts...)
}

// NewLinearSplit creates a Split storage with blocks of 1<<blockBits slots and
// room for maxBlocks blocks.
func NewLinearSplit[T any](blockBits, maxBlocks int, opts ...Option[T]) (*Split[T], error) {
	opts = append([]Option[T]{WithMaxBlocks[T](maxBlocks)}, opts...)
	return NewSplit(NewLinear(blockBits), opts...)
}

// Capacity implements Pinned.
func (s *Split[T]) Capacity() int {
	return int(s.capacity.Load())
}

// MaximumCapacity implements Pinned.
func (s *Split[T]) MaximumCapacity() int {
	return int(s.maxCapacity.Load())
}

// SlotPtr implements Pinned. It performs no bounds checking beyond the
// runtime's slice checks.
func (s *Split[T]) SlotPtr(index int) *T {
	b, off := s.growth.Locate(index)
	return &s.dir[b].Load().items[off]
}

// GrowTo implements Pinned.
func (s *Split[T]) GrowTo(ctx context.Context, capacity int) (int, error) {
	if current := s.Capacity(); capacity <= current {
		return current, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Capacity()
	if capacity <= current {
		return current, nil
	}
	if capacity > s.MaximumCapacity() {
		return current, NewAllocationError(capacity, current, ErrMaximumCapacity)
	}

	for current < capacity {
		b := int(s.blocks.Load())
		if b >= len(s.dir) {
			return current, NewAllocationError(capacity, current, ErrMaximumCapacity)
		}

		blk, err := s.src.newBlock(ctx, s.growth.BlockSize(b))
		if err != nil {
			return current, NewAllocationError(capacity, current, err)
		}

		s.dir[b].Store(blk)
		s.blocks.Store(int32(b + 1)) //nolint:gosec // b < MaxBlocksLimit
		current = conv.SaturatingAdd(current, len(blk.items))
		s.capacity.Store(int64(current))
	}

	s.growths.Add(1)

	return current, nil
}

// ReserveMaximumCapacity implements Pinned. The block directory is replaced by
// a larger one; blocks themselves do not move.
func (s *Split[T]) ReserveMaximumCapacity(capacity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxCap := s.MaximumCapacity()
	if capacity <= maxCap {
		return maxCap, nil
	}

	n := len(s.dir)
	for maxCap < capacity {
		if n >= MaxBlocksLimit {
			return maxCap, NewAllocationError(capacity, maxCap, fmt.Errorf("%w: directory limit of %d blocks", ErrMaximumCapacity, MaxBlocksLimit))
		}
		maxCap = conv.SaturatingAdd(maxCap, s.growth.BlockSize(n))
		n++
	}

	dir := make([]atomic.Pointer[block[T]], n)
	for i := range s.dir {
		dir[i].Store(s.dir[i].Load())
	}
	s.dir = dir
	s.maxCapacity.Store(int64(maxCap))

	return maxCap, nil
}

// Clear implements Pinned. Blocks allocated at construction are kept and reset.
func (s *Split[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := int(s.blocks.Load())
	capacity := 0
	for b := 0; b < count; b++ {
		blk := s.dir[b].Load()
		if b < s.initialBlocks {
			s.src.reset(blk)
			capacity += len(blk.items)
			continue
		}
		_ = s.src.free(blk)
		s.dir[b].Store(nil)
	}

	s.blocks.Store(int32(min(count, s.initialBlocks))) //nolint:gosec // bounded by directory length
	s.capacity.Store(int64(capacity))
}

// Release implements Pinned.
func (s *Split[T]) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	count := int(s.blocks.Load())
	for b := 0; b < count; b++ {
		if err := s.src.free(s.dir[b].Swap(nil)); err != nil {
			errs = append(errs, err)
		}
	}
	s.blocks.Store(0)
	s.capacity.Store(0)

	return errors.Join(errs...)
}

// Stats returns the current allocation statistics.
func (s *Split[T]) Stats() Stats {
	return Stats{
		Blocks:          int(s.blocks.Load()),
		Capacity:        s.Capacity(),
		MaximumCapacity: s.MaximumCapacity(),
		BytesReserved:   s.src.reserved.Load(),
		Growths:         s.growths.Load(),
	}
}

func (s *Split[T]) String() string {
	st := s.Stats()
	return fmt.Sprintf("Split{blocks: %d, capacity: %d, maximum_capacity: %d}", st.Blocks, st.Capacity, st.MaximumCapacity)
}
