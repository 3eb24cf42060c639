package storage

import (
	"context"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/pincol/internal/conv"
)

// blockSource allocates, fills, accounts and releases blocks.
type blockSource[T any] struct {
	alloc    allocator[T]
	fill     func() T
	acquirer MemoryAcquirer
	elemSize uintptr
	reserved atomic.Int64
}

func newBlockSource[T any](cfg *config[T]) (*blockSource[T], error) {
	alloc, err := cfg.allocator()
	if err != nil {
		return nil, err
	}
	var zero T
	return &blockSource[T]{
		alloc:    alloc,
		fill:     cfg.fill,
		acquirer: cfg.acquirer,
		elemSize: unsafe.Sizeof(zero),
	}, nil
}

func (s *blockSource[T]) newBlock(ctx context.Context, n int) (*block[T], error) {
	bytes, err := conv.ByteSize(n, s.elemSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}

	if s.acquirer != nil {
		if err := s.acquirer.AcquireMemory(ctx, bytes); err != nil {
			return nil, err
		}
	}

	b, err := s.alloc.alloc(n)
	if err != nil {
		if s.acquirer != nil {
			s.acquirer.ReleaseMemory(bytes)
		}
		return nil, err
	}

	b.bytes = bytes
	if s.fill != nil {
		s.reset(b)
	}
	s.reserved.Add(bytes)

	return b, nil
}

// reset restores every slot of b to its initial value.
func (s *blockSource[T]) reset(b *block[T]) {
	if s.fill == nil {
		clear(b.items)
		return
	}
	for i := range b.items {
		b.items[i] = s.fill()
	}
}

func (s *blockSource[T]) free(b *block[T]) error {
	if b == nil {
		return nil
	}
	if s.acquirer != nil {
		s.acquirer.ReleaseMemory(b.bytes)
	}
	s.reserved.Add(-b.bytes)

	var err error
	if b.release != nil {
		err = b.release()
	}
	b.items = nil
	return err
}
