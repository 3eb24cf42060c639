package storage

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/hupe1980/pincol/internal/conv"
	"github.com/hupe1980/pincol/internal/mmap"
)

// block is one independently allocated run of slots.
type block[T any] struct {
	items   []T
	bytes   int64
	release func() error // nil for heap blocks
}

type allocator[T any] interface {
	alloc(n int) (*block[T], error)
}

type heapAllocator[T any] struct{}

func (heapAllocator[T]) alloc(n int) (b *block[T], err error) {
	// make panics on lengths the runtime cannot represent; a real
	// out-of-memory condition is fatal and cannot be recovered here.
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: %v", ErrAllocationFailed, r)
		}
	}()
	return &block[T]{items: make([]T, n)}, nil
}

// offHeapAllocator places blocks in anonymous mappings outside the Go heap.
// T must not contain pointers: the GC does not scan mapped memory.
type offHeapAllocator[T any] struct {
	elemSize uintptr
}

func newOffHeapAllocator[T any]() (allocator[T], error) {
	typ := reflect.TypeFor[T]()
	if hasPointers(typ) {
		return nil, fmt.Errorf("%w: %s", ErrPointerElements, typ)
	}
	size := typ.Size()
	if size == 0 {
		return heapAllocator[T]{}, nil
	}
	return offHeapAllocator[T]{elemSize: size}, nil
}

func (a offHeapAllocator[T]) alloc(n int) (*block[T], error) {
	size, err := conv.ByteSize(n, a.elemSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	sizeInt, err := conv.Int64ToInt(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}

	m, err := mmap.MapAnon(sizeInt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}

	data := m.Bytes()
	items := unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n) //nolint:gosec // page-aligned mapping sized for n elements

	return &block[T]{items: items, release: m.Close}, nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
