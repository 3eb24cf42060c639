package storage

// DefaultMaxBlocks is the default number of directory entries of a Split storage.
const DefaultMaxBlocks = 32

type config[T any] struct {
	maxBlocks       int
	initialCapacity int // -1 means one block
	fill            func() T
	acquirer        MemoryAcquirer
	offHeap         bool
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		maxBlocks:       DefaultMaxBlocks,
		initialCapacity: -1,
	}
}

// Option configures a storage.
type Option[T any] func(*config[T])

// WithMaxBlocks sets the number of blocks a Split storage can hold before
// ReserveMaximumCapacity is required. Values are clamped to [1, MaxBlocksLimit].
func WithMaxBlocks[T any](n int) Option[T] {
	return func(c *config[T]) {
		c.maxBlocks = min(max(n, 1), MaxBlocksLimit)
	}
}

// WithInitialCapacity allocates blocks at construction until the capacity
// reaches n. Zero leaves the storage empty.
func WithInitialCapacity[T any](n int) Option[T] {
	return func(c *config[T]) {
		c.initialCapacity = n
	}
}

// WithFill fills every newly allocated slot with fill() before the block
// becomes addressable. Without it, slots hold the zero value.
func WithFill[T any](fill func() T) Option[T] {
	return func(c *config[T]) {
		c.fill = fill
	}
}

// WithMemoryAcquirer accounts every block allocation against acquirer.
func WithMemoryAcquirer[T any](acquirer MemoryAcquirer) Option[T] {
	return func(c *config[T]) {
		c.acquirer = acquirer
	}
}

// WithOffHeap allocates blocks in anonymous memory mappings outside the Go
// heap. Only element types without pointers are accepted.
func WithOffHeap[T any]() Option[T] {
	return func(c *config[T]) {
		c.offHeap = true
	}
}

func (c *config[T]) allocator() (allocator[T], error) {
	if c.offHeap {
		return newOffHeapAllocator[T]()
	}
	return heapAllocator[T]{}, nil
}
