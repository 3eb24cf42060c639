package testutil

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pincol/storage"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Storage is a storage.Pinned that counts and manipulates growth.
// GrowTo calls made during construction are not counted.
type Storage[T any] struct {
	*storage.Split[T]

	growCalls   atomic.Int64
	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu        sync.Mutex
	delay     time.Duration
	failures  int
	failErr   error
	panicNext bool
	gate      chan struct{}
	entered   chan struct{}
}

var _ storage.Pinned[int] = (*Storage[int])(nil)

// NewStorage creates a storage of up to maxBlocks blocks sized by growth,
// with at least initialCapacity slots allocated. It panics on construction
// errors.
func NewStorage[T any](growth storage.Growth, maxBlocks, initialCapacity int) *Storage[T] {
	s, err := storage.NewSplit(growth,
		storage.WithMaxBlocks[T](maxBlocks),
		storage.WithInitialCapacity[T](initialCapacity),
	)
	if err != nil {
		panic(err)
	}
	return &Storage[T]{Split: s}
}

// GrowTo implements storage.Pinned.
func (s *Storage[T]) GrowTo(ctx context.Context, capacity int) (int, error) {
	s.growCalls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxInFlight.Load()
		if n <= m || s.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	s.mu.Lock()
	delay, gate, entered := s.delay, s.gate, s.entered
	panicNow := s.panicNext
	s.panicNext = false
	var failErr error
	if s.failures > 0 {
		s.failures--
		failErr = s.failErr
	}
	s.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if panicNow {
		panic("testutil: injected growth panic")
	}
	if failErr != nil {
		current := s.Capacity()
		return current, storage.NewAllocationError(capacity, current, failErr)
	}

	return s.Split.GrowTo(ctx, capacity)
}

// FailNext makes the next n GrowTo calls fail with an allocation error
// caused by err.
func (s *Storage[T]) FailNext(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failErr = err
}

// PanicNext makes the next GrowTo call panic.
func (s *Storage[T]) PanicNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panicNext = true
}

// SetDelay makes every GrowTo call sleep for d before growing.
func (s *Storage[T]) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Hold makes GrowTo block until release is called. entered receives a value
// once a grower is blocked.
func (s *Storage[T]) Hold() (entered <-chan struct{}, release func()) {
	gate := make(chan struct{})
	in := make(chan struct{}, 1)

	s.mu.Lock()
	s.gate = gate
	s.entered = in
	s.mu.Unlock()

	var once sync.Once
	return in, func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.entered = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// GrowCalls returns the number of GrowTo calls so far.
func (s *Storage[T]) GrowCalls() int64 {
	return s.growCalls.Load()
}

// MaxConcurrentGrowth returns the highest number of GrowTo calls that were
// in flight at the same time.
func (s *Storage[T]) MaxConcurrentGrowth() int {
	return int(s.maxInFlight.Load())
}
