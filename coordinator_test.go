package pincol_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pincol"
	"github.com/hupe1980/pincol/storage"
	"github.com/hupe1980/pincol/testutil"
)

func TestGrowthStateString(t *testing.T) {
	assert.Equal(t, "stable", pincol.Stable.String())
	assert.Equal(t, "growing", pincol.Growing.String())
	assert.Equal(t, "GrowthState(7)", pincol.GrowthState(7).String())
}

func TestEnsureFastPath(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewDoubling(4), 32, 4)
	col := pincol.New[int](s)

	for i := 0; i < 4; i++ {
		require.NoError(t, col.EnsureCapacityFor(i))
	}

	assert.Equal(t, int64(0), s.GrowCalls())
	assert.Equal(t, pincol.Stable, col.GrowthState())
}

func TestEnsureNegativeIndex(t *testing.T) {
	col, err := pincol.NewDoubling[int]()
	require.NoError(t, err)

	assert.ErrorIs(t, col.EnsureCapacityFor(-1), pincol.ErrNegativeIndex)
}

// Eight goroutines ensure indices 0..7 on a storage holding 4 slots. A single
// doubling step covers all of them.
func TestConcurrentEnsureGrowsOnce(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewDoubling(4), 32, 4)
	col := pincol.New[int](s)
	entered, release := s.Hold()
	defer release()

	start := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			<-start
			if err := col.EnsureCapacityFor(i); err != nil {
				return err
			}
			col.WriteUnchecked(i, i*10)
			return nil
		})
	}

	close(start)
	<-entered
	assert.Equal(t, pincol.Growing, col.GrowthState())
	time.Sleep(20 * time.Millisecond)
	release()

	require.NoError(t, g.Wait())
	assert.Equal(t, int64(1), s.GrowCalls())
	assert.Equal(t, 1, s.MaxConcurrentGrowth())
	assert.GreaterOrEqual(t, col.Capacity(), 8)
	assert.Equal(t, pincol.Stable, col.GrowthState())

	for i := 0; i < 8; i++ {
		assert.Equal(t, i*10, col.ReadUnchecked(i))
	}
}

func TestSingleGrowerUnderContention(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewLinear(6), 1024, 0)
	s.SetDelay(time.Millisecond)
	col := pincol.New[int](s)

	var (
		next atomic.Int64
		g    errgroup.Group
	)
	for w := 0; w < 16; w++ {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= 4096 {
					return nil
				}
				if err := col.EnsureCapacityFor(i); err != nil {
					return err
				}
				col.WriteUnchecked(i, i)
			}
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, s.MaxConcurrentGrowth())
	assert.LessOrEqual(t, s.GrowCalls(), int64(4096/64))
	for i := 0; i < 4096; i++ {
		require.Equal(t, i, col.ReadUnchecked(i))
	}
}

// A grower for index 1000 also satisfies a goroutine that needs index 4
// while the episode is running.
func TestWaiterCoveredByLargerGrowth(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewDoubling(4), 32, 4)
	col := pincol.New[int](s)
	entered, release := s.Hold()
	defer release()

	large := make(chan error, 1)
	go func() { large <- col.EnsureCapacityFor(1000) }()
	<-entered

	// Index 3 is already covered.
	require.NoError(t, col.EnsureCapacityFor(3))

	small := make(chan error, 1)
	go func() { small <- col.EnsureCapacityFor(4) }()

	select {
	case err := <-small:
		t.Fatalf("waiter returned during growth: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	release()
	require.NoError(t, <-large)
	require.NoError(t, <-small)

	assert.Equal(t, int64(1), s.GrowCalls())
	assert.GreaterOrEqual(t, col.Capacity(), 1001)
}

// A storage that fails once makes the first ensure fail; the retry succeeds.
func TestEnsureRetryAfterFailure(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewDoubling(4), 32, 4)
	col := pincol.New[int](s)
	cause := errors.New("out of memory")
	s.FailNext(1, cause)

	err := col.EnsureCapacityFor(9)
	require.Error(t, err)
	assert.True(t, pincol.IsAllocationError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 4, col.Capacity())
	assert.Equal(t, pincol.Stable, col.GrowthState())

	require.NoError(t, col.EnsureCapacityFor(9))
	assert.GreaterOrEqual(t, col.Capacity(), 10)
	assert.Equal(t, int64(2), s.GrowCalls())
}

func TestFailingGrowthReleasesWaiters(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewDoubling(4), 32, 4)
	col := pincol.New[int](s, pincol.WithSpinLimit(0))
	cause := errors.New("out of memory")
	s.FailNext(1<<20, cause)
	entered, release := s.Hold()
	defer release()

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = col.EnsureCapacityFor(100 + i)
		}()
	}

	<-entered
	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()

	for i, err := range errs {
		require.Error(t, err, "goroutine %d", i)
		assert.True(t, pincol.IsAllocationError(err))
		assert.ErrorIs(t, err, cause)
	}
	assert.Equal(t, pincol.Stable, col.GrowthState())
	assert.Equal(t, 4, col.Capacity())
}

func TestGrowthPanicAbortsEpisode(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewDoubling(4), 32, 4)
	metrics := &pincol.BasicMetricsCollector{}
	col := pincol.New[int](s, pincol.WithSpinLimit(0), pincol.WithMetricsCollector(metrics))
	s.PanicNext()
	entered, release := s.Hold()
	defer release()

	grower := make(chan any, 1)
	go func() {
		defer func() { grower <- recover() }()
		_ = col.EnsureCapacityFor(50)
	}()
	<-entered

	waiter := make(chan error, 1)
	go func() { waiter <- col.EnsureCapacityFor(60) }()
	time.Sleep(20 * time.Millisecond)
	release()

	assert.NotNil(t, <-grower)
	err := <-waiter
	assert.ErrorIs(t, err, pincol.ErrGrowthAborted)
	assert.True(t, pincol.IsAllocationError(err))
	assert.Equal(t, pincol.Stable, col.GrowthState())

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.GrowthCount)
	assert.Equal(t, int64(1), stats.GrowthErrors)

	require.NoError(t, col.EnsureCapacityFor(60))
	assert.GreaterOrEqual(t, col.Capacity(), 61)
}

func TestEnsureBeyondIndexRange(t *testing.T) {
	col, err := pincol.NewDoubling[int]()
	require.NoError(t, err)

	t.Run("max int", func(t *testing.T) {
		err := col.EnsureCapacityFor(math.MaxInt)
		require.Error(t, err)
		assert.True(t, pincol.IsAllocationError(err))
		assert.ErrorIs(t, err, pincol.ErrMaximumCapacity)
		assert.Equal(t, 4, col.Capacity())
	})

	t.Run("write run ending at max int", func(t *testing.T) {
		var err error
		assert.NotPanics(t, func() {
			err = col.WriteN(math.MaxInt-1, []int{1, 2, 3})
		})
		assert.ErrorIs(t, err, pincol.ErrMaximumCapacity)
	})

	t.Run("one below max int", func(t *testing.T) {
		assert.ErrorIs(t, col.EnsureCapacityFor(math.MaxInt-1), pincol.ErrMaximumCapacity)
	})

	assert.Equal(t, pincol.Stable, col.GrowthState())
	require.NoError(t, col.EnsureCapacityFor(10))
}

func TestEnsureContextCancelsWait(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewDoubling(4), 32, 4)
	metrics := &pincol.BasicMetricsCollector{}
	col := pincol.New[int](s, pincol.WithMetricsCollector(metrics))
	entered, release := s.Hold()
	defer release()

	grower := make(chan error, 1)
	go func() { grower <- col.EnsureCapacityFor(10) }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := col.EnsureCapacityForContext(ctx, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	require.NoError(t, <-grower)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.GrowthCount)
	assert.Equal(t, int64(1), stats.WaitCount)
	assert.Equal(t, int64(1), stats.WaitErrors)
}

// Writes below the published capacity finish while a growth is held open.
func TestWritesDuringGrowthDoNotBlock(t *testing.T) {
	s := testutil.NewStorage[int](storage.NewLinear(4), 64, 16)
	col := pincol.New[int](s)
	entered, release := s.Hold()
	defer release()

	grower := make(chan error, 1)
	go func() { grower <- col.EnsureCapacityFor(100) }()
	<-entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		for round := 0; round < 1000; round++ {
			for i := 0; i < 16; i++ {
				if err := col.EnsureCapacityFor(i); err != nil {
					panic(err)
				}
				col.WriteUnchecked(i, round)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("in-capacity writes blocked behind growth")
	}
	assert.Equal(t, pincol.Growing, col.GrowthState())
	assert.Equal(t, 999, col.ReadUnchecked(15))

	release()
	require.NoError(t, <-grower)
	assert.Equal(t, int64(1), s.GrowCalls())
}

func TestCapacityMonotonic(t *testing.T) {
	col, err := pincol.NewLinear[int](4, 256)
	require.NoError(t, err)

	stop := make(chan struct{})
	violations := make(chan [2]int, 1)
	go func() {
		prev := col.Capacity()
		for {
			select {
			case <-stop:
				close(violations)
				return
			default:
			}
			c := col.Capacity()
			if c < prev {
				violations <- [2]int{prev, c}
				close(violations)
				return
			}
			prev = c
		}
	}()

	var (
		next atomic.Int64
		g    errgroup.Group
	)
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= 4000 {
					return nil
				}
				if err := col.EnsureCapacityFor(i); err != nil {
					return err
				}
			}
		})
	}
	require.NoError(t, g.Wait())
	close(stop)

	for v := range violations {
		t.Fatalf("capacity decreased from %d to %d", v[0], v[1])
	}
}
