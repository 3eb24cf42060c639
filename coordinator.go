package pincol

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pincol/internal/atomicutil"
	"github.com/hupe1980/pincol/storage"
)

// GrowthState reports whether a growth episode is in progress.
type GrowthState uint8

const (
	// Stable means no goroutine is growing the storage.
	Stable GrowthState = iota
	// Growing means exactly one goroutine is growing the storage.
	Growing
)

func (s GrowthState) String() string {
	switch s {
	case Stable:
		return "stable"
	case Growing:
		return "growing"
	default:
		return fmt.Sprintf("GrowthState(%d)", uint8(s))
	}
}

// episode is one growth attempt. err is written by the grower before done
// is closed and must only be read after done is closed.
type episode struct {
	requested int
	done      chan struct{}
	err       error
}

type grower interface {
	GrowTo(ctx context.Context, capacity int) (int, error)
}

// coordinator arbitrates growth of a pinned storage. Only the goroutine that
// moves the state from stable to an episode calls GrowTo; everyone else
// waits for that episode to end.
type coordinator struct {
	// capacity is read on every ensure; it lives on its own cache line so
	// that state transitions do not invalidate it.
	capacity atomicutil.Int64
	state    atomicutil.Pointer[episode] // nil while stable

	storage   grower
	spinLimit int
	logger    *Logger
	metrics   MetricsCollector
	closed    atomic.Bool
}

func newCoordinator(s grower, capacity int, o *options) *coordinator {
	c := &coordinator{
		storage:   s,
		spinLimit: o.spinLimit,
		logger:    o.logger,
		metrics:   o.metricsCollector,
	}
	c.capacity.Store(int64(capacity))
	return c
}

func (c *coordinator) current() int {
	return int(c.capacity.Load())
}

func (c *coordinator) growthState() GrowthState {
	if c.state.Load() == nil {
		return Stable
	}
	return Growing
}

// ensure returns once index is below the published capacity.
func (c *coordinator) ensure(ctx context.Context, index int) error {
	if index < c.current() {
		return nil
	}
	return c.ensureSlow(ctx, index)
}

func (c *coordinator) ensureSlow(ctx context.Context, index int) error {
	if c.closed.Load() {
		return ErrClosed
	}
	// A slot at math.MaxInt would need a capacity of math.MaxInt+1.
	if index == math.MaxInt {
		return storage.NewAllocationError(math.MaxInt, c.current(), ErrMaximumCapacity)
	}

	var (
		waitStart time.Time
		spins     int
	)

	for {
		ep := c.state.Load()
		if ep == nil {
			if index < c.current() {
				return c.waited(waitStart, nil)
			}
			ep = &episode{requested: index + 1, done: make(chan struct{})}
			if c.state.CompareAndSwap(nil, ep) {
				err := c.grow(ctx, ep)
				return c.waited(waitStart, err)
			}
			continue
		}

		if waitStart.IsZero() {
			waitStart = time.Now()
		}
		if err := c.wait(ctx, ep, index, &spins); err != nil {
			return c.waited(waitStart, err)
		}
		if index < c.current() {
			return c.waited(waitStart, nil)
		}
		// The episode is over. A failure of a request no larger than ours
		// answers for us too; a larger failed request may still leave room
		// for ours, so arbitrate again.
		if ep.err != nil && index >= ep.requested-1 {
			return c.waited(waitStart, ep.err)
		}
	}
}

// wait returns nil once index is covered or ep has ended.
func (c *coordinator) wait(ctx context.Context, ep *episode, index int, spins *int) error {
	for ; *spins < c.spinLimit; *spins++ {
		if index < c.current() {
			return nil
		}
		if c.state.Load() != ep {
			break
		}
		runtime.Gosched()
	}

	select {
	case <-ep.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *coordinator) waited(start time.Time, err error) error {
	if !start.IsZero() {
		c.metrics.RecordWait(time.Since(start), err)
	}
	return err
}

// grow runs one episode. The state returns to stable on every exit path,
// including a panic inside the storage.
func (c *coordinator) grow(ctx context.Context, ep *episode) error {
	start := time.Now()
	from := c.current()

	finished := false
	defer func() {
		if !finished {
			ep.err = storage.NewAllocationError(ep.requested, from, ErrGrowthAborted)
			c.finish(ep)
			c.record(ctx, ep, from, from, time.Since(start))
		}
	}()

	to, err := c.storage.GrowTo(ctx, ep.requested)
	if err == nil && to < ep.requested {
		err = storage.NewAllocationError(ep.requested, to, errShortGrowth)
	}
	if err != nil {
		var allocErr *AllocationError
		if !errors.As(err, &allocErr) {
			err = storage.NewAllocationError(ep.requested, from, err)
		}
		to = from
	} else if to > from {
		c.capacity.Store(int64(to))
	}

	ep.err = err
	finished = true
	c.finish(ep)

	c.record(ctx, ep, from, to, time.Since(start))

	return err
}

func (c *coordinator) record(ctx context.Context, ep *episode, from, to int, d time.Duration) {
	c.logger.LogGrowth(ctx, from, to, ep.requested, d, ep.err)
	c.metrics.RecordGrowth(from, to, d, ep.err)
}

func (c *coordinator) finish(ep *episode) {
	c.state.CompareAndSwap(ep, nil)
	close(ep.done)
}

// reset republishes capacity after an exclusive Clear.
func (c *coordinator) reset(capacity int) {
	c.capacity.Store(int64(capacity))
}

var errShortGrowth = errors.New("storage grew less than requested")
