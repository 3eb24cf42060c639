package pincol

import (
	"github.com/hupe1980/pincol/storage"
)

// DefaultSpinLimit is the number of scheduler yields a goroutine spends
// waiting on another goroutine's growth before it parks.
const DefaultSpinLimit = 64

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	spinLimit        int
	name             string

	// Storage options; ignored by New, which receives a ready storage.
	maxBlocks       int
	initialCapacity int
	acquirer        storage.MemoryAcquirer
	offHeap         bool
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		spinLimit:        DefaultSpinLimit,
		maxBlocks:        storage.DefaultMaxBlocks,
		initialCapacity:  -1,
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.name != "" {
		o.logger = o.logger.WithCollection(o.name)
	}
	return o
}

// Option configures a collection.
type Option func(*options)

// WithLogger configures structured logging of growth episodes.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pincol.NewJSONLogger(slog.LevelDebug)
//	col, _ := pincol.NewDoubling[int](pincol.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector for growth and wait
// observations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pincol.BasicMetricsCollector{}
//	col, _ := pincol.NewDoubling[int](pincol.WithMetricsCollector(metrics))
//	// ... use col ...
//	stats := metrics.GetStats()
//	fmt.Printf("Growths: %d, Avg latency: %dns\n", stats.GrowthCount, stats.GrowthAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithSpinLimit sets how many times a waiting goroutine yields before it
// parks until the running growth episode ends. Zero parks immediately.
func WithSpinLimit(n int) Option {
	return func(o *options) {
		o.spinLimit = max(n, 0)
	}
}

// WithName names the collection in log output.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithMaxBlocks sets the number of blocks the storage can hold before
// ReserveMaximumCapacity is required.
func WithMaxBlocks(n int) Option {
	return func(o *options) {
		o.maxBlocks = n
	}
}

// WithInitialCapacity allocates at least n slots at construction.
// Zero defers every allocation to the first EnsureCapacityFor.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}

// WithMemoryAcquirer accounts every block allocation against acquirer,
// for example a resource.Controller.
func WithMemoryAcquirer(acquirer storage.MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = acquirer
	}
}

// WithOffHeap places blocks in anonymous memory mappings outside the Go heap.
// Construction fails with storage.ErrPointerElements if T contains pointers.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

func storageOptions[T any](o *options) []storage.Option[T] {
	opts := []storage.Option[T]{
		storage.WithMaxBlocks[T](o.maxBlocks),
		storage.WithInitialCapacity[T](o.initialCapacity),
	}
	if o.acquirer != nil {
		opts = append(opts, storage.WithMemoryAcquirer[T](o.acquirer))
	}
	if o.offHeap {
		opts = append(opts, storage.WithOffHeap[T]())
	}
	return opts
}
