package pincol

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives growth and wait observations from a collection.
// Implementations must be safe for concurrent use.
type MetricsCollector interface {
	// RecordGrowth is called by the goroutine that won a growth episode.
	// to equals from when the episode failed.
	RecordGrowth(from, to int, duration time.Duration, err error)

	// RecordWait is called by goroutines that waited on another goroutine's
	// growth episode.
	RecordWait(duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

// RecordGrowth implements MetricsCollector.
func (NoopMetricsCollector) RecordGrowth(int, int, time.Duration, error) {}

// RecordWait implements MetricsCollector.
func (NoopMetricsCollector) RecordWait(time.Duration, error) {}

// BasicMetricsCollector keeps in-memory counters using atomics.
type BasicMetricsCollector struct {
	GrowthCount      atomic.Int64
	GrowthErrors     atomic.Int64
	GrowthTotalNanos atomic.Int64
	SlotsAdded       atomic.Int64
	WaitCount        atomic.Int64
	WaitErrors       atomic.Int64
	WaitTotalNanos   atomic.Int64
}

// RecordGrowth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrowth(from, to int, duration time.Duration, err error) {
	b.GrowthCount.Add(1)
	b.GrowthTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GrowthErrors.Add(1)
		return
	}
	b.SlotsAdded.Add(int64(to - from))
}

// RecordWait implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWait(duration time.Duration, err error) {
	b.WaitCount.Add(1)
	b.WaitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WaitErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		GrowthCount:    b.GrowthCount.Load(),
		GrowthErrors:   b.GrowthErrors.Load(),
		GrowthAvgNanos: avg(b.GrowthTotalNanos.Load(), b.GrowthCount.Load()),
		SlotsAdded:     b.SlotsAdded.Load(),
		WaitCount:      b.WaitCount.Load(),
		WaitErrors:     b.WaitErrors.Load(),
		WaitAvgNanos:   avg(b.WaitTotalNanos.Load(), b.WaitCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	GrowthCount    int64
	GrowthErrors   int64
	GrowthAvgNanos int64
	SlotsAdded     int64
	WaitCount      int64
	WaitErrors     int64
	WaitAvgNanos   int64
}
