// Package vmmetrics exports collection metrics in Prometheus text format
// using github.com/VictoriaMetrics/metrics.
//
//	c := vmmetrics.New("events")
//	c.Register()
//	defer c.Unregister()
//	col, _ := pincol.NewDoubling[Event](pincol.WithMetricsCollector(c))
//
// Registered collectors are included in metrics.WritePrometheus output.
package vmmetrics

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/hupe1980/pincol"
)

// Collector is a pincol.MetricsCollector backed by a metrics.Set.
type Collector struct {
	set *metrics.Set

	growths        *metrics.Counter
	growthErrors   *metrics.Counter
	growthDuration *metrics.Histogram
	waits          *metrics.Counter
	waitErrors     *metrics.Counter
	waitDuration   *metrics.Histogram
	capacity       *metrics.Gauge
}

var _ pincol.MetricsCollector = (*Collector)(nil)

// New creates a collector whose metrics carry a collection label.
func New(collection string) *Collector {
	s := metrics.NewSet()
	name := func(metric string) string {
		return fmt.Sprintf(`%s{collection=%q}`, metric, collection)
	}

	return &Collector{
		set:            s,
		growths:        s.NewCounter(name("pincol_growths_total")),
		growthErrors:   s.NewCounter(name("pincol_growth_errors_total")),
		growthDuration: s.NewHistogram(name("pincol_growth_duration_seconds")),
		waits:          s.NewCounter(name("pincol_waits_total")),
		waitErrors:     s.NewCounter(name("pincol_wait_errors_total")),
		waitDuration:   s.NewHistogram(name("pincol_wait_duration_seconds")),
		capacity:       s.NewGauge(name("pincol_capacity"), nil),
	}
}

// RecordGrowth implements pincol.MetricsCollector.
func (c *Collector) RecordGrowth(_, to int, duration time.Duration, err error) {
	c.growths.Inc()
	c.growthDuration.Update(duration.Seconds())
	if err != nil {
		c.growthErrors.Inc()
		return
	}
	c.capacity.Set(float64(to))
}

// RecordWait implements pincol.MetricsCollector.
func (c *Collector) RecordWait(duration time.Duration, err error) {
	c.waits.Inc()
	c.waitDuration.Update(duration.Seconds())
	if err != nil {
		c.waitErrors.Inc()
	}
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Register adds the collector's metrics to the global metrics.WritePrometheus output.
func (c *Collector) Register() {
	metrics.RegisterSet(c.set)
}

// Unregister removes the collector's metrics from the global output and
// destroys the set. The collector must not be used afterwards.
func (c *Collector) Unregister() {
	metrics.UnregisterSet(c.set, true)
}

// WritePrometheus writes the collector's metrics in Prometheus text format.
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}
