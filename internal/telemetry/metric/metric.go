package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the database metrics. A nil *Collector is a valid
// no-op receiver so metrics stay optional.
type Collector struct {
	registry *prometheus.Registry

	sets    prometheus.Counter
	deletes prometheus.Counter
	batches prometheus.Counter
	reads   prometheus.Counter
	finds   prometheus.Counter

	walAppends prometheus.Counter
	walSkipped prometheus.Counter

	saveDuration prometheus.Histogram
	loadDuration prometheus.Histogram

	treeBytes prometheus.Gauge
}

// NewCollector creates and registers the database metrics on a private
// registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondb_sets_total",
			Help: "Total number of set operations",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondb_deletes_total",
			Help: "Total number of delete operations",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondb_batches_total",
			Help: "Total number of batch operations",
		}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondb_reads_total",
			Help: "Total number of get/has operations",
		}),
		finds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondb_finds_total",
			Help: "Total number of find operations",
		}),
		walAppends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondb_wal_appends_total",
			Help: "Total number of operations appended to the WAL",
		}),
		walSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jsondb_wal_replay_skipped_total",
			Help: "Total number of WAL lines skipped during replay",
		}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jsondb_save_duration_seconds",
			Help:    "Snapshot save latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jsondb_load_duration_seconds",
			Help:    "Load and recovery latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		treeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jsondb_snapshot_bytes",
			Help: "Size of the last written snapshot in bytes",
		}),
	}

	c.registry.MustRegister(
		c.sets, c.deletes, c.batches, c.reads, c.finds,
		c.walAppends, c.walSkipped,
		c.saveDuration, c.loadDuration,
		c.treeBytes,
	)
	return c
}

// RecordSet records a set operation.
func (c *Collector) RecordSet() {
	if c == nil {
		return
	}
	c.sets.Inc()
}

// RecordDelete records a delete operation.
func (c *Collector) RecordDelete() {
	if c == nil {
		return
	}
	c.deletes.Inc()
}

// RecordBatch records a batch of n operations.
func (c *Collector) RecordBatch(n int) {
	if c == nil {
		return
	}
	c.batches.Inc()
	c.walAppends.Add(float64(n))
}

// RecordRead records a get or has operation.
func (c *Collector) RecordRead() {
	if c == nil {
		return
	}
	c.reads.Inc()
}

// RecordFind records a find or find-one operation.
func (c *Collector) RecordFind() {
	if c == nil {
		return
	}
	c.finds.Inc()
}

// RecordWALAppend records one WAL append.
func (c *Collector) RecordWALAppend() {
	if c == nil {
		return
	}
	c.walAppends.Inc()
}

// RecordReplaySkipped records WAL lines skipped during replay.
func (c *Collector) RecordReplaySkipped(n int) {
	if c == nil {
		return
	}
	c.walSkipped.Add(float64(n))
}

// ObserveSave records a snapshot save latency.
func (c *Collector) ObserveSave(seconds float64) {
	if c == nil {
		return
	}
	c.saveDuration.Observe(seconds)
}

// ObserveLoad records a load latency.
func (c *Collector) ObserveLoad(seconds float64) {
	if c == nil {
		return
	}
	c.loadDuration.Observe(seconds)
}

// SetSnapshotBytes records the size of the last written snapshot.
func (c *Collector) SetSnapshotBytes(n int) {
	if c == nil {
		return
	}
	c.treeBytes.Set(float64(n))
}

// Handler returns an HTTP handler serving the collector's registry in
// Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Gather exposes the underlying registry for tests.
func (c *Collector) Gather() prometheus.Gatherer {
	return c.registry
}
