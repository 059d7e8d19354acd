// Package metric exposes Prometheus metrics for the database: mutation
// and query counters, WAL activity, and save/load durations.
package metric
