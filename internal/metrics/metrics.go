// Package metrics holds the write stage's observable counters: names are
// suggested by spec, not contractual, so callers compare behavior rather
// than field names.
package metrics

import "sync/atomic"

// Counter is a simple atomic accumulator.
type Counter struct{ v uint64 }

// Add atomically adds n to the counter.
func (c *Counter) Add(n uint64) { atomic.AddUint64(&c.v, n) }

// Load returns the counter's current value.
func (c *Counter) Load() uint64 { return atomic.LoadUint64(&c.v) }

// Counters is the write stage's full set of observable metrics.
type Counters struct {
	EntriesReceived     Counter
	EntriesWritten      Counter
	EntriesSent         Counter
	VoteInsertLatencyMs Counter
	TotalStageTimeMs    Counter
	WriteErrors         Counter
	VoteErrors          Counter
}
