/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: collector.go
Description: Lock-protected accumulator for callers that fold records from many
goroutines as they arrive, such as watch mode.
*/

package aggregate

import "sync"

// Collector serializes folds into a shared Summary and optionally keeps the records.
type Collector struct {
	mu          sync.Mutex
	summary     *Summary
	records     []Record
	keepRecords bool
}

// NewCollector creates a collector. When keepRecords is set every folded record is retained.
func NewCollector(highThreshold float64, keepRecords bool) *Collector {
	return &Collector{
		summary:     NewSummary(highThreshold),
		keepRecords: keepRecords,
	}
}

// Add folds rec.
func (c *Collector) Add(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary.Fold(rec)
	if c.keepRecords {
		c.records = append(c.records, rec)
	}
}

// MergeSummary folds a partial summary produced elsewhere.
func (c *Collector) MergeSummary(s *Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Merge(s)
}

// Snapshot returns a copy of the current summary.
func (c *Collector) Snapshot() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary.Clone()
}

// Records returns a copy of the retained records.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}
