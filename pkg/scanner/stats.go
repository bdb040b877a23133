/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: stats.go
Description: Scan counters shared by all workers. Uses atomic operations for
thread-safe updates.
*/

package scanner

import (
	"sync/atomic"
	"time"
)

// Stats tracks scan progress. Fields must be read through Snapshot while a scan runs.
type Stats struct {
	Files   int64     `json:"files"`   // files classified
	Bytes   int64     `json:"bytes"`   // bytes read
	Skipped int64     `json:"skipped"` // files filtered out before reading
	Errors  int64     `json:"errors"`  // files or directories that could not be read
	Started time.Time `json:"started"`
}

// IncrementFiles atomically counts a classified file and the bytes read for it
func (s *Stats) IncrementFiles(bytes int64) {
	atomic.AddInt64(&s.Files, 1)
	atomic.AddInt64(&s.Bytes, bytes)
}

// IncrementSkipped atomically increments the skip counter
func (s *Stats) IncrementSkipped() {
	atomic.AddInt64(&s.Skipped, 1)
}

// IncrementErrors atomically increments the error counter
func (s *Stats) IncrementErrors() {
	atomic.AddInt64(&s.Errors, 1)
}

// Snapshot returns a consistent copy of the counters
func (s *Stats) Snapshot() Stats {
	return Stats{
		Files:   atomic.LoadInt64(&s.Files),
		Bytes:   atomic.LoadInt64(&s.Bytes),
		Skipped: atomic.LoadInt64(&s.Skipped),
		Errors:  atomic.LoadInt64(&s.Errors),
		Started: s.Started,
	}
}

// FilesPerSecond returns the classification rate since the scan started
func (s Stats) FilesPerSecond() float64 {
	elapsed := time.Since(s.Started).Seconds()
	if s.Started.IsZero() || elapsed <= 0 {
		return 0
	}
	return float64(s.Files) / elapsed
}
