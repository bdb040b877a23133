/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for per-file scan events.
*/

package scanner

import (
	"sync"

	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/logging"
)

// Reporter receives per-file events from workers. Implementations must be safe for
// concurrent use.
type Reporter interface {
	// OnFileClassified is called after a file has been classified.
	OnFileClassified(rec aggregate.Record)
	// OnFileSkipped is called for files filtered out before reading.
	OnFileSkipped(path, reason string)
	// OnReadError is called when a file or directory cannot be read.
	OnReadError(path string, err error)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) OnFileClassified(aggregate.Record) {}
func (NopReporter) OnFileSkipped(string, string)      {}
func (NopReporter) OnReadError(string, error)         {}

// LoggerReporter logs events through the enro logger.
type LoggerReporter struct {
	logger *logging.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logging.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnFileClassified logs the verdict.
func (r *LoggerReporter) OnFileClassified(rec aggregate.Record) {
	r.logger.LogClassification(rec.Path, rec.Classification, rec.Entropy, rec.Size, map[string]interface{}{"digest": rec.Digest})
}

// OnFileSkipped logs the skip.
func (r *LoggerReporter) OnFileSkipped(path, reason string) {
	r.logger.LogSkip(path, reason, nil)
}

// OnReadError logs the failure.
func (r *LoggerReporter) OnReadError(path string, err error) {
	r.logger.LogReadError(path, err, nil)
}

// CollectorReporter folds classified files into a shared collector.
type CollectorReporter struct {
	Collector *aggregate.Collector
}

func (r CollectorReporter) OnFileClassified(rec aggregate.Record) { r.Collector.Add(rec) }
func (r CollectorReporter) OnFileSkipped(string, string)          {}
func (r CollectorReporter) OnReadError(string, error)             {}

// MultiReporter fans events out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) OnFileClassified(rec aggregate.Record) {
	for _, r := range m {
		r.OnFileClassified(rec)
	}
}

func (m MultiReporter) OnFileSkipped(path, reason string) {
	for _, r := range m {
		r.OnFileSkipped(path, reason)
	}
}

func (m MultiReporter) OnReadError(path string, err error) {
	for _, r := range m {
		r.OnReadError(path, err)
	}
}

// RecordingReporter keeps every event in memory. Useful in tests and small tools.
type RecordingReporter struct {
	mu       sync.Mutex
	Records  []aggregate.Record
	Skipped  []string
	Failures []string
}

func (r *RecordingReporter) OnFileClassified(rec aggregate.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Records = append(r.Records, rec)
}

func (r *RecordingReporter) OnFileSkipped(path, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, path)
}

func (r *RecordingReporter) OnReadError(path string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, path)
}
