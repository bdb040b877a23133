/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: worker.go
Description: Scan worker. Each worker reads and classifies the files it is handed and
keeps its own partial summary, so workers never contend on shared results.
*/

package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/sirupsen/logrus"
)

// job is one file waiting for a worker.
type job struct {
	source Source
	entry  Entry
}

// Worker classifies files handed to it by the scanner.
type Worker struct {
	ID int

	classifier *classify.Classifier
	maxBytes   int64
	reporter   Reporter
	stats      *Stats
	logger     logrus.FieldLogger

	summary   *aggregate.Summary
	records   []aggregate.Record
	keep      bool
	startTime time.Time
}

func newWorker(id int, s *Scanner) *Worker {
	return &Worker{
		ID:         id,
		classifier: s.classifier,
		maxBytes:   s.cfg.MaxBytes,
		reporter:   s.reporter,
		stats:      s.stats,
		logger:     s.logger.WithField("worker", id),
		summary:    aggregate.NewSummary(s.cfg.HighEntropy),
		keep:       s.keepRecords(),
	}
}

// run processes jobs until the channel closes or ctx is cancelled.
func (w *Worker) run(ctx context.Context, jobs <-chan job) error {
	w.startTime = time.Now()
	w.logger.Debug("Worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j, ok := <-jobs:
			if !ok {
				w.logger.WithFields(logrus.Fields{
					"files":  w.summary.Files,
					"uptime": time.Since(w.startTime),
				}).Debug("Worker finished")
				return nil
			}
			rec, err := w.Process(ctx, j.source, j.entry)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.stats.IncrementErrors()
				w.reporter.OnReadError(j.entry.Path, err)
				continue
			}
			w.summary.Fold(rec)
			if w.keep {
				w.records = append(w.records, rec)
			}
		}
	}
}

// Process reads and classifies one file.
func (w *Worker) Process(ctx context.Context, src Source, e Entry) (aggregate.Record, error) {
	rec, read, err := ClassifyEntry(ctx, w.classifier, src, e, w.maxBytes)
	if err != nil {
		return aggregate.Record{}, err
	}
	w.stats.IncrementFiles(read)
	w.reporter.OnFileClassified(rec)
	return rec, nil
}

// ClassifyEntry opens e from src, captures at most maxBytes (0 streams the whole file)
// and classifies it. It also returns the number of bytes read.
func ClassifyEntry(ctx context.Context, c *classify.Classifier, src Source, e Entry, maxBytes int64) (aggregate.Record, int64, error) {
	rc, err := src.Open(ctx, e, maxBytes)
	if err != nil {
		return aggregate.Record{}, 0, fmt.Errorf("failed to open %s: %w", e.Path, err)
	}
	defer rc.Close()

	capture, err := Read(rc, maxBytes)
	if err != nil {
		return aggregate.Record{}, 0, fmt.Errorf("failed to read %s: %w", e.Path, err)
	}

	bits := capture.Entropy()
	rec := aggregate.Record{
		Path:           e.Path,
		Classification: c.Decide(capture.Head, bits),
		Entropy:        bits,
		Size:           e.Size,
		Digest:         capture.Digest(),
	}
	return rec, capture.Bytes(), nil
}

// Summary returns the worker's partial summary.
func (w *Worker) Summary() *aggregate.Summary {
	return w.summary
}
