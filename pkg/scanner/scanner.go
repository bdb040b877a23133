/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scanner.go
Description: Scan orchestration. Walks every source, filters candidates, fans files out
to a bounded pool of workers and merges their partial summaries into one result.
*/

package scanner

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/kleascm/enro/pkg/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Skip reasons reported for filtered files.
const (
	SkipBelowMinSize = "below min size"
	SkipFiltered     = "excluded by filter"
)

// Result is the outcome of a scan.
type Result struct {
	RunID    string             `json:"run_id"`
	Started  time.Time          `json:"started"`
	Duration time.Duration      `json:"duration"`
	Records  []aggregate.Record `json:"records"`
	Summary  *aggregate.Summary `json:"summary"`
	Stats    Stats              `json:"stats"`
}

// Scanner runs scans according to a ScanConfig.
type Scanner struct {
	cfg        *config.ScanConfig
	classifier *classify.Classifier
	reporter   Reporter
	logger     logrus.FieldLogger
	stats      *Stats
	filter     *Filter
	sources    []Source
	runID      string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithClassifier replaces the classifier built from the configuration.
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Scanner) { s.classifier = c }
}

// WithReporter sets the per-file event reporter.
func WithReporter(r Reporter) Option {
	return func(s *Scanner) { s.reporter = r }
}

// WithLogger sets the logger used for worker lifecycle messages.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithSources scans the given sources instead of opening cfg.Paths.
func WithSources(sources ...Source) Option {
	return func(s *Scanner) { s.sources = sources }
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(s *Scanner) { s.runID = id }
}

// New creates a scanner. cfg must already be validated.
func New(cfg *config.ScanConfig, opts ...Option) (*Scanner, error) {
	filter, err := NewFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	s := &Scanner{
		cfg:      cfg,
		reporter: NopReporter{},
		stats:    &Stats{},
		filter:   filter,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.logger = l
	}
	if s.classifier == nil {
		s.classifier = ClassifierFor(cfg)
	}
	if s.runID == "" {
		s.runID = uuid.New().String()
	}
	return s, nil
}

// ClassifierFor builds the classifier described by cfg.
func ClassifierFor(cfg *config.ScanConfig) *classify.Classifier {
	opts := []classify.Option{classify.WithThresholds(cfg.Thresholds)}
	if !cfg.Sniff {
		opts = append(opts, classify.WithSniffer(nil))
	}
	return classify.New(opts...)
}

// RunID returns the id attached to this scanner's results.
func (s *Scanner) RunID() string {
	return s.runID
}

// keepRecords reports whether per-file records must be retained. Simple output always
// lists every file, and a category or entropy filter rebuilds the summary from records.
func (s *Scanner) keepRecords() bool {
	if s.cfg.Format == config.FormatSimple || !s.cfg.SummaryOnly {
		return true
	}
	return s.cfg.Threshold != "" || len(s.cfg.Types) > 0
}

// Stats returns a snapshot of the live counters.
func (s *Scanner) Stats() Stats {
	return s.stats.Snapshot()
}

// Run scans every source. Per-file read errors are reported and counted; only a failure
// to open or walk a source, or cancellation, aborts the scan.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	sources := s.sources
	if len(sources) == 0 {
		opened, err := s.openSources(ctx)
		if err != nil {
			return nil, err
		}
		defer closeAll(opened)
		sources = opened
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	s.stats.Started = time.Now()
	jobs := make(chan job, workers*4)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers + 1)

	g.Go(func() error {
		defer close(jobs)
		for _, src := range sources {
			if err := s.enqueue(gctx, src, jobs); err != nil {
				return err
			}
		}
		return nil
	})

	pool := make([]*Worker, workers)
	for i := range pool {
		w := newWorker(i, s)
		pool[i] = w
		g.Go(func() error { return w.run(gctx, jobs) })
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:   s.runID,
		Started: s.stats.Started,
		Summary: aggregate.NewSummary(s.cfg.HighEntropy),
	}
	for _, w := range pool {
		result.Summary.Merge(w.summary)
		result.Records = append(result.Records, w.records...)
	}
	sort.Slice(result.Records, func(i, j int) bool {
		return result.Records[i].Path < result.Records[j].Path
	})
	result.Duration = time.Since(result.Started)
	result.Stats = s.stats.Snapshot()
	return result, nil
}

func (s *Scanner) openSources(ctx context.Context) ([]Source, error) {
	var opened []Source
	for _, target := range s.cfg.Paths {
		src, err := OpenSource(ctx, target, s.cfg.Recursive, s.cfg.FollowLinks)
		if err != nil {
			closeAll(opened)
			return nil, err
		}
		if local, ok := src.(*LocalSource); ok {
			local.OnError = func(path string, err error) {
				s.stats.IncrementErrors()
				s.reporter.OnReadError(path, err)
			}
		}
		opened = append(opened, src)
	}
	return opened, nil
}

// enqueue walks src and hands every accepted file to the workers.
func (s *Scanner) enqueue(ctx context.Context, src Source, jobs chan<- job) error {
	err := src.Walk(ctx, func(e Entry) error {
		if e.Size < s.cfg.MinSize {
			s.stats.IncrementSkipped()
			s.reporter.OnFileSkipped(e.Path, SkipBelowMinSize)
			return nil
		}
		if !s.filter.Allow(e.Rel) {
			s.stats.IncrementSkipped()
			s.reporter.OnFileSkipped(e.Path, SkipFiltered)
			return nil
		}

		select {
		case jobs <- job{source: src, entry: e}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", src.Name(), err)
	}
	return nil
}

func closeAll(sources []Source) {
	for _, src := range sources {
		src.Close()
	}
}
