/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: watcher.go
Description: Watch mode for enro. Classifies files as they are created or written,
waiting until a file has been quiet for the debounce interval before reading it, and
keeps a running summary of everything classified.
*/

package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/kleascm/enro/pkg/config"
	"github.com/kleascm/enro/pkg/scanner"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long a file must stay unchanged before it is classified.
const DefaultDebounce = 500 * time.Millisecond

// root is one watched path.
type root struct {
	path   string
	dir    bool
	source *scanner.LocalSource
}

// Watcher classifies files under its roots as they change.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []root
	recursive bool
	debounce  time.Duration
	minSize   int64
	maxBytes  int64
	filter    *scanner.Filter

	classifier *classify.Classifier
	reporter   scanner.Reporter
	collector  *aggregate.Collector
	stats      *scanner.Stats
	logger     logrus.FieldLogger

	// path -> time of the last create/write event; owned by the Run goroutine
	state   map[string]time.Time
	started bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is classified.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithReporter receives every classification, skip and read error.
func WithReporter(r scanner.Reporter) Option {
	return func(w *Watcher) { w.reporter = r }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithClassifier replaces the classifier built from the configuration.
func WithClassifier(c *classify.Classifier) Option {
	return func(w *Watcher) { w.classifier = c }
}

// New creates a watcher for the paths in cfg. cfg must already be validated.
func New(cfg *config.ScanConfig, opts ...Option) (*Watcher, error) {
	filter, err := scanner.NewFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	w := &Watcher{
		recursive: cfg.Recursive,
		debounce:  DefaultDebounce,
		minSize:   cfg.MinSize,
		maxBytes:  cfg.MaxBytes,
		filter:    filter,
		reporter:  scanner.NopReporter{},
		collector: aggregate.NewCollector(cfg.HighEntropy, false),
		stats:     &scanner.Stats{Started: time.Now()},
		state:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		w.logger = l
	}
	if w.classifier == nil {
		w.classifier = scanner.ClassifierFor(cfg)
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	for _, p := range cfg.Paths {
		if scanner.IsBucketURL(p) {
			return nil, fmt.Errorf("%w: cannot watch bucket %s", config.ErrInvalidConfig, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", scanner.ErrPathNotFound, p)
			}
			return nil, err
		}
		src, err := scanner.NewLocalSource(abs, w.recursive, false)
		if err != nil {
			return nil, err
		}
		w.roots = append(w.roots, root{path: abs, dir: info.IsDir(), source: src})
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsWatcher = fsWatcher
	return w, nil
}

// Start registers every root with the file watcher. Run calls it when needed.
func (w *Watcher) Start() error {
	if w.started {
		return nil
	}
	for _, r := range w.roots {
		if !r.dir {
			// single files are watched through their directory
			if err := w.fsWatcher.Add(filepath.Dir(r.path)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", r.path, err)
			}
			continue
		}
		if err := w.addTree(r.path, false); err != nil {
			return err
		}
	}
	w.started = true
	w.logger.WithField("paths", len(w.roots)).Info("Watch started")
	return nil
}

// addTree watches dir and, when recursive, every directory below it. With track set,
// files already present are queued too, so files written before the watch was added
// are not missed.
func (w *Watcher) addTree(dir string, track bool) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir() && w.recursive:
			if err := w.addTree(path, track); err != nil {
				return err
			}
		case entry.Type().IsRegular() && track:
			w.state[path] = time.Now()
		}
	}
	return nil
}

// Run handles events until ctx is cancelled. A cancelled context is a normal exit.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()
	if err := w.Start(); err != nil {
		return err
	}

	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.WithField("files", w.stats.Snapshot().Files).Info("Watch stopped")
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.stats.IncrementErrors()
			w.logger.WithError(err).Warn("Watch error")

		case now := <-ticker.C:
			w.processStable(ctx, now)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		delete(w.state, event.Name)
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	info, err := os.Lstat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && w.recursive && w.rootFor(event.Name) != nil {
			if err := w.addTree(event.Name, true); err != nil {
				w.logger.WithError(err).WithField("path", event.Name).Warn("Watch error")
			}
		}
		return
	}
	if !info.Mode().IsRegular() || w.rootFor(event.Name) == nil {
		return
	}
	w.state[event.Name] = time.Now()
}

// rootFor returns the root a path belongs to, or nil when it is outside every root.
func (w *Watcher) rootFor(path string) *root {
	for i := range w.roots {
		r := &w.roots[i]
		if !r.dir {
			if path == r.path {
				return r
			}
			continue
		}
		rel, err := filepath.Rel(r.path, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if !w.recursive && strings.ContainsRune(rel, filepath.Separator) {
			continue
		}
		return r
	}
	return nil
}

// processStable classifies every file that has been quiet for the debounce interval.
func (w *Watcher) processStable(ctx context.Context, now time.Time) {
	for path, last := range w.state {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.state, path)
		w.process(ctx, path)
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	r := w.rootFor(path)
	if r == nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		// removed between the event and now
		return
	}

	rel := filepath.Base(path)
	if r.dir {
		if p, err := filepath.Rel(r.path, path); err == nil {
			rel = filepath.ToSlash(p)
		}
	}

	if info.Size() < w.minSize {
		w.stats.IncrementSkipped()
		w.reporter.OnFileSkipped(path, scanner.SkipBelowMinSize)
		return
	}
	if !w.filter.Allow(rel) {
		w.stats.IncrementSkipped()
		w.reporter.OnFileSkipped(path, scanner.SkipFiltered)
		return
	}

	e := scanner.Entry{Path: path, Rel: rel, Size: info.Size()}
	rec, read, err := scanner.ClassifyEntry(ctx, w.classifier, r.source, e, w.maxBytes)
	if err != nil {
		w.stats.IncrementErrors()
		w.reporter.OnReadError(path, err)
		return
	}

	w.stats.IncrementFiles(read)
	w.collector.Add(rec)
	w.reporter.OnFileClassified(rec)
}

// Summary returns a snapshot of everything classified so far.
func (w *Watcher) Summary() *aggregate.Summary {
	return w.collector.Snapshot()
}

// Stats returns a snapshot of the watch counters.
func (w *Watcher) Stats() scanner.Stats {
	return w.stats.Snapshot()
}

// Close releases the file watcher. Run closes it on return; Close is for watchers that
// were never run.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
