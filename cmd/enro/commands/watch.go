/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: watch.go
Description: Watch command implementation for enro. Classifies files as they are
created or written and prints the running summary when interrupted.
*/

package commands

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/reporting"
	"github.com/kleascm/enro/pkg/scanner"
	"github.com/kleascm/enro/pkg/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// WatchFlagKeys maps watch flags to configuration keys.
var WatchFlagKeys = map[string]string{
	"recursive": "recursive",
	"min-size":  "min_size",
	"max-bytes": "max_bytes",
	"include":   "include",
	"exclude":   "exclude",
	"no-sniff":  "no_sniff",
	"debounce":  "watch.debounce",
}

// lineReporter prints one line per classified file.
type lineReporter struct {
	mu     sync.Mutex
	w      io.Writer
	colors bool
	base   string
}

func (r *lineReporter) OnFileClassified(rec aggregate.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entropy := reporting.FormatEntropy(rec.Entropy)
	if r.colors {
		entropy = fmt.Sprintf("\033[%dm%s\033[0m", reporting.EntropyColor(rec.Entropy), entropy)
	}
	fmt.Fprintf(r.w, "%s  %s  %s  %s\n", reporting.DisplayPath(rec.Path, r.base), rec.Classification, entropy, reporting.FormatSize(rec.Size))
}

func (r *lineReporter) OnFileSkipped(string, string) {}
func (r *lineReporter) OnReadError(string, error)    {}

// RunWatch watches the paths in args until interrupted.
func RunWatch(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := scanConfig(args)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	colors := !cfg.NoColor && isTerminal(os.Stdout)
	base, _ := os.Getwd()
	reporter := scanner.MultiReporter{
		scanner.NewLoggerReporter(logger),
		&lineReporter{w: os.Stdout, colors: colors, base: base},
	}

	w, err := watch.New(cfg,
		watch.WithDebounce(viper.GetDuration("watch.debounce")),
		watch.WithReporter(reporter),
		watch.WithLogger(logger.FieldLogger()),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintln(os.Stderr, "Watching for changes, press Ctrl+C to stop")
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	summary := w.Summary()
	logger.LogSummary(summary, nil)
	return reporting.WriteSummary(os.Stdout, summary, reporting.Options{Colors: colors})
}
