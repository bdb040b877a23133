/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scan.go
Description: Scan command implementation for enro. Walks the given paths or buckets,
classifies every file with the worker pool, applies the display filters and renders the
results in the requested format.
*/

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/config"
	"github.com/kleascm/enro/pkg/logging"
	"github.com/kleascm/enro/pkg/reporting"
	"github.com/kleascm/enro/pkg/scanner"
	"github.com/kleascm/enro/pkg/utils"
	"github.com/spf13/cobra"
)

// ScanFlagKeys maps scan flags to configuration keys.
var ScanFlagKeys = map[string]string{
	"recursive":    "recursive",
	"follow-links": "follow_links",
	"min-size":     "min_size",
	"max-bytes":    "max_bytes",
	"workers":      "workers",
	"simple":       "simple",
	"summary-only": "summary_only",
	"threshold":    "threshold",
	"format":       "format",
	"output-dir":   "output_dir",
	"type":         "types",
	"include":      "include",
	"exclude":      "exclude",
	"high-entropy": "high_entropy",
	"no-sniff":     "no_sniff",
	"metrics-dir":  "metrics_dir",
}

// RunScan executes a scan of the paths in args.
func RunScan(cmd *cobra.Command, args []string) error {
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
	rng, err := cfg.EntropyRange()
	if err != nil {
		return err
	}
	kinds, err := cfg.Kinds()
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	runLogger := logger.WithRunID(runID)

	s, err := scanner.New(cfg,
		scanner.WithRunID(runID),
		scanner.WithLogger(runLogger.FieldLogger()),
		scanner.WithReporter(scanner.NewLoggerReporter(runLogger)),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	runLogger.Info("Scan started", map[string]interface{}{
		"paths":     len(cfg.Paths),
		"recursive": cfg.Recursive,
		"workers":   cfg.Workers,
		"max_bytes": cfg.MaxBytes,
	})

	progressCtx, stopProgress := context.WithCancel(ctx)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		if cfg.Format == config.FormatTable && isTerminal(os.Stderr) {
			reportProgress(progressCtx, os.Stderr, s)
		}
	}()
	res, err := s.Run(ctx)
	stopProgress()
	<-progressDone
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	report := reporting.NewReport(res, Version).Filter(rng, kinds)
	runLogger.LogSummary(report.Summary, map[string]interface{}{
		"skipped":  res.Stats.Skipped,
		"errors":   res.Stats.Errors,
		"duration": res.Duration,
	})

	base, _ := os.Getwd()
	opts := reporting.Options{
		Colors:      !cfg.NoColor && cfg.Format == config.FormatTable && isTerminal(os.Stdout),
		SummaryOnly: cfg.SummaryOnly,
		Base:        base,
	}

	if cfg.OutputDir != "" {
		store := reporting.NewReportStore(cfg.OutputDir, runLogger.FieldLogger())
		location, err := store.Save(ctx, report, cfg.Format, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", location)
	} else if err := reporting.Render(os.Stdout, cfg.Format, report, opts); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if cfg.MetricsDir != "" {
		if err := writeScanMetrics(cfg.MetricsDir, report, res, runLogger); err != nil {
			return err
		}
	}
	return nil
}

// scanMetrics is the snapshot written to --metrics-dir after every scan.
type scanMetrics struct {
	RunID          string               `json:"run_id"`
	Timestamp      time.Time            `json:"timestamp"`
	DurationSec    float64              `json:"duration_seconds"`
	Stats          scanner.Stats        `json:"stats"`
	FilesPerSecond float64              `json:"files_per_second"`
	AverageEntropy float64              `json:"average_entropy"`
	HighEntropy    int                  `json:"high_entropy"`
	Categories     []aggregate.Category `json:"categories"`
}

func writeScanMetrics(dir string, report *reporting.Report, res *scanner.Result, logger *logging.Logger) error {
	m := scanMetrics{
		RunID:          res.RunID,
		Timestamp:      time.Now(),
		DurationSec:    res.Duration.Seconds(),
		Stats:          res.Stats,
		FilesPerSecond: res.Stats.FilesPerSecond(),
		AverageEntropy: report.Summary.AverageEntropy(),
		HighEntropy:    report.Summary.HighEntropy,
		Categories:     report.Summary.Categories(),
	}

	path, err := utils.WriteMetricsResult(dir, "scan", Version, m)
	if err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	logger.Info("Metrics written", map[string]interface{}{"path": path})
	return nil
}

// reportProgress prints live counters until ctx is cancelled.
func reportProgress(ctx context.Context, w io.Writer, s *scanner.Scanner) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	printed := false
	for {
		select {
		case <-ctx.Done():
			if printed {
				fmt.Fprint(w, "\r\033[K")
			}
			return
		case <-ticker.C:
			stats := s.Stats()
			fmt.Fprintf(w, "\r🔄 Files: %d | Skipped: %d | Errors: %d | Read: %s | Rate: %.1f/sec",
				stats.Files, stats.Skipped, stats.Errors, reporting.FormatSize(stats.Bytes), stats.FilesPerSecond())
			printed = true
		}
	}
}
