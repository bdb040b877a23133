/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Report model for enro. A Report bundles the records and summary of one
scan with run metadata, and can be narrowed by entropy range or category before it is
rendered in any output format.
*/

package reporting

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/kleascm/enro/pkg/config"
	"github.com/kleascm/enro/pkg/scanner"
)

// Report is everything an output format needs.
type Report struct {
	Title       string
	RunID       string
	Version     string
	GeneratedAt time.Time
	Records     []aggregate.Record
	Summary     *aggregate.Summary
	Stats       scanner.Stats
	Duration    time.Duration
}

// Options control rendering.
type Options struct {
	Colors      bool
	SummaryOnly bool
	// Base makes displayed paths relative to it when they lie underneath.
	Base string
}

// NewReport builds a report from a scan result.
func NewReport(res *scanner.Result, version string) *Report {
	return &Report{
		Title:       "enro scan report",
		RunID:       res.RunID,
		Version:     version,
		GeneratedAt: time.Now(),
		Records:     res.Records,
		Summary:     res.Summary,
		Stats:       res.Stats,
		Duration:    res.Duration,
	}
}

// Filter returns a copy holding only records whose entropy lies in rng (when non-nil)
// and whose category is in kinds (when non-empty). The summary is rebuilt from the
// remaining records.
func (r *Report) Filter(rng *config.Range, kinds []classify.Kind) *Report {
	if rng == nil && len(kinds) == 0 {
		return r
	}

	allowed := make(map[classify.Kind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}

	out := *r
	out.Records = nil
	out.Summary = aggregate.NewSummary(r.Summary.HighThreshold)
	for _, rec := range r.Records {
		if rng != nil && !rng.Contains(rec.Entropy) {
			continue
		}
		if len(allowed) > 0 && !allowed[rec.Classification.Kind] {
			continue
		}
		out.Records = append(out.Records, rec)
		out.Summary.Fold(rec)
	}
	return &out
}

// Render writes r in the given format.
func Render(w io.Writer, format string, r *Report, opts Options) error {
	switch format {
	case config.FormatTable, "":
		if !opts.SummaryOnly {
			if err := WriteTable(w, r.Records, opts); err != nil {
				return err
			}
		}
		return WriteSummary(w, r.Summary, opts)
	case config.FormatSimple:
		return WriteSimple(w, r.Records, opts)
	case config.FormatJSON:
		return WriteJSON(w, r, opts)
	case config.FormatYAML:
		return WriteYAML(w, r, opts)
	case config.FormatHTML:
		return NewDashboardGenerator().Render(w, r, opts)
	default:
		return fmt.Errorf("%w: unknown format %q", config.ErrInvalidConfig, format)
	}
}

// Extension returns the file extension used when a format is saved to disk.
func Extension(format string) string {
	switch format {
	case config.FormatSimple:
		return "csv"
	case config.FormatJSON:
		return "json"
	case config.FormatYAML:
		return "yaml"
	case config.FormatHTML:
		return "html"
	default:
		return "txt"
	}
}

// FileName returns the name a saved report gets, e.g. enro_1a2b3c4d_2024-06-01_12-00-00.json.
func FileName(r *Report, format string) string {
	id := r.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("enro_%s_%s.%s", id, r.GeneratedAt.Format("2006-01-02_15-04-05"), Extension(format))
}

// FormatSize renders a byte count with binary units and two decimals, e.g. "1.50 KB".
func FormatSize(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", size, units[i])
}

// FormatEntropy renders an entropy value as "x.xx/8.0".
func FormatEntropy(e float64) string {
	return fmt.Sprintf("%.2f/8.0", e)
}

// DisplayPath shortens path relative to base when it lies underneath.
func DisplayPath(path, base string) string {
	if base == "" || scanner.IsBucketURL(path) {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
