/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: text.go
Description: Terminal renderers: the aligned results table, the summary block and the
plain CSV output.
*/

package reporting

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kleascm/enro/pkg/aggregate"
)

const barWidth = 80

// ANSI colors. Every code is two digits so colored cells stay the same width.
const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorCyan    = 36
	colorDefault = 39
	styleBold    = 1
)

func paint(s string, code int, enabled bool) string {
	if !enabled {
		return s
	}
	return fmt.Sprintf("\033[%02dm%s\033[0m", code, s)
}

// EntropyColor returns the color an entropy value is shown in.
func EntropyColor(e float64) int {
	switch {
	case e > 7.5:
		return colorRed
	case e > 6.0:
		return colorYellow
	default:
		return colorGreen
	}
}

// WriteTable writes the per-file results table.
func WriteTable(w io.Writer, records []aggregate.Record, opts Options) error {
	bw := bufio.NewWriter(w)

	sep := strings.Repeat("=", barWidth)
	fmt.Fprintf(bw, "\n%s\n%s\n%s\n", paint(sep, colorCyan, opts.Colors), paint("ANALYSIS RESULTS", colorCyan, opts.Colors), paint(sep, colorCyan, opts.Colors))

	tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', 0)
	// every cell carries the same escape overhead when colors are on, keeping columns aligned
	fmt.Fprintf(tw, " %s\t%s\t%s\t%s\n",
		paint("File", styleBold, opts.Colors),
		paint("Type", styleBold, opts.Colors),
		paint("Entropy", styleBold, opts.Colors),
		paint("Size", styleBold, opts.Colors))

	for _, rec := range records {
		fmt.Fprintf(tw, " %s\t%s\t%s\t%s\n",
			paint(DisplayPath(rec.Path, opts.Base), colorDefault, opts.Colors),
			paint(rec.Classification.String(), colorDefault, opts.Colors),
			paint(FormatEntropy(rec.Entropy), EntropyColor(rec.Entropy), opts.Colors),
			paint(FormatSize(rec.Size), colorDefault, opts.Colors))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteSummary writes the summary block with counts, average entropy and the
// high-entropy warning.
func WriteSummary(w io.Writer, s *aggregate.Summary, opts Options) error {
	bw := bufio.NewWriter(w)
	thin := strings.Repeat("-", barWidth)
	bullet := paint("•", colorCyan, opts.Colors)

	fmt.Fprintf(bw, "\n%s\n%s\n%s\n", thin, paint("SUMMARY", styleBold, opts.Colors), thin)

	if s.Files == 0 {
		fmt.Fprintln(bw, paint("No files to analyze.", colorYellow, opts.Colors))
		return bw.Flush()
	}

	fmt.Fprintf(bw, "\n%s\n", paint("File Types:", styleBold, opts.Colors))
	for _, c := range s.LabelCategories() {
		fmt.Fprintf(bw, "  %s %s: %d\n", bullet, c.Name, c.Count)
	}

	fmt.Fprintf(bw, "\n%s\n", paint("Categories:", styleBold, opts.Colors))
	for _, c := range s.Categories() {
		fmt.Fprintf(bw, "  %s %s: %d\n", bullet, c.Name, c.Count)
	}

	fmt.Fprintf(bw, "\n%s\n", paint("Statistics:", styleBold, opts.Colors))
	fmt.Fprintf(bw, "  %s Total Files: %d\n", bullet, s.Files)
	fmt.Fprintf(bw, "  %s Total Size: %s\n", bullet, FormatSize(s.TotalBytes))
	fmt.Fprintf(bw, "  %s Average Entropy: %s\n", bullet, FormatEntropy(s.AverageEntropy()))
	if s.HighEntropy > 0 {
		fmt.Fprintf(bw, "  %s\n", paint(HighEntropyWarning(s.HighEntropy), colorYellow, opts.Colors))
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}

// HighEntropyWarning is the warning line shown when high-entropy files were found.
func HighEntropyWarning(n int) string {
	return fmt.Sprintf("⚠ %d file(s) with high entropy (possibly encrypted/compressed)", n)
}

// WriteSimple writes CSV rows "Path,Type,Entropy,Size" with no colors or decoration.
func WriteSimple(w io.Writer, records []aggregate.Record, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Path", "Type", "Entropy", "Size"}); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			DisplayPath(rec.Path, opts.Base),
			rec.Classification.Tag(),
			fmt.Sprintf("%.2f", rec.Entropy),
			fmt.Sprintf("%d", rec.Size),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
