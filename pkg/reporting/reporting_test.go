/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporting_test.go
Description: Tests for the report model, terminal and structured renderers, the HTML
dashboard and the report store.
*/

package reporting_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/enro/pkg/aggregate"
	"github.com/kleascm/enro/pkg/classify"
	"github.com/kleascm/enro/pkg/config"
	"github.com/kleascm/enro/pkg/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"gopkg.in/yaml.v3"
)

func sampleReport() *reporting.Report {
	records := []aggregate.Record{
		{Path: "/data/a.zip", Classification: classify.Archive("ZIP"), Entropy: 7.95, Size: 2048, Digest: "0123456789abcdef"},
		{Path: "/data/notes, v2.txt", Classification: classify.Of(classify.KindPlainText), Entropy: 4.2, Size: 512},
		{Path: "/data/key.bin", Classification: classify.Of(classify.KindEncrypted), Entropy: 7.99, Size: 1536},
		{Path: "/data/blob.dat", Classification: classify.Of(classify.KindBinary), Entropy: 6.5, Size: 100},
	}
	s := aggregate.NewSummary(0)
	for _, r := range records {
		s.Fold(r)
	}
	return &reporting.Report{
		Title:       "enro scan report",
		RunID:       "0123456789abcdef-run",
		Version:     "1.0.0",
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Records:     records,
		Summary:     s,
		Duration:    1500 * time.Millisecond,
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
		{3 * 1024 * 1024 * 1024 * 1024 * 1024, "3072.00 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reporting.FormatSize(tt.in))
	}
	assert.Equal(t, "7.95/8.0", reporting.FormatEntropy(7.951))
}

func TestDisplayPath(t *testing.T) {
	base := filepath.Join("tmp", "root")
	assert.Equal(t, filepath.Join("sub", "a.txt"), reporting.DisplayPath(filepath.Join(base, "sub", "a.txt"), base))
	assert.Equal(t, filepath.Join("elsewhere", "a.txt"), reporting.DisplayPath(filepath.Join("elsewhere", "a.txt"), base))
	assert.Equal(t, "s3://bkt/a.txt", reporting.DisplayPath("s3://bkt/a.txt", base))
	assert.Equal(t, "a.txt", reporting.DisplayPath("a.txt", ""))
}

func TestFilterRebuildsSummary(t *testing.T) {
	r := sampleReport()

	rng, err := config.ParseRange("7.9-8")
	require.NoError(t, err)
	high := r.Filter(&rng, nil)
	assert.Len(t, high.Records, 2)
	assert.Equal(t, 2, high.Summary.Files)
	assert.Equal(t, 2, high.Summary.HighEntropy)
	assert.InDelta(t, 7.97, high.Summary.AverageEntropy(), 1e-9)

	text := r.Filter(nil, []classify.Kind{classify.KindPlainText})
	require.Len(t, text.Records, 1)
	assert.Equal(t, "/data/notes, v2.txt", text.Records[0].Path)

	none := r.Filter(&rng, []classify.Kind{classify.KindPlainText})
	assert.Empty(t, none.Records)
	assert.Equal(t, 0.0, none.Summary.AverageEntropy())

	assert.Same(t, r, r.Filter(nil, nil))
	assert.Len(t, r.Records, 4, "original is untouched")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.WriteTable(&buf, sampleReport().Records, reporting.Options{Base: "/data"}))
	out := buf.String()

	assert.Contains(t, out, "ANALYSIS RESULTS")
	assert.NotContains(t, out, "\033[")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// separator, title, separator, header, four rows
	require.Len(t, lines, 8)
	assert.Contains(t, lines[3], "File")
	assert.Contains(t, lines[4], "a.zip")
	assert.Contains(t, lines[4], "Archive (ZIP)")
	assert.Contains(t, lines[4], "7.95/8.0")
	assert.Contains(t, lines[4], "2.00 KB")

	// columns line up
	col := strings.Index(lines[3], "Entropy")
	for _, l := range lines[4:] {
		assert.Equal(t, col, strings.Index(l, "/8.0")-4, l)
	}
}

func TestWriteTableColors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.WriteTable(&buf, sampleReport().Records, reporting.Options{Colors: true}))
	out := buf.String()
	assert.Contains(t, out, "\033[31m7.95/8.0\033[0m")
	assert.Contains(t, out, "\033[32m4.20/8.0\033[0m")
	assert.Contains(t, out, "\033[33m6.50/8.0\033[0m")
}

func TestEntropyColor(t *testing.T) {
	assert.Equal(t, 31, reporting.EntropyColor(7.6))
	assert.Equal(t, 33, reporting.EntropyColor(7.5))
	assert.Equal(t, 32, reporting.EntropyColor(6.0))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.WriteSummary(&buf, sampleReport().Summary, reporting.Options{}))
	out := buf.String()

	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "• Archive (ZIP): 1")
	assert.Contains(t, out, "• Plain Text: 1")
	assert.Contains(t, out, "Total Files: 4")
	assert.Contains(t, out, "Total Size: 4.10 KB")
	assert.Contains(t, out, "Average Entropy: 6.66/8.0")
	assert.Contains(t, out, "⚠ 2 file(s) with high entropy (possibly encrypted/compressed)")

	buf.Reset()
	require.NoError(t, reporting.WriteSummary(&buf, aggregate.NewSummary(0), reporting.Options{}))
	assert.Contains(t, buf.String(), "No files to analyze.")
	assert.NotContains(t, buf.String(), "Average Entropy")
}

func TestWriteSimple(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.WriteSimple(&buf, sampleReport().Records, reporting.Options{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Path", "Type", "Entropy", "Size"}, rows[0])
	assert.Equal(t, []string{"/data/a.zip", "Archive(ZIP)", "7.95", "2048"}, rows[1])
	assert.Equal(t, []string{"/data/notes, v2.txt", "PlainText", "4.20", "512"}, rows[2])
	assert.Equal(t, "Encrypted", rows[3][1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.WriteJSON(&buf, sampleReport(), reporting.Options{}))

	var doc struct {
		RunID   string `json:"run_id"`
		Records []struct {
			Path     string  `json:"path"`
			Type     string  `json:"type"`
			Category string  `json:"category"`
			Entropy  float64 `json:"entropy"`
		} `json:"records"`
		Summary struct {
			Files       int `json:"files"`
			HighEntropy int `json:"high_entropy"`
			Categories  []aggregate.Category
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "0123456789abcdef-run", doc.RunID)
	require.Len(t, doc.Records, 4)
	assert.Equal(t, "Archive(ZIP)", doc.Records[0].Type)
	assert.Equal(t, "Archive", doc.Records[0].Category)
	assert.Equal(t, 4, doc.Summary.Files)
	assert.Equal(t, 2, doc.Summary.HighEntropy)
	assert.Len(t, doc.Summary.Categories, 4)

	buf.Reset()
	require.NoError(t, reporting.WriteJSON(&buf, sampleReport(), reporting.Options{SummaryOnly: true}))
	assert.NotContains(t, buf.String(), `"records"`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.WriteYAML(&buf, sampleReport(), reporting.Options{}))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "0123456789abcdef-run", doc["run_id"])
	summary := doc["summary"].(map[string]interface{})
	assert.Equal(t, 4, summary["files"])
	assert.Len(t, doc["records"], 4)
}

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.Records[0].Path = "/data/<script>.zip"
	require.NoError(t, reporting.NewDashboardGenerator().Render(&buf, r, reporting.Options{}))
	out := buf.String()

	assert.Contains(t, out, "<title>enro scan report</title>")
	assert.Contains(t, out, "Run 0123456789abcdef-run")
	assert.Contains(t, out, "Archive (ZIP)")
	assert.Contains(t, out, "&lt;script&gt;.zip")
	assert.Contains(t, out, `"type":"doughnut"`)
	assert.Contains(t, out, "possibly encrypted/compressed")

	buf.Reset()
	require.NoError(t, reporting.NewDashboardGenerator().Render(&buf, r, reporting.Options{SummaryOnly: true}))
	assert.NotContains(t, buf.String(), "Analysis Results")
}

func TestDashboardData(t *testing.T) {
	data := reporting.NewDashboardGenerator().BuildData(sampleReport(), reporting.Options{})
	require.Len(t, data.Categories, 4)
	assert.Equal(t, 25.0, data.Categories[0].Percent)
	assert.Len(t, data.Files, 4)
	assert.Equal(t, "high", data.Files[0].Tone)
	assert.Equal(t, "low", data.Files[1].Tone)
}

func TestEntropyHistogram(t *testing.T) {
	counts := reporting.EntropyHistogram([]aggregate.Record{
		{Entropy: 0}, {Entropy: 4.2}, {Entropy: 7.99}, {Entropy: 8},
	})
	assert.Equal(t, []int{1, 0, 0, 0, 1, 0, 0, 2}, counts)
}

func TestRenderDispatch(t *testing.T) {
	r := sampleReport()
	for _, format := range []string{config.FormatTable, config.FormatSimple, config.FormatJSON, config.FormatYAML, config.FormatHTML} {
		var buf bytes.Buffer
		require.NoError(t, reporting.Render(&buf, format, r, reporting.Options{}), format)
		assert.NotEmpty(t, buf.String(), format)
	}

	var buf bytes.Buffer
	require.NoError(t, reporting.Render(&buf, config.FormatTable, r, reporting.Options{SummaryOnly: true}))
	assert.NotContains(t, buf.String(), "ANALYSIS RESULTS")
	assert.Contains(t, buf.String(), "SUMMARY")

	err := reporting.Render(&buf, "pdf", r, reporting.Options{})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestFileName(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "enro_01234567_2024-06-01_12-00-00.json", reporting.FileName(r, config.FormatJSON))
	assert.Equal(t, "enro_01234567_2024-06-01_12-00-00.csv", reporting.FileName(r, config.FormatSimple))
	assert.Equal(t, "enro_01234567_2024-06-01_12-00-00.txt", reporting.FileName(r, config.FormatTable))
}

func TestReportStoreDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	store := reporting.NewReportStore(dir, nil)

	loc, err := store.Save(context.Background(), sampleReport(), config.FormatJSON, reporting.Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "enro_01234567_2024-06-01_12-00-00.json"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestReportStoreBucket(t *testing.T) {
	ctx := context.Background()
	bkt := memblob.OpenBucket(nil)
	defer bkt.Close()

	store := reporting.NewReportStore("mem://reports?x=1", nil).WithBucket(bkt)
	loc, err := store.SaveBytes(ctx, "out.csv", []byte("Path,Type,Entropy,Size\n"))
	require.NoError(t, err)
	assert.Equal(t, "mem://reports/out.csv", loc)

	got, err := bkt.ReadAll(ctx, "out.csv")
	require.NoError(t, err)
	assert.Equal(t, "Path,Type,Entropy,Size\n", string(got))
}
