/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dashboard.go
Description: HTML dashboard for enro scan reports. Builds stat cards, a category chart,
an entropy distribution chart and the per-file table from a Report and renders them
through the dashboard template.
*/

package reporting

import (
	"encoding/json"
	"html/template"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/kleascm/enro/pkg/aggregate"
)

// entropyBuckets is the number of one-bit-wide bars in the entropy distribution chart.
const entropyBuckets = 8

// DashboardGenerator renders scan reports as a single self-contained HTML page.
type DashboardGenerator struct {
	templates *template.Template
}

// DashboardData contains all data for dashboard generation
type DashboardData struct {
	Title       string           `json:"title"`
	GeneratedAt time.Time        `json:"generated_at"`
	Version     string           `json:"version"`
	RunID       string           `json:"run_id"`
	Cards       []StatCard       `json:"cards"`
	Categories  []CategoryRow    `json:"categories"`
	Files       []FileRow        `json:"files"`
	SummaryOnly bool             `json:"summary_only"`
	Warning     string           `json:"warning,omitempty"`
	Charts      map[string]Chart `json:"charts"`
}

// StatCard is one headline number on the dashboard.
type StatCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  string `json:"tone"`
}

// CategoryRow is one row of the category breakdown.
type CategoryRow struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// FileRow is one row of the per-file table.
type FileRow struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	Entropy string `json:"entropy"`
	Size    string `json:"size"`
	Tone    string `json:"tone"`
}

// Chart is a chart.js configuration.
type Chart struct {
	Type    string                 `json:"type"`
	Data    map[string]interface{} `json:"data"`
	Options map[string]interface{} `json:"options"`
}

// NewDashboardGenerator parses the dashboard template.
func NewDashboardGenerator() *DashboardGenerator {
	funcs := template.FuncMap{
		"json": func(v interface{}) (template.JS, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(b), nil
		},
	}
	return &DashboardGenerator{
		templates: template.Must(template.New("dashboard").Funcs(funcs).Parse(dashboardTemplate)),
	}
}

// Render writes the dashboard for r.
func (dg *DashboardGenerator) Render(w io.Writer, r *Report, opts Options) error {
	return dg.templates.Execute(w, dg.BuildData(r, opts))
}

// BuildData converts a report into template data.
func (dg *DashboardGenerator) BuildData(r *Report, opts Options) *DashboardData {
	s := r.Summary
	data := &DashboardData{
		Title:       r.Title,
		GeneratedAt: r.GeneratedAt,
		Version:     r.Version,
		RunID:       r.RunID,
		SummaryOnly: opts.SummaryOnly,
		Charts:      make(map[string]Chart),
	}

	data.Cards = []StatCard{
		{Label: "Files", Value: strconv.Itoa(s.Files), Tone: "neutral"},
		{Label: "Total Size", Value: FormatSize(s.TotalBytes), Tone: "neutral"},
		{Label: "Average Entropy", Value: FormatEntropy(s.AverageEntropy()), Tone: toneFor(s.AverageEntropy())},
		{Label: "High Entropy", Value: strconv.Itoa(s.HighEntropy), Tone: highTone(s.HighEntropy)},
		{Label: "Skipped", Value: strconv.Itoa(int(r.Stats.Skipped)), Tone: "neutral"},
		{Label: "Errors", Value: strconv.Itoa(int(r.Stats.Errors)), Tone: highTone(int(r.Stats.Errors))},
	}
	if s.HighEntropy > 0 {
		data.Warning = HighEntropyWarning(s.HighEntropy)
	}

	for _, c := range s.Categories() {
		data.Categories = append(data.Categories, CategoryRow{
			Name:    c.Name,
			Count:   c.Count,
			Percent: percent(c.Count, s.Files),
		})
	}

	if !opts.SummaryOnly {
		for _, rec := range r.Records {
			data.Files = append(data.Files, FileRow{
				Path:    DisplayPath(rec.Path, opts.Base),
				Type:    rec.Classification.String(),
				Entropy: FormatEntropy(rec.Entropy),
				Size:    FormatSize(rec.Size),
				Tone:    toneFor(rec.Entropy),
			})
		}
	}

	data.Charts["categories"] = dg.createCategoryChart(s)
	data.Charts["entropy"] = dg.createEntropyChart(r.Records)
	return data
}

func (dg *DashboardGenerator) createCategoryChart(s *aggregate.Summary) Chart {
	var labels []string
	var values []int
	for _, c := range s.Categories() {
		labels = append(labels, c.Name)
		values = append(values, c.Count)
	}
	return Chart{
		Type: "doughnut",
		Data: map[string]interface{}{
			"labels": labels,
			"datasets": []map[string]interface{}{{
				"data":            values,
				"backgroundColor": []string{"#667eea", "#48bb78", "#ed8936", "#e53e3e", "#38b2ac", "#9f7aea", "#ecc94b", "#a0aec0"},
			}},
		},
		Options: map[string]interface{}{
			"responsive": true,
			"plugins":    map[string]interface{}{"legend": map[string]interface{}{"position": "right"}},
		},
	}
}

// createEntropyChart buckets record entropies into one-bit bins.
func (dg *DashboardGenerator) createEntropyChart(records []aggregate.Record) Chart {
	counts := EntropyHistogram(records)
	labels := make([]string, entropyBuckets)
	for i := range labels {
		labels[i] = strconv.Itoa(i) + "-" + strconv.Itoa(i+1)
	}
	return Chart{
		Type: "bar",
		Data: map[string]interface{}{
			"labels": labels,
			"datasets": []map[string]interface{}{{
				"label":           "Files",
				"data":            counts,
				"backgroundColor": "#667eea",
			}},
		},
		Options: map[string]interface{}{
			"responsive": true,
			"scales":     map[string]interface{}{"y": map[string]interface{}{"beginAtZero": true}},
		},
	}
}

// EntropyHistogram counts records per one-bit entropy bin. Entropy 8 falls in the last bin.
func EntropyHistogram(records []aggregate.Record) []int {
	counts := make([]int, entropyBuckets)
	for _, rec := range records {
		i := int(math.Floor(rec.Entropy))
		if i >= entropyBuckets {
			i = entropyBuckets - 1
		}
		if i < 0 {
			i = 0
		}
		counts[i]++
	}
	return counts
}

func toneFor(e float64) string {
	switch EntropyColor(e) {
	case colorRed:
		return "high"
	case colorYellow:
		return "medium"
	default:
		return "low"
	}
}

func highTone(n int) string {
	if n > 0 {
		return "high"
	}
	return "low"
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*1000/float64(total)) / 10
}
