/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: structured.go
Description: Machine-readable renderers (JSON and YAML) sharing one document layout.
*/

package reporting

import (
	"encoding/json"
	"io"
	"time"

	"github.com/kleascm/enro/pkg/aggregate"
	"gopkg.in/yaml.v3"
)

type recordView struct {
	Path     string  `json:"path" yaml:"path"`
	Type     string  `json:"type" yaml:"type"`
	Category string  `json:"category" yaml:"category"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Entropy  float64 `json:"entropy" yaml:"entropy"`
	Size     int64   `json:"size" yaml:"size"`
	Digest   string  `json:"digest,omitempty" yaml:"digest,omitempty"`
}

type summaryView struct {
	Files                int                  `json:"files" yaml:"files"`
	TotalBytes           int64                `json:"total_bytes" yaml:"total_bytes"`
	AverageEntropy       float64              `json:"average_entropy" yaml:"average_entropy"`
	HighEntropy          int                  `json:"high_entropy" yaml:"high_entropy"`
	HighEntropyThreshold float64              `json:"high_entropy_threshold" yaml:"high_entropy_threshold"`
	Categories           []aggregate.Category `json:"categories" yaml:"categories"`
	Types                []aggregate.Category `json:"types" yaml:"types"`
}

type statsView struct {
	Skipped   int64   `json:"skipped" yaml:"skipped"`
	Errors    int64   `json:"errors" yaml:"errors"`
	BytesRead int64   `json:"bytes_read" yaml:"bytes_read"`
	Seconds   float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

type document struct {
	RunID       string       `json:"run_id" yaml:"run_id"`
	Version     string       `json:"version,omitempty" yaml:"version,omitempty"`
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	Records     []recordView `json:"records,omitempty" yaml:"records,omitempty"`
	Summary     summaryView  `json:"summary" yaml:"summary"`
	Stats       statsView    `json:"stats" yaml:"stats"`
}

func newDocument(r *Report, opts Options) document {
	doc := document{
		RunID:       r.RunID,
		Version:     r.Version,
		GeneratedAt: r.GeneratedAt,
		Summary: summaryView{
			Files:                r.Summary.Files,
			TotalBytes:           r.Summary.TotalBytes,
			AverageEntropy:       r.Summary.AverageEntropy(),
			HighEntropy:          r.Summary.HighEntropy,
			HighEntropyThreshold: r.Summary.HighThreshold,
			Categories:           r.Summary.Categories(),
			Types:                r.Summary.LabelCategories(),
		},
		Stats: statsView{
			Skipped:   r.Stats.Skipped,
			Errors:    r.Stats.Errors,
			BytesRead: r.Stats.Bytes,
			Seconds:   r.Duration.Seconds(),
		},
	}
	if opts.SummaryOnly {
		return doc
	}
	for _, rec := range r.Records {
		doc.Records = append(doc.Records, recordView{
			Path:     DisplayPath(rec.Path, opts.Base),
			Type:     rec.Classification.Tag(),
			Category: rec.Classification.Kind.String(),
			Label:    rec.Classification.Label,
			Entropy:  rec.Entropy,
			Size:     rec.Size,
			Digest:   rec.Digest,
		})
	}
	return doc
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(r, opts))
}

// WriteYAML writes the report as YAML.
func WriteYAML(w io.Writer, r *Report, opts Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(r, opts)); err != nil {
		return err
	}
	return enc.Close()
}
