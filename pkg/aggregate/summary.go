/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary.go
Description: Result aggregation for enro. Folds per-file records into a Summary of
category counts, entropy totals and high-entropy warnings. Summaries merge associatively
so per-worker partial results can be combined in any order.
*/

package aggregate

import (
	"strings"

	"github.com/kleascm/enro/pkg/classify"
	"golang.org/x/exp/slices"
)

// DefaultHighEntropy is the entropy above which a file counts as high entropy.
const DefaultHighEntropy = 7.5

// Record is the result for a single file.
type Record struct {
	Path           string                  `json:"path" yaml:"path"`
	Classification classify.Classification `json:"classification" yaml:"classification"`
	Entropy        float64                 `json:"entropy" yaml:"entropy"`
	Size           int64                   `json:"size" yaml:"size"`
	Digest         string                  `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// Summary holds running statistics over folded records.
// The zero value is not usable; create one with NewSummary.
type Summary struct {
	Counts        map[classify.Kind]int `json:"counts" yaml:"counts"`
	Labels        map[string]int        `json:"labels" yaml:"labels"`
	TotalEntropy  float64               `json:"total_entropy" yaml:"total_entropy"`
	Files         int                   `json:"files" yaml:"files"`
	TotalBytes    int64                 `json:"total_bytes" yaml:"total_bytes"`
	HighEntropy   int                   `json:"high_entropy" yaml:"high_entropy"`
	HighThreshold float64               `json:"high_entropy_threshold" yaml:"high_entropy_threshold"`
}

// NewSummary creates an empty summary. A non-positive threshold selects DefaultHighEntropy.
func NewSummary(highThreshold float64) *Summary {
	if highThreshold <= 0 {
		highThreshold = DefaultHighEntropy
	}
	return &Summary{
		Counts:        make(map[classify.Kind]int),
		Labels:        make(map[string]int),
		HighThreshold: highThreshold,
	}
}

// Fold adds one record to the summary.
func (s *Summary) Fold(rec Record) {
	s.Counts[rec.Classification.Kind]++
	s.Labels[rec.Classification.String()]++
	s.TotalEntropy += rec.Entropy
	s.TotalBytes += rec.Size
	s.Files++
	if rec.Entropy > s.HighThreshold {
		s.HighEntropy++
	}
}

// Merge adds other into s. Merging is commutative and associative.
// The high-entropy threshold of s is kept.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	for k, n := range other.Counts {
		s.Counts[k] += n
	}
	for l, n := range other.Labels {
		s.Labels[l] += n
	}
	s.TotalEntropy += other.TotalEntropy
	s.TotalBytes += other.TotalBytes
	s.Files += other.Files
	s.HighEntropy += other.HighEntropy
}

// AverageEntropy returns the mean entropy, or 0 when nothing was folded.
func (s *Summary) AverageEntropy() float64 {
	if s.Files == 0 {
		return 0
	}
	return s.TotalEntropy / float64(s.Files)
}

// Count returns the number of files folded for kind.
func (s *Summary) Count(kind classify.Kind) int {
	return s.Counts[kind]
}

// Clone returns an independent copy.
func (s *Summary) Clone() *Summary {
	c := NewSummary(s.HighThreshold)
	c.Merge(s)
	return c
}

// Category is a display row of the summary.
type Category struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Categories returns the per-kind counts sorted by count descending, then name.
func (s *Summary) Categories() []Category {
	out := make([]Category, 0, len(s.Counts))
	for k, n := range s.Counts {
		if n == 0 {
			continue
		}
		out = append(out, Category{Name: k.Title(), Count: n})
	}
	sortCategories(out)
	return out
}

// LabelCategories returns the per-label counts ("Archive (ZIP)", "Plain Text", ...)
// in the same order as Categories.
func (s *Summary) LabelCategories() []Category {
	out := make([]Category, 0, len(s.Labels))
	for l, n := range s.Labels {
		if n == 0 {
			continue
		}
		out = append(out, Category{Name: l, Count: n})
	}
	sortCategories(out)
	return out
}

func sortCategories(cats []Category) {
	slices.SortFunc(cats, func(a, b Category) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
}
