/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parse.go
Description: Parsers for command-line values: entropy ranges ("7.5-8.0") and
category names with typo suggestions.
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kleascm/enro/pkg/classify"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Range is an inclusive entropy interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether e lies within the range.
func (r Range) Contains(e float64) bool {
	return e >= r.Min && e <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("%.2f-%.2f", r.Min, r.Max)
}

// ParseRange parses "min-max", e.g. "7.5-8.0". Both ends must lie in [0, 8] with min <= max.
func ParseRange(s string) (Range, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Range{}, fmt.Errorf("%w: expected MIN-MAX, got %q", ErrInvalidThreshold, s)
	}

	lower, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return Range{}, fmt.Errorf("%w: bad minimum %q", ErrInvalidThreshold, lo)
	}
	upper, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return Range{}, fmt.Errorf("%w: bad maximum %q", ErrInvalidThreshold, hi)
	}

	if lower < 0 || upper > 8 || lower > upper {
		return Range{}, fmt.Errorf("%w: range %q must satisfy 0 <= min <= max <= 8", ErrInvalidThreshold, s)
	}
	return Range{Min: lower, Max: upper}, nil
}

// ParseKinds parses category names. Entries may themselves be comma separated.
// Unknown names produce an error suggesting the closest known category.
func ParseKinds(names []string) ([]classify.Kind, error) {
	var kinds []classify.Kind
	seen := make(map[classify.Kind]bool)

	for _, entry := range names {
		for _, name := range strings.Split(entry, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			k, err := classify.ParseKind(name)
			if err != nil {
				if s := Suggest(name); s != "" {
					return nil, fmt.Errorf("%w: unknown category %q (did you mean %q?)", ErrInvalidConfig, name, s)
				}
				return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidConfig, name)
			}
			if !seen[k] {
				seen[k] = true
				kinds = append(kinds, k)
			}
		}
	}
	return kinds, nil
}

// maximum edit distance for a suggestion
const maxSuggestDistance = 3

// Suggest returns the category name closest to name, or "" when nothing is close.
func Suggest(name string) string {
	target := []rune(strings.ToLower(name))

	best, bestDist := "", maxSuggestDistance+1
	for _, k := range classify.Kinds() {
		candidate := k.String()
		d := levenshtein.DistanceForStrings(target, []rune(strings.ToLower(candidate)), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
