/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: signature.go
Description: Magic-number signature matching for enro. Defines the Signature record,
the masked offset comparison used to test a buffer against it, and the lookup that
walks the declarative table in priority order.
*/

package signature

import "strings"

// Signature describes a fixed byte pattern found at a fixed offset.
// Mask is optional: when nil every byte of Magic is significant, otherwise a 0x00 mask
// byte turns the corresponding Magic byte into a wildcard.
type Signature struct {
	Label       string // Format tag, e.g. "ZIP"
	Description string // Human readable description for listings
	Offset      int    // Offset from the start of the buffer
	Magic       []byte // Bytes to compare
	Mask        []byte // Per-byte mask (nil = exact match)
}

// Match is a single signature hit.
type Match struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Len returns the number of bytes the buffer must hold past Offset.
func (s Signature) Len() int {
	return len(s.Magic)
}

// Significant returns the number of non-wildcard bytes in the pattern.
func (s Signature) Significant() int {
	if s.Mask == nil {
		return len(s.Magic)
	}
	n := 0
	for i := range s.Magic {
		if s.maskAt(i) != 0 {
			n++
		}
	}
	return n
}

// Confidence grows with the number of significant bits compared; four bytes or
// more is treated as certain.
func (s Signature) Confidence() float64 {
	c := float64(s.Significant()*8) / 32.0
	if c > 1.0 {
		return 1.0
	}
	return c
}

// Matches reports whether data carries this signature. A buffer too short to hold
// the pattern never matches.
func (s Signature) Matches(data []byte) bool {
	if s.Offset < 0 || len(data) < s.Offset+len(s.Magic) {
		return false
	}
	window := data[s.Offset : s.Offset+len(s.Magic)]
	for i, b := range s.Magic {
		m := s.maskAt(i)
		if window[i]&m != b&m {
			return false
		}
	}
	return true
}

func (s Signature) maskAt(i int) byte {
	if s.Mask == nil || i >= len(s.Mask) {
		return 0xFF
	}
	return s.Mask[i]
}

// MatchAll returns every signature in sigs that data carries, preserving order.
// Several patterns may share a label; a label is reported only once.
func MatchAll(sigs []Signature, data []byte) []Match {
	var matches []Match
	seen := make(map[string]bool)
	for _, sig := range sigs {
		if seen[sig.Label] || !sig.Matches(data) {
			continue
		}
		seen[sig.Label] = true
		matches = append(matches, Match{Label: sig.Label, Confidence: sig.Confidence()})
	}
	return matches
}

// MatchTable checks data against the built-in table.
func MatchTable(data []byte) []Match {
	return MatchAll(table, data)
}

// First returns the highest priority match from the built-in table.
func First(data []byte) (Match, bool) {
	for _, sig := range table {
		if sig.Matches(data) {
			return Match{Label: sig.Label, Confidence: sig.Confidence()}, true
		}
	}
	return Match{}, false
}

// All returns a copy of the built-in table in priority order.
func All() []Signature {
	out := make([]Signature, len(table))
	copy(out, table)
	return out
}

// Lookup returns the signatures declared for label (case-insensitive).
func Lookup(label string) []Signature {
	var out []Signature
	for _, sig := range table {
		if strings.EqualFold(sig.Label, label) {
			out = append(out, sig)
		}
	}
	return out
}

// Labels returns the distinct labels of the built-in table in priority order.
func Labels() []string {
	var labels []string
	seen := make(map[string]bool)
	for _, sig := range table {
		if !seen[sig.Label] {
			seen[sig.Label] = true
			labels = append(labels, sig.Label)
		}
	}
	return labels
}

// MaxExtent returns how many leading bytes are needed to evaluate every signature.
func MaxExtent() int {
	max := 0
	for _, sig := range table {
		if end := sig.Offset + sig.Len(); end > max {
			max = end
		}
	}
	return max
}
