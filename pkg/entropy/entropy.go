/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: entropy.go
Description: Shannon entropy over byte-value distributions. Provides a one-shot
calculator for captured buffers and an incremental histogram for callers that
stream a file in chunks.
*/

package entropy

import "math"

// MaxBits is the largest possible entropy of byte-valued data.
const MaxBits = 8.0

/*
Shannon returns the entropy of data in bits per byte:

	H = - sum(v in 0..255, c(v) > 0) { p(v) * log2(p(v)) },  p(v) = c(v) / |data|

The result lies in [0, 8]. An empty buffer has entropy 0.
Only the histogram matters, so any permutation of data yields the same value.
*/
func Shannon(data []byte) float64 {
	var h Histogram
	h.Add(data)
	return h.Entropy()
}

// Histogram counts byte values. The zero value is ready to use.
type Histogram struct {
	counts [256]uint64
	total  uint64
}

// Add folds a chunk into the histogram.
func (h *Histogram) Add(chunk []byte) {
	for _, b := range chunk {
		h.counts[b]++
	}
	h.total += uint64(len(chunk))
}

// Total returns the number of bytes seen.
func (h *Histogram) Total() uint64 {
	return h.total
}

// Count returns how many times v was seen.
func (h *Histogram) Count(v byte) uint64 {
	return h.counts[v]
}

// Distinct returns the number of byte values seen at least once.
func (h *Histogram) Distinct() int {
	n := 0
	for _, c := range h.counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// Merge adds the counts of other into h.
func (h *Histogram) Merge(other *Histogram) {
	for i, c := range other.counts {
		h.counts[i] += c
	}
	h.total += other.total
}

// Reset clears all counts.
func (h *Histogram) Reset() {
	*h = Histogram{}
}

// Entropy computes the Shannon entropy of the counts seen so far.
func (h *Histogram) Entropy() float64 {
	return FromCounts(&h.counts, h.total)
}

// FromCounts computes entropy from a precomputed histogram of total bytes.
func FromCounts(counts *[256]uint64, total uint64) float64 {
	if total == 0 {
		return 0
	}

	n := float64(total)
	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}

	// rounding can push a uniform distribution a hair past the bound
	if entropy > MaxBits {
		return MaxBits
	}
	if entropy < 0 {
		return 0
	}
	return entropy
}
