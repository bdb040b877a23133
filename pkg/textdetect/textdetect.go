/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: textdetect.go
Description: Text heuristic for enro. Estimates whether a buffer is human-readable
by the share of printable bytes, with a UTF-8 pass for non-ASCII prose and an
optional 8-bit extended range for legacy single-byte encodings.
*/

package textdetect

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

// Defaults used by IsText.
const (
	DefaultRatio     = 0.95
	DefaultRuneRatio = 0.90
)

// Detector holds the tuning knobs of the heuristic.
type Detector struct {
	// Ratio is the minimum share of printable ASCII/whitespace bytes (inclusive).
	Ratio float64
	// RuneRatio is the minimum share of printable runes for valid UTF-8 input (exclusive).
	// Zero disables the UTF-8 pass.
	RuneRatio float64
	// SampleSize limits how many leading bytes are inspected. Zero inspects everything.
	SampleSize int
	// RejectNUL makes any NUL byte in the sample mark the buffer as binary.
	RejectNUL bool
	// Extended8Bit counts 0xA0-0xFF as printable (Latin-1, Windows-1251 and friends).
	Extended8Bit bool
}

// Default returns the detector used by IsText.
func Default() Detector {
	return Detector{
		Ratio:     DefaultRatio,
		RuneRatio: DefaultRuneRatio,
		RejectNUL: true,
	}
}

// IsText reports whether data looks like text using the default detector.
func IsText(data []byte) bool {
	return Default().IsText(data)
}

// IsText reports whether data looks like text. An empty buffer is text.
func (d Detector) IsText(data []byte) bool {
	sample := d.sample(data)
	if len(sample) == 0 {
		return true
	}

	if d.RejectNUL && bytes.IndexByte(sample, 0x00) >= 0 {
		return false
	}

	if d.Ratio <= 0 || PrintableRatio(sample, d.Extended8Bit) >= d.Ratio {
		return true
	}

	if d.RuneRatio > 0 && utf8.Valid(sample) {
		return runeRatio(sample) > d.RuneRatio
	}

	return false
}

// sample trims data to SampleSize without splitting a trailing UTF-8 sequence.
func (d Detector) sample(data []byte) []byte {
	if d.SampleSize <= 0 || len(data) <= d.SampleSize {
		return data
	}
	s := data[:d.SampleSize]
	for i := 1; i < utf8.UTFMax && i <= len(s); i++ {
		if utf8.RuneStart(s[len(s)-i]) {
			if !utf8.FullRune(s[len(s)-i:]) {
				s = s[:len(s)-i]
			}
			break
		}
	}
	return s
}

// PrintableRatio returns the share of bytes that are printable ASCII, tab, LF or CR.
// With extended set, 0xA0-0xFF also count.
func PrintableRatio(data []byte, extended bool) float64 {
	if len(data) == 0 {
		return 1
	}
	n := 0
	for _, b := range data {
		if IsPrintable(b) || (extended && b >= 0xA0) {
			n++
		}
	}
	return float64(n) / float64(len(data))
}

// IsPrintable reports whether b is printable ASCII or common whitespace.
func IsPrintable(b byte) bool {
	return (b >= 0x20 && b <= 0x7E) || b == '\t' || b == '\n' || b == '\r'
}

func runeRatio(data []byte) float64 {
	total, printable := 0, 0
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		total++
		if unicode.IsSpace(r) || !unicode.IsControl(r) {
			printable++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(printable) / float64(total)
}
