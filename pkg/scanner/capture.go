/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: capture.go
Description: Bounded capture of file contents. Reads up to a byte limit, or streams the
whole file through an entropy histogram while keeping a fixed-size head for format
and text detection.
*/

package scanner

import (
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/kleascm/enro/pkg/entropy"
)

// HeadSize is the prefix kept for signatures and the text heuristic when streaming.
const HeadSize = 1024 * 1024

const chunkSize = 64 * 1024

// Capture is the data read from one file.
type Capture struct {
	Head      []byte
	Histogram entropy.Histogram
}

// Bytes returns the number of bytes read.
func (c *Capture) Bytes() int64 {
	return int64(c.Histogram.Total())
}

// Entropy returns the entropy of everything read.
func (c *Capture) Entropy() float64 {
	return c.Histogram.Entropy()
}

// Digest returns the xxhash64 of the head as 16 hex digits.
func (c *Capture) Digest() string {
	return fmt.Sprintf("%016x", xxhash.Sum64(c.Head))
}

// Read captures r. With maxBytes > 0 at most maxBytes are read and all of them form the
// head. With maxBytes == 0 the reader is consumed to EOF in chunks.
func Read(r io.Reader, maxBytes int64) (*Capture, error) {
	c := &Capture{}

	if maxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, maxBytes))
		if err != nil {
			return nil, err
		}
		c.Head = data
		c.Histogram.Add(data)
		return c, nil
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			c.Histogram.Add(chunk)
			if room := HeadSize - len(c.Head); room > 0 {
				if room > n {
					room = n
				}
				c.Head = append(c.Head, chunk[:room]...)
			}
		}
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
