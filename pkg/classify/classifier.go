/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classifier.go
Description: Classification engine for enro. Combines signature matching, a content
sniffer, Shannon entropy and the text heuristic into exactly one verdict per buffer.
Format identity always wins over the entropy signal.
*/

package classify

import (
	"fmt"

	"github.com/kleascm/enro/pkg/entropy"
	"github.com/kleascm/enro/pkg/signature"
	"github.com/kleascm/enro/pkg/textdetect"
)

// Default policy constants.
const (
	DefaultEncryptedThreshold = 7.9
	DefaultRandomThreshold    = 7.5
)

// Thresholds are the tuning knobs of the decision policy.
type Thresholds struct {
	Encrypted float64 `json:"encrypted" mapstructure:"encrypted"`   // entropy above this is Encrypted
	Random    float64 `json:"random" mapstructure:"random"`         // entropy above this (and not Encrypted) is Random
	TextRatio float64 `json:"text_ratio" mapstructure:"text_ratio"` // printable share needed for PlainText
}

// DefaultThresholds returns the standard policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Encrypted: DefaultEncryptedThreshold,
		Random:    DefaultRandomThreshold,
		TextRatio: textdetect.DefaultRatio,
	}
}

// Validate checks that the thresholds are ordered and within range.
func (t Thresholds) Validate() error {
	if t.Random < 0 || t.Encrypted > entropy.MaxBits {
		return fmt.Errorf("entropy thresholds must lie in [0, %.1f]", entropy.MaxBits)
	}
	if t.Random > t.Encrypted {
		return fmt.Errorf("random threshold %.2f exceeds encrypted threshold %.2f", t.Random, t.Encrypted)
	}
	if t.TextRatio <= 0 || t.TextRatio > 1 {
		return fmt.Errorf("text ratio must lie in (0, 1], got %.2f", t.TextRatio)
	}
	return nil
}

// labels the signature table reports that are not archives
var labelKinds = map[string]Kind{
	signature.LabelPDF: KindDocument,
}

// KindForLabel maps a signature label to its category.
func KindForLabel(label string) Kind {
	if kind, ok := labelKinds[label]; ok {
		return kind
	}
	return KindArchive
}

// Classifier turns a byte buffer into a Classification.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	thresholds    Thresholds
	signatures    []signature.Signature
	minConfidence float64
	text          textdetect.Detector
	sniffer       Sniffer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThresholds replaces the entropy and text thresholds.
func WithThresholds(t Thresholds) Option {
	return func(c *Classifier) {
		c.thresholds = t
		c.text.Ratio = t.TextRatio
	}
}

// WithSignatures replaces the signature table.
func WithSignatures(sigs []signature.Signature) Option {
	return func(c *Classifier) {
		c.signatures = sigs
	}
}

// WithMinConfidence ignores signature hits below the given confidence.
func WithMinConfidence(min float64) Option {
	return func(c *Classifier) {
		c.minConfidence = min
	}
}

// WithTextDetector replaces the text heuristic. The detector's Ratio is kept in sync
// with Thresholds.TextRatio.
func WithTextDetector(d Detector) Option {
	return func(c *Classifier) {
		c.text = d
		c.thresholds.TextRatio = d.Ratio
	}
}

// WithSniffer sets the fallback content sniffer. Nil disables sniffing.
func WithSniffer(s Sniffer) Option {
	return func(c *Classifier) {
		c.sniffer = s
	}
}

// Detector is the text heuristic used by the classifier.
type Detector = textdetect.Detector

// New creates a classifier with the default table, thresholds and sniffer.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		thresholds: DefaultThresholds(),
		signatures: signature.All(),
		text:       textdetect.Default(),
		sniffer:    FiletypeSniffer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Thresholds returns the active thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify returns the verdict for data.
func (c *Classifier) Classify(data []byte) Classification {
	cls, _ := c.Analyze(data)
	return cls
}

// Analyze classifies data and returns the entropy it computed along the way.
// The entropy is returned even when a signature decided the verdict.
func (c *Classifier) Analyze(data []byte) (Classification, float64) {
	e := entropy.Shannon(data)
	return c.Decide(data, e), e
}

/*
Decide applies the decision policy to head, given the entropy of the captured data.
head is what signatures and the text heuristic see; e may come from a larger stream.

 1. signature table hit -> Archive(label) / Document(label)
 2. sniffer hit -> Image / Document / Archive / Compressed
 3. e > Encrypted -> Encrypted; e > Random -> Random
 4. text heuristic -> PlainText, otherwise Binary
*/
func (c *Classifier) Decide(head []byte, e float64) Classification {
	if cls, ok := c.Identify(head); ok {
		return cls
	}

	switch {
	case e > c.thresholds.Encrypted:
		return Of(KindEncrypted)
	case e > c.thresholds.Random:
		return Of(KindRandom)
	}

	if c.text.IsText(head) {
		return Of(KindPlainText)
	}
	return Of(KindBinary)
}

// Identify runs only the format stages: the signature table, then the sniffer.
func (c *Classifier) Identify(head []byte) (Classification, bool) {
	for _, m := range signature.MatchAll(c.signatures, head) {
		if m.Confidence < c.minConfidence {
			continue
		}
		return Classification{Kind: KindForLabel(m.Label), Label: m.Label}, true
	}

	if c.sniffer != nil {
		return c.sniffer.Sniff(head)
	}
	return Classification{}, false
}

var std = New()

// Classify classifies data with the default classifier.
func Classify(data []byte) Classification {
	return std.Classify(data)
}

// Analyze classifies data with the default classifier and returns its entropy.
func Analyze(data []byte) (Classification, float64) {
	return std.Analyze(data)
}
