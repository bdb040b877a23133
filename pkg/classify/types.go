/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Classification types for enro. Kind is the closed set of top-level
categories; Classification pairs a Kind with the format label shown per file.
*/

package classify

import (
	"fmt"
	"strings"
)

// Kind is the top-level category of a classified file.
type Kind int

const (
	KindBinary Kind = iota
	KindArchive
	KindDocument
	KindImage
	KindCompressed
	KindEncrypted
	KindRandom
	KindPlainText
)

var kindNames = map[Kind]string{
	KindBinary:     "Binary",
	KindArchive:    "Archive",
	KindDocument:   "Document",
	KindImage:      "Image",
	KindCompressed: "Compressed",
	KindEncrypted:  "Encrypted",
	KindRandom:     "Random",
	KindPlainText:  "PlainText",
}

// display names used in tables and summaries
var kindTitles = map[Kind]string{
	KindBinary:     "Binary",
	KindArchive:    "Archive",
	KindDocument:   "Document",
	KindImage:      "Image",
	KindCompressed: "Compressed",
	KindEncrypted:  "Encrypted",
	KindRandom:     "Random Data",
	KindPlainText:  "Plain Text",
}

// Kinds lists every category in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindArchive, KindDocument, KindImage, KindCompressed,
		KindEncrypted, KindRandom, KindPlainText, KindBinary,
	}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Title returns the human readable name of the category.
func (k Kind) Title() string {
	if title, ok := kindTitles[k]; ok {
		return title
	}
	return k.String()
}

// Labeled reports whether classifications of this kind carry a format label.
func (k Kind) Labeled() bool {
	return k == KindArchive || k == KindDocument || k == KindImage
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a category name. Matching ignores case, spaces, dashes and underscores,
// so "plain-text", "Plain Text" and "plaintext" are all KindPlainText.
func ParseKind(name string) (Kind, error) {
	want := normalizeKindName(name)
	for k, n := range kindNames {
		if normalizeKindName(n) == want || normalizeKindName(kindTitles[k]) == want {
			return k, nil
		}
	}
	return KindBinary, fmt.Errorf("unknown category %q", name)
}

func normalizeKindName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

// Classification is the verdict for a single buffer.
type Classification struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Archive returns an archive classification for the given format.
func Archive(label string) Classification {
	return Classification{Kind: KindArchive, Label: label}
}

// Document returns a document classification for the given format.
func Document(label string) Classification {
	return Classification{Kind: KindDocument, Label: label}
}

// Image returns an image classification for the given format.
func Image(label string) Classification {
	return Classification{Kind: KindImage, Label: label}
}

// Of returns an unlabeled classification.
func Of(kind Kind) Classification {
	return Classification{Kind: kind}
}

// String renders the classification for display, e.g. "Archive (ZIP)" or "Random Data".
func (c Classification) String() string {
	if c.Kind.Labeled() && c.Label != "" {
		return fmt.Sprintf("%s (%s)", c.Kind.Title(), c.Label)
	}
	return c.Kind.Title()
}

// Tag renders the compact machine form, e.g. "Archive(ZIP)" or "Random".
func (c Classification) Tag() string {
	if c.Kind.Labeled() && c.Label != "" {
		return fmt.Sprintf("%s(%s)", c.Kind, c.Label)
	}
	return c.Kind.String()
}
