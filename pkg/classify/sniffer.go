/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sniffer.go
Description: Content sniffer fallback for formats the signature table does not
cover (images, office documents, less common archives). Backed by h2non/filetype.
*/

package classify

import (
	"strings"

	"github.com/h2non/filetype"
	"github.com/kleascm/enro/pkg/textdetect"
)

// Sniffer identifies a format from the leading bytes of a buffer.
type Sniffer interface {
	Sniff(head []byte) (Classification, bool)
}

// SnifferFunc adapts a function to the Sniffer interface.
type SnifferFunc func(head []byte) (Classification, bool)

// Sniff calls f.
func (f SnifferFunc) Sniff(head []byte) (Classification, bool) {
	return f(head)
}

var documentPrefixes = []string{
	"application/vnd.openxmlformats",
	"application/vnd.ms-",
	"application/msword",
	"application/vnd.oasis.opendocument",
}

// FiletypeSniffer maps h2non/filetype matches onto classifications.
// Executables and media containers fall through to the entropy stage.
// Heads that pass the text heuristic are never sniffed: several filetype matchers
// use two or three byte magics ("BM", "GIF") that ordinary prose can start with.
type FiletypeSniffer struct{}

// Sniff implements Sniffer.
func (FiletypeSniffer) Sniff(head []byte) (Classification, bool) {
	if len(head) == 0 || textdetect.IsText(head) {
		return Classification{}, false
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return Classification{}, false
	}

	mime := kind.MIME.Value
	ext := strings.ToUpper(kind.Extension)

	switch {
	case kind.MIME.Type == "image":
		return Image(ext), true
	case mime == "application/pdf":
		return Document("PDF"), true
	case hasAnyPrefix(mime, documentPrefixes):
		return Document(ext), true
	case isArchiveMIME(mime):
		return Archive(ext), true
	case strings.Contains(mime, "compress") || strings.Contains(mime, "zip"):
		return Of(KindCompressed), true
	}
	return Classification{}, false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isArchiveMIME(mime string) bool {
	switch mime {
	case "application/zip", "application/x-tar", "application/vnd.rar", "application/x-rar-compressed",
		"application/gzip", "application/x-bzip2", "application/x-7z-compressed", "application/x-xz",
		"application/zstd", "application/x-unix-archive", "application/vnd.debian.binary-package",
		"application/x-rpm", "application/x-compress", "application/x-lzip", "application/vnd.ms-cab-compressed",
		"application/x-iso9660-image", "application/epub+zip", "application/x-google-chrome-extension":
		return true
	}
	return false
}
