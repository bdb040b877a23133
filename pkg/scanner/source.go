/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: source.go
Description: File sources for the scanner. A Source enumerates candidate files and
opens them for reading; local paths and gocloud blob buckets are supported.
*/

package scanner

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrPathNotFound is returned when a scan target does not exist.
var ErrPathNotFound = errors.New("path not found")

// Entry is a candidate file produced by a Source.
type Entry struct {
	Path string // display path
	Rel  string // slash separated path relative to the scan root, used for filtering
	Size int64
}

// WalkFunc is called for every file a Source yields. Returning an error stops the walk.
type WalkFunc func(Entry) error

// Source enumerates and opens files.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Walk calls fn for every regular file under the source.
	Walk(ctx context.Context, fn WalkFunc) error
	// Open returns a reader over the file. limit > 0 caps the bytes the reader returns.
	Open(ctx context.Context, e Entry, limit int64) (io.ReadCloser, error)
	Close() error
}

// IsBucketURL reports whether target names a blob bucket rather than a local path.
func IsBucketURL(target string) bool {
	scheme, _, ok := strings.Cut(target, "://")
	return ok && scheme != "" && !strings.ContainsAny(scheme, `/\`)
}

// OpenSource opens target as a bucket when it is a URL and as a local path otherwise.
func OpenSource(ctx context.Context, target string, recursive, followLinks bool) (Source, error) {
	if IsBucketURL(target) {
		return OpenBucketSource(ctx, target, recursive)
	}
	return NewLocalSource(target, recursive, followLinks)
}

type limitedReadCloser struct {
	io.Reader
	io.Closer
}

func limitReadCloser(rc io.ReadCloser, limit int64) io.ReadCloser {
	if limit <= 0 {
		return rc
	}
	return limitedReadCloser{Reader: io.LimitReader(rc, limit), Closer: rc}
}
