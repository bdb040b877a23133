/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: bucket.go
Description: Blob bucket source backed by gocloud.dev. Any registered driver URL works:
file://, mem://, s3:// and gs://. Reads use range readers so only the captured prefix
of each object is transferred.
*/

package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// BucketSource reads objects from a blob bucket.
type BucketSource struct {
	name      string
	bucket    *blob.Bucket
	recursive bool
	owned     bool
}

// OpenBucketSource opens the bucket at url. A "prefix" query parameter limits the listing.
func OpenBucketSource(ctx context.Context, url string, recursive bool) (*BucketSource, error) {
	bkt, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", url, err)
	}
	s := NewBucketSource(bkt, displayBase(url), recursive)
	s.owned = true
	return s, nil
}

// NewBucketSource wraps an open bucket. The caller keeps ownership of bkt.
func NewBucketSource(bkt *blob.Bucket, name string, recursive bool) *BucketSource {
	return &BucketSource{name: name, bucket: bkt, recursive: recursive}
}

// displayBase strips the query from a bucket URL for use in display paths.
func displayBase(url string) string {
	base, _, _ := strings.Cut(url, "?")
	return strings.TrimSuffix(base, "/")
}

// Name returns the bucket URL without its query.
func (s *BucketSource) Name() string {
	return s.name
}

// Walk lists the bucket. Without recursion only top-level objects are yielded.
func (s *BucketSource) Walk(ctx context.Context, fn WalkFunc) error {
	opts := &blob.ListOptions{}
	if !s.recursive {
		opts.Delimiter = "/"
	}

	iter := s.bucket.List(opts)
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", s.name, err)
		}
		if obj.IsDir {
			continue
		}
		if err := fn(Entry{Path: s.name + "/" + obj.Key, Rel: obj.Key, Size: obj.Size}); err != nil {
			return err
		}
	}
}

// Open returns a range reader over at most limit bytes of the object.
func (s *BucketSource) Open(ctx context.Context, e Entry, limit int64) (io.ReadCloser, error) {
	length := int64(-1)
	if limit > 0 {
		length = limit
	}
	r, err := s.bucket.NewRangeReader(ctx, e.Rel, 0, length, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, e.Path)
		}
		return nil, err
	}
	return r, nil
}

// Close closes the bucket when the source opened it.
func (s *BucketSource) Close() error {
	if !s.owned {
		return nil
	}
	return s.bucket.Close()
}
