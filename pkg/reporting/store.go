/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: store.go
Description: Report store. Saves rendered reports either to a local directory or to any
bucket URL gocloud understands (s3://, gs://, file://, mem://).
*/

package reporting

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/enro/pkg/scanner"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

// ReportStore writes reports to a directory or bucket.
type ReportStore struct {
	dest   string
	logger logrus.FieldLogger
	bucket *blob.Bucket
}

// NewReportStore creates a store for dest, which is either a local directory or a bucket URL.
func NewReportStore(dest string, logger logrus.FieldLogger) *ReportStore {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		logger = l
	}
	return &ReportStore{dest: dest, logger: logger}
}

// WithBucket makes the store write into an already opened bucket.
func (rs *ReportStore) WithBucket(bkt *blob.Bucket) *ReportStore {
	rs.bucket = bkt
	return rs
}

func (rs *ReportStore) String() string {
	return rs.dest
}

func (rs *ReportStore) open(ctx context.Context) (*blob.Bucket, bool, error) {
	if rs.bucket != nil {
		return rs.bucket, false, nil
	}
	if scanner.IsBucketURL(rs.dest) {
		bkt, err := blob.OpenBucket(ctx, rs.dest)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open output bucket %s: %w", rs.dest, err)
		}
		return bkt, true, nil
	}
	if err := os.MkdirAll(rs.dest, 0755); err != nil {
		return nil, false, fmt.Errorf("failed to create output directory: %w", err)
	}
	bkt, err := fileblob.OpenBucket(rs.dest, &fileblob.Options{NoTempDir: true})
	if err != nil {
		return nil, false, fmt.Errorf("failed to open output directory %s: %w", rs.dest, err)
	}
	return bkt, true, nil
}

// Save renders r in format and stores it under its generated file name. It returns the
// location the report was written to.
func (rs *ReportStore) Save(ctx context.Context, r *Report, format string, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, format, r, opts); err != nil {
		return "", err
	}
	return rs.SaveBytes(ctx, FileName(r, format), buf.Bytes())
}

// SaveBytes stores data under name.
func (rs *ReportStore) SaveBytes(ctx context.Context, name string, data []byte) (string, error) {
	bkt, owned, err := rs.open(ctx)
	if err != nil {
		return "", err
	}
	if owned {
		defer bkt.Close()
	}

	opts := &blob.WriterOptions{ContentType: mime.TypeByExtension(filepath.Ext(name))}
	if opts.ContentType == "" {
		opts.ContentType = "text/plain; charset=utf-8"
	}
	if err := bkt.WriteAll(ctx, name, data, opts); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", name, err)
	}

	location := rs.location(name)
	rs.logger.WithFields(logrus.Fields{
		"path":  location,
		"bytes": len(data),
	}).Info("Report saved")
	return location, nil
}

func (rs *ReportStore) location(name string) string {
	if rs.dest == "" {
		return name
	}
	if scanner.IsBucketURL(rs.dest) {
		base, _, _ := strings.Cut(rs.dest, "?")
		return strings.TrimSuffix(base, "/") + "/" + name
	}
	return filepath.Join(rs.dest, name)
}
