/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scanner_test.go
Description: Tests for sources, capture, filtering and the worker pool.
*/

package scanner_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kleascm/enro/pkg/classify"
	"github.com/kleascm/enro/pkg/config"
	"github.com/kleascm/enro/pkg/entropy"
	"github.com/kleascm/enro/pkg/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

// uniform returns n bytes holding every byte value equally often (entropy 8).
func uniform(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i*7 + 0x99)
	}
	return buf
}

var fixtures = map[string][]byte{
	"archive.zip":       append([]byte("PK\x03\x04"), uniform(4096)...),
	"notes.txt":         []byte(strings.Repeat("plain old text, nothing to see here.\n", 50)),
	"secret.bin":        uniform(64 * 1024),
	"tiny.dat":          {0x01, 0x02},
	"sub/nested.txt":    []byte(strings.Repeat("nested text file\n", 20)),
	"sub/deep/pack.gz":  append([]byte{0x1F, 0x8B, 0x08, 0x00}, uniform(1024)...),
	"sub/debug.log":     []byte(strings.Repeat("log line\n", 20)),
	"sub/deep/blob.bin": bytes.Repeat([]byte{0x00, 0x99, 0x10}, 300),
}

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, data := range fixtures {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, data, 0644))
	}
	return root
}

func scanConfig(paths ...string) *config.ScanConfig {
	cfg := config.Default()
	cfg.Paths = paths
	cfg.Workers = 3
	return cfg
}

func byBase(res *scanner.Result) map[string]classify.Classification {
	out := make(map[string]classify.Classification)
	for _, rec := range res.Records {
		out[filepath.Base(rec.Path)] = rec.Classification
	}
	return out
}

func TestLocalRecursiveScan(t *testing.T) {
	root := writeTree(t)
	cfg := scanConfig(root)
	cfg.Recursive = true
	cfg.MinSize = 10
	cfg.Exclude = []string{"*.log"}
	require.NoError(t, cfg.Validate())

	rec := &scanner.RecordingReporter{}
	s, err := scanner.New(cfg, scanner.WithReporter(rec))
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	got := byBase(res)
	assert.Equal(t, map[string]classify.Classification{
		"archive.zip": classify.Archive("ZIP"),
		"notes.txt":   classify.Of(classify.KindPlainText),
		"secret.bin":  classify.Of(classify.KindEncrypted),
		"nested.txt":  classify.Of(classify.KindPlainText),
		"pack.gz":     classify.Archive("GZIP"),
		"blob.bin":    classify.Of(classify.KindBinary),
	}, got)

	assert.Equal(t, 6, res.Summary.Files)
	assert.Equal(t, 2, res.Summary.Count(classify.KindArchive))
	assert.Equal(t, int64(6), res.Stats.Files)
	assert.Equal(t, int64(2), res.Stats.Skipped, "tiny.dat and debug.log")
	assert.Equal(t, int64(0), res.Stats.Errors)
	assert.Len(t, rec.Records, 6)
	assert.Len(t, rec.Skipped, 2)
	assert.NotEmpty(t, res.RunID)

	for i := 1; i < len(res.Records); i++ {
		assert.Less(t, res.Records[i-1].Path, res.Records[i].Path, "records are sorted by path")
	}
	for _, r := range res.Records {
		assert.Len(t, r.Digest, 16)
	}
}

func TestLocalNonRecursiveScan(t *testing.T) {
	root := writeTree(t)
	cfg := scanConfig(root)
	require.NoError(t, cfg.Validate())

	s, err := scanner.New(cfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	got := byBase(res)
	assert.Len(t, got, 4)
	assert.Contains(t, got, "tiny.dat")
	assert.NotContains(t, got, "nested.txt")
}

func TestSingleFileTarget(t *testing.T) {
	root := writeTree(t)
	cfg := scanConfig(filepath.Join(root, "archive.zip"))
	require.NoError(t, cfg.Validate())

	s, err := scanner.New(cfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, classify.Archive("ZIP"), res.Records[0].Classification)
}

func TestSummaryOnlyDropsRecords(t *testing.T) {
	root := writeTree(t)
	cfg := scanConfig(root)
	cfg.Recursive = true
	cfg.SummaryOnly = true
	require.NoError(t, cfg.Validate())

	s, err := scanner.New(cfg, scanner.WithRunID("fixed"))
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Records)
	assert.Equal(t, len(fixtures), res.Summary.Files)
	assert.Equal(t, "fixed", res.RunID)
}

func TestSimpleOutputKeepsRecordsWithSummaryOnly(t *testing.T) {
	root := writeTree(t)
	cfg := scanConfig(root)
	cfg.Recursive = true
	cfg.Simple = true
	cfg.SummaryOnly = true
	require.NoError(t, cfg.Validate())
	require.Equal(t, config.FormatSimple, cfg.Format)

	s, err := scanner.New(cfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Records, len(fixtures))
	assert.Equal(t, len(fixtures), res.Summary.Files)
}

func TestWorkerCountDoesNotChangeResults(t *testing.T) {
	root := writeTree(t)

	run := func(workers int) *scanner.Result {
		cfg := scanConfig(root)
		cfg.Recursive = true
		cfg.Workers = workers
		require.NoError(t, cfg.Validate())
		s, err := scanner.New(cfg)
		require.NoError(t, err)
		res, err := s.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	one, many := run(1), run(8)
	assert.Equal(t, one.Records, many.Records)
	assert.Equal(t, one.Summary.Counts, many.Summary.Counts)
	assert.InDelta(t, one.Summary.AverageEntropy(), many.Summary.AverageEntropy(), 1e-9)
}

func TestMissingPath(t *testing.T) {
	cfg := scanConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, cfg.Validate())

	s, err := scanner.New(cfg)
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, scanner.ErrPathNotFound)
}

func TestCancelledScan(t *testing.T) {
	root := writeTree(t)
	cfg := scanConfig(root)
	cfg.Recursive = true
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := scanner.New(cfg)
	require.NoError(t, err)
	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemBucketSource(t *testing.T) {
	ctx := context.Background()
	bkt := memblob.OpenBucket(nil)
	defer bkt.Close()

	for name, data := range fixtures {
		require.NoError(t, bkt.WriteAll(ctx, name, data, nil))
	}

	cfg := scanConfig("mem://")
	cfg.Recursive = true
	cfg.MaxBytes = 2048
	require.NoError(t, cfg.Validate())

	s, err := scanner.New(cfg, scanner.WithSources(scanner.NewBucketSource(bkt, "mem://test", true)))
	require.NoError(t, err)
	res, err := s.Run(ctx)
	require.NoError(t, err)

	require.Len(t, res.Records, len(fixtures))
	got := byBase(res)
	assert.Equal(t, classify.Archive("ZIP"), got["archive.zip"])
	assert.Equal(t, classify.Archive("GZIP"), got["pack.gz"])
	assert.Equal(t, classify.Of(classify.KindEncrypted), got["secret.bin"])
	assert.True(t, strings.HasPrefix(res.Records[0].Path, "mem://test/"))

	// only max_bytes of each object is read
	assert.LessOrEqual(t, res.Stats.Bytes, int64(len(fixtures))*2048)
	assert.Equal(t, int64(64*1024), sizeOf(res, "secret.bin"), "size reports the full object")
}

func TestMemBucketNonRecursive(t *testing.T) {
	ctx := context.Background()
	bkt := memblob.OpenBucket(nil)
	defer bkt.Close()
	for name, data := range fixtures {
		require.NoError(t, bkt.WriteAll(ctx, name, data, nil))
	}

	var names []string
	src := scanner.NewBucketSource(bkt, "mem://b", false)
	require.NoError(t, src.Walk(ctx, func(e scanner.Entry) error {
		names = append(names, e.Rel)
		return nil
	}))
	assert.ElementsMatch(t, []string{"archive.zip", "notes.txt", "secret.bin", "tiny.dat"}, names)
}

func TestFileBucketURL(t *testing.T) {
	root := writeTree(t)
	cfg := scanConfig("file://" + filepath.ToSlash(root))
	cfg.Recursive = true
	require.NoError(t, cfg.Validate())

	s, err := scanner.New(cfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, classify.Archive("ZIP"), byBase(res)["archive.zip"])
}

func sizeOf(res *scanner.Result, base string) int64 {
	for _, r := range res.Records {
		if filepath.Base(r.Path) == base {
			return r.Size
		}
	}
	return -1
}

func TestCapture(t *testing.T) {
	data := append(uniform(3*1024*1024), []byte("tail")...)

	bounded, err := scanner.Read(bytes.NewReader(data), 1000)
	require.NoError(t, err)
	assert.Len(t, bounded.Head, 1000)
	assert.Equal(t, int64(1000), bounded.Bytes())
	assert.InDelta(t, entropy.Shannon(data[:1000]), bounded.Entropy(), 1e-12)

	streamed, err := scanner.Read(bytes.NewReader(data), 0)
	require.NoError(t, err)
	assert.Len(t, streamed.Head, scanner.HeadSize)
	assert.Equal(t, int64(len(data)), streamed.Bytes())
	assert.InDelta(t, entropy.Shannon(data), streamed.Entropy(), 1e-9)
	assert.Equal(t, data[:scanner.HeadSize], streamed.Head)

	empty, err := scanner.Read(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Head)
	assert.Equal(t, 0.0, empty.Entropy())
}

func TestFilter(t *testing.T) {
	f, err := scanner.NewFilter([]string{"**/*.txt", "*.txt"}, []string{"secret/**"})
	require.NoError(t, err)

	assert.True(t, f.Allow("a.txt"))
	assert.True(t, f.Allow("docs/a.txt"))
	assert.False(t, f.Allow("a.bin"))
	assert.False(t, f.Allow("secret/a.txt"))

	var none *scanner.Filter
	assert.True(t, none.Allow("anything"))

	_, err = scanner.NewFilter([]string{"[a-"}, nil)
	assert.Error(t, err)
}

func TestIsBucketURL(t *testing.T) {
	assert.True(t, scanner.IsBucketURL("s3://bucket"))
	assert.True(t, scanner.IsBucketURL("file:///tmp/x"))
	assert.False(t, scanner.IsBucketURL("/tmp/x"))
	assert.False(t, scanner.IsBucketURL("relative/dir"))
}
