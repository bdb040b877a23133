/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: local.go
Description: Local filesystem source. Lists a single file, the direct children of a
directory, or a whole tree, optionally following symbolic links without looping.
*/

package scanner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalSource reads files from the local filesystem.
type LocalSource struct {
	root        string
	recursive   bool
	followLinks bool

	// OnError is called for subdirectories that cannot be listed; the walk continues.
	OnError func(path string, err error)
}

// NewLocalSource creates a source rooted at root, which may be a file or a directory.
func NewLocalSource(root string, recursive, followLinks bool) (*LocalSource, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	return &LocalSource{root: root, recursive: recursive, followLinks: followLinks}, nil
}

// Name returns the root path.
func (s *LocalSource) Name() string {
	return s.root
}

// Walk yields every regular file under the root.
func (s *LocalSource) Walk(ctx context.Context, fn WalkFunc) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return fn(Entry{Path: s.root, Rel: filepath.Base(s.root), Size: info.Size()})
	}

	visited := make(map[string]bool)
	if real, err := filepath.EvalSymlinks(s.root); err == nil {
		visited[real] = true
	}
	return s.walkDir(ctx, s.root, "", visited, fn, true)
}

func (s *LocalSource) walkDir(ctx context.Context, dir, rel string, visited map[string]bool, fn WalkFunc, top bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if top {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		s.reportError(dir, err)
		return nil
	}

	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, de.Name())
		childRel := de.Name()
		if rel != "" {
			childRel = rel + "/" + de.Name()
		}

		info, err := s.entryInfo(path, de)
		if err != nil {
			s.reportError(path, err)
			continue
		}
		if info == nil {
			continue
		}

		if info.IsDir() {
			if !s.recursive {
				continue
			}
			// with links followed a tree may be reachable twice; visit each real directory once
			if s.followLinks {
				real, err := filepath.EvalSymlinks(path)
				if err != nil || visited[real] {
					continue
				}
				visited[real] = true
			}
			if err := s.walkDir(ctx, path, childRel, visited, fn, false); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}
		if err := fn(Entry{Path: path, Rel: childRel, Size: info.Size()}); err != nil {
			return err
		}
	}
	return nil
}

// entryInfo resolves a directory entry. It returns nil for symlinks that are not followed.
func (s *LocalSource) entryInfo(path string, de fs.DirEntry) (fs.FileInfo, error) {
	if de.Type()&fs.ModeSymlink != 0 {
		if !s.followLinks {
			return nil, nil
		}
		return os.Stat(path)
	}
	return de.Info()
}

func (s *LocalSource) reportError(path string, err error) {
	if s.OnError != nil {
		s.OnError(path, err)
	}
}

// Open opens the file at e.Path.
func (s *LocalSource) Open(_ context.Context, e Entry, limit int64) (io.ReadCloser, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return nil, err
	}
	return limitReadCloser(f, limit), nil
}

// Close is a no-op for local sources.
func (s *LocalSource) Close() error {
	return nil
}
