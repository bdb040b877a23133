/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: filter.go
Description: Include/exclude glob filtering on slash separated relative paths.
*/

package scanner

import (
	"fmt"
	"path"

	"github.com/gobwas/glob"
)

// Filter decides which files are scanned. A pattern matches either the relative path
// or the base name, so "*.log" excludes logs at any depth.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles the patterns. '*' does not cross '/', '**' does.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.include, err = compileAll(include); err != nil {
		return nil, err
	}
	if f.exclude, err = compileAll(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Allow reports whether rel passes the filter.
func (f *Filter) Allow(rel string) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 && !matchAny(f.include, rel) {
		return false
	}
	return !matchAny(f.exclude, rel)
}

func matchAny(globs []glob.Glob, rel string) bool {
	base := path.Base(rel)
	for _, g := range globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}
