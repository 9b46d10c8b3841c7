package site

import (
	"fmt"
	"regexp"
	"strings"
)

// SourceFilter decides whether discovered sources are included in a build.
// Paths are matched relative to the content directory, slash-separated.
type SourceFilter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// NewSourceFilter constructs a SourceFilter from glob patterns. An empty
// include list means include everything (unless excluded). `*` matches any
// run of characters including separators, `?` a single character.
func NewSourceFilter(includeGlobs, excludeGlobs []string) (*SourceFilter, error) {
	compile := func(globs []string) ([]*regexp.Regexp, error) {
		out := make([]*regexp.Regexp, 0, len(globs))
		for _, g := range globs {
			if strings.TrimSpace(g) == "" {
				continue
			}
			r, err := regexp.Compile(globToRegex(g))
			if err != nil {
				return nil, fmt.Errorf("compile glob %s: %w", g, err)
			}
			out = append(out, r)
		}
		return out, nil
	}
	incs, err := compile(includeGlobs)
	if err != nil {
		return nil, err
	}
	excs, err := compile(excludeGlobs)
	if err != nil {
		return nil, err
	}
	return &SourceFilter{include: incs, exclude: excs}, nil
}

// Include reports whether the source passes the filter. Exclusion takes
// precedence over inclusion.
func (f *SourceFilter) Include(source string) bool {
	if f == nil {
		return true
	}
	for _, rx := range f.exclude {
		if rx.MatchString(source) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, rx := range f.include {
		if rx.MatchString(source) {
			return true
		}
	}
	return false
}

// globToRegex converts a shell-style glob to an anchored regex string.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '.', '+', '(', ')', '|', '^', '$', '{', '}', '[', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString("$")
	return b.String()
}
