// Package post defines the immutable Post value and the deterministic
// slug/permalink derivation.
package post

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Post represents a single parsed post. Identity is the source path; the
// permalink is derived from (date, source name) and never changes after
// construction.
type Post struct {
	Source      string // source path, identity
	Title       string
	Description string
	Date        time.Time // UTC
	Tags        []string
	Body        string
	Next        string // optional unresolved series reference
	Layout      string
	Extra       map[string]any
	Permalink   string
	Extension   string // source extension (".md", ".html")
}

// New builds a Post from parsed metadata and body. The permalink is computed
// here so a Post is never observable without one.
func New(source string, meta frontmatter.Metadata, body []byte) *Post {
	return &Post{
		Source:      source,
		Title:       meta.Title,
		Description: meta.Description,
		Date:        meta.Date,
		Tags:        meta.Tags,
		Body:        string(body),
		Next:        meta.Next,
		Layout:      meta.Layout,
		Extra:       meta.Extra,
		Permalink:   PermalinkFor(meta.Date, source),
		Extension:   strings.ToLower(filepath.Ext(source)),
	}
}

// Slug returns the slug of the post's permalink (the segment after the date).
func (p *Post) Slug() string {
	idx := strings.LastIndexByte(p.Permalink, '/')
	if idx < 0 {
		return p.Permalink
	}
	return p.Permalink[idx+1:]
}

// PermalinkFor derives the canonical URL path /YYYY/MM/DD/slug from the
// publication date and the source's base name. Pure and deterministic;
// collisions are detected at repository ingestion, never renamed here.
func PermalinkFor(date time.Time, source string) string {
	d := date.UTC()
	return fmt.Sprintf("/%04d/%02d/%02d/%s", d.Year(), int(d.Month()), d.Day(), Slugify(sourceBase(source)))
}

// Slugify lowercases the name, folds diacritics to their base letters, and
// replaces every run of non-alphanumeric characters with a single hyphen,
// trimming leading and trailing hyphens.
func Slugify(name string) string {
	folded := foldDiacritics(name)

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// foldDiacritics decomposes the string and strips combining marks, so
// "sérialisation" slugs as "serialisation".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func sourceBase(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
