package frontmatter

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/blogerr"
)

// Reserved keys consumed into typed Metadata fields. Everything else is kept
// verbatim in Extra and round-trips through Fields.
const (
	keyTitle       = "title"
	keyDescription = "description"
	keyDate        = "date"
	keyTags        = "tags"
	keyNext        = "next"
	keyLayout      = "layout"
)

// dateLayouts are the accepted date forms, tried in order. Forms without a
// zone are taken as UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04 MST",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Metadata is the typed front matter record of a post.
type Metadata struct {
	Title       string
	Description string
	Date        time.Time // always UTC
	Tags        []string
	Next        string // optional unresolved series reference
	Layout      string // opaque, passed through unexamined
	Extra       map[string]any
}

// Parse splits and validates the front matter of a raw post source.
//
// Required fields: title (non-empty) and date. Returns the metadata record
// and the untouched body.
func Parse(content []byte) (Metadata, []byte, Style, error) {
	fm, body, had, style, err := Split(content)
	if err != nil {
		return Metadata{}, nil, style, err
	}
	if !had {
		return Metadata{}, nil, style, blogerr.Wrap(blogerr.ErrMalformedFrontMatter, blogerr.CategoryFrontMatter, "front matter block is absent")
	}

	fields, err := ParseYAML(fm)
	if err != nil {
		return Metadata{}, nil, style, blogerr.Wrap(blogerr.ErrMalformedFrontMatter, blogerr.CategoryFrontMatter, err.Error())
	}

	meta, err := fromFields(fields)
	if err != nil {
		return Metadata{}, nil, style, err
	}
	return meta, body, style, nil
}

func fromFields(fields map[string]any) (Metadata, error) {
	var meta Metadata

	title, ok := fields[keyTitle].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return Metadata{}, blogerr.Wrap(blogerr.ErrMalformedFrontMatter, blogerr.CategoryFrontMatter, "required field 'title' is missing or empty")
	}
	meta.Title = title

	rawDate, ok := fields[keyDate]
	if !ok {
		return Metadata{}, blogerr.Wrap(blogerr.ErrMalformedFrontMatter, blogerr.CategoryFrontMatter, "required field 'date' is missing")
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return Metadata{}, err
	}
	meta.Date = date

	if desc, ok := fields[keyDescription].(string); ok {
		meta.Description = desc
	}
	if next, ok := fields[keyNext].(string); ok {
		meta.Next = strings.TrimSpace(next)
	}
	if layout, ok := fields[keyLayout].(string); ok {
		meta.Layout = layout
	}
	meta.Tags = parseTags(fields[keyTags])

	for k, v := range fields {
		switch k {
		case keyTitle, keyDescription, keyDate, keyTags, keyNext, keyLayout:
			continue
		}
		if meta.Extra == nil {
			meta.Extra = make(map[string]any)
		}
		meta.Extra[k] = v
	}

	return meta, nil
}

// parseDate accepts a time.Time (yaml.v3 decodes bare dates natively) or a
// string in one of the supported layouts, and normalizes to UTC.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, blogerr.Wrap(blogerr.ErrInvalidDate, blogerr.CategoryDate, fmt.Sprintf("cannot parse %q as a date", s))
	default:
		return time.Time{}, blogerr.Wrap(blogerr.ErrInvalidDate, blogerr.CategoryDate, fmt.Sprintf("date has unsupported type %T", v))
	}
}

// parseTags accepts a YAML sequence (of strings) or a single string; anything
// else yields no tags. Order is preserved, duplicates dropped.
func parseTags(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = t
	case string:
		raw = []string{t}
	default:
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// Fields converts the metadata back to the generic map form used by
// SerializeYAML. Parse -> Fields -> SerializeYAML -> Parse is idempotent.
func (m Metadata) Fields() map[string]any {
	fields := make(map[string]any, len(m.Extra)+6)
	for k, v := range m.Extra {
		fields[k] = v
	}
	fields[keyTitle] = m.Title
	fields[keyDate] = m.Date.UTC().Format(time.RFC3339)
	if m.Description != "" {
		fields[keyDescription] = m.Description
	}
	if len(m.Tags) > 0 {
		fields[keyTags] = m.Tags
	}
	if m.Next != "" {
		fields[keyNext] = m.Next
	}
	if m.Layout != "" {
		fields[keyLayout] = m.Layout
	}
	return fields
}
