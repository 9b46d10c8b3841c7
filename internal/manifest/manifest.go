// Package manifest serializes the SiteModel into a stable JSON shape that
// external renderers consume without re-parsing sources.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/series"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// Manifest is the wire form of a SiteModel. Field names and ordering are part
// of the contract; posts appear reverse-chronologically, tag buckets list
// permalinks in the same order.
type Manifest struct {
	BuildID string              `json:"build_id"`
	BuiltAt time.Time           `json:"built_at"`
	Site    Site                `json:"site"`
	Posts   []Post              `json:"posts"`
	Tags    map[string][]string `json:"tags"`
	Series  []series.Edge       `json:"series"`
}

// Site carries site-level metadata.
type Site struct {
	Title   string `json:"title"`
	BaseURL string `json:"base_url,omitempty"`
}

// Post is the wire form of a single post.
type Post struct {
	Permalink   string         `json:"permalink"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Date        time.Time      `json:"date"`
	Tags        []string       `json:"tags,omitempty"`
	Source      string         `json:"source"`
	Body        string         `json:"body"`
	Layout      string         `json:"layout,omitempty"`
	Next        string         `json:"next,omitempty"`
	Previous    string         `json:"previous,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// FromModel converts an assembled SiteModel into its wire form.
func FromModel(m *site.Model) Manifest {
	posts := make([]Post, 0, len(m.Posts))
	for _, p := range m.Posts {
		wire := Post{
			Permalink:   p.Permalink,
			Title:       p.Title,
			Description: p.Description,
			Date:        p.Date,
			Tags:        p.Tags,
			Source:      p.Source,
			Body:        p.Body,
			Layout:      p.Layout,
			Extra:       p.Extra,
		}
		if next, ok := m.Series.Next(p.Permalink); ok {
			wire.Next = next
		}
		if prev, ok := m.Series.Prev(p.Permalink); ok {
			wire.Previous = prev
		}
		posts = append(posts, wire)
	}

	tags := make(map[string][]string, len(m.Tags))
	for tag, tagged := range m.Tags {
		links := make([]string, 0, len(tagged))
		for _, p := range tagged {
			links = append(links, p.Permalink)
		}
		tags[tag] = links
	}

	return Manifest{
		BuildID: m.BuildID,
		BuiltAt: m.BuiltAt,
		Site:    Site{Title: m.SiteTitle, BaseURL: m.BaseURL},
		Posts:   posts,
		Tags:    tags,
		Series:  m.Series.Edges(),
	}
}

// Write serializes the manifest to path, creating parent directories as
// needed. The write is atomic (temp file + rename) so consumers never see a
// partial manifest.
func Write(m Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
