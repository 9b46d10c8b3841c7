// Package site assembles parsed posts into the immutable SiteModel consumed
// by external renderers.
package site

import (
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/series"
	"git.home.luguber.info/inful/blogbuilder/internal/tagindex"
)

// Model is the finished aggregate of a successful build: ordered post list,
// tag index, and series graph. Read-only after assembly; a source change
// produces a whole new Model, never a patched one.
type Model struct {
	BuildID   string
	BuiltAt   time.Time
	SiteTitle string
	BaseURL   string
	Posts     []*post.Post // reverse-chronological
	Tags      tagindex.Index
	Series    *series.Links
}

// PostCount returns the number of posts in the model.
func (m *Model) PostCount() int {
	return len(m.Posts)
}

// TagCount returns the number of distinct tags in the model.
func (m *Model) TagCount() int {
	return len(m.Tags)
}
