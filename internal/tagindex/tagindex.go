// Package tagindex aggregates posts by tag.
package tagindex

import (
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/repository"
)

// Index maps a tag to its posts in reverse-chronological order (ties broken
// by permalink). Posts are back-references; the repository owns them.
type Index map[string][]*post.Post

// Build recomputes the full index from the frozen repository. Tags carried by
// no post never appear as keys; empty buckets are not materialized.
func Build(repo *repository.Repository) Index {
	idx := make(Index)
	// repo.All() is already reverse-chronological, so appending preserves
	// the required per-bucket order.
	for _, p := range repo.All() {
		for _, tag := range p.Tags {
			idx[tag] = append(idx[tag], p)
		}
	}
	return idx
}

// Tags returns the tags of the index in lexical order.
func (idx Index) Tags() []string {
	tags := make([]string, 0, len(idx))
	for tag := range idx {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
