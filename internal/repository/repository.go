// Package repository holds the canonical in-memory post collection, keyed by
// permalink.
package repository

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/blogerr"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
)

// Repository is the sole owner of Post data. It is mutable during ingestion
// and read-only once frozen; every build starts from a fresh instance.
type Repository struct {
	byPermalink map[string]*post.Post
	order       []*post.Post
	frozen      bool
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{byPermalink: make(map[string]*post.Post)}
}

// Add ingests a parsed post. The permalink-uniqueness check and the insert
// are a single step, so callers funneling concurrent parse results through
// one writer cannot race past it.
func (r *Repository) Add(p *post.Post) error {
	if r.frozen {
		return blogerr.Wrap(blogerr.ErrRepositoryFrozen, blogerr.CategoryInternal, "add after freeze").WithSource(p.Source)
	}
	if existing, ok := r.byPermalink[p.Permalink]; ok {
		return blogerr.Wrap(blogerr.ErrDuplicatePermalink, blogerr.CategoryPermalink,
			fmt.Sprintf("permalink %s already produced by %s", p.Permalink, existing.Source)).WithSource(p.Source)
	}
	r.byPermalink[p.Permalink] = p
	r.order = append(r.order, p)
	return nil
}

// Freeze sorts the collection and marks it read-only. Idempotent.
func (r *Repository) Freeze() {
	if r.frozen {
		return
	}
	sort.SliceStable(r.order, func(i, j int) bool {
		a, b := r.order[i], r.order[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Permalink < b.Permalink
	})
	r.frozen = true
}

// All returns the posts in reverse-chronological order, ties broken by
// permalink. Each call returns a fresh slice, so iteration is restartable
// and deterministic across calls.
func (r *Repository) All() []*post.Post {
	r.Freeze()
	out := make([]*post.Post, len(r.order))
	copy(out, r.order)
	return out
}

// ByPermalink looks up a post by its canonical permalink.
func (r *Repository) ByPermalink(link string) (*post.Post, error) {
	p, ok := r.byPermalink[link]
	if !ok {
		return nil, blogerr.Wrap(blogerr.ErrNotFound, blogerr.CategoryLookup, fmt.Sprintf("no post with permalink %s", link))
	}
	return p, nil
}

// Len returns the number of posts in the collection.
func (r *Repository) Len() int {
	return len(r.order)
}

// Frozen reports whether ingestion has completed.
func (r *Repository) Frozen() bool {
	return r.frozen
}
