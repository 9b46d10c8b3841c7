// Package series resolves declared next-post references into validated
// bidirectional links.
package series

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/blogerr"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/repository"
)

// Edge is a directed series link between two posts, identified by permalink.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Links holds the validated series graph. A post has at most one successor
// and at most one predecessor; the graph is acyclic.
type Links struct {
	next map[string]string
	prev map[string]string
}

// Next returns the permalink of the post following p in its series.
func (l *Links) Next(permalink string) (string, bool) {
	to, ok := l.next[permalink]
	return to, ok
}

// Prev returns the permalink of the post preceding p in its series.
func (l *Links) Prev(permalink string) (string, bool) {
	from, ok := l.prev[permalink]
	return from, ok
}

// Edges returns all series links sorted by source permalink.
func (l *Links) Edges() []Edge {
	edges := make([]Edge, 0, len(l.next))
	for from, to := range l.next {
		edges = append(edges, Edge{From: from, To: to})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].From < edges[j].From })
	return edges
}

// Len returns the number of series links.
func (l *Links) Len() int {
	return len(l.next)
}

// Resolve validates every declared next reference against the repository and
// builds the series graph. All problems are collected, not just the first:
// dangling targets, posts claimed as next by more than one predecessor, and
// cycles.
func Resolve(repo *repository.Repository) (*Links, *blogerr.Issues) {
	issues := &blogerr.Issues{}
	links := &Links{
		next: make(map[string]string),
		prev: make(map[string]string),
	}

	for _, p := range repo.All() {
		if p.Next == "" {
			continue
		}

		target, err := resolveReference(repo, p.Next)
		if err != nil {
			issues.Add(p.Source, err)
			continue
		}

		if claimant, taken := links.prev[target.Permalink]; taken {
			issues.Add(p.Source, blogerr.Wrap(blogerr.ErrMultiplePredecessors, blogerr.CategorySeries,
				fmt.Sprintf("post %s is already the next of %s", target.Permalink, claimant)))
			continue
		}

		links.next[p.Permalink] = target.Permalink
		links.prev[target.Permalink] = p.Permalink
	}

	detectCycles(repo, links, issues)

	return links, issues
}

// resolveReference accepts either a full permalink (leading slash) or a bare
// slug. A bare slug resolves only when exactly one post carries it.
func resolveReference(repo *repository.Repository, ref string) (*post.Post, error) {
	if strings.HasPrefix(ref, "/") {
		p, err := repo.ByPermalink(ref)
		if err != nil {
			return nil, blogerr.Wrap(blogerr.ErrDanglingReference, blogerr.CategorySeries,
				fmt.Sprintf("next reference %s does not match any post", ref))
		}
		return p, nil
	}

	var match *post.Post
	for _, p := range repo.All() {
		if p.Slug() != ref {
			continue
		}
		if match != nil {
			return nil, blogerr.Wrap(blogerr.ErrDanglingReference, blogerr.CategorySeries,
				fmt.Sprintf("next reference %q is ambiguous (%s, %s)", ref, match.Permalink, p.Permalink))
		}
		match = p
	}
	if match == nil {
		return nil, blogerr.Wrap(blogerr.ErrDanglingReference, blogerr.CategorySeries,
			fmt.Sprintf("next reference %q does not match any post", ref))
	}
	return match, nil
}

// detectCycles walks next edges from every post with a colored visited-set.
// Each chain must terminate at a post with no outgoing edge within at most
// repo.Len() steps.
func detectCycles(repo *repository.Repository, links *Links, issues *blogerr.Issues) {
	const (
		white = iota // unvisited
		gray         // on the current chain
		black        // known to terminate
	)

	color := make(map[string]int, repo.Len())
	for _, root := range repo.All() {
		if color[root.Permalink] != white {
			continue
		}

		chain := []string{}
		cur := root.Permalink
		for {
			if color[cur] == gray {
				issues.Add(root.Source, blogerr.Wrap(blogerr.ErrCyclicSeries, blogerr.CategorySeries,
					fmt.Sprintf("next chain from %s revisits %s", root.Permalink, cur)))
				break
			}
			if color[cur] == black {
				break
			}
			color[cur] = gray
			chain = append(chain, cur)

			to, ok := links.next[cur]
			if !ok {
				break
			}
			cur = to
		}
		for _, link := range chain {
			color[link] = black
		}
	}
}
