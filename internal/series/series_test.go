package series

import (
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/blogerr"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/repository"
	"github.com/stretchr/testify/require"
)

func addPost(t *testing.T, repo *repository.Repository, source string, day int, next string) *post.Post {
	t.Helper()
	p := post.New(source, frontmatter.Metadata{
		Title: source,
		Date:  time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Next:  next,
	}, nil)
	require.NoError(t, repo.Add(p))
	return p
}

func hasIssue(issues *blogerr.Issues, target error) bool {
	for _, issue := range issues.All() {
		if errors.Is(issue.Err, target) {
			return true
		}
	}
	return false
}

func TestResolve_ChainProducesBidirectionalLinks(t *testing.T) {
	repo := repository.New()
	a := addPost(t, repo, "a.md", 1, "/2024/01/02/b")
	b := addPost(t, repo, "b.md", 2, "/2024/01/03/c")
	c := addPost(t, repo, "c.md", 3, "")

	links, issues := Resolve(repo)
	require.Zero(t, issues.Len())

	next, ok := links.Next(a.Permalink)
	require.True(t, ok)
	require.Equal(t, b.Permalink, next)

	prev, ok := links.Prev(c.Permalink)
	require.True(t, ok)
	require.Equal(t, b.Permalink, prev)

	_, ok = links.Prev(a.Permalink)
	require.False(t, ok)
	_, ok = links.Next(c.Permalink)
	require.False(t, ok)
}

func TestResolve_BareSlugReference(t *testing.T) {
	repo := repository.New()
	a := addPost(t, repo, "a.md", 1, "second-part")
	b := addPost(t, repo, "second-part.md", 2, "")

	links, issues := Resolve(repo)
	require.Zero(t, issues.Len())

	next, ok := links.Next(a.Permalink)
	require.True(t, ok)
	require.Equal(t, b.Permalink, next)
}

func TestResolve_AmbiguousSlug_Dangling(t *testing.T) {
	repo := repository.New()
	addPost(t, repo, "a.md", 1, "part")
	addPost(t, repo, "one/part.md", 2, "")
	addPost(t, repo, "two/part.md", 3, "")

	_, issues := Resolve(repo)
	require.True(t, hasIssue(issues, blogerr.ErrDanglingReference))
}

func TestResolve_DanglingReference(t *testing.T) {
	repo := repository.New()
	addPost(t, repo, "a.md", 1, "/2024/01/09/nonexistent")

	_, issues := Resolve(repo)
	require.Equal(t, 1, issues.Len())
	require.True(t, hasIssue(issues, blogerr.ErrDanglingReference))
}

func TestResolve_MultiplePredecessors(t *testing.T) {
	repo := repository.New()
	addPost(t, repo, "x.md", 1, "/2024/01/03/y")
	addPost(t, repo, "z.md", 2, "/2024/01/03/y")
	addPost(t, repo, "y.md", 3, "")

	_, issues := Resolve(repo)
	require.True(t, hasIssue(issues, blogerr.ErrMultiplePredecessors))
}

func TestResolve_TwoPostCycle(t *testing.T) {
	repo := repository.New()
	addPost(t, repo, "a.md", 1, "/2024/01/02/b")
	addPost(t, repo, "b.md", 2, "/2024/01/01/a")

	_, issues := Resolve(repo)
	require.True(t, hasIssue(issues, blogerr.ErrCyclicSeries))
}

func TestResolve_SelfReference_Cyclic(t *testing.T) {
	repo := repository.New()
	addPost(t, repo, "a.md", 1, "/2024/01/01/a")

	_, issues := Resolve(repo)
	require.True(t, hasIssue(issues, blogerr.ErrCyclicSeries))
}

func TestResolve_ChainTerminatesWithinPostCount(t *testing.T) {
	repo := repository.New()
	const n = 25
	for day := 1; day <= n; day++ {
		next := ""
		if day < n {
			// Each post points at the next day's post.
			next = post.PermalinkFor(time.Date(2024, 1, day+1, 0, 0, 0, 0, time.UTC), "p.md")
		}
		addPost(t, repo, "p.md", day, next)
	}

	links, issues := Resolve(repo)
	require.Zero(t, issues.Len())

	// Traversal from the head terminates in at most n steps.
	cur := post.PermalinkFor(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "p.md")
	steps := 0
	for {
		next, ok := links.Next(cur)
		if !ok {
			break
		}
		cur = next
		steps++
		require.LessOrEqual(t, steps, n)
	}
	require.Equal(t, n-1, steps)
}

func TestResolve_AllIssuesCollected(t *testing.T) {
	repo := repository.New()
	addPost(t, repo, "a.md", 1, "/2024/01/09/nonexistent")
	addPost(t, repo, "b.md", 2, "/2024/01/09/also-missing")

	_, issues := Resolve(repo)
	require.Equal(t, 2, issues.Len())
	require.Error(t, issues.Err())
}
