package tagindex

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/repository"
	"github.com/stretchr/testify/require"
)

func buildRepo(t *testing.T) *repository.Repository {
	t.Helper()
	repo := repository.New()
	posts := []struct {
		source string
		date   time.Time
		tags   []string
	}{
		{"first.md", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []string{"fp", "haskell"}},
		{"second.md", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), []string{"fp"}},
		{"third.md", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), []string{"testing"}},
		{"untagged.md", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), nil},
	}
	for _, p := range posts {
		require.NoError(t, repo.Add(post.New(p.source, frontmatter.Metadata{
			Title: p.source,
			Date:  p.date,
			Tags:  p.tags,
		}, nil)))
	}
	return repo
}

func TestBuild_BucketsAreReverseChronological(t *testing.T) {
	idx := Build(buildRepo(t))

	require.Len(t, idx["fp"], 2)
	require.Equal(t, "/2024/02/01/second", idx["fp"][0].Permalink)
	require.Equal(t, "/2024/01/01/first", idx["fp"][1].Permalink)
}

func TestBuild_NoEmptyBuckets(t *testing.T) {
	idx := Build(buildRepo(t))

	require.Equal(t, []string{"fp", "haskell", "testing"}, idx.Tags())
	for tag, posts := range idx {
		require.NotEmpty(t, posts, "tag %q has an empty bucket", tag)
	}
}

func TestBuild_UnionEqualsTaggedPosts(t *testing.T) {
	repo := buildRepo(t)
	idx := Build(repo)

	union := make(map[string]struct{})
	for _, posts := range idx {
		for _, p := range posts {
			union[p.Permalink] = struct{}{}
		}
	}

	tagged := make(map[string]struct{})
	for _, p := range repo.All() {
		if len(p.Tags) > 0 {
			tagged[p.Permalink] = struct{}{}
		}
	}

	require.Equal(t, tagged, union)
}

func TestBuild_EmptyRepository_EmptyIndex(t *testing.T) {
	idx := Build(repository.New())
	require.Empty(t, idx)
}
