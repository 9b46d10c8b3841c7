package repository

import (
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/blogerr"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"github.com/stretchr/testify/require"
)

func newPost(t *testing.T, source, title string, date time.Time, tags ...string) *post.Post {
	t.Helper()
	return post.New(source, frontmatter.Metadata{Title: title, Date: date, Tags: tags}, []byte("body"))
}

func TestAdd_DuplicatePermalink_Fails(t *testing.T) {
	repo := New()

	// Two distinct sources, same date, same slug.
	date := time.Date(2023, 12, 11, 7, 0, 0, 0, time.UTC)
	a := newPost(t, "drafts/serializing-restaurant-tables-in-haskell.md", "A", date)
	b := newPost(t, "posts/Serializing-Restaurant-Tables-in-Haskell.md", "B", date)
	require.Equal(t, a.Permalink, b.Permalink)

	require.NoError(t, repo.Add(a))
	err := repo.Add(b)
	require.Error(t, err)
	require.True(t, errors.Is(err, blogerr.ErrDuplicatePermalink))
	require.Equal(t, blogerr.CategoryPermalink, blogerr.CategoryOf(err))
}

func TestAdd_AfterFreeze_Fails(t *testing.T) {
	repo := New()
	require.NoError(t, repo.Add(newPost(t, "a.md", "A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	repo.Freeze()

	err := repo.Add(newPost(t, "b.md", "B", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.True(t, errors.Is(err, blogerr.ErrRepositoryFrozen))
}

func TestAll_ReverseChronologicalWithPermalinkTieBreak(t *testing.T) {
	repo := New()
	date := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Add(newPost(t, "old.md", "Old", date.AddDate(0, -2, 0))))
	require.NoError(t, repo.Add(newPost(t, "zebra.md", "Z", date)))
	require.NoError(t, repo.Add(newPost(t, "alpha.md", "A", date)))
	require.NoError(t, repo.Add(newPost(t, "new.md", "New", date.AddDate(0, 1, 0))))

	var permalinks []string
	for _, p := range repo.All() {
		permalinks = append(permalinks, p.Permalink)
	}
	require.Equal(t, []string{
		"/2024/06/01/new",
		"/2024/05/01/alpha",
		"/2024/05/01/zebra",
		"/2024/03/01/old",
	}, permalinks)
}

func TestAll_RestartableAndDeterministic(t *testing.T) {
	repo := New()
	require.NoError(t, repo.Add(newPost(t, "a.md", "A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, repo.Add(newPost(t, "b.md", "B", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))))

	first := repo.All()
	second := repo.All()
	require.Equal(t, first, second)

	// Mutating a returned slice does not affect later iterations.
	first[0], first[1] = first[1], first[0]
	require.Equal(t, second, repo.All())
}

func TestByPermalink(t *testing.T) {
	repo := New()
	p := newPost(t, "a.md", "A", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Add(p))

	got, err := repo.ByPermalink("/2024/01/01/a")
	require.NoError(t, err)
	require.Same(t, p, got)

	_, err = repo.ByPermalink("/2024/01/01/missing")
	require.True(t, errors.Is(err, blogerr.ErrNotFound))
}
