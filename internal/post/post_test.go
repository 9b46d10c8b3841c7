package post

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a", "a"},
		{"Serializing Restaurant Tables in Haskell", "serializing-restaurant-tables-in-haskell"},
		{"hello__world--again", "hello-world-again"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"___", ""},
		{"Sérialisation façile", "serialisation-facile"},
		{"C# & F# (part 2)", "c-f-part-2"},
		{"2024-review", "2024-review"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestPermalinkFor_DatePlusSlug(t *testing.T) {
	date := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	require.Equal(t, "/2024/01/01/a", PermalinkFor(date, "a.html"))
}

func TestPermalinkFor_UsesUTCDate(t *testing.T) {
	// 00:30 in +02:00 is 22:30 UTC the previous day; the UTC date wins.
	zone := time.FixedZone("CEST", 2*60*60)
	date := time.Date(2024, 3, 10, 0, 30, 0, 0, zone)
	require.Equal(t, "/2024/03/09/late-night", PermalinkFor(date, "posts/late-night.md"))
}

func TestPermalinkFor_SameNameDifferentDates_Differ(t *testing.T) {
	a := PermalinkFor(time.Date(2023, 12, 11, 7, 0, 0, 0, time.UTC), "tables.md")
	b := PermalinkFor(time.Date(2024, 2, 5, 7, 0, 0, 0, time.UTC), "tables.md")
	require.NotEqual(t, a, b)
}

func TestNew_DerivesPermalinkAndExtension(t *testing.T) {
	meta := frontmatter.Metadata{
		Title: "A",
		Date:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Tags:  []string{"fp"},
	}

	p := New("2024/Serializing-Tables.html", meta, []byte("<p>hi</p>"))
	require.Equal(t, "/2024/01/01/serializing-tables", p.Permalink)
	require.Equal(t, ".html", p.Extension)
	require.Equal(t, "serializing-tables", p.Slug())
	require.Equal(t, "<p>hi</p>", p.Body)
}
