package blogerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrap_PreservesSentinelForErrorsIs(t *testing.T) {
	err := Wrap(ErrDuplicatePermalink, CategoryPermalink, "permalink /2024/01/01/a already produced by a.md").WithSource("b.md")

	require.True(t, errors.Is(err, ErrDuplicatePermalink))
	require.Equal(t, CategoryPermalink, CategoryOf(err))
	require.Contains(t, err.Error(), "b.md")
	require.Contains(t, err.Error(), "permalink")
}

func TestCategoryOf_UnknownError_Internal(t *testing.T) {
	require.Equal(t, CategoryInternal, CategoryOf(errors.New("plain")))
}

func TestIssues_CollectsAndAggregates(t *testing.T) {
	issues := &Issues{}
	issues.Add("b.md", Wrap(ErrInvalidDate, CategoryDate, "cannot parse"))
	issues.Add("a.md", Wrap(ErrMalformedFrontMatter, CategoryFrontMatter, "missing title"))
	issues.Add("c.md", nil) // ignored

	require.Equal(t, 2, issues.Len())

	// Stable ordering by source.
	all := issues.All()
	require.Equal(t, "a.md", all[0].Source)
	require.Equal(t, "b.md", all[1].Source)

	err := issues.Err()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidDate))
	require.True(t, errors.Is(err, ErrMalformedFrontMatter))
	require.Contains(t, err.Error(), "2 issue(s)")
}

func TestIssues_Empty_NoError(t *testing.T) {
	issues := &Issues{}
	require.NoError(t, issues.Err())
	require.Zero(t, issues.Len())
}

func TestIssueCount(t *testing.T) {
	issues := &Issues{}
	issues.Add("a.md", ErrInvalidDate)
	issues.Add("b.md", ErrMalformedFrontMatter)

	require.Equal(t, 2, IssueCount(issues.Err()))
	require.Equal(t, 1, IssueCount(errors.New("plain")))
	require.Zero(t, IssueCount(nil))
}

func TestIssues_Merge(t *testing.T) {
	a := &Issues{}
	a.Add("a.md", ErrNotFound)
	b := &Issues{}
	b.Add("b.md", ErrCyclicSeries)

	a.Merge(b)
	require.Equal(t, 2, a.Len())
}
