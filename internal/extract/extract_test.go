package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextRefMarkdown_TrailingNextParagraph(t *testing.T) {
	body := []byte("# Title\n\nSome prose.\n\nNext: [part two](/2024/01/02/part-two)\n")
	require.Equal(t, "/2024/01/02/part-two", NextRefMarkdown(body))
}

func TestNextRefMarkdown_NoNextParagraph(t *testing.T) {
	body := []byte("# Title\n\nJust prose with a [link](/elsewhere).\n")
	require.Empty(t, NextRefMarkdown(body))
}

func TestNextRefMarkdown_LinkOutsideNextParagraph_Ignored(t *testing.T) {
	body := []byte("See [this](/other).\n\nNext time we continue.\n")
	require.Empty(t, NextRefMarkdown(body))
}

func TestNextRefHTML_AnchorInsideNextElement(t *testing.T) {
	body := []byte(`<p>Prose.</p><p>Next: <a href="/2024/01/02/part-two">part two</a></p>`)
	require.Equal(t, "/2024/01/02/part-two", NextRefHTML(body))
}

func TestNextRefHTML_NoNextElement(t *testing.T) {
	body := []byte(`<p>Prose with <a href="/elsewhere">a link</a>.</p>`)
	require.Empty(t, NextRefHTML(body))
}

func TestNextRefHTML_MalformedInput_NoPanic(t *testing.T) {
	require.Empty(t, NextRefHTML([]byte("<p><a href=")))
}

func TestNextRef_DispatchesOnExtension(t *testing.T) {
	md := []byte("Next: [b](/2024/01/02/b)\n")
	html := []byte(`<p>Next: <a href="/2024/01/02/b">b</a></p>`)

	require.Equal(t, "/2024/01/02/b", NextRef(md, ".md"))
	require.Equal(t, "/2024/01/02/b", NextRef(html, ".html"))
	require.Equal(t, "/2024/01/02/b", NextRef(html, ".HTM"))
}
