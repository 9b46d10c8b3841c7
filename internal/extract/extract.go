// Package extract pulls the conventional trailing "Next:" link out of a post
// body, turning the textual series convention into a structured reference the
// linker can validate.
package extract

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

const nextMarker = "next:"

// NextRef extracts a next-post reference from a body, dispatching on the
// source extension. Returns "" when the body declares none. Front matter
// takes precedence; callers only consult this when the field is absent.
func NextRef(body []byte, ext string) string {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return NextRefHTML(body)
	default:
		return NextRefMarkdown(body)
	}
}

// NextRefMarkdown finds a paragraph beginning with "Next:" and returns the
// destination of its first link.
func NextRefMarkdown(body []byte) string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	ref := ""
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering || ref != "" {
			return gmast.WalkContinue, nil
		}
		para, ok := n.(*gmast.Paragraph)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(nodeText(para, body))), nextMarker) {
			return gmast.WalkContinue, nil
		}
		for c := para.FirstChild(); c != nil; c = c.NextSibling() {
			if link, ok := c.(*gmast.Link); ok {
				ref = string(link.Destination)
				return gmast.WalkStop, nil
			}
		}
		return gmast.WalkSkipChildren, nil
	})
	return ref
}

// NextRefHTML finds an element whose text begins with "Next:" and returns the
// href of the first anchor inside it.
func NextRefHTML(body []byte) string {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var ref string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if ref != "" {
			return
		}
		if n.Type == html.ElementNode {
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(htmlText(n))), nextMarker) {
				if href := firstAnchorHref(n); href != "" {
					ref = href
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return ref
}

func nodeText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			b.Write(t.Segment.Value(source))
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}

func htmlText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func firstAnchorHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				return attr.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href := firstAnchorHref(c); href != "" {
			return href
		}
	}
	return ""
}
