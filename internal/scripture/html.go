package scripture

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PlainText strips markup from verse text returned by the scripture API.
// Footnote and cross-reference markers (<sup>) are dropped entirely.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseWhitespace(s)
	}

	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return collapseWhitespace(html.UnescapeString(s))
	}

	var buf strings.Builder
	for _, n := range nodes {
		extractText(n, &buf)
	}
	return collapseWhitespace(buf.String())
}

func extractText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "sup", "script", "style":
			return
		case "br", "p", "div":
			buf.WriteByte(' ')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
