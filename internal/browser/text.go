package browser

import (
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "td": true, "th": true, "ul": true,
}

var invisibleTags = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true,
}

// VisibleText renders n roughly the way a browser's innerText does: block
// elements and <br> start new lines, runs of whitespace collapse, hidden
// subtrees are skipped and blank lines are dropped.
func VisibleText(n *html.Node) string {
	var b textBuilder
	b.walk(n)
	b.breakLine()
	return strings.Join(b.lines, "\n")
}

type textBuilder struct {
	lines []string
	cur   strings.Builder
}

func (b *textBuilder) breakLine() {
	line := strings.Join(strings.Fields(b.cur.String()), " ")
	if line != "" {
		b.lines = append(b.lines, line)
	}
	b.cur.Reset()
}

func (b *textBuilder) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.cur.WriteString(n.Data)
		return
	case html.ElementNode:
		if invisibleTags[n.Data] || isHidden(n) {
			return
		}
		if n.Data == "br" {
			b.breakLine()
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.breakLine()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
	if block {
		b.breakLine()
	}
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") {
				return true
			}
		}
	}
	return false
}
