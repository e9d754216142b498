// Package htmltext converts job posting markup into plain text.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {},
	"dd": {}, "div": {}, "dl": {}, "dt": {}, "footer": {}, "form": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "main": {}, "nav": {}, "ol": {},
	"p": {}, "pre": {}, "section": {}, "table": {}, "td": {}, "th": {},
	"tr": {}, "ul": {},
}

// Converter renders HTML as plain text: visible text only, one line per
// block element, whitespace collapsed within a line. Newlines inside text
// are kept so markdown-style bodies keep their line structure.
type Converter struct{}

// Text converts markup to plain text. Input without tags passes through
// with only whitespace normalized.
func (Converter) Text(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}

		_, block := blockElements[n.Data]
		if n.Type == html.ElementNode && block {
			buf.WriteString("\n")
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && block {
			buf.WriteString("\n")
		}
	}
	walk(doc)

	return collapse(buf.String()), nil
}

func collapse(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
