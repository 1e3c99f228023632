// Package extract pulls readable text out of post markup.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Paragraphs returns the trimmed text of each <p> element in markup, in
// document order. Blocks that are empty after trimming are dropped. Parsing
// is best-effort: empty or unparsable markup yields an empty result, never
// an error.
func Paragraphs(markup string) []string {
	if strings.TrimSpace(markup) == "" {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				blocks = append(blocks, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return blocks
}

// Text joins the paragraph blocks of markup with newlines, producing the
// single string fed to the classifier.
func Text(markup string) string {
	return strings.Join(Paragraphs(markup), "\n")
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
