package decoder

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLDecoder handles HTML files. h1-h6 become bold spans sized by depth;
// paragraphs, list items and cells become body spans, bold when wrapped in
// <b>/<strong> and italic when wrapped in <i>/<em>.
type HTMLDecoder struct{}

func (d *HTMLDecoder) Decode(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	f := newFlow()
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				f.add(textContent(n), style{size: headingSize(level), bold: true})
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "hr":
				f.breakPage()
				return
			case "p", "li", "td", "th", "blockquote", "dt", "dd", "caption":
				f.add(textContent(n), style{
					size:   bodySize,
					bold:   wrappedIn(n, "b", "strong"),
					italic: wrappedIn(n, "i", "em"),
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return f.document(filename), nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// wrappedIn reports whether all of n's non-blank content sits inside one of
// the given inline tags.
func wrappedIn(n *html.Node, tags ...string) bool {
	found := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		case html.ElementNode:
			match := false
			for _, t := range tags {
				if c.Data == t {
					match = true
					break
				}
			}
			if !match {
				return false
			}
			found = true
		}
	}
	return found
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
