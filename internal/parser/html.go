package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Heading tags become Title elements, list
// items become ListItem, tables become one Table element each, and remaining
// block text becomes NarrativeText.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]RawElement, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var b builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if title := textContent(n); title != "" {
					b.addHeading(title, level, 0)
				}
				return // text already extracted
			}

			switch n.Data {
			case "script", "style", "nav":
				return
			case "header":
				if t := textContent(n); t != "" {
					b.add(CategoryHeader, t, 0)
				}
				return
			case "footer":
				if t := textContent(n); t != "" {
					b.add(CategoryFooter, t, 0)
				}
				return
			case "li":
				if t := textContent(n); t != "" {
					b.add(CategoryListItem, t, 0)
				}
				return
			case "table":
				if t := textContent(n); t != "" {
					b.add(CategoryTable, t, 0)
				}
				return
			case "pre", "code":
				if t := textContent(n); t != "" {
					b.add(CategoryCodeSnippet, t, 0)
				}
				return
			case "p", "blockquote":
				if t := textContent(n); t != "" {
					b.add(CategoryNarrativeText, t, 0)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return b.elements, nil
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
	return strings.TrimSpace(buf.String())
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
