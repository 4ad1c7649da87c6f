package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings become Title
// elements (with heading level), list entries become ListItem elements,
// fenced code becomes CodeSnippet, everything else NarrativeText.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]RawElement, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var b builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title != "" {
				b.addHeading(title, node.Level, 0)
			}

		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				t := extractText(item, src)
				if t != "" {
					b.add(CategoryListItem, t, 0)
				}
			}

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			t := extractText(n, src)
			if t != "" {
				b.add(CategoryCodeSnippet, t, 0)
			}

		default:
			t := extractText(n, src)
			if t != "" {
				b.add(CategoryNarrativeText, t, 0)
			}
		}
	}

	return b.elements, nil
}

// extractText gets the text content of a goldmark AST node. Source lines are
// read only for leaf blocks (code blocks); blocks with inline children would
// otherwise emit their text twice.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			// Recurse for nested inlines and list item contents.
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
