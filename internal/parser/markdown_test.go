package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	elements, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byText := map[string]RawElement{}
	for _, e := range elements {
		byText[e.Text] = e
	}

	h1, ok := byText["Title"]
	if !ok || h1.Category != CategoryTitle || h1.Metadata.HeadingLevel != 1 {
		t.Fatalf("expected level-1 Title element, got %+v", h1)
	}
	if h1.Metadata.ParentID != "" {
		t.Errorf("h1 should have no parent, got %q", h1.Metadata.ParentID)
	}

	intro, ok := byText["Intro text."]
	if !ok || intro.Category != CategoryNarrativeText {
		t.Fatalf("expected NarrativeText intro element, got %+v", intro)
	}
	if intro.Metadata.ParentID != h1.ID {
		t.Errorf("intro parent: expected h1 id %q, got %q", h1.ID, intro.Metadata.ParentID)
	}

	secA := byText["Section A"]
	if secA.Metadata.HeadingLevel != 2 || secA.Metadata.ParentID != h1.ID {
		t.Errorf("Section A: expected level 2 under h1, got %+v", secA.Metadata)
	}

	sub := byText["Subsection A1"]
	if sub.Metadata.HeadingLevel != 3 || sub.Metadata.ParentID != secA.ID {
		t.Errorf("Subsection A1: expected level 3 under Section A, got %+v", sub.Metadata)
	}

	// Section B is a sibling of Section A: its parent must be the h1 again.
	secB := byText["Section B"]
	if secB.Metadata.ParentID != h1.ID {
		t.Errorf("Section B parent: expected h1 id %q, got %q", h1.ID, secB.Metadata.ParentID)
	}

	contentB := byText["Section B content."]
	if contentB.Metadata.ParentID != secB.ID {
		t.Errorf("Section B content parent: expected %q, got %q", secB.ID, contentB.Metadata.ParentID)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	elements, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(elements) != 2 {
		t.Fatalf("expected 2 elements for headingless markdown, got %d", len(elements))
	}
	for i, e := range elements {
		if e.Category != CategoryNarrativeText {
			t.Errorf("element[%d]: expected NarrativeText, got %q", i, e.Category)
		}
		if e.Metadata.ParentID != "" {
			t.Errorf("element[%d]: expected no parent, got %q", i, e.Metadata.ParentID)
		}
	}
}

func TestMarkdownParser_CodeBlocksAndLists(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n- first endpoint\n- second endpoint\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	elements, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var listItems, codeBlocks int
	for _, e := range elements {
		switch e.Category {
		case CategoryListItem:
			listItems++
		case CategoryCodeSnippet:
			codeBlocks++
			if !strings.Contains(e.Text, "GET /api/users") {
				t.Errorf("code element should contain code text, got %q", e.Text)
			}
		}
	}
	if listItems != 2 {
		t.Errorf("expected 2 list items, got %d", listItems)
	}
	if codeBlocks != 1 {
		t.Errorf("expected 1 code block, got %d", codeBlocks)
	}

	last := elements[len(elements)-1]
	if last.Text != "More text after code." || last.Category != CategoryNarrativeText {
		t.Errorf("unexpected final element: %+v", last)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	elements, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("expected 0 elements, got %d", len(elements))
	}
}
