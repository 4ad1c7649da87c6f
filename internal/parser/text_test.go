package parser

import (
	"strings"
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elements))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if elements[i].Text != w {
			t.Errorf("element[%d]: expected %q, got %q", i, w, elements[i].Text)
		}
		if elements[i].Category != CategoryNarrativeText {
			t.Errorf("element[%d]: expected category %q, got %q", i, CategoryNarrativeText, elements[i].Category)
		}
		if elements[i].ID == "" {
			t.Errorf("element[%d]: expected a generated id", i)
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("expected 0 elements for empty input, got %d", len(elements))
	}
}

func TestTextParser_SingleLine(t *testing.T) {
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader("Hello world"), "single.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	if elements[0].Text != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", elements[0].Text)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty elements.
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	elements, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
}

func TestForFile_Dispatch(t *testing.T) {
	cases := []struct {
		filename string
		ok       bool
	}{
		{"doc.txt", true},
		{"doc.md", true},
		{"doc.markdown", true},
		{"doc.csv", true},
		{"doc.html", true},
		{"doc.htm", true},
		{"doc.pdf", true},
		{"doc.docx", true},
		{"doc.xlsx", false},
		{"doc", false},
	}
	for _, tc := range cases {
		_, err := ForFile(tc.filename)
		if tc.ok && err != nil {
			t.Errorf("ForFile(%q): unexpected error %v", tc.filename, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ForFile(%q): expected error", tc.filename)
		}
	}
}
