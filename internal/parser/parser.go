package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Element category labels as emitted by the format backends. The normalizer
// maps these onto the canonical element-type enum; categories it does not
// recognize fall through to UncategorizedText.
const (
	CategoryTitle         = "Title"
	CategoryNarrativeText = "NarrativeText"
	CategoryListItem      = "ListItem"
	CategoryTable         = "Table"
	CategoryImage         = "Image"
	CategoryHeader        = "Header"
	CategoryFooter        = "Footer"
	CategoryPageBreak     = "PageBreak"
	CategoryFormula       = "Formula"
	CategoryCodeSnippet   = "CodeSnippet"
)

// RawElement is a structural element as produced by a format backend,
// before normalization.
type RawElement struct {
	ID       string // backend-assigned id
	Category string
	Text     string
	Metadata RawMetadata
}

// RawMetadata carries source hints attached to a raw element.
type RawMetadata struct {
	PageNumber   int      // 0 if unknown
	ParentID     string   // id of the enclosing heading element, if any
	HeadingLevel int      // for Title elements
	Languages    []string // language hints from the source, if any
}

// Parser converts raw document bytes into an ordered element sequence.
type Parser interface {
	Parse(r io.Reader, filename string) ([]RawElement, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// builder accumulates raw elements while tracking the open heading stack, so
// every element carries a parent link to its nearest enclosing heading.
type builder struct {
	elements []RawElement
	stack    []headingRef
}

type headingRef struct {
	level int
	id    string
}

func (b *builder) parentID() string {
	if len(b.stack) == 0 {
		return ""
	}
	return b.stack[len(b.stack)-1].id
}

// addHeading emits a Title element at the given level and makes it the
// current parent for subsequent elements.
func (b *builder) addHeading(text string, level, page int) string {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	id := uuid.NewString()
	b.elements = append(b.elements, RawElement{
		ID:       id,
		Category: CategoryTitle,
		Text:     text,
		Metadata: RawMetadata{
			PageNumber:   page,
			ParentID:     b.parentID(),
			HeadingLevel: level,
		},
	})
	b.stack = append(b.stack, headingRef{level: level, id: id})
	return id
}

// add emits a non-heading element under the current heading.
func (b *builder) add(category, text string, page int) {
	b.elements = append(b.elements, RawElement{
		ID:       uuid.NewString(),
		Category: category,
		Text:     text,
		Metadata: RawMetadata{
			PageNumber: page,
			ParentID:   b.parentID(),
		},
	})
}
