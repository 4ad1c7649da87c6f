package chunker

import (
	"strings"

	"github.com/google/uuid"

	"docgraph/internal/model"
)

// elementSeparator joins element texts in the working concatenation. Element
// spans are recorded before the separator is appended, and the trailing
// separator is trimmed, so offsets are stable.
const elementSeparator = "\n\n"

// Chunker segments text for one language.
type Chunker interface {
	Language() model.Language
	CountTokens(text string) int
	ChunkText(text string) []string
}

// span is the half-open byte range an element occupies in the concatenation.
type span struct {
	start, end int
	id         uuid.UUID
}

// ChunkElements concatenates the element texts in document order, runs the
// chunker over the result, and maps every produced chunk back to byte
// offsets and overlapping source elements.
func ChunkElements(c Chunker, elements []model.NormalizedElement, documentID uuid.UUID) []model.TextChunk {
	if len(elements) == 0 {
		return nil
	}

	combined, spans := combineElementText(elements)
	texts := c.ChunkText(combined)

	chunks := make([]model.TextChunk, 0, len(texts))
	searchFrom := 0
	for idx, text := range texts {
		// Forward search from just past the previous chunk's start gives
		// first-occurrence-after-prior-start semantics when a chunk's text
		// recurs verbatim.
		start := indexFrom(combined, text, searchFrom)
		if start == -1 {
			start = searchFrom
		}
		end := start + len(text)
		searchFrom = start + 1

		chunks = append(chunks, model.TextChunk{
			ID:             uuid.New(),
			Text:           text,
			Language:       c.Language(),
			SourceElements: sourceElements(start, end, spans),
			DocumentID:     documentID,
			Index:          idx,
			StartChar:      start,
			EndChar:        end,
			TokenCount:     c.CountTokens(text),
			Metadata:       map[string]any{},
		})
	}
	return chunks
}

// CombinedText exposes the concatenation used for offset bookkeeping, so
// callers can resolve chunk offsets back to document text.
func CombinedText(elements []model.NormalizedElement) string {
	combined, _ := combineElementText(elements)
	return combined
}

func combineElementText(elements []model.NormalizedElement) (string, []span) {
	var b strings.Builder
	spans := make([]span, 0, len(elements))
	for _, elem := range elements {
		start := b.Len()
		b.WriteString(elem.Text)
		spans = append(spans, span{start: start, end: b.Len(), id: elem.ID})
		b.WriteString(elementSeparator)
	}
	return strings.TrimSuffix(b.String(), elementSeparator), spans
}

func indexFrom(s, substr string, from int) int {
	if from < 0 || from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i < 0 {
		return -1
	}
	return from + i
}

// sourceElements returns every element whose span overlaps [chunkStart,
// chunkEnd).
func sourceElements(chunkStart, chunkEnd int, spans []span) []uuid.UUID {
	var sources []uuid.UUID
	for _, sp := range spans {
		if sp.start < chunkEnd && sp.end > chunkStart {
			sources = append(sources, sp.id)
		}
	}
	return sources
}
