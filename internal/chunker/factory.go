package chunker

import (
	"docgraph/internal/model"
	"docgraph/internal/nlp"
)

// ForLanguage returns the chunker for a language. Japanese text gets the
// morphology-aware chunker; everything else, including unknown languages,
// uses sentence-based chunking.
func ForLanguage(language model.Language, chunkSize, chunkOverlap int, analyzer nlp.MorphAnalyzer) Chunker {
	if language == model.LangJapanese {
		return NewMorphemeChunker(language, chunkSize, chunkOverlap, analyzer)
	}
	return NewSentenceChunker(language, chunkSize, chunkOverlap)
}
