package chunker

import (
	"strings"
	"unicode"

	"docgraph/internal/model"
)

// SentenceChunker splits at sentence boundaries ([.!?] followed by
// whitespace) and packs sentences into size-bounded chunks with
// sentence-aligned overlap. Suitable for languages with whitespace-delimited
// words; token counts are whitespace word counts.
type SentenceChunker struct {
	language     model.Language
	chunkSize    int
	chunkOverlap int
}

func NewSentenceChunker(language model.Language, chunkSize, chunkOverlap int) *SentenceChunker {
	return &SentenceChunker{
		language:     language,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

func (c *SentenceChunker) Language() model.Language {
	return c.language
}

// CountTokens approximates tokens by whitespace word count.
func (c *SentenceChunker) CountTokens(text string) int {
	return len(strings.Fields(text))
}

// ChunkText splits text into chunks at sentence boundaries. A single
// sentence longer than the chunk size is emitted as its own oversized chunk
// rather than force-split.
func (c *SentenceChunker) ChunkText(text string) []string {
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return c.chunkBySize(text)
	}

	var chunks []string
	var buf []string
	bufLen := 0

	for _, sentence := range sentences {
		if bufLen+len(sentence) > c.chunkSize && len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, " "))
			buf, bufLen = overlapTail(buf, c.chunkOverlap)
		}
		buf = append(buf, sentence)
		bufLen += len(sentence)
	}

	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}
	return chunks
}

// chunkBySize is the fallback when no sentence boundary exists: fixed-size
// windows that prefer breaking at the nearest preceding whitespace.
func (c *SentenceChunker) chunkBySize(text string) []string {
	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.chunkSize
		if end < len(text) {
			if breakPos := strings.LastIndex(text[start:end], " "); breakPos > 0 {
				end = start + breakPos
			}
		} else {
			end = len(text)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - c.chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// overlapTail returns the trailing sentences of buf whose combined length
// stays within the overlap budget, along with that length. The seed is
// always sentence-aligned, never an arbitrary character cut.
func overlapTail(buf []string, overlap int) ([]string, int) {
	if overlap <= 0 {
		return nil, 0
	}
	tailLen := 0
	i := len(buf)
	for i > 0 && tailLen+len(buf[i-1]) <= overlap {
		i--
		tailLen += len(buf[i])
	}
	tail := make([]string, len(buf)-i)
	copy(tail, buf[i:])
	return tail, tailLen
}

// splitSentences splits on [.!?] followed by whitespace, keeping the
// terminator with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
