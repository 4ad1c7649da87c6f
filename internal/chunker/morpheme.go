package chunker

import (
	"strings"
	"unicode/utf8"

	"docgraph/internal/model"
	"docgraph/internal/nlp"
)

// Sentence-final and phrase-boundary markers for Japanese-style text.
var (
	sentenceEnders = map[rune]bool{'。': true, '！': true, '？': true, '…': true, '‥': true}
	phraseMarkers  = map[rune]bool{'、': true, '　': true, '\n': true}
)

// MorphemeChunker handles languages without whitespace word boundaries. It
// splits on full-width sentence-final punctuation; with a morphological
// analyzer available, token counts are morpheme counts and overlap
// boundaries snap to morpheme boundaries. Without one it degrades to rune
// counts and punctuation-only boundaries.
type MorphemeChunker struct {
	language     model.Language
	chunkSize    int
	chunkOverlap int
	analyzer     nlp.MorphAnalyzer
}

// NewMorphemeChunker creates the chunker. analyzer may be nil.
func NewMorphemeChunker(language model.Language, chunkSize, chunkOverlap int, analyzer nlp.MorphAnalyzer) *MorphemeChunker {
	return &MorphemeChunker{
		language:     language,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		analyzer:     analyzer,
	}
}

func (c *MorphemeChunker) Language() model.Language {
	return c.language
}

func (c *MorphemeChunker) analyzerAvailable() bool {
	return c.analyzer != nil && c.analyzer.Available()
}

// CountTokens counts morphemes when the analyzer is available, runes
// otherwise.
func (c *MorphemeChunker) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if c.analyzerAvailable() {
		return len(c.analyzer.Analyze(text))
	}
	return utf8.RuneCountInString(text)
}

// ChunkText splits text at sentence-final punctuation and packs sentences
// into size-bounded chunks, measuring length in runes.
func (c *MorphemeChunker) ChunkText(text string) []string {
	if text == "" {
		return nil
	}

	sentences := splitSentencesFullWidth(text)
	if len(sentences) == 0 {
		return c.chunkByMorphemes(text)
	}

	var chunks []string
	var current []rune

	for _, sentence := range sentences {
		runes := []rune(sentence)
		if len(current)+len(runes) > c.chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.TrimSpace(string(current)))
			if c.chunkOverlap > 0 && len(current) > c.chunkOverlap {
				start := c.snapForward(current, len(current)-c.chunkOverlap)
				current = append([]rune{}, current[start:]...)
			} else {
				current = nil
			}
		}
		current = append(current, runes...)
	}

	if trimmed := strings.TrimSpace(string(current)); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// snapForward moves pos forward to the next natural boundary so overlap
// seeds never start mid-unit. With an analyzer the boundaries are morpheme
// edges; without one, the next phrase or sentence marker.
func (c *MorphemeChunker) snapForward(runes []rune, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(runes) {
		return len(runes)
	}

	if c.analyzerAvailable() {
		boundary := 0
		for _, m := range c.analyzer.Analyze(string(runes)) {
			if boundary >= pos {
				return boundary
			}
			boundary += utf8.RuneCountInString(m.Surface)
		}
		if boundary >= pos {
			return boundary
		}
		return len(runes)
	}

	for i := pos; i < len(runes); i++ {
		if phraseMarkers[runes[i]] || sentenceEnders[runes[i]] {
			return i + 1
		}
	}
	return pos
}

// chunkByMorphemes is the fallback when no sentence marker exists: pack
// morpheme surfaces directly, or fixed rune windows without an analyzer.
func (c *MorphemeChunker) chunkByMorphemes(text string) []string {
	if !c.analyzerAvailable() {
		var chunks []string
		runes := []rune(text)
		start := 0
		for start < len(runes) {
			end := start + c.chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, string(runes[start:end]))
			next := end - c.chunkOverlap
			if next <= start {
				next = end
			}
			start = next
		}
		return chunks
	}

	morphemes := c.analyzer.Analyze(text)

	var chunks []string
	var buf []string
	bufLen := 0

	for _, m := range morphemes {
		surfaceLen := utf8.RuneCountInString(m.Surface)
		if bufLen+surfaceLen > c.chunkSize && len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, ""))
			buf, bufLen = morphemeOverlapTail(buf, c.chunkOverlap)
		}
		buf = append(buf, m.Surface)
		bufLen += surfaceLen
	}

	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, ""))
	}
	return chunks
}

// morphemeOverlapTail mirrors overlapTail but measures rune lengths.
func morphemeOverlapTail(buf []string, overlap int) ([]string, int) {
	if overlap <= 0 {
		return nil, 0
	}
	tailLen := 0
	i := len(buf)
	for i > 0 {
		l := utf8.RuneCountInString(buf[i-1])
		if tailLen+l > overlap {
			break
		}
		i--
		tailLen += l
	}
	tail := make([]string, len(buf)-i)
	copy(tail, buf[i:])
	return tail, tailLen
}

// splitSentencesFullWidth splits on full-width sentence-final punctuation,
// keeping the terminator with its sentence.
func splitSentencesFullWidth(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if sentenceEnders[r] {
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
