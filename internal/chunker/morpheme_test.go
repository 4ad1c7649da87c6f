package chunker

import (
	"strings"
	"testing"

	"docgraph/internal/model"
	"docgraph/internal/nlp"
)

// fakeAnalyzer segments text into fixed two-rune surfaces, which is enough
// to exercise morpheme-boundary behavior deterministically.
type fakeAnalyzer struct {
	available bool
}

func (a *fakeAnalyzer) Available() bool { return a.available }

func (a *fakeAnalyzer) Analyze(text string) []nlp.Morpheme {
	var out []nlp.Morpheme
	runes := []rune(text)
	for i := 0; i < len(runes); i += 2 {
		end := i + 2
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, nlp.Morpheme{Surface: string(runes[i:end])})
	}
	return out
}

var _ nlp.MorphAnalyzer = (*fakeAnalyzer)(nil)

func TestMorphemeChunker_CountTokens(t *testing.T) {
	withAnalyzer := NewMorphemeChunker(model.LangJapanese, 100, 10, &fakeAnalyzer{available: true})
	if got := withAnalyzer.CountTokens("あいうえ"); got != 2 {
		t.Errorf("expected 2 morpheme tokens, got %d", got)
	}

	withoutAnalyzer := NewMorphemeChunker(model.LangJapanese, 100, 10, nil)
	if got := withoutAnalyzer.CountTokens("あいうえ"); got != 4 {
		t.Errorf("expected rune-count fallback of 4, got %d", got)
	}
	if got := withoutAnalyzer.CountTokens(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}
}

func TestMorphemeChunker_SplitsAtSentenceEnders(t *testing.T) {
	c := NewMorphemeChunker(model.LangJapanese, 20, 5, &fakeAnalyzer{available: true})
	input := "これは最初の文です。これは二番目の文です。これは三番目の文です。"

	chunks := c.ChunkText(input)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "これは最初の文です。" {
		t.Errorf("unexpected first chunk %q", chunks[0])
	}
	// Overlap seed starts at a morpheme boundary, not an arbitrary cut.
	if !strings.HasPrefix(chunks[1], "文です。") {
		t.Errorf("expected morpheme-aligned overlap seed, got %q", chunks[1])
	}
	if !strings.Contains(chunks[1], "これは二番目の文です。") {
		t.Errorf("second sentence missing from chunk %q", chunks[1])
	}
	if !strings.Contains(chunks[2], "これは三番目の文です。") {
		t.Errorf("third sentence missing from chunk %q", chunks[2])
	}
}

func TestMorphemeChunker_FallbackSnapsToPunctuation(t *testing.T) {
	// Without an analyzer the overlap boundary snaps to the next phrase or
	// sentence marker instead of a morpheme edge.
	c := NewMorphemeChunker(model.LangJapanese, 20, 5, nil)
	input := "これは最初の文です。これは二番目の文です。これは三番目の文です。"

	chunks := c.ChunkText(input)
	want := []string{"これは最初の文です。", "これは二番目の文です。", "これは三番目の文です。"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestMorphemeChunker_NoSentenceEnders(t *testing.T) {
	c := NewMorphemeChunker(model.LangJapanese, 4, 2, &fakeAnalyzer{available: true})

	chunks := c.ChunkText("あいうえおかきくけこ")
	want := []string{"あいうえ", "うえおか", "おかきく", "きくけこ"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestMorphemeChunker_NoSentenceEndersWithoutAnalyzer(t *testing.T) {
	c := NewMorphemeChunker(model.LangJapanese, 4, 0, nil)

	chunks := c.ChunkText("あいうえおかきくけこ")
	want := []string{"あいうえ", "おかきく", "けこ"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestMorphemeChunker_EmptyInput(t *testing.T) {
	c := NewMorphemeChunker(model.LangJapanese, 100, 10, &fakeAnalyzer{available: true})
	if chunks := c.ChunkText(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %v", chunks)
	}
}

func TestForLanguage_Dispatch(t *testing.T) {
	if _, ok := ForLanguage(model.LangJapanese, 500, 50, nil).(*MorphemeChunker); !ok {
		t.Error("expected morpheme chunker for Japanese")
	}
	for _, lang := range []model.Language{model.LangEnglish, model.LangChinese, model.LangKorean, model.LangUnknown} {
		if _, ok := ForLanguage(lang, 500, 50, nil).(*SentenceChunker); !ok {
			t.Errorf("expected sentence chunker for %q", lang)
		}
	}
}
