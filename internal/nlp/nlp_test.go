package nlp

import (
	"testing"

	"docgraph/internal/model"
)

func TestWhatlangDetector_English(t *testing.T) {
	d := NewWhatlangDetector()
	if !d.Available() {
		t.Fatal("whatlang detector should always be available")
	}
	text := "The quick brown fox jumps over the lazy dog and keeps on running through the fields."
	if got := d.Detect(text); got != model.LangEnglish {
		t.Errorf("expected %q, got %q", model.LangEnglish, got)
	}
}

func TestWhatlangDetector_Japanese(t *testing.T) {
	d := NewWhatlangDetector()
	text := "これは日本語の文章です。形態素解析を使って自然な境界で分割します。"
	if got := d.Detect(text); got != model.LangJapanese {
		t.Errorf("expected %q, got %q", model.LangJapanese, got)
	}
}

func TestWhatlangDetector_EmptyText(t *testing.T) {
	d := NewWhatlangDetector()
	if got := d.Detect(""); got != model.LangUnknown {
		t.Errorf("expected %q for empty text, got %q", model.LangUnknown, got)
	}
}

func TestKagomeAnalyzer_SegmentsJapanese(t *testing.T) {
	a := NewKagomeAnalyzer()
	if !a.Available() {
		t.Skip("kagome analyzer unavailable")
	}

	morphemes := a.Analyze("これは日本語のテキストです。")
	if len(morphemes) < 5 {
		t.Fatalf("expected several morphemes, got %d", len(morphemes))
	}
	for i, m := range morphemes {
		if m.Surface == "" {
			t.Errorf("morpheme %d has empty surface", i)
		}
	}
}

func TestKagomeAnalyzer_EmptyText(t *testing.T) {
	a := NewKagomeAnalyzer()
	if got := a.Analyze(""); len(got) != 0 {
		t.Errorf("expected no morphemes for empty text, got %d", len(got))
	}
}

func TestKagomeAnalyzer_ZeroValueUnavailable(t *testing.T) {
	var a *KagomeAnalyzer
	if a.Available() {
		t.Error("nil analyzer must report unavailable")
	}
}
