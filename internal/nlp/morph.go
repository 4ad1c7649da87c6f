package nlp

import (
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Morpheme is the smallest segmentation unit for languages where whitespace
// does not delimit words.
type Morpheme struct {
	Surface string
}

// MorphAnalyzer segments text into morphemes. Like the language detector,
// absence is a valid runtime state handled by the caller's fallback path.
type MorphAnalyzer interface {
	Available() bool
	Analyze(text string) []Morpheme
}

// KagomeAnalyzer segments Japanese text with the kagome tokenizer and the
// embedded IPA dictionary.
type KagomeAnalyzer struct {
	tok *tokenizer.Tokenizer
}

// NewKagomeAnalyzer builds the analyzer. Construction failure is not an
// error: the analyzer reports itself unavailable and callers degrade.
func NewKagomeAnalyzer() *KagomeAnalyzer {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return &KagomeAnalyzer{}
	}
	return &KagomeAnalyzer{tok: t}
}

func (a *KagomeAnalyzer) Available() bool {
	return a != nil && a.tok != nil
}

func (a *KagomeAnalyzer) Analyze(text string) []Morpheme {
	if !a.Available() || text == "" {
		return nil
	}
	tokens := a.tok.Tokenize(text)
	morphemes := make([]Morpheme, 0, len(tokens))
	for _, tk := range tokens {
		if tk.Surface == "" {
			continue
		}
		morphemes = append(morphemes, Morpheme{Surface: tk.Surface})
	}
	return morphemes
}
