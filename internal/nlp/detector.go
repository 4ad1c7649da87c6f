package nlp

import (
	"github.com/abadojack/whatlanggo"

	"docgraph/internal/model"
)

// LanguageDetector guesses the language of a text sample. Absence of a
// working backend is a valid runtime state: callers must probe Available()
// and fall back to a configured default.
type LanguageDetector interface {
	Available() bool
	Detect(text string) model.Language
}

// WhatlangDetector detects languages with the whatlanggo trigram profiles.
type WhatlangDetector struct{}

func NewWhatlangDetector() *WhatlangDetector {
	return &WhatlangDetector{}
}

func (d *WhatlangDetector) Available() bool {
	return true
}

// Detect returns the best-guess language for text, mapped onto the chunking
// languages. Anything outside that set comes back as unknown.
func (d *WhatlangDetector) Detect(text string) model.Language {
	if text == "" {
		return model.LangUnknown
	}
	info := whatlanggo.Detect(text)
	switch info.Lang {
	case whatlanggo.Jpn:
		return model.LangJapanese
	case whatlanggo.Eng:
		return model.LangEnglish
	case whatlanggo.Cmn:
		return model.LangChinese
	case whatlanggo.Kor:
		return model.LangKorean
	default:
		return model.LangUnknown
	}
}
