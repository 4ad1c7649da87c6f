package normalizer

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"docgraph/internal/model"
	"docgraph/internal/nlp"
	"docgraph/internal/parser"
)

// minDetectableLength is the shortest text worth running language detection
// on; shorter samples are too noisy.
const minDetectableLength = 20

// elementTypeMap translates parser category labels to canonical element
// types. Unknown categories fall through to UncategorizedText.
var elementTypeMap = map[string]model.ElementType{
	"Title":         model.ElementTitle,
	"NarrativeText": model.ElementNarrativeText,
	"ListItem":      model.ElementListItem,
	"Table":         model.ElementTable,
	"Image":         model.ElementImage,
	"Header":        model.ElementHeader,
	"Footer":        model.ElementFooter,
	"PageBreak":     model.ElementPageBreak,
	"Formula":       model.ElementFormula,
	"FigureCaption": model.ElementNarrativeText,
	"Address":       model.ElementNarrativeText,
	"EmailAddress":  model.ElementNarrativeText,
	"CodeSnippet":   model.ElementCode,
}

// Config controls normalization behavior.
type Config struct {
	DetectLanguage  bool
	DefaultLanguage model.Language
	MinTextLength   int // elements with shorter trimmed text are dropped
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DetectLanguage:  true,
		DefaultLanguage: model.LangUnknown,
		MinTextLength:   1,
	}
}

// Normalizer converts raw parsed elements into canonical NormalizedElements.
// It never fails: a missing detection backend silently degrades to the
// configured default language.
type Normalizer struct {
	cfg      Config
	detector nlp.LanguageDetector
}

// New creates a normalizer. detector may be nil.
func New(cfg Config, detector nlp.LanguageDetector) *Normalizer {
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 1
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = model.LangUnknown
	}
	return &Normalizer{cfg: cfg, detector: detector}
}

// Normalize converts one raw element at the given document position.
// The second return value is false when the element should be skipped.
func (n *Normalizer) Normalize(raw parser.RawElement, position int) (model.NormalizedElement, bool) {
	trimmed := strings.TrimSpace(raw.Text)
	if len(trimmed) < n.cfg.MinTextLength {
		return model.NormalizedElement{}, false
	}

	elementType, ok := elementTypeMap[raw.Category]
	if !ok {
		elementType = model.ElementUncategorized
	}

	// Empty page breaks carry no content worth chunking.
	if elementType == model.ElementPageBreak && trimmed == "" {
		return model.NormalizedElement{}, false
	}

	headingLevel := raw.Metadata.HeadingLevel
	if elementType == model.ElementTitle && headingLevel == 0 {
		headingLevel = 1
	}

	var parentID uuid.UUID
	if raw.Metadata.ParentID != "" {
		if id, err := uuid.Parse(raw.Metadata.ParentID); err == nil {
			parentID = id
		}
	}

	metadata := map[string]any{}
	if raw.Metadata.PageNumber > 0 {
		metadata["page_number"] = raw.Metadata.PageNumber
	}
	if raw.Metadata.ParentID != "" {
		metadata["parent_id"] = raw.Metadata.ParentID
	}
	if len(raw.Metadata.Languages) > 0 {
		metadata["languages"] = raw.Metadata.Languages
	}

	return model.NormalizedElement{
		ID:           uuid.New(),
		Type:         elementType,
		Text:         raw.Text,
		Language:     n.detectElementLanguage(raw.Text),
		PageNumber:   raw.Metadata.PageNumber,
		Position:     position,
		ParentID:     parentID,
		HeadingLevel: headingLevel,
		Metadata:     metadata,
	}, true
}

// NormalizeAll converts a raw element sequence, dropping skipped elements.
// Position reflects the raw input order.
func (n *Normalizer) NormalizeAll(raw []parser.RawElement) []model.NormalizedElement {
	normalized := make([]model.NormalizedElement, 0, len(raw))
	for position, element := range raw {
		if norm, ok := n.Normalize(element, position); ok {
			normalized = append(normalized, norm)
		}
	}
	return normalized
}

func (n *Normalizer) detectElementLanguage(text string) model.Language {
	if !n.cfg.DetectLanguage || utf8.RuneCountInString(text) < minDetectableLength {
		return n.cfg.DefaultLanguage
	}
	if n.detector == nil || !n.detector.Available() {
		return n.cfg.DefaultLanguage
	}
	return n.detector.Detect(text)
}

// DetectDocumentLanguage returns the dominant language across elements,
// weighting each known language by cumulative character count. Ties go to
// the language seen first in element order. Falls back to the configured
// default when nothing is known.
func (n *Normalizer) DetectDocumentLanguage(elements []model.NormalizedElement) model.Language {
	if len(elements) == 0 {
		return n.cfg.DefaultLanguage
	}

	scores := map[model.Language]int{}
	var order []model.Language
	for _, elem := range elements {
		if elem.Language == model.LangUnknown {
			continue
		}
		if _, seen := scores[elem.Language]; !seen {
			order = append(order, elem.Language)
		}
		scores[elem.Language] += utf8.RuneCountInString(elem.Text)
	}

	if len(order) == 0 {
		return n.cfg.DefaultLanguage
	}

	best := order[0]
	for _, lang := range order[1:] {
		if scores[lang] > scores[best] {
			best = lang
		}
	}
	return best
}
