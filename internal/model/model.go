package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ElementType classifies a structural unit extracted from a document.
type ElementType string

const (
	ElementTitle         ElementType = "Title"
	ElementNarrativeText ElementType = "NarrativeText"
	ElementListItem      ElementType = "ListItem"
	ElementTable         ElementType = "Table"
	ElementImage         ElementType = "Image"
	ElementHeader        ElementType = "Header"
	ElementFooter        ElementType = "Footer"
	ElementPageBreak     ElementType = "PageBreak"
	ElementFormula       ElementType = "Formula"
	ElementCode          ElementType = "Code"
	ElementUncategorized ElementType = "UncategorizedText"
)

// Language identifies a chunking language.
type Language string

const (
	LangJapanese Language = "ja"
	LangEnglish  Language = "en"
	LangChinese  Language = "zh"
	LangKorean   Language = "ko"
	LangUnknown  Language = "unknown"
)

// CorrelationType classifies an edge between two chunks.
type CorrelationType string

const (
	CorrelationAdjacent     CorrelationType = "adjacent"
	CorrelationSemantic     CorrelationType = "semantic"
	CorrelationReference    CorrelationType = "reference"
	CorrelationHierarchical CorrelationType = "hierarchical"
	CorrelationCooccurrence CorrelationType = "cooccurrence"
)

// NormalizedElement is a single structural element of a document in canonical
// form. Elements are created once by the normalizer and read-only afterwards.
type NormalizedElement struct {
	ID           uuid.UUID      `json:"id"`
	Type         ElementType    `json:"element_type"`
	Text         string         `json:"text"`
	Language     Language       `json:"language"`
	PageNumber   int            `json:"page_number,omitempty"` // 0 if unknown
	Position     int            `json:"position"`              // 0-indexed document order
	ParentID     uuid.UUID      `json:"parent_id,omitempty"`   // uuid.Nil if none
	HeadingLevel int            `json:"heading_level,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// TextChunk is a bounded span of document text prepared for retrieval
// indexing. StartChar/EndChar index into the concatenation of the source
// element texts.
type TextChunk struct {
	ID             uuid.UUID      `json:"id"`
	Text           string         `json:"text"`
	Language       Language       `json:"language"`
	SourceElements []uuid.UUID    `json:"source_elements"`
	DocumentID     uuid.UUID      `json:"document_id"`
	Index          int            `json:"chunk_index"`
	StartChar      int            `json:"start_char"`
	EndChar        int            `json:"end_char"`
	TokenCount     int            `json:"token_count"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ChunkCorrelation is a weighted, typed edge between two chunks.
type ChunkCorrelation struct {
	ID            uuid.UUID       `json:"id"`
	SourceChunkID uuid.UUID       `json:"source_chunk_id"`
	TargetChunkID uuid.UUID       `json:"target_chunk_id"`
	Type          CorrelationType `json:"correlation_type"`
	Weight        float64         `json:"weight"` // in [0,1]
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

// CorrelationGraph holds all correlations between a document's chunks.
// It is mutable during construction via AddCorrelation and treated as
// immutable once placed in an ImportResult.
type CorrelationGraph struct {
	DocumentID uuid.UUID          `json:"document_id"`
	Nodes      []uuid.UUID        `json:"nodes"`
	Edges      []ChunkCorrelation `json:"edges"`
	NodeCount  int                `json:"node_count"`
	EdgeCount  int                `json:"edge_count"`
	Density    float64            `json:"density"`
}

// AddCorrelation appends an edge and refreshes edge count and density.
func (g *CorrelationGraph) AddCorrelation(c ChunkCorrelation) {
	g.Edges = append(g.Edges, c)
	g.EdgeCount = len(g.Edges)
	g.updateDensity()
}

// updateDensity recomputes density as edges over the maximum possible
// undirected edge count n*(n-1)/2. Zero for graphs with fewer than 2 nodes.
func (g *CorrelationGraph) updateDensity() {
	if g.NodeCount > 1 {
		maxEdges := float64(g.NodeCount*(g.NodeCount-1)) / 2
		g.Density = float64(g.EdgeCount) / maxEdges
	}
}

// ImportConfig controls the import pipeline.
type ImportConfig struct {
	ChunkSize                   int      `json:"chunk_size"`    // target size in characters
	ChunkOverlap                int      `json:"chunk_overlap"` // overlap in characters
	AutoDetectLanguage          bool     `json:"auto_detect_language"`
	DefaultLanguage             Language `json:"default_language"`
	BuildCorrelationGraph       bool     `json:"build_correlation_graph"`
	SemanticSimilarityThreshold float64  `json:"semantic_similarity_threshold"`
}

// DefaultImportConfig returns the standard pipeline settings.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		ChunkSize:                   1000,
		ChunkOverlap:                100,
		AutoDetectLanguage:          true,
		DefaultLanguage:             LangEnglish,
		BuildCorrelationGraph:       true,
		SemanticSimilarityThreshold: 0.7,
	}
}

// Validate checks the configured ranges.
func (c ImportConfig) Validate() error {
	if c.ChunkSize < 100 || c.ChunkSize > 10000 {
		return fmt.Errorf("chunk_size must be in [100,10000], got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be >= 0, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.SemanticSimilarityThreshold < 0 || c.SemanticSimilarityThreshold > 1 {
		return fmt.Errorf("semantic_similarity_threshold must be in [0,1], got %g", c.SemanticSimilarityThreshold)
	}
	return nil
}

// DocumentMetadata describes the source document of an import.
type DocumentMetadata struct {
	SourcePath  string    `json:"source_path"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"` // extension, lower-cased
	FileSize    int64     `json:"file_size"`
	ContentHash string    `json:"content_hash,omitempty"` // SHA-256 hex of the raw bytes
	PageCount   int       `json:"page_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Language    Language  `json:"language"`
}

// Import result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ImportResult is the artifact produced by importing one document.
type ImportResult struct {
	ID       uuid.UUID        `json:"id"`
	Status   string           `json:"status"`
	Document DocumentMetadata `json:"document_metadata"`

	Elements     []NormalizedElement `json:"elements,omitempty"`
	ElementCount int                 `json:"element_count"`

	Chunks     []TextChunk `json:"chunks,omitempty"`
	ChunkCount int         `json:"chunk_count"`

	CorrelationGraph *CorrelationGraph `json:"correlation_graph,omitempty"`

	TotalTokens           int     `json:"total_tokens"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`

	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// SetChunks records chunks along with the derived counters.
func (r *ImportResult) SetChunks(chunks []TextChunk) {
	r.Chunks = chunks
	r.ChunkCount = len(chunks)
	r.TotalTokens = 0
	for _, c := range chunks {
		r.TotalTokens += c.TokenCount
	}
}
