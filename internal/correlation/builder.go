package correlation

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"docgraph/internal/model"
)

// Builder constructs correlation graphs over a document's chunks. Adjacency
// edges link consecutive chunks; semantic edges link non-neighboring chunks
// whose word sets are similar enough.
type Builder struct {
	similarityThreshold float64
	buildAdjacent       bool
	buildSemantic       bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithoutAdjacent disables adjacency edges.
func WithoutAdjacent() Option {
	return func(b *Builder) { b.buildAdjacent = false }
}

// WithoutSemantic disables semantic similarity edges.
func WithoutSemantic() Option {
	return func(b *Builder) { b.buildSemantic = false }
}

// NewBuilder creates a builder with the given semantic similarity threshold.
func NewBuilder(similarityThreshold float64, opts ...Option) *Builder {
	b := &Builder{
		similarityThreshold: similarityThreshold,
		buildAdjacent:       true,
		buildSemantic:       true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildGraph produces the correlation graph for one document's chunks.
// An empty input yields an empty graph with zero density.
func (b *Builder) BuildGraph(documentID uuid.UUID, chunks []model.TextChunk) *model.CorrelationGraph {
	graph := &model.CorrelationGraph{
		DocumentID: documentID,
		Nodes:      make([]uuid.UUID, len(chunks)),
		Edges:      []model.ChunkCorrelation{},
	}
	for i, chunk := range chunks {
		graph.Nodes[i] = chunk.ID
	}
	graph.NodeCount = len(graph.Nodes)

	if b.buildAdjacent {
		b.addAdjacentEdges(graph, chunks)
	}
	if b.buildSemantic {
		b.addSemanticEdges(graph, chunks)
	}
	return graph
}

// addAdjacentEdges links each chunk to its successor in index order with
// weight 1.0.
func (b *Builder) addAdjacentEdges(graph *model.CorrelationGraph, chunks []model.TextChunk) {
	ordered := make([]model.TextChunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	for i := 1; i < len(ordered); i++ {
		graph.AddCorrelation(model.ChunkCorrelation{
			ID:            uuid.New(),
			SourceChunkID: ordered[i-1].ID,
			TargetChunkID: ordered[i].ID,
			Type:          model.CorrelationAdjacent,
			Weight:        1.0,
			Metadata:      map[string]any{"distance": 1},
		})
	}
}

// addSemanticEdges links chunk pairs whose Jaccard word similarity reaches
// the threshold. Neighboring chunks are skipped since adjacency already
// covers them and overlap would inflate their similarity.
func (b *Builder) addSemanticEdges(graph *model.CorrelationGraph, chunks []model.TextChunk) {
	wordSets := make([]map[string]bool, len(chunks))
	for i, chunk := range chunks {
		wordSets[i] = wordSet(chunk.Text)
	}

	for i := 0; i < len(chunks); i++ {
		for j := i + 1; j < len(chunks); j++ {
			distance := chunks[j].Index - chunks[i].Index
			if distance < 0 {
				distance = -distance
			}
			if distance <= 1 {
				continue
			}
			similarity := jaccard(wordSets[i], wordSets[j])
			if similarity >= b.similarityThreshold {
				graph.AddCorrelation(model.ChunkCorrelation{
					ID:            uuid.New(),
					SourceChunkID: chunks[i].ID,
					TargetChunkID: chunks[j].ID,
					Type:          model.CorrelationSemantic,
					Weight:        similarity,
					Metadata:      map[string]any{"similarity": similarity},
				})
			}
		}
	}
}

// wordSet lower-cases the text and collects its whitespace-delimited words.
func wordSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = true
	}
	return set
}

// jaccard computes |a ∩ b| / |a ∪ b|. Two empty sets score 0.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for word := range a {
		if b[word] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
