package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docgraph/internal/chunker"
	"docgraph/internal/correlation"
	"docgraph/internal/model"
	"docgraph/internal/nlp"
	"docgraph/internal/normalizer"
	"docgraph/internal/parser"
)

// Sentinel errors raised before the pipeline runs. Failures inside the
// pipeline are captured in the result instead.
var (
	ErrInputNotFound     = errors.New("input file not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Importer runs the document import pipeline: parse, normalize, chunk, and
// optionally correlate. One importer serves concurrent imports; chunker
// instances are cached per language and size settings.
type Importer struct {
	log      *slog.Logger
	detector nlp.LanguageDetector
	analyzer nlp.MorphAnalyzer
	stats    *Stats

	mu       sync.Mutex
	chunkers map[chunkerKey]chunker.Chunker
}

type chunkerKey struct {
	language     model.Language
	chunkSize    int
	chunkOverlap int
}

// New creates an importer. detector and analyzer may be nil; the pipeline
// degrades to configured defaults without them.
func New(log *slog.Logger, detector nlp.LanguageDetector, analyzer nlp.MorphAnalyzer) *Importer {
	return &Importer{
		log:      log,
		detector: detector,
		analyzer: analyzer,
		stats:    NewStats(time.Hour),
		chunkers: make(map[chunkerKey]chunker.Chunker),
	}
}

// Stats returns the rolling import statistics.
func (im *Importer) Stats() *Stats {
	return im.stats
}

// ImportDocument imports a single file from disk.
func (im *Importer) ImportDocument(ctx context.Context, path string, cfg model.ImportConfig) (*model.ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	result, err := im.ImportReader(ctx, f, filepath.Base(path), cfg)
	if err != nil {
		return nil, err
	}
	result.Document.SourcePath = path
	result.Document.FileSize = info.Size()
	return result, nil
}

// StageFunc receives pipeline stage transitions during an import.
type StageFunc func(stage string)

// Pipeline stages reported through StageFunc.
const (
	StageParsing     = "parsing"
	StageNormalizing = "normalizing"
	StageChunking    = "chunking"
	StageCorrelating = "correlating"
)

// ImportReader imports a document from a reader. The filename determines the
// parser. Configuration and format problems return an error; parse failures
// are recorded in the result with status "error".
func (im *Importer) ImportReader(ctx context.Context, r io.Reader, filename string, cfg model.ImportConfig) (*model.ImportResult, error) {
	return im.ImportReaderWithProgress(ctx, r, filename, cfg, nil)
}

// ImportReaderWithProgress is ImportReader with stage transition callbacks.
// onStage may be nil.
func (im *Importer) ImportReaderWithProgress(ctx context.Context, r io.Reader, filename string, cfg model.ImportConfig, onStage StageFunc) (*model.ImportResult, error) {
	if onStage == nil {
		onStage = func(string) {}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	start := time.Now()
	result := &model.ImportResult{
		ID:     uuid.New(),
		Status: model.StatusSuccess,
		Document: model.DocumentMetadata{
			FileName:  filename,
			FileType:  strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")),
			CreatedAt: start.UTC(),
		},
		Errors:   []string{},
		Warnings: []string{},
	}
	log := im.log.With("import_id", result.ID, "filename", filename)

	finish := func() *model.ImportResult {
		result.ProcessingTimeSeconds = time.Since(start).Seconds()
		im.stats.Record(ImportSample{
			DurationMs: time.Since(start).Milliseconds(),
			Chunks:     result.ChunkCount,
			Tokens:     result.TotalTokens,
			Failed:     result.Status != model.StatusSuccess,
		})
		return result
	}

	onStage(StageParsing)
	hasher := sha256.New()
	raw, err := p.Parse(io.TeeReader(r, hasher), filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		result.Status = model.StatusError
		result.Errors = append(result.Errors, fmt.Sprintf("parse: %s", err))
		return finish(), nil
	}
	result.Document.ContentHash = hex.EncodeToString(hasher.Sum(nil))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	onStage(StageNormalizing)
	norm := normalizer.New(normalizer.Config{
		DetectLanguage:  cfg.AutoDetectLanguage,
		DefaultLanguage: cfg.DefaultLanguage,
		MinTextLength:   1,
	}, im.detector)

	elements := norm.NormalizeAll(raw)
	result.Elements = elements
	result.ElementCount = len(elements)
	if len(elements) == 0 {
		log.Warn("no content elements extracted")
		result.Warnings = append(result.Warnings, "no content elements extracted")
		return finish(), nil
	}

	docLang := cfg.DefaultLanguage
	if cfg.AutoDetectLanguage {
		docLang = norm.DetectDocumentLanguage(elements)
	}
	if docLang == model.LangUnknown || docLang == "" {
		docLang = cfg.DefaultLanguage
	}
	result.Document.Language = docLang
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	onStage(StageChunking)
	c := im.chunkerFor(docLang, cfg.ChunkSize, cfg.ChunkOverlap)
	chunks := chunker.ChunkElements(c, elements, result.ID)
	result.SetChunks(chunks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.BuildCorrelationGraph {
		onStage(StageCorrelating)
		builder := correlation.NewBuilder(cfg.SemanticSimilarityThreshold)
		result.CorrelationGraph = builder.BuildGraph(result.ID, chunks)
	}

	maxPage := 0
	for _, elem := range elements {
		if elem.PageNumber > maxPage {
			maxPage = elem.PageNumber
		}
	}
	result.Document.PageCount = maxPage

	log.Info("import complete",
		"language", docLang,
		"elements", result.ElementCount,
		"chunks", result.ChunkCount,
		"tokens", result.TotalTokens)
	return finish(), nil
}

// DirectoryOptions controls directory imports.
type DirectoryOptions struct {
	Recursive  bool
	Extensions []string // allow-list; defaults to all supported extensions
}

// ImportDirectory imports every matching file under dir. Files that fail
// with an error are logged and omitted; results carrying parse errors are
// still returned.
func (im *Importer) ImportDirectory(ctx context.Context, dir string, cfg model.ImportConfig, opts DirectoryOptions) ([]*model.ImportResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	allowed := extensionSet(opts.Extensions)
	paths, err := collectFiles(dir, opts.Recursive, allowed)
	if err != nil {
		return nil, err
	}

	results := make([]*model.ImportResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := im.ImportDocument(ctx, path, cfg)
		if err != nil {
			im.log.Warn("skipping file", "path", path, "error", err)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// chunkerFor returns the cached chunker for a language and size settings,
// creating it on first use.
func (im *Importer) chunkerFor(language model.Language, chunkSize, chunkOverlap int) chunker.Chunker {
	key := chunkerKey{language: language, chunkSize: chunkSize, chunkOverlap: chunkOverlap}

	im.mu.Lock()
	defer im.mu.Unlock()
	if c, ok := im.chunkers[key]; ok {
		return c
	}
	c := chunker.ForLanguage(language, chunkSize, chunkOverlap, im.analyzer)
	im.chunkers[key] = c
	return c
}

func extensionSet(extensions []string) map[string]bool {
	if len(extensions) == 0 {
		return parser.SupportedExtensions
	}
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

func collectFiles(dir string, recursive bool, allowed map[string]bool) ([]string, error) {
	var paths []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && allowed[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}
