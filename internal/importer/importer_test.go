package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docgraph/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleText = `Introduction to the system.

The first paragraph describes the overall design. It runs for a few sentences so that chunking has something to work with.

The second paragraph continues with more detail. It also spans multiple sentences for the same reason.`

func TestImportReader_Success(t *testing.T) {
	im := New(testLogger(), nil, nil)
	cfg := model.DefaultImportConfig()

	result, err := im.ImportReader(context.Background(), strings.NewReader(sampleText), "sample.txt", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.StatusSuccess {
		t.Fatalf("expected success, got %q with errors %v", result.Status, result.Errors)
	}
	if result.ElementCount == 0 || len(result.Elements) != result.ElementCount {
		t.Errorf("element counts inconsistent: %d vs %d", result.ElementCount, len(result.Elements))
	}
	if result.ChunkCount == 0 || result.TotalTokens == 0 {
		t.Errorf("expected chunks and tokens, got %d chunks / %d tokens", result.ChunkCount, result.TotalTokens)
	}
	if result.CorrelationGraph == nil {
		t.Fatal("expected correlation graph")
	}
	if result.CorrelationGraph.NodeCount != result.ChunkCount {
		t.Errorf("graph nodes %d != chunks %d", result.CorrelationGraph.NodeCount, result.ChunkCount)
	}
	if result.Document.FileName != "sample.txt" || result.Document.FileType != "txt" {
		t.Errorf("unexpected document metadata: %+v", result.Document)
	}
	// No detector wired: the configured default applies.
	if result.Document.Language != model.LangEnglish {
		t.Errorf("expected default language %q, got %q", model.LangEnglish, result.Document.Language)
	}
	if result.ProcessingTimeSeconds < 0 {
		t.Errorf("negative processing time %g", result.ProcessingTimeSeconds)
	}
}

func TestImportReader_ContentHashDeterministic(t *testing.T) {
	im := New(testLogger(), nil, nil)
	cfg := model.DefaultImportConfig()

	first, err := im.ImportReader(context.Background(), strings.NewReader(sampleText), "sample.txt", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := im.ImportReader(context.Background(), strings.NewReader(sampleText), "sample.txt", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Document.ContentHash == "" {
		t.Fatal("expected content hash")
	}
	if first.Document.ContentHash != second.Document.ContentHash {
		t.Errorf("same bytes must hash identically: %q vs %q", first.Document.ContentHash, second.Document.ContentHash)
	}
	if first.ID == second.ID {
		t.Error("import ids must be unique per run")
	}
}

func TestImportReader_UnsupportedFormat(t *testing.T) {
	im := New(testLogger(), nil, nil)

	_, err := im.ImportReader(context.Background(), strings.NewReader("data"), "sample.xyz", model.DefaultImportConfig())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestImportReader_InvalidConfig(t *testing.T) {
	im := New(testLogger(), nil, nil)
	cfg := model.DefaultImportConfig()
	cfg.ChunkSize = 10 // below minimum

	if _, err := im.ImportReader(context.Background(), strings.NewReader("text"), "a.txt", cfg); err == nil {
		t.Error("expected validation error")
	}
}

func TestImportReader_ParseFailureCapturedInResult(t *testing.T) {
	im := New(testLogger(), nil, nil)

	// Garbage bytes are not a valid docx archive.
	result, err := im.ImportReader(context.Background(), strings.NewReader("not a zip archive"), "broken.docx", model.DefaultImportConfig())
	if err != nil {
		t.Fatalf("parse failures should be captured, not returned: %v", err)
	}
	if result.Status != model.StatusError {
		t.Errorf("expected status %q, got %q", model.StatusError, result.Status)
	}
	if len(result.Errors) == 0 {
		t.Error("expected parse error recorded in result")
	}
}

func TestImportReader_GraphDisabled(t *testing.T) {
	im := New(testLogger(), nil, nil)
	cfg := model.DefaultImportConfig()
	cfg.BuildCorrelationGraph = false

	result, err := im.ImportReader(context.Background(), strings.NewReader(sampleText), "sample.txt", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CorrelationGraph != nil {
		t.Error("expected no correlation graph")
	}
}

func TestImportDocument_MissingFile(t *testing.T) {
	im := New(testLogger(), nil, nil)

	_, err := im.ImportDocument(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), model.DefaultImportConfig())
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("expected ErrInputNotFound, got %v", err)
	}
}

func TestImportDocument_FillsFileMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte(sampleText), 0o644); err != nil {
		t.Fatal(err)
	}

	im := New(testLogger(), nil, nil)
	result, err := im.ImportDocument(context.Background(), path, model.DefaultImportConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Document.SourcePath != path {
		t.Errorf("expected source path %q, got %q", path, result.Document.SourcePath)
	}
	if result.Document.FileSize != int64(len(sampleText)) {
		t.Errorf("expected file size %d, got %d", len(sampleText), result.Document.FileSize)
	}
}

func TestImportDirectory_FiltersAndRecurses(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("one.txt", sampleText)
	write("two.md", "# Heading\n\nBody paragraph with enough words to matter.")
	write("ignored.xyz", "not importable")
	write("nested/three.txt", sampleText)

	im := New(testLogger(), nil, nil)
	cfg := model.DefaultImportConfig()

	flat, err := im.ImportDirectory(context.Background(), dir, cfg, DirectoryOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flat) != 2 {
		t.Errorf("non-recursive: expected 2 results, got %d", len(flat))
	}

	recursive, err := im.ImportDirectory(context.Background(), dir, cfg, DirectoryOptions{Recursive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recursive) != 3 {
		t.Errorf("recursive: expected 3 results, got %d", len(recursive))
	}

	txtOnly, err := im.ImportDirectory(context.Background(), dir, cfg, DirectoryOptions{Recursive: true, Extensions: []string{"txt"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txtOnly) != 2 {
		t.Errorf("extension filter: expected 2 results, got %d", len(txtOnly))
	}
}

func TestImportDirectory_MissingDir(t *testing.T) {
	im := New(testLogger(), nil, nil)
	_, err := im.ImportDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), model.DefaultImportConfig(), DirectoryOptions{})
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("expected ErrInputNotFound, got %v", err)
	}
}

func TestChunkerCache_ReusesInstances(t *testing.T) {
	im := New(testLogger(), nil, nil)

	first := im.chunkerFor(model.LangEnglish, 1000, 100)
	second := im.chunkerFor(model.LangEnglish, 1000, 100)
	if first != second {
		t.Error("expected cached chunker instance to be reused")
	}
	other := im.chunkerFor(model.LangEnglish, 500, 100)
	if first == other {
		t.Error("different settings must not share a chunker")
	}
}

func TestStats_RecordsImports(t *testing.T) {
	im := New(testLogger(), nil, nil)

	if _, err := im.ImportReader(context.Background(), strings.NewReader(sampleText), "sample.txt", model.DefaultImportConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := im.Stats().Snapshot()
	if snap.Count != 1 || snap.Failed != 0 {
		t.Errorf("expected 1 successful sample, got %+v", snap)
	}
	if snap.TotalChunks == 0 || snap.TotalTokens == 0 {
		t.Errorf("expected chunk and token totals, got %+v", snap)
	}
}
