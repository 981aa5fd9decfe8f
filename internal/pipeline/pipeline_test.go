package pipeline

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HowieRosier/pdf-redactor/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *models.RedactionConfig {
	t.Helper()
	base := t.TempDir()
	cfg := models.DefaultConfig()
	cfg.PDFDir = filepath.Join(base, "pdf")
	cfg.XMLDir = filepath.Join(base, "xml")
	cfg.OutputDir = filepath.Join(base, "out")
	cfg.Workers = 2
	cfg.RedactWorkers = 2
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func writePDF(t *testing.T, cfg *models.RedactionConfig, name, content string) {
	t.Helper()
	if err := os.MkdirAll(cfg.PDFDir, 0755); err != nil {
		t.Fatalf("failed to create pdf dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.PDFDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// emptyTEI has no reference coordinates at all: phase 2 takes the
// copy-verbatim path, which needs no PDF engine.
const emptyTEI = `<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body><p>nothing</p></body></text></TEI>`

func TestRun_NoInputPDFsHalts(t *testing.T) {
	cfg := testConfig(t)
	cfg.ServiceURL = "http://localhost:0" // must never be contacted

	p := New(cfg, testLogger(), nil)
	if err := p.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil on empty input halt", err)
	}

	// Directories were still created.
	for _, dir := range []string{cfg.PDFDir, cfg.XMLDir, cfg.OutputDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("directory %s was not created: %v", dir, err)
		}
	}
}

func TestRun_NoXMLProducedHalts(t *testing.T) {
	cfg := testConfig(t)
	writePDF(t, cfg, "a.pdf", "%PDF-1.4 a")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()
	cfg.ServiceURL = server.URL

	p := New(cfg, testLogger(), nil)
	if err := p.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil when all phase-1 jobs fail", err)
	}

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries, want 0 after halt", len(entries))
	}
}

func TestRun_FailureIsolationAndVerbatimCopy(t *testing.T) {
	cfg := testConfig(t)
	goodContent := "%PDF-1.4 good document content"
	writePDF(t, cfg, "good.pdf", goodContent)
	writePDF(t, cfg, "bad.pdf", "%PDF-1.4 bad")

	// good.pdf gets annotation-free TEI; bad.pdf gets a 500. One job's
	// failure must not stop the other or phase 2.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("input")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		if strings.HasPrefix(header.Filename, "bad") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(emptyTEI))
	}))
	defer server.Close()
	cfg.ServiceURL = server.URL

	p := New(cfg, testLogger(), nil)
	if err := p.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Phase 1: only good.pdf produced XML.
	if _, err := os.Stat(filepath.Join(cfg.XMLDir, "good.xml")); err != nil {
		t.Errorf("good.xml missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.XMLDir, "bad.xml")); err == nil {
		t.Error("bad.xml exists, want no XML for the failed document")
	}

	// Phase 2: no references found, so the output is a byte-identical copy.
	out, err := os.ReadFile(filepath.Join(cfg.OutputDir, "good_cleaned.pdf"))
	if err != nil {
		t.Fatalf("good_cleaned.pdf missing: %v", err)
	}
	if !bytes.Equal(out, []byte(goodContent)) {
		t.Error("good_cleaned.pdf is not a byte-identical copy of the source")
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "bad_cleaned.pdf")); err == nil {
		t.Error("bad_cleaned.pdf exists, want no output for the failed document")
	}
}

func TestExtractOne_FreshXMLSkipsServiceCall(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxAge = time.Hour
	writePDF(t, cfg, "a.pdf", "%PDF-1.4")

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(emptyTEI))
	}))
	defer server.Close()
	cfg.ServiceURL = server.URL

	if err := os.MkdirAll(cfg.XMLDir, 0755); err != nil {
		t.Fatalf("failed to create xml dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.XMLDir, "a.xml"), []byte(emptyTEI), 0644); err != nil {
		t.Fatalf("failed to seed xml: %v", err)
	}

	p := New(cfg, testLogger(), nil)
	result := p.extractOne("a.pdf")
	if !result.Success {
		t.Fatalf("extractOne() failed: %s", result.Message)
	}
	if calls.Load() != 0 {
		t.Errorf("service called %d times, want 0 with fresh XML", calls.Load())
	}

	// ForceExtract bypasses the cache.
	cfg.ForceExtract = true
	result = p.extractOne("a.pdf")
	if !result.Success {
		t.Fatalf("extractOne() with force failed: %s", result.Message)
	}
	if calls.Load() != 1 {
		t.Errorf("service called %d times, want 1 with --force-extract", calls.Load())
	}
}

func TestRedactOne_MissingCompanionPDF(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.XMLDir, 0755); err != nil {
		t.Fatalf("failed to create xml dir: %v", err)
	}
	if err := os.MkdirAll(cfg.PDFDir, 0755); err != nil {
		t.Fatalf("failed to create pdf dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.XMLDir, "orphan.xml"), []byte(emptyTEI), 0644); err != nil {
		t.Fatalf("failed to write xml: %v", err)
	}

	p := New(cfg, testLogger(), nil)
	result := p.redactOne("orphan.xml")
	if result.Success {
		t.Fatal("redactOne() succeeded, want failure for missing companion PDF")
	}
	if !strings.Contains(result.Message, "not found") {
		t.Errorf("message = %q, want mention of missing PDF", result.Message)
	}
}

func TestRedactOne_UnparsableXMLCopiesVerbatim(t *testing.T) {
	cfg := testConfig(t)
	content := "%PDF-1.4 intact"
	writePDF(t, cfg, "doc.pdf", content)
	if err := os.MkdirAll(cfg.XMLDir, 0755); err != nil {
		t.Fatalf("failed to create xml dir: %v", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.XMLDir, "doc.xml"), []byte("garbage not xml <<<"), 0644); err != nil {
		t.Fatalf("failed to write xml: %v", err)
	}

	p := New(cfg, testLogger(), nil)
	result := p.redactOne("doc.xml")
	if !result.Success {
		t.Fatalf("redactOne() failed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "No references found") {
		t.Errorf("message = %q, want no-references copy message", result.Message)
	}

	out, err := os.ReadFile(filepath.Join(cfg.OutputDir, "doc_cleaned.pdf"))
	if err != nil {
		t.Fatalf("doc_cleaned.pdf missing: %v", err)
	}
	if string(out) != content {
		t.Error("output is not a byte-identical copy")
	}
}

func TestListFiles_CaseInsensitiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PDF", "a.pdf", "notes.txt", "c.Pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	got, err := listFiles(dir, ".pdf")
	if err != nil {
		t.Fatalf("listFiles() error = %v", err)
	}
	want := []string{"a.pdf", "b.PDF", "c.Pdf"}
	if len(got) != len(want) {
		t.Fatalf("listFiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("listFiles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPoolSize(t *testing.T) {
	tests := []struct {
		workers, jobs, want int
	}{
		{10, 3, 3},
		{2, 5, 2},
		{0, 5, 1},
		{4, 4, 4},
	}
	for _, tt := range tests {
		if got := poolSize(tt.workers, tt.jobs); got != tt.want {
			t.Errorf("poolSize(%d, %d) = %d, want %d", tt.workers, tt.jobs, got, tt.want)
		}
	}
}
