package grobid

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempPDF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp PDF: %v", err)
	}
	return path
}

func TestProcessFulltext_Success(t *testing.T) {
	pdfPath := writeTempPDF(t, "%PDF-1.4 fake content")

	var gotCoordinates string
	var gotFilename string
	var gotContentType string
	var gotFileBytes []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotCoordinates = r.FormValue("teiCoordinates")

		file, header, err := r.FormFile("input")
		if err != nil {
			t.Errorf("missing input file field: %v", err)
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotContentType = header.Header.Get("Content-Type")
		gotFileBytes, _ = io.ReadAll(file)

		w.Write([]byte("<TEI/>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	body, err := client.ProcessFulltext(pdfPath)
	if err != nil {
		t.Fatalf("ProcessFulltext() error = %v", err)
	}

	if string(body) != "<TEI/>" {
		t.Errorf("body = %q, want %q", body, "<TEI/>")
	}
	if gotCoordinates != "biblStruct" {
		t.Errorf("teiCoordinates = %q, want %q", gotCoordinates, "biblStruct")
	}
	if gotFilename != "paper.pdf" {
		t.Errorf("filename = %q, want %q", gotFilename, "paper.pdf")
	}
	if gotContentType != "application/pdf" {
		t.Errorf("file content type = %q, want %q", gotContentType, "application/pdf")
	}
	if string(gotFileBytes) != "%PDF-1.4 fake content" {
		t.Errorf("file bytes = %q, want original PDF content", gotFileBytes)
	}
}

func TestProcessFulltext_NonOKStatus(t *testing.T) {
	pdfPath := writeTempPDF(t, "%PDF-1.4")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.ProcessFulltext(pdfPath); err == nil {
		t.Fatal("ProcessFulltext() error = nil, want error on status 503")
	}
}

func TestProcessFulltext_MissingPDF(t *testing.T) {
	client := NewClient("http://localhost:0", time.Second)
	if _, err := client.ProcessFulltext(filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Fatal("ProcessFulltext() error = nil, want error for missing file")
	}
}

func TestProcessFulltext_TransportError(t *testing.T) {
	pdfPath := writeTempPDF(t, "%PDF-1.4")

	// A server that is immediately closed produces a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second)
	if _, err := client.ProcessFulltext(pdfPath); err == nil {
		t.Fatal("ProcessFulltext() error = nil, want transport error")
	}
}
