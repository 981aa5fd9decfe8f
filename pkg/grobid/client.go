// Package grobid is a thin client for the document-structure extraction
// service.
package grobid

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"
)

const (
	// fileField is the multipart field carrying the PDF bytes.
	fileField = "input"
	// coordinatesField asks the service to attach coordinates to the named
	// structural class.
	coordinatesField = "teiCoordinates"
	coordinatesValue = "biblStruct"
)

type Client struct {
	url    string
	client *http.Client
}

// NewClient returns a client for the fulltext-processing endpoint at url.
// The timeout bounds the whole request; there is no retry.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// ProcessFulltext sends one PDF to the extraction service and returns the
// TEI response body. Any non-200 status or transport failure is an error.
func (c *Client) ProcessFulltext(pdfPath string) ([]byte, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filepath.Base(pdfPath)))
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := w.WriteField(coordinatesField, coordinatesValue); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBody, nil
}
