// Package document downloads policy documents and extracts their text.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for documents that are neither PDF nor text.
var ErrUnsupportedType = errors.New("unsupported document type")

// Fetcher returns the plain text of the document at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher downloads documents with a bounded timeout and extracts text
// from PDF or plain-text bodies.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: 32 << 20,
	}
}

// Fetch downloads url and returns its text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid document url: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch document: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return "", fmt.Errorf("document exceeds %d bytes", f.maxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/pdf" || bytes.HasPrefix(data, []byte("%PDF-")):
		return ExtractPDF(data)
	case strings.HasPrefix(mediaType, "text/"):
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}
}

// ExtractPDF returns the plain text of a PDF document.
func ExtractPDF(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}
