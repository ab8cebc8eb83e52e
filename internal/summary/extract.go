package summary

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"zotproxy/internal/domain"
	"zotproxy/internal/domain/models"
	"zotproxy/internal/zotero"
)

// TextExtractor parses a downloaded attachment file into plain text.
type TextExtractor func(path string) (string, error)

// ExtractPDFText reads a PDF file and concatenates the plain text of every
// page. Pages that fail to parse are skipped; a document yielding no text at
// all is an extraction error.
func ExtractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", &domain.ExtractionError{Message: fmt.Sprintf("open pdf: %v", err)}
	}
	defer f.Close()

	var text strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", &domain.ExtractionError{Message: "pdf produced no text"}
	}
	return text.String(), nil
}

// Fetcher downloads attachment bytes into a request-scoped temporary file,
// extracts the text, and removes the file on every exit path, extraction
// failure included.
type Fetcher struct {
	client  zotero.LibraryClient
	extract TextExtractor
	logger  *slog.Logger
}

// NewFetcher creates a fetcher. A nil extractor defaults to PDF extraction.
func NewFetcher(client zotero.LibraryClient, extract TextExtractor, logger *slog.Logger) *Fetcher {
	if extract == nil {
		extract = ExtractPDFText
	}
	return &Fetcher{client: client, extract: extract, logger: logger}
}

// FetchText downloads one attachment and returns its plain text.
func (f *Fetcher) FetchText(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string) (string, error) {
	tmp, err := os.CreateTemp("", "zotproxy-*.pdf")
	if err != nil {
		return "", &domain.ExtractionError{Message: fmt.Sprintf("create temp file: %v", err)}
	}
	defer os.Remove(tmp.Name())

	if err := f.client.DownloadAttachment(ctx, apiKey, scope, itemKey, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", &domain.ExtractionError{Message: fmt.Sprintf("flush temp file: %v", err)}
	}

	return f.extract(tmp.Name())
}
