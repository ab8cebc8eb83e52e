package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"zotproxy/internal/config"
	"zotproxy/internal/domain"
	"zotproxy/internal/domain/models"
	"zotproxy/internal/zotero"
	"zotproxy/internal/zotero/zoterotest"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

// fileTextExtractor reads the downloaded bytes back as plain text, standing in
// for real PDF parsing.
func fileTextExtractor(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func newTestPipeline(client *zoterotest.Client, heur config.Heuristics) *Pipeline {
	cfg := &config.Config{SearchLimit: 100}
	fetcher := NewFetcher(client, fileTextExtractor, testLogger())
	return NewPipeline(client, fetcher, cfg, heur, testLogger())
}

// labNotesClient serves a personal library with a "Lab Notes" collection that
// has two sub-collections, each holding one PDF attachment.
func labNotesClient(texts map[string]string) *zoterotest.Client {
	return &zoterotest.Client{
		ListCollectionsFunc: func(_ context.Context, _ string, scope models.LibraryScope) ([]models.Collection, error) {
			if scope.Type != models.ScopePersonal {
				return nil, nil
			}
			return []models.Collection{
				{Key: "A", Name: "Lab Notes"},
				{Key: "B", Name: "Week 1", ParentKey: "A"},
				{Key: "C", Name: "Week 2", ParentKey: "A"},
			}, nil
		},
		SearchItemsFunc: func(_ context.Context, _ string, _ models.LibraryScope, params zotero.SearchParams) ([]models.Item, error) {
			keys := make(map[string]bool)
			for _, k := range params.CollectionKeys {
				keys[k] = true
			}
			if !keys["B"] || !keys["C"] {
				return nil, fmt.Errorf("descendant keys missing from search: %v", params.CollectionKeys)
			}
			return []models.Item{
				{Key: "P1", Title: "Protocol v1", ItemType: models.ItemTypeAttachment, ContentType: models.ContentTypePDF},
				{Key: "P2", Title: "Protocol v2", ItemType: models.ItemTypeAttachment, ContentType: models.ContentTypePDF},
			}, nil
		},
		DownloadAttachmentFunc: func(_ context.Context, _ string, _ models.LibraryScope, itemKey string, w io.Writer) error {
			_, err := io.WriteString(w, texts[itemKey])
			return err
		},
	}
}

func TestSummarize_ReadsEverySubtreePDF(t *testing.T) {
	client := labNotesClient(map[string]string{
		"P1": "Equity in grading rubrics. " + strings.Repeat("word ", 99),
		"P2": strings.Repeat("word ", 100),
	})

	p := newTestPipeline(client, config.DefaultHeuristics())
	got, err := p.Summarize(context.Background(), "key", "1000", "lab notes")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if got.PDFsRead != 2 {
		t.Errorf("pdfs_read = %d, want 2", got.PDFsRead)
	}
	if len(got.Documents) != 2 {
		t.Fatalf("documents = %v, want 2", got.Documents)
	}
	if got.Documents[0].Title != "Protocol v1" {
		t.Errorf("first document title = %q", got.Documents[0].Title)
	}
	if got.Message != "" {
		t.Errorf("message = %q, want empty on success", got.Message)
	}
}

func TestSummarize_ThemesAreVocabularyPresence(t *testing.T) {
	client := labNotesClient(map[string]string{
		"P1": "A study of Equity and feedback cycles.",
		"P2": "Nothing relevant here.",
	})

	p := newTestPipeline(client, config.DefaultHeuristics())
	got, err := p.Summarize(context.Background(), "key", "1000", "lab notes")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	themes := make(map[string]bool)
	for _, theme := range got.Themes {
		themes[theme] = true
	}
	if !themes["equity"] || !themes["feedback"] {
		t.Errorf("themes = %v, want equity and feedback present", got.Themes)
	}
	if themes["curriculum"] {
		t.Errorf("themes = %v, curriculum never appears in any text", got.Themes)
	}
}

func TestSummarize_NotFoundCollection(t *testing.T) {
	client := labNotesClient(nil)

	p := newTestPipeline(client, config.DefaultHeuristics())
	_, err := p.Summarize(context.Background(), "key", "1000", "zzzzzzz")

	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestSummarize_BlankNameIsValidationError(t *testing.T) {
	client := &zoterotest.Client{}

	p := newTestPipeline(client, config.DefaultHeuristics())
	_, err := p.Summarize(context.Background(), "key", "1000", "   ")

	var invalid *domain.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if client.TotalCalls() != 0 {
		t.Errorf("blank names must not reach upstream, got %d calls", client.TotalCalls())
	}
}

func TestSummarize_NoReadablePDFs(t *testing.T) {
	client := &zoterotest.Client{
		ListCollectionsFunc: func(_ context.Context, _ string, scope models.LibraryScope) ([]models.Collection, error) {
			if scope.Type != models.ScopePersonal {
				return nil, nil
			}
			return []models.Collection{{Key: "A", Name: "Teaching"}}, nil
		},
		SearchItemsFunc: func(context.Context, string, models.LibraryScope, zotero.SearchParams) ([]models.Item, error) {
			return []models.Item{
				{Key: "N1", Title: "Reading Notes", ItemType: "journalArticle"},
			}, nil
		},
		GetItemChildrenFunc: func(context.Context, string, models.LibraryScope, string, string) ([]models.Item, error) {
			return nil, nil
		},
	}

	p := newTestPipeline(client, config.DefaultHeuristics())
	got, err := p.Summarize(context.Background(), "key", "1000", "teaching")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if got.Message != "no readable PDFs found in this collection" {
		t.Errorf("message = %q", got.Message)
	}
	if len(got.FallbackTitles) != 1 || got.FallbackTitles[0] != "Reading Notes" {
		t.Errorf("fallback titles = %v, want the unreadable item's title", got.FallbackTitles)
	}
	if got.PDFsRead != 0 {
		t.Errorf("pdfs_read = %d, want 0", got.PDFsRead)
	}
}

func TestSummarize_ExtractionFailureSkipsDocument(t *testing.T) {
	client := labNotesClient(map[string]string{
		"P1": "readable text",
		"P2": "", // empty file: the extractor errors below
	})

	failing := func(path string) (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		if len(data) == 0 {
			return "", &domain.ExtractionError{Message: "no text"}
		}
		return string(data), nil
	}

	cfg := &config.Config{SearchLimit: 100}
	fetcher := NewFetcher(client, failing, testLogger())
	p := NewPipeline(client, fetcher, cfg, config.DefaultHeuristics(), testLogger())

	got, err := p.Summarize(context.Background(), "key", "1000", "lab notes")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.PDFsRead != 1 {
		t.Errorf("pdfs_read = %d, want the readable document only", got.PDFsRead)
	}
}

func TestSummarize_DownloadFailureAborts(t *testing.T) {
	client := labNotesClient(nil)
	client.DownloadAttachmentFunc = func(context.Context, string, models.LibraryScope, string, io.Writer) error {
		return &domain.UpstreamError{Message: "attachment unavailable"}
	}

	p := newTestPipeline(client, config.DefaultHeuristics())
	_, err := p.Summarize(context.Background(), "key", "1000", "lab notes")

	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
}

func TestDivergence(t *testing.T) {
	p := newTestPipeline(&zoterotest.Client{}, config.DefaultHeuristics())

	tests := []struct {
		name       string
		wordCounts []int
		wantTitles []string
		wantDirs   []string
	}{
		{"uniform lengths produce no flags", []int{100, 100, 100}, nil, nil},
		{"single document produces no signal", []int{5000}, nil, nil},
		{"outlier flagged long", []int{100, 100, 260}, []string{"doc 2"}, []string{"long"}},
		{"outlier flagged short", []int{10, 400, 400}, []string{"doc 0"}, []string{"short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := make([]extracted, len(tt.wordCounts))
			for i, wc := range tt.wordCounts {
				docs[i] = extracted{title: fmt.Sprintf("doc %d", i), wordCount: wc}
			}

			flags := p.divergence(docs)
			if len(flags) != len(tt.wantTitles) {
				t.Fatalf("flags = %v, want %d", flags, len(tt.wantTitles))
			}
			for i, flag := range flags {
				if flag.Title != tt.wantTitles[i] || flag.Direction != tt.wantDirs[i] {
					t.Errorf("flag[%d] = %+v, want title %q direction %q",
						i, flag, tt.wantTitles[i], tt.wantDirs[i])
				}
			}
		})
	}
}

func TestFetchText_RemovesTempFile(t *testing.T) {
	client := &zoterotest.Client{
		DownloadAttachmentFunc: func(_ context.Context, _ string, _ models.LibraryScope, _ string, w io.Writer) error {
			_, err := io.WriteString(w, "bytes")
			return err
		},
	}

	var seenPath string
	extract := func(path string) (string, error) {
		seenPath = path
		return "text", nil
	}

	f := NewFetcher(client, extract, testLogger())
	if _, err := f.FetchText(context.Background(), "key", models.PersonalScope("1000"), "P1"); err != nil {
		t.Fatalf("FetchText() error = %v", err)
	}

	if seenPath == "" {
		t.Fatal("extractor never ran")
	}
	if _, err := os.Stat(seenPath); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists after extraction", seenPath)
	}
}

func TestFetchText_DownloadFailurePropagates(t *testing.T) {
	client := &zoterotest.Client{
		DownloadAttachmentFunc: func(context.Context, string, models.LibraryScope, string, io.Writer) error {
			return &domain.UpstreamError{Message: "attachment unavailable"}
		},
	}

	f := NewFetcher(client, fileTextExtractor, testLogger())
	_, err := f.FetchText(context.Background(), "key", models.PersonalScope("1000"), "P1")

	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
}
