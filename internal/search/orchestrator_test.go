package search

import (
	"context"
	"log/slog"
	"testing"

	"zotproxy/internal/config"
	"zotproxy/internal/domain/models"
	"zotproxy/internal/zotero"
	"zotproxy/internal/zotero/zoterotest"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newTestOrchestrator(client *zoterotest.Client) *Orchestrator {
	cfg := &config.Config{SearchLimit: 100}
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	return NewOrchestrator(client, cfg, config.DefaultHeuristics(), logger)
}

func TestSearch_Tier1ShortCircuits(t *testing.T) {
	var captured zotero.SearchParams
	client := &zoterotest.Client{
		SearchItemsFunc: func(_ context.Context, _ string, _ models.LibraryScope, params zotero.SearchParams) ([]models.Item, error) {
			captured = params
			return []models.Item{{Key: "I1", Title: "Formative Assessment"}}, nil
		},
	}

	o := newTestOrchestrator(client)
	result, err := o.Search(context.Background(), Request{
		APIKey: "key",
		UserID: "1000",
		Query:  "formative assessment",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Tier != 1 {
		t.Errorf("tier = %d, want 1", result.Tier)
	}
	if len(result.Items) != 1 || result.Items[0].Key != "I1" {
		t.Errorf("items = %v, want the single upstream hit", result.Items)
	}
	if got := client.Calls("SearchItems"); got != 1 {
		t.Errorf("a tier-1 hit must stop the ladder, got %d searches", got)
	}
	if captured.QMode != zotero.QModeTitleCreatorYear {
		t.Errorf("qmode = %q, want default %q", captured.QMode, zotero.QModeTitleCreatorYear)
	}
	if captured.Limit != 100 {
		t.Errorf("limit = %d, want configured 100", captured.Limit)
	}
}

func TestSearch_KeyReferenceScopesTier1(t *testing.T) {
	var captured zotero.SearchParams
	client := &zoterotest.Client{
		SearchItemsFunc: func(_ context.Context, _ string, _ models.LibraryScope, params zotero.SearchParams) ([]models.Item, error) {
			captured = params
			return []models.Item{{Key: "I1", Title: "Hit"}}, nil
		},
	}

	o := newTestOrchestrator(client)
	_, err := o.Search(context.Background(), Request{
		APIKey:     "key",
		UserID:     "1000",
		Query:      "anything",
		Collection: "collectionkey:ABCD1234",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(captured.CollectionKeys) != 1 || captured.CollectionKeys[0] != "ABCD1234" {
		t.Errorf("collection keys = %v, want the referenced key", captured.CollectionKeys)
	}
	if got := client.Calls("ListCollections"); got != 0 {
		t.Errorf("a key reference must not trigger index building, got %d listings", got)
	}
}

func TestSearch_Tier3SubstringFilter(t *testing.T) {
	// The scoped search misses; the broad personal re-run returns items whose
	// fields are then filtered by the full query string.
	client := &zoterotest.Client{
		SearchItemsFunc: func(_ context.Context, _ string, _ models.LibraryScope, params zotero.SearchParams) ([]models.Item, error) {
			if len(params.CollectionKeys) > 0 {
				return nil, nil
			}
			return []models.Item{
				{Key: "I1", Title: "Feedback Loops in Teaching", Abstract: "classroom feedback"},
				{Key: "I2", Title: "Thermodynamics Primer"},
			}, nil
		},
	}

	o := newTestOrchestrator(client)
	result, err := o.Search(context.Background(), Request{
		APIKey:     "key",
		UserID:     "1000",
		Query:      "classroom feedback",
		Collection: "collectionkey:ABCD1234",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Tier != 3 {
		t.Errorf("tier = %d, want 3", result.Tier)
	}
	if len(result.Items) != 1 || result.Items[0].Key != "I1" {
		t.Errorf("items = %v, want only the abstract match", result.Items)
	}
	if got := client.Calls("SearchItems"); got != 2 {
		t.Errorf("expected scoped + broad searches, got %d", got)
	}
}

func TestSearch_Tier4KeywordSplit(t *testing.T) {
	// No item contains the full phrase; splitting on whitespace matches one
	// word per item and unions the hits without duplicates.
	client := &zoterotest.Client{
		SearchItemsFunc: func(_ context.Context, _ string, _ models.LibraryScope, params zotero.SearchParams) ([]models.Item, error) {
			if len(params.CollectionKeys) > 0 {
				return nil, nil
			}
			return []models.Item{
				{Key: "I1", Title: "Feedback in Seminars"},
				{Key: "I2", Title: "Curriculum Design"},
				{Key: "I3", Title: "Unrelated"},
			}, nil
		},
	}

	o := newTestOrchestrator(client)
	result, err := o.Search(context.Background(), Request{
		APIKey:     "key",
		UserID:     "1000",
		Query:      "feedback curriculum",
		Collection: "collectionkey:ABCD1234",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Tier != 4 {
		t.Errorf("tier = %d, want 4", result.Tier)
	}
	if len(result.Items) != 2 || result.Items[0].Key != "I1" || result.Items[1].Key != "I2" {
		t.Errorf("items = %v, want the per-word union in first-seen order", result.Items)
	}
}

func TestSearch_ExhaustedLadderYieldsSuggestions(t *testing.T) {
	client := &zoterotest.Client{
		SearchItemsFunc: func(_ context.Context, _ string, _ models.LibraryScope, params zotero.SearchParams) ([]models.Item, error) {
			if len(params.CollectionKeys) > 0 {
				return nil, nil
			}
			return []models.Item{
				{Key: "I1", Title: "formative assessment"},
				{Key: "I2", Title: "qqqq"},
			}, nil
		},
	}

	o := newTestOrchestrator(client)
	result, err := o.Search(context.Background(), Request{
		APIKey:     "key",
		UserID:     "1000",
		Query:      "formmative assessmment",
		Collection: "collectionkey:ABCD1234",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Items) != 0 || result.Tier != 0 {
		t.Fatalf("expected an empty outcome, got tier %d items %v", result.Tier, result.Items)
	}
	if len(result.Suggestions) == 0 || result.Suggestions[0] != "formative assessment" {
		t.Errorf("suggestions = %v, want the near-miss title first", result.Suggestions)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("candidates = %v, want the broad set (capped at 3)", result.Candidates)
	}
}

func TestSearch_EmptyQueryStopsAfterTier1(t *testing.T) {
	client := &zoterotest.Client{}

	o := newTestOrchestrator(client)
	result, err := o.Search(context.Background(), Request{
		APIKey: "key",
		UserID: "1000",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(result.Items) != 0 {
		t.Errorf("items = %v, want none", result.Items)
	}
	if got := client.Calls("SearchItems"); got != 1 {
		t.Errorf("an empty query has nothing to broaden, got %d searches", got)
	}
}

func TestSearch_ValidationRunsBeforeUpstream(t *testing.T) {
	client := &zoterotest.Client{}

	o := newTestOrchestrator(client)
	if _, err := o.Search(context.Background(), Request{UserID: "1000"}); err == nil {
		t.Fatal("expected a validation error for the missing credential")
	}
	if got := client.TotalCalls(); got != 0 {
		t.Errorf("validation failures must not reach upstream, got %d calls", got)
	}
}
