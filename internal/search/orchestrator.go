package search

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"zotproxy/internal/config"
	"zotproxy/internal/domain/models"
	"zotproxy/internal/library"
	"zotproxy/internal/matching"
	"zotproxy/internal/zotero"
)

// Request describes one item-resolution query.
type Request struct {
	APIKey     string
	UserID     string
	Query      string
	Collection string // optional collection name filter (fuzzy-resolved)
	QMode      string // upstream relevance mode; defaults to titleCreatorYear
	Limit      int    // page size override; defaults to the configured limit
}

// Validate checks the request before any upstream call is made.
func (r *Request) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.APIKey, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Query, validation.Length(0, 500)),
		validation.Field(&r.Collection, validation.Length(0, 500)),
	)
}

// ScopedItem pairs an item with the library scope that owns it. Item keys
// are only unique per scope, so downstream consumers (children fetches,
// attachment downloads) always receive the pair.
type ScopedItem struct {
	models.Item
	Scope models.LibraryScope `json:"scope"`
}

// Result is the outcome of running the fallback ladder. Empty Items is a
// "not found" outcome, not a fault; Suggestions and Candidates then carry
// material to help the caller correct the query.
type Result struct {
	Items []ScopedItem
	// Tier records which ladder rung produced the items (1-4, 0 if none).
	Tier int
	// Suggestions are up to 3 closeness-ranked titles from the broad result set.
	Suggestions []string
	// Candidates are the first items of the broad result set, for
	// disambiguation prompts.
	Candidates []ScopedItem
}

// Orchestrator resolves free-text queries into items by walking a fixed
// fallback ladder: scoped exact search, broad unscoped search, substring
// filtering, then per-keyword filtering. Every inbound operation that needs
// item resolution goes through here rather than re-deriving the ladder.
type Orchestrator struct {
	client      zotero.LibraryClient
	searchLimit int
	matchLimit  int
	matchCutoff float64
	logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator using the configured search page
// size and fuzzy-match tuning.
func NewOrchestrator(client zotero.LibraryClient, cfg *config.Config, heur config.Heuristics, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client:      client,
		searchLimit: cfg.SearchLimit,
		matchLimit:  heur.MatchLimit,
		matchCutoff: heur.MatchCutoff,
		logger:      logger,
	}
}

// Search runs the fallback ladder and stops at the first tier that yields
// items. Upstream failures propagate immediately; they are never retried.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.QMode == "" {
		req.QMode = zotero.QModeTitleCreatorYear
	}
	if req.Limit <= 0 {
		req.Limit = o.searchLimit
	}

	refs, err := o.resolveCollection(ctx, req)
	if err != nil {
		return nil, err
	}

	// Tier 1: scoped (or plain) exact query with upstream relevance ordering.
	tier1, err := o.scopedSearch(ctx, req, refs)
	if err != nil {
		return nil, err
	}
	if len(tier1) > 0 {
		o.logger.Debug("search resolved", "tier", 1, "items", len(tier1))
		return &Result{Items: tier1, Tier: 1}, nil
	}

	// The ladder below needs a query to broaden; a bare collection listing
	// that found nothing has nowhere else to go.
	if req.Query == "" {
		return &Result{}, nil
	}

	// Tier 2: broad unscoped re-run. When tier 1 was already unscoped its
	// (empty) result set is the broad set; re-issuing the identical query
	// would change nothing.
	broad := tier1
	if len(refs) > 0 {
		personal := models.PersonalScope(req.UserID)
		items, err := o.client.SearchItems(ctx, req.APIKey, personal, zotero.SearchParams{
			Query: req.Query,
			QMode: req.QMode,
			Limit: req.Limit,
		})
		if err != nil {
			return nil, err
		}
		broad = tagScope(items, personal)
	}

	// Tier 3: substring filter over the broad set.
	tier3 := filterItems(broad, req.Query)
	if len(tier3) > 0 {
		o.logger.Debug("search resolved", "tier", 3, "items", len(tier3))
		return &Result{Items: tier3, Tier: 3}, nil
	}

	// Tier 4: split the query on whitespace, filter per word, union the
	// hits de-duplicated by key in first-seen order.
	tier4 := keywordSplitFilter(broad, req.Query)
	if len(tier4) > 0 {
		o.logger.Debug("search resolved", "tier", 4, "items", len(tier4))
		return &Result{Items: tier4, Tier: 4}, nil
	}

	return &Result{
		Suggestions: o.suggestTitles(broad, req.Query),
		Candidates:  firstN(broad, 3),
	}, nil
}

// resolveCollection turns the optional collection name into scoped keys.
// An unresolvable name simply yields no restriction, matching the tolerant
// behavior of the rest of the ladder.
func (o *Orchestrator) resolveCollection(ctx context.Context, req Request) ([]models.ResolvedRef, error) {
	if req.Collection == "" {
		return nil, nil
	}

	if key, ok := library.ParseKeyRef(req.Collection); ok {
		return []models.ResolvedRef{{Key: key, Scope: models.PersonalScope(req.UserID)}}, nil
	}

	index, err := library.BuildIndex(ctx, o.client, req.APIKey, req.UserID, o.logger)
	if err != nil {
		return nil, err
	}
	return library.Resolve(index, req.Collection, o.matchLimit, o.matchCutoff), nil
}

// scopedSearch issues one search per distinct scope among the resolved refs
// and merges the results preserving each scope's relative order, scopes in
// the order first encountered. With no refs it falls back to a single
// personal-library search.
func (o *Orchestrator) scopedSearch(ctx context.Context, req Request, refs []models.ResolvedRef) ([]ScopedItem, error) {
	params := zotero.SearchParams{
		Query: req.Query,
		QMode: req.QMode,
		Limit: req.Limit,
	}

	if len(refs) == 0 {
		personal := models.PersonalScope(req.UserID)
		items, err := o.client.SearchItems(ctx, req.APIKey, personal, params)
		if err != nil {
			return nil, err
		}
		return tagScope(items, personal), nil
	}

	var scopes []models.LibraryScope
	keysByScope := make(map[models.LibraryScope][]string)
	for _, ref := range refs {
		if _, seen := keysByScope[ref.Scope]; !seen {
			scopes = append(scopes, ref.Scope)
		}
		keysByScope[ref.Scope] = append(keysByScope[ref.Scope], ref.Key)
	}

	var merged []ScopedItem
	for _, scope := range scopes {
		scopedParams := params
		scopedParams.CollectionKeys = keysByScope[scope]
		items, err := o.client.SearchItems(ctx, req.APIKey, scope, scopedParams)
		if err != nil {
			return nil, err
		}
		merged = append(merged, tagScope(items, scope)...)
	}
	return merged, nil
}

func tagScope(items []models.Item, scope models.LibraryScope) []ScopedItem {
	tagged := make([]ScopedItem, len(items))
	for i, item := range items {
		tagged[i] = ScopedItem{Item: item, Scope: scope}
	}
	return tagged
}

// filterItems keeps items whose combined title/abstract/creators contain the
// query as a substring.
func filterItems(items []ScopedItem, query string) []ScopedItem {
	var matched []ScopedItem
	for _, item := range items {
		if matching.ContainsAllFields(query, item.Item, matching.DefaultItemFields) {
			matched = append(matched, item)
		}
	}
	return matched
}

// keywordSplitFilter unions per-word substring matches, de-duplicated by
// item key preserving first-seen order.
func keywordSplitFilter(items []ScopedItem, query string) []ScopedItem {
	seen := make(map[string]bool)
	var matched []ScopedItem
	for _, word := range strings.Fields(query) {
		for _, item := range filterItems(items, word) {
			if seen[item.Key] {
				continue
			}
			seen[item.Key] = true
			matched = append(matched, item)
		}
	}
	return matched
}

// suggestTitles ranks the broad set's titles by closeness to the query.
func (o *Orchestrator) suggestTitles(items []ScopedItem, query string) []string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		if item.Title != "" {
			titles = append(titles, item.Title)
		}
	}
	return matching.ClosestMatches(query, titles, o.matchLimit, o.matchCutoff)
}

func firstN(items []ScopedItem, n int) []ScopedItem {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
