package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"zotproxy/internal/config"
	"zotproxy/internal/domain"
	"zotproxy/internal/domain/models"
	"zotproxy/internal/library"
	"zotproxy/internal/zotero"
)

// Pipeline walks every item of a resolved collection (descendants included)
// across all matching library scopes, extracts attachment text, and computes
// keyword-theme and length-divergence signals. Raw text never leaves the
// pipeline.
type Pipeline struct {
	client      zotero.LibraryClient
	fetcher     *Fetcher
	heur        config.Heuristics
	searchLimit int
	logger      *slog.Logger
}

// NewPipeline creates a summary pipeline.
func NewPipeline(client zotero.LibraryClient, fetcher *Fetcher, cfg *config.Config, heur config.Heuristics, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		client:      client,
		fetcher:     fetcher,
		heur:        heur,
		searchLimit: cfg.SearchLimit,
		logger:      logger,
	}
}

// extracted is one successfully read document.
type extracted struct {
	title     string
	creators  []string
	wordCount int
	lowerText string
}

// Summarize resolves the collection name and summarizes the PDFs of every
// matching collection subtree.
func (p *Pipeline) Summarize(ctx context.Context, apiKey, userID, collectionName string) (*models.Summary, error) {
	if strings.TrimSpace(collectionName) == "" {
		return nil, &domain.ValidationError{Message: "collection name is required"}
	}

	index, err := library.BuildIndex(ctx, p.client, apiKey, userID, p.logger)
	if err != nil {
		return nil, err
	}

	refs := library.Resolve(index, collectionName, p.heur.MatchLimit, p.heur.MatchCutoff)
	if len(refs) == 0 {
		return nil, &domain.NotFoundError{
			Message: fmt.Sprintf("no collection matching %q", collectionName),
		}
	}

	var docs []extracted
	var fallbackTitles []string

	// One item fetch per distinct scope, restricted to the resolved keys
	// (matched collections plus their descendants, computed once by the
	// resolver). Scopes keep their first-encountered order.
	for _, scoped := range groupByScope(refs) {
		items, err := p.client.SearchItems(ctx, apiKey, scoped.scope, zotero.SearchParams{
			Limit:          p.searchLimit,
			CollectionKeys: scoped.keys,
		})
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			doc, fallback, err := p.readItem(ctx, apiKey, scoped.scope, item)
			if err != nil {
				return nil, err
			}
			if fallback != "" {
				fallbackTitles = append(fallbackTitles, fallback)
			}
			if doc != nil {
				docs = append(docs, *doc)
			}
		}
	}

	if len(docs) == 0 {
		return &models.Summary{
			Collection:     collectionName,
			Themes:         []string{},
			Divergence:     []models.DivergenceFlag{},
			Documents:      []models.DocumentSummary{},
			FallbackTitles: fallbackTitles,
			Message:        "no readable PDFs found in this collection",
		}, nil
	}

	summaries := make([]models.DocumentSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = models.DocumentSummary{
			Title:     doc.title,
			Creators:  doc.creators,
			WordCount: doc.wordCount,
		}
	}

	p.logger.Info("collection summarized",
		"collection", collectionName,
		"pdfs_read", len(docs),
		"fallback_titles", len(fallbackTitles),
	)

	return &models.Summary{
		Collection:     collectionName,
		PDFsRead:       len(docs),
		Themes:         p.themes(docs),
		Divergence:     p.divergence(docs),
		Documents:      summaries,
		FallbackTitles: fallbackTitles,
	}, nil
}

// readItem selects the item's text source, extracts its text, and reports
// the fallback label. A non-attachment item always contributes its title to
// the fallback list, whether or not a child PDF was found. Extraction
// failures skip the document rather than aborting the collection.
func (p *Pipeline) readItem(ctx context.Context, apiKey string, scope models.LibraryScope, item models.Item) (*extracted, string, error) {
	var sourceKey string
	var fallback string

	switch {
	case item.IsPDFAttachment():
		sourceKey = item.Key
	case item.ItemType != models.ItemTypeAttachment:
		fallback = item.Title
		children, err := p.client.GetItemChildren(ctx, apiKey, scope, item.Key, models.ItemTypeAttachment)
		if err != nil {
			return nil, fallback, err
		}
		for _, child := range children {
			if child.ContentType == models.ContentTypePDF {
				sourceKey = child.Key
				break
			}
		}
	default:
		// Non-PDF attachment: title only.
		return nil, item.Title, nil
	}

	if sourceKey == "" {
		return nil, fallback, nil
	}

	text, err := p.fetcher.FetchText(ctx, apiKey, scope, sourceKey)
	if err != nil {
		// Only extraction failures are tolerable; a failed download is an
		// upstream fault and aborts the whole request.
		var extractErr *domain.ExtractionError
		if !errors.As(err, &extractErr) {
			return nil, fallback, err
		}
		p.logger.Warn("skipping unreadable attachment",
			"item_key", item.Key,
			"source_key", sourceKey,
			"error", err,
		)
		return nil, fallback, nil
	}

	return &extracted{
		title:     item.Title,
		creators:  item.CreatorLastNames(),
		wordCount: len(strings.Fields(text)),
		lowerText: strings.ToLower(text),
	}, fallback, nil
}

// themes reports which vocabulary terms appear (case-insensitively, as
// substrings) anywhere across the extracted texts. Presence, not frequency.
func (p *Pipeline) themes(docs []extracted) []string {
	matched := []string{}
	for _, term := range p.heur.ThemeVocabulary {
		lowered := strings.ToLower(term)
		for _, doc := range docs {
			if strings.Contains(doc.lowerText, lowered) {
				matched = append(matched, lowered)
				break
			}
		}
	}
	return matched
}

// divergence flags documents whose word count deviates from the mean by
// more than the configured fraction of the mean. Fewer than two documents
// yield no signal.
func (p *Pipeline) divergence(docs []extracted) []models.DivergenceFlag {
	flags := []models.DivergenceFlag{}
	if len(docs) < 2 {
		return flags
	}

	var total int
	for _, doc := range docs {
		total += doc.wordCount
	}
	mean := float64(total) / float64(len(docs))
	allowed := p.heur.DivergenceThreshold * mean

	for _, doc := range docs {
		deviation := float64(doc.wordCount) - mean
		if math.Abs(deviation) <= allowed {
			continue
		}
		direction := "long"
		if deviation < 0 {
			direction = "short"
		}
		flags = append(flags, models.DivergenceFlag{
			Title:     doc.title,
			WordCount: doc.wordCount,
			Mean:      mean,
			Direction: direction,
		})
	}
	return flags
}

// scopedKeys pairs one scope with its resolved collection keys.
type scopedKeys struct {
	scope models.LibraryScope
	keys  []string
}

// groupByScope partitions refs per scope, scopes in first-encountered order.
func groupByScope(refs []models.ResolvedRef) []scopedKeys {
	byScope := make(map[models.LibraryScope]int)
	var grouped []scopedKeys
	for _, ref := range refs {
		idx, seen := byScope[ref.Scope]
		if !seen {
			idx = len(grouped)
			byScope[ref.Scope] = idx
			grouped = append(grouped, scopedKeys{scope: ref.Scope})
		}
		grouped[idx].keys = append(grouped[idx].keys, ref.Key)
	}
	return grouped
}
