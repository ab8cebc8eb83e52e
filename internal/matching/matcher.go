package matching

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"zotproxy/internal/domain/models"
)

// Fields usable with ContainsAllFields.
const (
	FieldTitle    = "title"
	FieldAbstract = "abstract"
	FieldCreators = "creators"
)

// ClosestMatches ranks candidates by normalized edit similarity to query,
// descending, keeps only those scoring at least cutoff, and truncates to
// limit. Ties keep the original candidate order. It never fails; no
// candidate clearing the cutoff yields an empty slice.
func ClosestMatches(query string, candidates []string, limit int, cutoff float64) []string {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		value string
		score float64
		index int
	}

	queryRunes := splitRunes(query)
	matches := make([]scored, 0, len(candidates))

	for i, candidate := range candidates {
		m := difflib.NewMatcher(splitRunes(candidate), queryRunes)
		// Cheap upper bounds first, full ratio only when they clear the cutoff.
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if ratio := m.Ratio(); ratio >= cutoff {
			matches = append(matches, scored{value: candidate, score: ratio, index: i})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].score != matches[b].score {
			return matches[a].score > matches[b].score
		}
		return matches[a].index < matches[b].index
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = m.value
	}
	return result
}

// ContainsAllFields reports whether the lowercased query appears as a
// substring of the concatenation of the named item fields. Creator last
// names are joined by spaces. This is a looser secondary filter, distinct
// from closeness ranking.
func ContainsAllFields(query string, item models.Item, fields []string) bool {
	var combined strings.Builder
	for _, field := range fields {
		switch field {
		case FieldTitle:
			combined.WriteString(item.Title)
		case FieldAbstract:
			combined.WriteString(item.Abstract)
		case FieldCreators:
			combined.WriteString(strings.Join(item.CreatorLastNames(), " "))
		}
		combined.WriteString(" ")
	}
	return strings.Contains(strings.ToLower(combined.String()), strings.ToLower(query))
}

// DefaultItemFields is the field set used by the search fallback ladder.
var DefaultItemFields = []string{FieldTitle, FieldAbstract, FieldCreators}

// splitRunes converts a string into per-rune elements for the sequence matcher.
func splitRunes(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
