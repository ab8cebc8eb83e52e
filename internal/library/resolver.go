package library

import (
	"strings"

	"zotproxy/internal/domain/models"
	"zotproxy/internal/matching"
)

// KeyRefPrefix marks a name that is already an exact collection key, e.g.
// "collectionkey:ABCD1234". It bypasses fuzzy resolution entirely.
const KeyRefPrefix = "collectionkey:"

// ParseKeyRef extracts the raw key from a key-reference name. Callers that
// hold an exact key use this escape hatch to skip resolution.
func ParseKeyRef(name string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(name), KeyRefPrefix) {
		return "", false
	}
	key := strings.TrimSpace(name[len(KeyRefPrefix):])
	return key, key != ""
}

// Resolve maps a free-text collection name to scoped collection keys: the
// best-matching collections by full path across every scope, each expanded
// to include its transitive descendants. An empty result means "not found",
// never a fault.
func Resolve(ix *Index, name string, limit int, cutoff float64) []models.ResolvedRef {
	if key, ok := ParseKeyRef(name); ok {
		// Exact-key mode assumes the personal scope.
		return []models.ResolvedRef{{Key: key, Scope: ix.PersonalScope()}}
	}

	entries := ix.Entries()
	if len(entries) == 0 {
		return nil
	}

	// One merged, lowercased candidate set across every scope. Distinct
	// entries may share a lowercased path, so each path maps to all of them.
	byPath := make(map[string][]Entry, len(entries))
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := strings.ToLower(entry.FullPath)
		if _, seen := byPath[path]; !seen {
			paths = append(paths, path)
		}
		byPath[path] = append(byPath[path], entry)
	}

	matched := matching.ClosestMatches(strings.ToLower(name), paths, limit, cutoff)
	if len(matched) == 0 {
		return nil
	}

	// Union of descendant closures across all matched collections and
	// scopes, de-duplicated per (key, scope) in first-seen order.
	type refKey struct {
		key   string
		scope models.LibraryScope
	}
	seen := make(map[refKey]bool)
	var refs []models.ResolvedRef

	for _, path := range matched {
		for _, entry := range byPath[path] {
			for _, key := range ix.DescendantsOf([]string{entry.Collection.Key}, entry.Scope) {
				rk := refKey{key: key, scope: entry.Scope}
				if seen[rk] {
					continue
				}
				seen[rk] = true
				refs = append(refs, models.ResolvedRef{Key: key, Scope: entry.Scope})
			}
		}
	}

	return refs
}
