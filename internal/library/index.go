package library

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"zotproxy/internal/domain/models"
	"zotproxy/internal/zotero"
)

// Entry is one collection tagged with its owning scope and its derived
// hierarchical path. Entries are request-scoped and never cached.
type Entry struct {
	Collection models.Collection   `json:"collection"`
	Scope      models.LibraryScope `json:"scope"`
	FullPath   string              `json:"full_path"`
}

// Index is the unified per-request view over the personal library and every
// reachable group library: scope-tagged entries, full paths, and per-scope
// parent/child adjacency. It is immutable once built.
type Index struct {
	personal models.LibraryScope
	entries  []Entry
	scopes   map[models.LibraryScope]*scopeIndex
}

type scopeIndex struct {
	byKey    map[string]models.Collection
	children map[string][]string
}

// BuildIndex fetches fresh collection listings for the personal library and
// every group the user belongs to, then assembles the unified index. Group
// listings are fetched concurrently; a group whose fetch fails is skipped
// rather than failing the build.
func BuildIndex(ctx context.Context, client zotero.LibraryClient, apiKey, userID string, logger *slog.Logger) (*Index, error) {
	personalScope := models.PersonalScope(userID)

	personal, err := client.ListCollections(ctx, apiKey, personalScope)
	if err != nil {
		return nil, err
	}

	groups, err := client.ListGroups(ctx, apiKey, userID)
	if err != nil {
		return nil, err
	}

	// Fetch per-group listings concurrently; results land in slots indexed
	// by group order so the merge stays deterministic.
	groupListings := make([][]models.Collection, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			scope := models.GroupScope(group.ID, group.Name)
			listing, err := client.ListCollections(gctx, apiKey, scope)
			if err != nil {
				// Partial availability: one bad group must not block the rest.
				logger.Warn("skipping group with failing collection listing",
					"group_id", group.ID,
					"group_name", group.Name,
					"error", err,
				)
				return nil
			}
			groupListings[i] = listing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix := &Index{
		personal: personalScope,
		scopes:   make(map[models.LibraryScope]*scopeIndex),
	}
	ix.addScope(personalScope, personal)
	for i, group := range groups {
		if groupListings[i] == nil {
			continue
		}
		ix.addScope(models.GroupScope(group.ID, group.Name), groupListings[i])
	}

	logger.Debug("library index built",
		"collections", len(ix.entries),
		"scopes", len(ix.scopes),
	)

	return ix, nil
}

// addScope tags a listing with its scope, computes full paths, and records
// the parent-to-children adjacency.
func (ix *Index) addScope(scope models.LibraryScope, collections []models.Collection) {
	si := &scopeIndex{
		byKey:    make(map[string]models.Collection, len(collections)),
		children: make(map[string][]string),
	}
	for _, col := range collections {
		si.byKey[col.Key] = col
	}
	for _, col := range collections {
		if col.ParentKey != "" {
			si.children[col.ParentKey] = append(si.children[col.ParentKey], col.Key)
		}
	}
	ix.scopes[scope] = si

	for _, col := range collections {
		ix.entries = append(ix.entries, Entry{
			Collection: col,
			Scope:      scope,
			FullPath:   si.fullPath(col.Key),
		})
	}
}

// fullPath walks parent links from a collection to its root and joins the
// ancestor names front-to-back with "/". A parent key pointing outside the
// known set truncates the walk; a visited set guards against cyclic input.
func (si *scopeIndex) fullPath(key string) string {
	var names []string
	visited := make(map[string]bool)

	for key != "" && !visited[key] {
		visited[key] = true
		col, ok := si.byKey[key]
		if !ok {
			break
		}
		names = append(names, col.Name)
		key = col.ParentKey
	}

	// Reverse: walked leaf-to-root, path reads root-to-leaf.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// PersonalScope returns the scope of the authenticated user's own library.
func (ix *Index) PersonalScope() models.LibraryScope {
	return ix.personal
}

// Entries returns every indexed collection in scope order (personal first,
// then groups in listing order).
func (ix *Index) Entries() []Entry {
	return ix.entries
}

// DescendantsOf computes the transitive closure of the child relation over
// the seed keys within one scope, seeds included. The walk tracks visited
// keys so it terminates even if the upstream parent map contains a cycle.
func (ix *Index) DescendantsOf(keys []string, scope models.LibraryScope) []string {
	si, ok := ix.scopes[scope]
	if !ok {
		return append([]string(nil), keys...)
	}

	visited := make(map[string]bool, len(keys))
	result := make([]string, 0, len(keys))
	queue := append([]string(nil), keys...)

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		visited[key] = true
		result = append(result, key)
		queue = append(queue, si.children[key]...)
	}

	return result
}
