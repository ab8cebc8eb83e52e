package zotero

import (
	"encoding/json"
	"fmt"

	"zotproxy/internal/domain/models"
)

// KeyInfo is the identity behind an API key.
type KeyInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Group is one shared library the user belongs to.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchParams configures an item search against one library scope.
type SearchParams struct {
	// Query is the free-text search term; empty lists items.
	Query string
	// QMode selects upstream relevance ordering ("titleCreatorYear" or "title").
	QMode string
	// Limit is the page size.
	Limit int
	// CollectionKeys restricts results to the listed collections.
	CollectionKeys []string
	// ItemType filters by upstream item type (e.g. "note" for children).
	ItemType string
}

// Query modes understood by the upstream API.
const (
	QModeTitleCreatorYear = "titleCreatorYear"
	QModeTitle            = "title"
)

// keyResponse is the wire shape of /keys/current.
type keyResponse struct {
	UserID   int64  `json:"userID"`
	Username string `json:"username"`
}

// groupResponse is the wire shape of one /users/{id}/groups entry.
type groupResponse struct {
	ID   int64 `json:"id"`
	Data struct {
		Name string `json:"name"`
	} `json:"data"`
}

// optionalParent decodes the upstream parentCollection field, which is the
// JSON literal false for root collections and a key string otherwise.
type optionalParent string

func (p *optionalParent) UnmarshalJSON(b []byte) error {
	if string(b) == "false" {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("parentCollection: %w", err)
	}
	*p = optionalParent(s)
	return nil
}

// collectionResponse is the wire shape of one collection entry.
type collectionResponse struct {
	Key  string `json:"key"`
	Data struct {
		Key              string         `json:"key"`
		Name             string         `json:"name"`
		ParentCollection optionalParent `json:"parentCollection"`
	} `json:"data"`
}

func (c collectionResponse) toModel() models.Collection {
	key := c.Data.Key
	if key == "" {
		key = c.Key
	}
	return models.Collection{
		Key:       key,
		Name:      c.Data.Name,
		ParentKey: string(c.Data.ParentCollection),
	}
}

// creatorResponse is the wire shape of one creator entry.
type creatorResponse struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

// itemResponse is the wire shape of one item entry.
type itemResponse struct {
	Key  string `json:"key"`
	Data struct {
		Key          string            `json:"key"`
		ItemType     string            `json:"itemType"`
		Title        string            `json:"title"`
		AbstractNote string            `json:"abstractNote"`
		ContentType  string            `json:"contentType"`
		Note         string            `json:"note"`
		Creators     []creatorResponse `json:"creators"`
	} `json:"data"`
}

func (i itemResponse) toModel() models.Item {
	key := i.Data.Key
	if key == "" {
		key = i.Key
	}
	creators := make([]models.Creator, 0, len(i.Data.Creators))
	for _, c := range i.Data.Creators {
		creators = append(creators, models.Creator{
			FirstName: c.FirstName,
			LastName:  c.LastName,
		})
	}
	return models.Item{
		Key:         key,
		ItemType:    i.Data.ItemType,
		Title:       i.Data.Title,
		Creators:    creators,
		Abstract:    i.Data.AbstractNote,
		ContentType: i.Data.ContentType,
		Note:        i.Data.Note,
	}
}
