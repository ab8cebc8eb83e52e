package models

// ScopeType distinguishes the user's personal library from shared group
// libraries. Collection and item keys are only unique within one scope.
type ScopeType string

const (
	ScopePersonal ScopeType = "personal"
	ScopeGroup    ScopeType = "group"
)

// LibraryScope identifies one library namespace. It is comparable and used
// as a map key when partitioning collections and items.
type LibraryScope struct {
	Type      ScopeType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	GroupName string    `json:"group_name,omitempty"`
}

// PersonalScope returns the scope for the authenticated user's own library.
func PersonalScope(userID string) LibraryScope {
	return LibraryScope{Type: ScopePersonal, UserID: userID}
}

// GroupScope returns the scope for one shared group library.
func GroupScope(groupID, groupName string) LibraryScope {
	return LibraryScope{Type: ScopeGroup, GroupID: groupID, GroupName: groupName}
}

// Label returns the display tag for a scope: "personal" or the group name.
func (s LibraryScope) Label() string {
	if s.Type == ScopePersonal {
		return string(ScopePersonal)
	}
	if s.GroupName != "" {
		return s.GroupName
	}
	return "group_" + s.GroupID
}

// Collection is a named, hierarchically nestable grouping of items within
// one library scope. ParentKey is empty for root collections.
type Collection struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	ParentKey string `json:"parent_key,omitempty"`
}

// Creator is one author entry on an item. Only the last name participates
// in matching.
type Creator struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name"`
}

// Item is one bibliographic entry (or attachment) owned by exactly one
// library scope.
type Item struct {
	Key         string    `json:"key"`
	ItemType    string    `json:"item_type"`
	Title       string    `json:"title"`
	Creators    []Creator `json:"creators,omitempty"`
	Abstract    string    `json:"abstract,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Note        string    `json:"note,omitempty"`
}

// IsPDFAttachment reports whether the item is itself a PDF attachment.
func (it Item) IsPDFAttachment() bool {
	return it.ItemType == ItemTypeAttachment && it.ContentType == ContentTypePDF
}

// CreatorLastNames returns the ordered last names of the item's creators.
func (it Item) CreatorLastNames() []string {
	names := make([]string, 0, len(it.Creators))
	for _, c := range it.Creators {
		if c.LastName != "" {
			names = append(names, c.LastName)
		}
	}
	return names
}

// Well-known upstream item and content types.
const (
	ItemTypeAttachment = "attachment"
	ItemTypeNote       = "note"
	ContentTypePDF     = "application/pdf"
)

// ResolvedRef pairs a collection key with the scope that owns it. Keys are
// never passed around bare because they are only unique per scope.
type ResolvedRef struct {
	Key   string       `json:"key"`
	Scope LibraryScope `json:"scope"`
}
