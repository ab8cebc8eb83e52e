// Package zoterotest provides a configurable in-memory LibraryClient for
// tests. Unset behaviors return empty results; every call is counted so
// tests can assert which upstream operations ran.
package zoterotest

import (
	"context"
	"io"
	"sync"

	"zotproxy/internal/domain/models"
	"zotproxy/internal/zotero"
)

// Client implements zotero.LibraryClient with overridable function fields.
type Client struct {
	CurrentKeyFunc         func(ctx context.Context, apiKey string) (*zotero.KeyInfo, error)
	ListCollectionsFunc    func(ctx context.Context, apiKey string, scope models.LibraryScope) ([]models.Collection, error)
	ListGroupsFunc         func(ctx context.Context, apiKey, userID string) ([]zotero.Group, error)
	SearchItemsFunc        func(ctx context.Context, apiKey string, scope models.LibraryScope, params zotero.SearchParams) ([]models.Item, error)
	GetItemFunc            func(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string) (*models.Item, error)
	GetItemChildrenFunc    func(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey, itemType string) ([]models.Item, error)
	DownloadAttachmentFunc func(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string, w io.Writer) error

	mu    sync.Mutex
	calls map[string]int
}

var _ zotero.LibraryClient = (*Client)(nil)

func (c *Client) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[method]++
}

// Calls returns how many times the named method was invoked.
func (c *Client) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// TotalCalls returns the number of upstream calls across all methods.
func (c *Client) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

func (c *Client) CurrentKey(ctx context.Context, apiKey string) (*zotero.KeyInfo, error) {
	c.record("CurrentKey")
	if c.CurrentKeyFunc != nil {
		return c.CurrentKeyFunc(ctx, apiKey)
	}
	return &zotero.KeyInfo{UserID: "1000", Username: "tester"}, nil
}

func (c *Client) ListCollections(ctx context.Context, apiKey string, scope models.LibraryScope) ([]models.Collection, error) {
	c.record("ListCollections")
	if c.ListCollectionsFunc != nil {
		return c.ListCollectionsFunc(ctx, apiKey, scope)
	}
	return nil, nil
}

func (c *Client) ListGroups(ctx context.Context, apiKey, userID string) ([]zotero.Group, error) {
	c.record("ListGroups")
	if c.ListGroupsFunc != nil {
		return c.ListGroupsFunc(ctx, apiKey, userID)
	}
	return nil, nil
}

func (c *Client) SearchItems(ctx context.Context, apiKey string, scope models.LibraryScope, params zotero.SearchParams) ([]models.Item, error) {
	c.record("SearchItems")
	if c.SearchItemsFunc != nil {
		return c.SearchItemsFunc(ctx, apiKey, scope, params)
	}
	return nil, nil
}

func (c *Client) GetItem(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string) (*models.Item, error) {
	c.record("GetItem")
	if c.GetItemFunc != nil {
		return c.GetItemFunc(ctx, apiKey, scope, itemKey)
	}
	return &models.Item{Key: itemKey}, nil
}

func (c *Client) GetItemChildren(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey, itemType string) ([]models.Item, error) {
	c.record("GetItemChildren")
	if c.GetItemChildrenFunc != nil {
		return c.GetItemChildrenFunc(ctx, apiKey, scope, itemKey, itemType)
	}
	return nil, nil
}

func (c *Client) DownloadAttachment(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string, w io.Writer) error {
	c.record("DownloadAttachment")
	if c.DownloadAttachmentFunc != nil {
		return c.DownloadAttachmentFunc(ctx, apiKey, scope, itemKey, w)
	}
	return nil
}
