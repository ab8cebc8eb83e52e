package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zotproxy/internal/domain"
	"zotproxy/internal/domain/models"
)

// LibraryClient is the collaborator interface over the upstream reference
// manager API. Every call is a read; failures surface as domain errors.
type LibraryClient interface {
	// CurrentKey resolves the identity behind an API key.
	CurrentKey(ctx context.Context, apiKey string) (*KeyInfo, error)
	// ListCollections lists every collection in one library scope.
	ListCollections(ctx context.Context, apiKey string, scope models.LibraryScope) ([]models.Collection, error)
	// ListGroups lists the shared libraries the user belongs to.
	ListGroups(ctx context.Context, apiKey, userID string) ([]Group, error)
	// SearchItems searches items within one library scope.
	SearchItems(ctx context.Context, apiKey string, scope models.LibraryScope, params SearchParams) ([]models.Item, error)
	// GetItem fetches one item's metadata.
	GetItem(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string) (*models.Item, error)
	// GetItemChildren fetches an item's child items, optionally filtered by type.
	GetItemChildren(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey, itemType string) ([]models.Item, error)
	// DownloadAttachment streams an attachment's bytes into w.
	DownloadAttachment(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string, w io.Writer) error
}

// Client is the HTTP implementation of LibraryClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client against the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// scopePath returns the URL prefix owning a library scope's resources.
func scopePath(scope models.LibraryScope) string {
	if scope.Type == models.ScopeGroup {
		return "/groups/" + scope.GroupID
	}
	return "/users/" + scope.UserID
}

func (c *Client) CurrentKey(ctx context.Context, apiKey string) (*KeyInfo, error) {
	var resp keyResponse
	if err := c.getJSON(ctx, apiKey, "/keys/current", nil, &resp); err != nil {
		return nil, err
	}
	if resp.UserID == 0 {
		return nil, &domain.AuthenticationError{Message: "upstream returned no user for key"}
	}
	return &KeyInfo{
		UserID:   strconv.FormatInt(resp.UserID, 10),
		Username: resp.Username,
	}, nil
}

func (c *Client) ListCollections(ctx context.Context, apiKey string, scope models.LibraryScope) ([]models.Collection, error) {
	var resp []collectionResponse
	if err := c.getJSON(ctx, apiKey, scopePath(scope)+"/collections", nil, &resp); err != nil {
		return nil, err
	}
	collections := make([]models.Collection, 0, len(resp))
	for _, col := range resp {
		collections = append(collections, col.toModel())
	}
	return collections, nil
}

func (c *Client) ListGroups(ctx context.Context, apiKey, userID string) ([]Group, error) {
	var resp []groupResponse
	if err := c.getJSON(ctx, apiKey, "/users/"+userID+"/groups", nil, &resp); err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(resp))
	for _, g := range resp {
		name := g.Data.Name
		if name == "" {
			name = fmt.Sprintf("group_%d", g.ID)
		}
		groups = append(groups, Group{
			ID:   strconv.FormatInt(g.ID, 10),
			Name: name,
		})
	}
	return groups, nil
}

func (c *Client) SearchItems(ctx context.Context, apiKey string, scope models.LibraryScope, params SearchParams) ([]models.Item, error) {
	query := url.Values{}
	query.Set("format", "json")
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.QMode != "" {
		query.Set("qmode", params.QMode)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if len(params.CollectionKeys) > 0 {
		query.Set("collection", strings.Join(params.CollectionKeys, ","))
	}
	if params.ItemType != "" {
		query.Set("itemType", params.ItemType)
	}

	var resp []itemResponse
	if err := c.getJSON(ctx, apiKey, scopePath(scope)+"/items", query, &resp); err != nil {
		return nil, err
	}
	return itemsToModels(resp), nil
}

func (c *Client) GetItem(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string) (*models.Item, error) {
	var resp itemResponse
	if err := c.getJSON(ctx, apiKey, scopePath(scope)+"/items/"+itemKey, nil, &resp); err != nil {
		return nil, err
	}
	item := resp.toModel()
	return &item, nil
}

func (c *Client) GetItemChildren(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey, itemType string) ([]models.Item, error) {
	query := url.Values{}
	query.Set("format", "json")
	if itemType != "" {
		query.Set("itemType", itemType)
	}

	var resp []itemResponse
	if err := c.getJSON(ctx, apiKey, scopePath(scope)+"/items/"+itemKey+"/children", query, &resp); err != nil {
		return nil, err
	}
	return itemsToModels(resp), nil
}

func (c *Client) DownloadAttachment(ctx context.Context, apiKey string, scope models.LibraryScope, itemKey string, w io.Writer) error {
	req, err := c.newRequest(ctx, apiKey, scopePath(scope)+"/items/"+itemKey+"/file", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Message: fmt.Sprintf("download attachment: %v", err)}
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return &domain.UpstreamError{Message: fmt.Sprintf("read attachment stream: %v", err)}
	}
	return nil
}

// newRequest builds an authenticated GET request against the API.
func (c *Client) newRequest(ctx context.Context, apiKey, path string, query url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Zotero-API-Key", apiKey)
	return req, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into dest.
func (c *Client) getJSON(ctx context.Context, apiKey, path string, query url.Values, dest interface{}) error {
	req, err := c.newRequest(ctx, apiKey, path, query)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Message: fmt.Sprintf("request %s: %v", path, err)}
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &domain.UpstreamError{Message: fmt.Sprintf("decode response from %s: %v", path, err)}
	}
	return nil
}

// statusError maps an upstream status code to a domain error, draining the
// body for the error detail.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &domain.AuthenticationError{
			Message: fmt.Sprintf("upstream rejected API key (status %d)", resp.StatusCode),
		}
	case http.StatusNotFound:
		return &domain.NotFoundError{
			Message: "upstream resource not found",
		}
	default:
		return &domain.UpstreamError{
			Message: fmt.Sprintf("upstream returned status %d: %s", resp.StatusCode, detail),
		}
	}
}

func itemsToModels(resp []itemResponse) []models.Item {
	items := make([]models.Item, 0, len(resp))
	for _, it := range resp {
		items = append(items, it.toModel())
	}
	return items
}
