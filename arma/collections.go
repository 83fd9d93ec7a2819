package arma

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var res envelope[[]Collection]
	if err := c.makeRequest(ctx, http.MethodGet, "/arma3/mod/collections", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return res.Results, nil
}

func (c *Client) GetCollection(ctx context.Context, id int64) (*Collection, error) {
	var res envelope[Collection]
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/arma3/mod/collection/%d", id), nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to get collection %d: %w", id, err)
	}
	return &res.Results, nil
}

// CreateCollection returns the server-assigned id.
func (c *Client) CreateCollection(ctx context.Context, nc NewCollection) (int64, error) {
	var res created
	if err := c.makeRequest(ctx, http.MethodPost, "/arma3/mod/collection", nil, nc, &res); err != nil {
		return 0, fmt.Errorf("failed to create collection %q: %w", nc.Name, err)
	}
	return res.Result, nil
}

func (c *Client) UpdateCollection(ctx context.Context, id int64, update CollectionUpdate) error {
	if err := c.makeRequest(ctx, http.MethodPatch, fmt.Sprintf("/arma3/mod/collection/%d", id), nil, update, nil); err != nil {
		return fmt.Errorf("failed to update collection %d: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteCollection(ctx context.Context, id int64) error {
	if err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/arma3/mod/collection/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete collection %d: %w", id, err)
	}
	return nil
}

func (c *Client) AddModsToCollection(ctx context.Context, id int64, modIDs []int64) error {
	body := struct {
		Mods []int64 `json:"mods"`
	}{Mods: modIDs}
	if err := c.makeRequest(ctx, http.MethodPatch, fmt.Sprintf("/arma3/mod/collection/%d/mods", id), nil, body, nil); err != nil {
		return fmt.Errorf("failed to add mods to collection %d: %w", id, err)
	}
	return nil
}

func (c *Client) RemoveModFromCollection(ctx context.Context, id, modID int64) error {
	body := struct {
		Mods []int64 `json:"mods"`
	}{Mods: []int64{modID}}
	if err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/arma3/mod/collection/%d/mods", id), nil, body, nil); err != nil {
		return fmt.Errorf("failed to remove mod %d from collection %d: %w", modID, id, err)
	}
	return nil
}

// ReorderModInCollection moves modID to the 1-based loadOrder.
func (c *Client) ReorderModInCollection(ctx context.Context, id, modID int64, loadOrder int) error {
	body := struct {
		LoadOrder int `json:"load_order"`
	}{LoadOrder: loadOrder}
	if err := c.makeRequest(ctx, http.MethodPatch, fmt.Sprintf("/arma3/mod/collection/%d/mods/%d", id, modID), nil, body, nil); err != nil {
		return fmt.Errorf("failed to reorder mod %d in collection %d: %w", modID, id, err)
	}
	return nil
}
