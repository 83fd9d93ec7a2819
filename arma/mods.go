package arma

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetModHelper fetches the Steam Workshop overview for modID.
func (c *Client) GetModHelper(ctx context.Context, modID int64) (*ModHelper, error) {
	var res envelope[ModHelper]
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/arma3/mod/helper/%d", modID), nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to get mod helper for %d: %w", modID, err)
	}
	return &res.Results, nil
}

func (c *Client) ListModSubscriptions(ctx context.Context) ([]ModSubscription, error) {
	var res envelope[[]ModSubscription]
	if err := c.makeRequest(ctx, http.MethodGet, "/arma3/mod/subscriptions", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to list mod subscriptions: %w", err)
	}
	return res.Results, nil
}

// AddModSubscriptions subscribes to the given Steam ids and returns the new local ids.
func (c *Client) AddModSubscriptions(ctx context.Context, steamIDs []int64) ([]int64, error) {
	type modRef struct {
		SteamID int64 `json:"steam_id"`
	}
	body := struct {
		Mods []modRef `json:"mods"`
	}{Mods: make([]modRef, 0, len(steamIDs))}
	for _, id := range steamIDs {
		body.Mods = append(body.Mods, modRef{SteamID: id})
	}

	var res struct {
		Message string  `json:"message"`
		IDs     []int64 `json:"ids"`
	}
	if err := c.makeRequest(ctx, http.MethodPost, "/arma3/mod/subscription", nil, body, &res); err != nil {
		return nil, fmt.Errorf("failed to add mod subscriptions: %w", err)
	}
	return res.IDs, nil
}

func (c *Client) GetModSubscription(ctx context.Context, modID int64) (*ModSubscription, error) {
	var res envelope[ModSubscription]
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/arma3/mod/subscription/%d", modID), nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to get mod subscription %d: %w", modID, err)
	}
	return &res.Results, nil
}

func (c *Client) UpdateModSubscription(ctx context.Context, modID int64, update ModUpdate) error {
	if err := c.makeRequest(ctx, http.MethodPatch, fmt.Sprintf("/arma3/mod/subscription/%d", modID), nil, update, nil); err != nil {
		return fmt.Errorf("failed to update mod subscription %d: %w", modID, err)
	}
	return nil
}

func (c *Client) RemoveModSubscription(ctx context.Context, modID int64) error {
	if err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/arma3/mod/subscription/%d", modID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to remove mod subscription %d: %w", modID, err)
	}
	return nil
}

// GetModImage returns the raw preview image bytes.
func (c *Client) GetModImage(ctx context.Context, modID int64) ([]byte, error) {
	var data []byte
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/arma3/mod/subscription/%d/image", modID), nil, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to get mod image %d: %w", modID, err)
	}
	return data, nil
}

// DownloadMod asks the backend to install modID and returns the job id.
func (c *Client) DownloadMod(ctx context.Context, modID int64) (string, error) {
	var res JobStatus
	if err := c.makeRequest(ctx, http.MethodPost, fmt.Sprintf("/arma3/mod/%d/download", modID), nil, nil, &res); err != nil {
		return "", fmt.Errorf("failed to request download for mod %d: %w", modID, err)
	}
	return res.Status, nil
}

// UninstallMod asks the backend to delete modID's files and returns the job id.
func (c *Client) UninstallMod(ctx context.Context, modID int64) (string, error) {
	var res JobStatus
	if err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/arma3/mod/%d/download", modID), nil, nil, &res); err != nil {
		return "", fmt.Errorf("failed to request uninstall for mod %d: %w", modID, err)
	}
	return res.Status, nil
}

// SteamCollectionMods lists the workshop item ids in a Steam collection.
// The backend answers 400 when collectionID is not a collection.
func (c *Client) SteamCollectionMods(ctx context.Context, collectionID int64, excludeSubscribed bool) ([]int64, error) {
	var params url.Values
	if excludeSubscribed {
		params = url.Values{"exclude_subscribed": {"true"}}
	}
	var res envelope[[]int64]
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/arma3/steam/collection/%d", collectionID), params, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to resolve steam collection %d: %w", collectionID, err)
	}
	return res.Results, nil
}
