package arma

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListServers(ctx context.Context) ([]ServerConfig, error) {
	var res envelope[[]ServerConfig]
	if err := c.makeRequest(ctx, http.MethodGet, "/arma3/servers", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return res.Results, nil
}

func (c *Client) GetServer(ctx context.Context, id int64, includeSensitive bool) (*ServerConfig, error) {
	params := url.Values{"include_sensitive": {strconv.FormatBool(includeSensitive)}}
	var res envelope[ServerConfig]
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/arma3/server/%d", id), params, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to get server %d: %w", id, err)
	}
	return &res.Results, nil
}

func (c *Client) CreateServer(ctx context.Context, req ServerRequest) (int64, error) {
	var res created
	if err := c.makeRequest(ctx, http.MethodPost, "/arma3/server", nil, req, &res); err != nil {
		return 0, fmt.Errorf("failed to create server: %w", err)
	}
	return res.Result, nil
}

func (c *Client) UpdateServer(ctx context.Context, id int64, req ServerRequest) error {
	if err := c.makeRequest(ctx, http.MethodPatch, fmt.Sprintf("/arma3/server/%d", id), nil, req, nil); err != nil {
		return fmt.Errorf("failed to update server %d: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteServer(ctx context.Context, id int64) error {
	if err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/arma3/server/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete server %d: %w", id, err)
	}
	return nil
}

// ActivateServer makes id the target of start/stop operations.
func (c *Client) ActivateServer(ctx context.Context, id int64) error {
	if err := c.makeRequest(ctx, http.MethodPost, fmt.Sprintf("/arma3/server/%d/activate", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to activate server %d: %w", id, err)
	}
	return nil
}

// SetServerCollection points a server at collectionID; nil clears it.
func (c *Client) SetServerCollection(ctx context.Context, id int64, collectionID *int64) error {
	body := map[string]*int64{"collection_id": collectionID}
	if err := c.makeRequest(ctx, http.MethodPatch, fmt.Sprintf("/arma3/server/%d", id), nil, body, nil); err != nil {
		return fmt.Errorf("failed to set collection for server %d: %w", id, err)
	}
	return nil
}

func (c *Client) StartServer(ctx context.Context) (*ActionResponse, error) {
	var res ActionResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/arma3/server/start", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) StopServer(ctx context.Context) (*ActionResponse, error) {
	var res ActionResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/arma3/server/stop", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PerformServerAction runs action against the active server. Restart is a stop followed by a start.
func (c *Client) PerformServerAction(ctx context.Context, action ServerAction) (*ActionResponse, error) {
	var (
		res *ActionResponse
		err error
	)
	switch action {
	case ActionStart:
		res, err = c.StartServer(ctx)
	case ActionStop:
		res, err = c.StopServer(ctx)
	case ActionRestart:
		if _, err = c.StopServer(ctx); err == nil {
			res, err = c.StartServer(ctx)
		}
	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s server: %w", action, err)
	}
	return res, nil
}
