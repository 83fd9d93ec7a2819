package arma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"arma3-server-manager/config"
)

// Client handles communication with the server manager REST backend.
type Client struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a client for cfg's backend. token may be empty.
func NewClient(cfg config.Config, token string) (*Client, error) {
	if cfg.APITarget == "" {
		return nil, fmt.Errorf("ARMA_API_TARGET is not configured")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("USERAGENT is not configured")
	}
	return &Client{
		BaseURL:   cfg.APIBaseURL(),
		Token:     token,
		UserAgent: cfg.UserAgent,
		HTTPClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
	}, nil
}

// envelope is the {results, message} wrapper used by most endpoints.
type envelope[T any] struct {
	Results T      `json:"results"`
	Message string `json:"message"`
}

// created is returned by POST endpoints that create a single entity.
type created struct {
	Result  int64  `json:"result"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) makeRequest(ctx context.Context, method, path string, queryParams url.Values, body, target any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if queryParams != nil {
		req.URL.RawQuery = queryParams.Encode()
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, bodyBytes)
	}

	if target == nil {
		return nil
	}
	switch t := target.(type) {
	case *[]byte:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		*t = data
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode json response: %w", err)
	}
	return nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (string, error) {
	var res struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.makeRequest(ctx, http.MethodGet, "/health", nil, nil, &res); err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	return res.Status, nil
}
