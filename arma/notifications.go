package arma

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	var res envelope[[]Notification]
	if err := c.makeRequest(ctx, http.MethodGet, "/notifications", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return res.Results, nil
}

func (c *Client) GetNotification(ctx context.Context, id int64) (*Notification, error) {
	var res envelope[Notification]
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/notification/%d", id), nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to get notification %d: %w", id, err)
	}
	return &res.Results, nil
}

func (c *Client) CreateNotification(ctx context.Context, req NotificationRequest) (int64, error) {
	var res created
	if err := c.makeRequest(ctx, http.MethodPost, "/notification", nil, req, &res); err != nil {
		return 0, fmt.Errorf("failed to create notification: %w", err)
	}
	return res.Result, nil
}

func (c *Client) UpdateNotification(ctx context.Context, id int64, update NotificationUpdate) error {
	if err := c.makeRequest(ctx, http.MethodPatch, fmt.Sprintf("/notification/%d", id), nil, update, nil); err != nil {
		return fmt.Errorf("failed to update notification %d: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	if err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/notification/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete notification %d: %w", id, err)
	}
	return nil
}
