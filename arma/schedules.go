package arma

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListSchedules(ctx context.Context) ([]Schedule, error) {
	var res envelope[[]Schedule]
	if err := c.makeRequest(ctx, http.MethodGet, "/schedules", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return res.Results, nil
}

func (c *Client) GetSchedule(ctx context.Context, id int64) (*Schedule, error) {
	var res envelope[Schedule]
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/schedule/%d", id), nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to get schedule %d: %w", id, err)
	}
	return &res.Results, nil
}

func (c *Client) CreateSchedule(ctx context.Context, req ScheduleRequest) (int64, error) {
	var res created
	if err := c.makeRequest(ctx, http.MethodPost, "/schedule", nil, req, &res); err != nil {
		return 0, fmt.Errorf("failed to create schedule %q: %w", req.Name, err)
	}
	return res.Result, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, id int64, update ScheduleUpdate) error {
	if err := c.makeRequest(ctx, http.MethodPatch, fmt.Sprintf("/schedule/%d", id), nil, update, nil); err != nil {
		return fmt.Errorf("failed to update schedule %d: %w", id, err)
	}
	return nil
}

func (c *Client) ToggleSchedule(ctx context.Context, id int64, enabled bool) error {
	return c.UpdateSchedule(ctx, id, ScheduleUpdate{Enabled: &enabled})
}

func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	if err := c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/schedule/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete schedule %d: %w", id, err)
	}
	return nil
}

// TriggerSchedule runs the schedule's action immediately.
func (c *Client) TriggerSchedule(ctx context.Context, id int64) (string, error) {
	var res messageResponse
	if err := c.makeRequest(ctx, http.MethodPost, fmt.Sprintf("/schedule/%d/trigger", id), nil, nil, &res); err != nil {
		return "", fmt.Errorf("failed to trigger schedule %d: %w", id, err)
	}
	return res.Message, nil
}
