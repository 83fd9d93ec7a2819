package arma

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultPollInterval    = 2 * time.Second
	DefaultPollMaxAttempts = 60
)

// JobStatus fetches the current status of a background job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (JobStatus, error) {
	var res JobStatus
	if err := c.makeRequest(ctx, http.MethodGet, "/async/"+jobID, nil, nil, &res); err != nil {
		return JobStatus{}, fmt.Errorf("failed to fetch job status: %w", err)
	}
	return res, nil
}

// PollJob polls jobID until it reaches a terminal status or maxAttempts is
// exhausted. Fetch errors end polling with a FAILURE status rather than an error.
func (c *Client) PollJob(ctx context.Context, jobID string, interval time.Duration, maxAttempts int, onStatus func(JobStatus)) JobStatus {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		status, err := c.JobStatus(ctx, jobID)
		if err != nil {
			return JobStatus{Status: "FAILURE", Message: err.Error()}
		}
		if onStatus != nil {
			onStatus(status)
		}
		if status.Done() {
			return status
		}
		if attempt >= maxAttempts {
			return JobStatus{Status: "FAILURE", Message: "Job polling timed out"}
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return JobStatus{Status: "FAILURE", Message: ctx.Err().Error()}
		case <-timer.C:
		}
	}
}
