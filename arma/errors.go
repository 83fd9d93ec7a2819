package arma

import (
	"encoding/json"
	"errors"
	"fmt"
)

const defaultErrorMessage = "An unknown error occurred"

var httpErrorMessages = map[int]string{
	400: "Bad request - please check your input",
	401: "Authentication required",
	403: "Permission denied",
	404: "Resource not found",
	409: "Conflict - resource already exists",
	422: "Validation error - please check your input",
	429: "Too many requests - please try again later",
	500: "Server error - please try again later",
	502: "Service unavailable - please try again later",
	503: "Service temporarily unavailable",
}

// APIError is returned for any non-2xx backend response.
type APIError struct {
	StatusCode int
	// Message is the backend's own message/error field, if it sent one.
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api request failed: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api request failed: status %d, body: %s", e.StatusCode, e.Body)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ErrorMessage turns err into a message fit for the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if msg, ok := httpErrorMessages[apiErr.StatusCode]; ok {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultErrorMessage
}
