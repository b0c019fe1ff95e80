package ccloud

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	pkgstrings "ccloudctl/pkg/strings"
)

// APIError describes an error response from the control plane.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Title and Detail come from the first entry of the error envelope
	// when the control plane returned one.
	Title  string
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := http.StatusText(e.StatusCode)
	if e.Title != "" {
		msg = e.Title
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status %d)", msg, e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
}

// IsNotFound reports whether err is an APIError for a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether err is an APIError caused by throttling.
// A rate-limit error surfaces only after the retry budget is spent.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsAuthFailure reports whether err is an APIError caused by rejected or
// insufficient credentials.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// IsUnauthorized reports whether err is an APIError for rejected
// credentials specifically. Unlike IsAuthFailure it excludes the
// forbidden case, which can be scoped to a single resource.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// errorEnvelope is the wire shape of control-plane error responses.
type errorEnvelope struct {
	Errors []struct {
		Status string `json:"status"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// newAPIError builds an APIError from a response body. Bodies that do not
// parse as the error envelope are kept verbatim, truncated for display.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Errors) > 0 {
		apiErr.Title = env.Errors[0].Title
		apiErr.Detail = env.Errors[0].Detail
		return apiErr
	}
	if len(body) > 0 {
		apiErr.Detail = pkgstrings.TruncateDescription(string(body), 200)
	}
	return apiErr
}
