package github

import "fmt"

// API constants for the workflow dispatch endpoint.
const (
	APIVersion   = "2022-11-28"
	AcceptHeader = "application/vnd.github+json"
	DefaultHost  = "github.com"
)

// DispatchRequest is the body of a workflow_dispatch API call.
type DispatchRequest struct {
	Ref    string            `json:"ref"`
	Inputs map[string]string `json:"inputs"`
}

// RemoteError is returned when the API answers with a non-2xx status.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("workflow dispatch failed with HTTP %d: %s", e.StatusCode, e.Body)
}

// TransportError is returned when the request could not be completed.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("workflow dispatch request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
