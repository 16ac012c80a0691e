package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/repository"
)

// ErrNoToken is returned when a client is created without a token.
var ErrNoToken = errors.New("a GitHub token is required")

// Dispatcher sends workflow_dispatch events.
type Dispatcher interface {
	DispatchWorkflow(ctx context.Context, repo repository.Repository, workflow string, req DispatchRequest) error
}

// Options configures a Client.
type Options struct {
	// Host is the GitHub host, github.com when empty.
	Host  string
	Token string
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Client talks to the GitHub REST API.
type Client struct {
	http    *http.Client
	token   string
	baseURL string
}

// NewClient creates a client authenticated with a bearer token.
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, ErrNoToken
	}
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	httpClient, err := api.NewHTTPClient(api.ClientOptions{
		Host:      host,
		AuthToken: opts.Token,
		Transport: transport,
		Headers: map[string]string{
			"Accept":               AcceptHeader,
			"Authorization":        "Bearer " + opts.Token,
			"X-GitHub-Api-Version": APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		http:    httpClient,
		token:   opts.Token,
		baseURL: APIBase(host),
	}, nil
}

// APIBase returns the REST API root for a GitHub host.
func APIBase(host string) string {
	host = strings.ToLower(host)
	switch {
	case host == "" || host == DefaultHost:
		return "https://api.github.com"
	case strings.HasSuffix(host, ".ghe.com"):
		return "https://api." + host
	default:
		return "https://" + host + "/api/v3"
	}
}

// DispatchURL returns the workflow dispatch endpoint for a repository.
func DispatchURL(base string, repo repository.Repository, workflow string) string {
	return fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches",
		base, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), url.PathEscape(workflow))
}

// DispatchWorkflow triggers a workflow_dispatch event. A single attempt is
// made; non-2xx responses are returned as *RemoteError.
func (c *Client) DispatchWorkflow(ctx context.Context, repo repository.Repository, workflow string, req DispatchRequest) error {
	if req.Inputs == nil {
		req.Inputs = map[string]string{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode dispatch request: %w", err)
	}

	endpoint := DispatchURL(c.baseURL, repo, workflow)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build dispatch request: %w", err)
	}
	httpReq.Header.Set("Accept", AcceptHeader)
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("X-GitHub-Api-Version", APIVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	slog.Debug("Dispatching workflow", "url", endpoint, "ref", req.Ref, "inputs", len(req.Inputs))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{URL: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	slog.Debug("Workflow dispatched", "status", resp.StatusCode)
	return nil
}
