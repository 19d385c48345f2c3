package apiclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/leakguard-io/leakguard/internal/findings"
)

// Client talks to the leakguard ingestion API. Transport failures are
// returned to the caller; retrying a whole batch is always safe because the
// server deduplicates by fingerprint.
type Client struct {
	httpc   *resty.Client
	baseURL string
}

// New wraps a configured resty client for the API at baseURL.
func New(httpc *resty.Client, baseURL string) *Client {
	return &Client{
		httpc:   httpc,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// VerifyResult is the response of the auth verification endpoint.
type VerifyResult struct {
	OK        bool   `json:"ok"`
	ProjectID string `json:"projectId"`
	RepoID    string `json:"repoId"`
}

// PushResult is the response of a findings ingest.
type PushResult struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
	New   int  `json:"new"`
}

type projectCreateBody struct {
	RepoID string `json:"repoId"`
	Name   string `json:"name,omitempty"`
}

// ProjectCreateResult carries the one-time ingestion token for a new project.
type ProjectCreateResult struct {
	ID             string `json:"id"`
	RepoID         string `json:"repoId"`
	Name           string `json:"name"`
	IngestionToken string `json:"ingestionToken"`
}

// Verify checks that the bearer token resolves to exactly one project.
func (c *Client) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	var result VerifyResult
	var apiErr errorBody

	resp, err := c.httpc.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&result).
		SetError(&apiErr).
		Get(c.baseURL + "/v1/auth/verify")
	if err != nil {
		return nil, fmt.Errorf("failed to reach API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("token verification failed with status %d: %s", resp.StatusCode(), apiErr.Error)
	}

	return &result, nil
}

// Push delivers a findings batch. A non-2xx response is an error; the caller
// treats the batch as not-yet-delivered and may retry it whole.
func (c *Client) Push(ctx context.Context, token string, payload findings.Payload) (*PushResult, error) {
	var result PushResult
	var apiErr errorBody

	resp, err := c.httpc.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&result).
		SetError(&apiErr).
		Post(c.baseURL + "/v1/findings")
	if err != nil {
		return nil, fmt.Errorf("failed to reach API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("findings push failed with status %d: %s", resp.StatusCode(), apiErr.Error)
	}

	return &result, nil
}

// CreateProject mints a project and its ingestion token. Requires the admin
// credential.
func (c *Client) CreateProject(ctx context.Context, adminToken, repoID, name string) (*ProjectCreateResult, error) {
	var result ProjectCreateResult
	var apiErr errorBody

	resp, err := c.httpc.R().
		SetContext(ctx).
		SetAuthToken(adminToken).
		SetHeader("Content-Type", "application/json").
		SetBody(projectCreateBody{RepoID: repoID, Name: name}).
		SetResult(&result).
		SetError(&apiErr).
		Post(c.baseURL + "/v1/projects")
	if err != nil {
		return nil, fmt.Errorf("failed to reach API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("project creation failed with status %d: %s", resp.StatusCode(), apiErr.Error)
	}

	return &result, nil
}
