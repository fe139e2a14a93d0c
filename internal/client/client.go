// Package client talks to the AppDAR backend REST service. The engine never
// calls the backend itself; everything network-facing goes through here and
// is strictly sequenced by the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
	"github.com/civic-health-innovation-labs/AppDAR/internal/request"
)

// DefaultTimeout is the default timeout for backend requests.
const DefaultTimeout = 30 * time.Second

// Client is a bearer-token client for the AppDAR backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the backend at baseURL, authenticating every
// request with the given bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
}

// WithLogger replaces the client's logger.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// WithTimeout sets a custom timeout for backend requests.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// FetchCatalogue fetches the catalogue, optionally narrowed by the
// backend's full-text search. An empty search returns the full catalogue.
func (c *Client) FetchCatalogue(ctx context.Context, search string) (*catalogue.Catalogue, error) {
	path := "/catalogue"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	var cat catalogue.Catalogue
	if err := c.do(ctx, http.MethodGet, path, nil, &cat); err != nil {
		return nil, fmt.Errorf("failed to fetch catalogue: %w", err)
	}
	return &cat, nil
}

// FetchWorkspaces lists the workspaces visible to the current user.
func (c *Client) FetchWorkspaces(ctx context.Context) ([]request.Workspace, error) {
	var workspaces []request.Workspace
	if err := c.do(ctx, http.MethodGet, "/workspaces", nil, &workspaces); err != nil {
		return nil, fmt.Errorf("failed to fetch workspaces: %w", err)
	}
	return workspaces, nil
}

// ListRequests lists the data access requests visible to the current user.
func (c *Client) ListRequests(ctx context.Context) ([]request.Request, error) {
	var requests []request.Request
	if err := c.do(ctx, http.MethodGet, "/requests", nil, &requests); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// GetRequest fetches the detail of one data access request.
func (c *Client) GetRequest(ctx context.Context, requestUUID uuid.UUID) (*request.Request, error) {
	var req request.Request
	path := "/request?request_uuid=" + url.QueryEscape(requestUUID.String())
	if err := c.do(ctx, http.MethodGet, path, nil, &req); err != nil {
		return nil, fmt.Errorf("failed to fetch request %s: %w", requestUUID, err)
	}
	return &req, nil
}

// SubmitRequest posts a new data access request. The submission must have
// been built and validated by the request package first.
func (c *Client) SubmitRequest(ctx context.Context, sub *request.Submission) error {
	if err := c.do(ctx, http.MethodPost, "/request", sub, nil); err != nil {
		return fmt.Errorf("failed to submit request: %w", err)
	}
	return nil
}

// reviewWire is the review-request body expected by the backend.
type reviewWire struct {
	RequestUUID      uuid.UUID      `json:"request_uuid"`
	Status           request.Status `json:"status"`
	ReviewerDecision string         `json:"reviewer_decision"`
}

// SubmitReview sends a data manager's decision on a pending request. The
// review preconditions are validated before anything leaves the process.
func (c *Client) SubmitReview(ctx context.Context, requestUUID uuid.UUID, review request.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}

	body := reviewWire{
		RequestUUID:      requestUUID,
		Status:           review.Status,
		ReviewerDecision: review.Decision,
	}
	if err := c.do(ctx, http.MethodPut, "/review-request", body, nil); err != nil {
		return fmt.Errorf("failed to submit review for %s: %w", requestUUID, err)
	}
	return nil
}

// provisioningWire is the provisioning-commit response of the backend.
type provisioningWire struct {
	RequestUUID  uuid.UUID `json:"request_uuid"`
	PipelineLink string    `json:"adf_link"`
}

// CommitProvisioning triggers the dataset provisioning pipeline for an
// approved request and returns the pipeline link. The backend is idempotent
// about an already-attached link.
func (c *Client) CommitProvisioning(ctx context.Context, requestUUID uuid.UUID) (string, error) {
	var resp provisioningWire
	path := "/request-adf-commit?request_uuid=" + url.QueryEscape(requestUUID.String())
	if err := c.do(ctx, http.MethodPut, path, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to commit provisioning for %s: %w", requestUUID, err)
	}
	return resp.PipelineLink, nil
}

// DeleteRequest deletes a pending request.
func (c *Client) DeleteRequest(ctx context.Context, requestUUID uuid.UUID) error {
	path := "/request?request_uuid=" + url.QueryEscape(requestUUID.String())
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete request %s: %w", requestUUID, err)
	}
	return nil
}

// do performs one backend round trip. A nil body sends no payload and a nil
// out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("backend call", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
