// Package backend implements the POST-RPC client for the remote business
// backend. Every operation is a POST under the base URL carrying a JSON
// body and returning a JSON envelope; a bearer token from the current
// session is attached to each request.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/quotedesk/quotedesk/internal/auth"
	"github.com/quotedesk/quotedesk/internal/observability"
	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

const loginPath = "/auth/login"

// Client performs envelope-aware POST calls against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient constructs a new backend client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Call posts payload to path and decodes the JSON envelope into out.
// A non-success envelope status or an HTTP error body becomes a
// *RejectedError carrying the backend message verbatim; an HTTP 401 on
// any path other than the login call maps to httpx.ErrUnauthorized so
// the caller can reset the session.
func (c *Client) Call(ctx context.Context, path string, payload any, out Enveloped) error {
	body, err := c.post(ctx, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", path, err)
	}
	env := out.Env()
	if env.IntStatus != StatusSuccess && env.IntStatus != StatusNoData {
		c.observe(path, "rejected")
		return &RejectedError{Message: env.StrMessage}
	}
	c.observe(path, "ok")
	return nil
}

// CallRaw posts payload to path and returns the raw response body. Used
// for binary endpoints such as PDF rendering.
func (c *Client) CallRaw(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := c.post(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	c.observe(path, "ok")
	return body, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s request: %w", path, err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("backend: build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sess := auth.SessionFromContext(ctx); sess != nil && sess.Token() != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(path, "transport_error")
		return nil, &TransportError{Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(path, "transport_error")
		return nil, &TransportError{Path: path, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && path != loginPath {
		c.observe(path, "unauthorized")
		return nil, fmt.Errorf("backend: %s: %w", path, httpx.ErrUnauthorized)
	}
	if resp.StatusCode >= 400 {
		c.observe(path, "rejected")
		return nil, &RejectedError{Message: rejectionDetail(body, resp.StatusCode)}
	}
	return body, nil
}

func (c *Client) observe(path, outcome string) {
	if c.metrics != nil {
		c.metrics.ObserveRPC(path, outcome)
	}
	if c.logger != nil && outcome != "ok" {
		c.logger.Warn("backend call did not succeed",
			slog.String("path", path),
			slog.String("outcome", outcome))
	}
}

// rejectionDetail extracts the user-facing message from an HTTP error
// body. The backend reports failures as {"detail": "..."}.
func rejectionDetail(body []byte, status int) string {
	var parsed struct {
		Detail     string `json:"detail"`
		StrMessage string `json:"strMessage"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.StrMessage != "" {
			return parsed.StrMessage
		}
	}
	return fmt.Sprintf("backend request failed with status %d", status)
}
