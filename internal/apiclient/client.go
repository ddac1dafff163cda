// Package apiclient implements the blog repositories over the HTTP API.
//
// The repositories satisfy the same interfaces as the file and memory tables
// so the console behaves identically whichever backend it is given.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/jsonstore"
	"github.com/maruel/blogdb/internal/server/dto"
)

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Code    dto.ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed: %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps API error codes back to the storage and reference errors.
func (e *Error) Unwrap() error {
	switch e.Code {
	case dto.ErrorCodeNotFound:
		return jsonstore.ErrNotFound
	case dto.ErrorCodeUnknownReference:
		if strings.Contains(e.Message, blog.ErrUnknownUser.Error()) {
			return blog.ErrUnknownUser
		}
		if strings.Contains(e.Message, blog.ErrUnknownPost.Error()) {
			return blog.ErrUnknownPost
		}
	default:
	}
	return nil
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client. Timeout is then ignored.
	HTTPClient *http.Client
}

// Client talks to the blog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/api/v1", httpClient: hc}
}

// Stores returns the three repositories backed by the API.
func (c *Client) Stores() *blog.Stores {
	return &blog.Stores{Users: c.Users(), Posts: c.Posts(), Comments: c.Comments()}
}

// Health returns the server status.
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var out dto.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var er dto.ErrorResponse
		if json.Unmarshal(data, &er) == nil && er.Error.Code != "" {
			apiErr.Code = er.Error.Code
			apiErr.Message = er.Error.Message
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
