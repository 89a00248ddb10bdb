// Package scheduler is the HTTP client for the external scheduling/tracker
// service that owns timed post publication.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"contest-engine-backend/internal/features/contest/service"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ service.PostScheduler = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

type apiError struct {
	Message string `json:"message"`
}

type upsertResponse struct {
	ID string `json:"id"`
}

// UpsertPost creates or replaces a scheduled post and returns its id. The
// tracker treats an empty id as a create.
func (c *Client) UpsertPost(ctx context.Context, post service.TriggerPost) (string, error) {
	var out upsertResponse
	if err := c.do(ctx, http.MethodPut, "/api/v1/posts", post, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return post.ID, nil
	}
	return out.ID, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/posts/"+id, nil, nil)
}

func (c *Client) SetPostStatus(ctx context.Context, id string, status service.TriggerStatus, details string) error {
	body := struct {
		Status  service.TriggerStatus `json:"status"`
		Details string                `json:"details,omitempty"`
	}{Status: status, Details: details}
	return c.do(ctx, http.MethodPatch, "/api/v1/posts/"+id+"/status", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("scheduler request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read scheduler response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("scheduler API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("scheduler API error: status %d", resp.StatusCode)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to parse scheduler response: %w", err)
		}
	}
	return nil
}
