// Package orchestrator provides an HTTP client for the orchestrator API.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/assistant/internal/domain"
)

// Client is an HTTP client for the orchestrator API.
type Client struct {
	baseURL     string
	processPath string
	httpClient  *http.Client
}

// NewClient creates a new orchestrator client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		processPath: "/process",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewGatewayClient creates a client that sends messages through the
// gateway's POST /chat, which answers with the same payload.
func NewGatewayClient(baseURL string, timeout time.Duration) *Client {
	c := NewClient(baseURL, timeout)
	c.processPath = "/chat"
	return c
}

// ErrorResponse represents an error response from the orchestrator.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Process sends a message and returns the dispatch result.
func (c *Client) Process(ctx context.Context, msg *domain.Message) (*domain.DispatchResult, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal process request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.processPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call orchestrator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("orchestrator error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("orchestrator returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result domain.DispatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode process response: %w", err)
	}
	return &result, nil
}
