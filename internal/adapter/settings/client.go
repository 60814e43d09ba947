// Package settings provides an HTTP client for the settings (agent store) service.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xiaot623/assistant/internal/domain"
)

// Client is an HTTP client for the settings service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new settings client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ErrorResponse represents an error response from the settings service.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetAgent calls GET /agents/{id}.
func (c *Client) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/agents/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NotFoundf("agent %s", id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("settings error: %s", errResp.Error)
		}
		return nil, fmt.Errorf("settings returned status %d: %s", resp.StatusCode, string(body))
	}

	var agent domain.Agent
	if err := json.NewDecoder(resp.Body).Decode(&agent); err != nil {
		return nil, fmt.Errorf("failed to decode agent: %w", err)
	}
	return &agent, nil
}
