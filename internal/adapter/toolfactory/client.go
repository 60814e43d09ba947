// Package toolfactory provides an HTTP client for the tool-factory service.
package toolfactory

import (
	"bytes"
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

// Client is an HTTP client for the tool-factory service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new tool-factory client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ErrorResponse represents an error response from the tool factory.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListServicesResponse is the body of GET /services.
type ListServicesResponse struct {
	Services []domain.ServiceRecord `json:"services"`
}

// CreateService calls POST /create-service.
func (c *Client) CreateService(ctx context.Context, req *domain.ServiceGenerationRequest) (*domain.CreateServiceResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create-service request: %w", err)
	}

	var out domain.CreateServiceResponse
	if err := c.do(ctx, http.MethodPost, "/create-service", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListServices calls GET /services.
func (c *Client) ListServices(ctx context.Context) ([]domain.ServiceRecord, error) {
	var out ListServicesResponse
	if err := c.do(ctx, http.MethodGet, "/services", nil, &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

// DeleteService calls DELETE /services/{name}.
func (c *Client) DeleteService(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/services/"+url.PathEscape(name), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call tool factory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tool factory response: %w", err)
	}
	return nil
}

// statusError maps tool-factory status codes back onto domain errors so the
// binder can tell a rejected request from an unreachable service.
func statusError(resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := string(respBody)
	var errResp ErrorResponse
	if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.NotFoundf("%s", strings.TrimPrefix(msg, domain.ErrNotFound.Error()+": "))
	case http.StatusBadRequest:
		return domain.Validationf("%s", strings.TrimPrefix(msg, domain.ErrValidation.Error()+": "))
	case http.StatusForbidden:
		return domain.Immutablef("%s", strings.TrimPrefix(msg, domain.ErrImmutable.Error()+": "))
	}
	return fmt.Errorf("tool factory returned status %d: %s", resp.StatusCode, msg)
}
