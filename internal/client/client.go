// Package client is a small HTTP client for the ERFMS record API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/atinyakov/erfms/internal/models"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %s, %s)", e.Field, e.Reason)
	}
	return msg
}

// Client calls the record API at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client for baseURL. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// List fetches up to limit records from /api/{route}. A non-positive limit
// leaves the server default.
func (c *Client) List(ctx context.Context, route string, limit int) ([]map[string]any, error) {
	u := c.BaseURL + "/api/" + url.PathEscape(route)
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	var out []map[string]any
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts payload, a JSON object, to /api/{route}.
func (c *Client) Create(ctx context.Context, route string, payload json.RawMessage) (models.CreateResult, error) {
	var out models.CreateResult
	err := c.do(ctx, http.MethodPost, c.BaseURL+"/api/"+url.PathEscape(route), payload, &out)
	return out, err
}

// Schema fetches the collection descriptors from /schema.
func (c *Client) Schema(ctx context.Context) ([]models.CollectionDescriptor, error) {
	var out struct {
		Collections []models.CollectionDescriptor `json:"collections"`
	}
	if err := c.do(ctx, http.MethodGet, c.BaseURL+"/schema", nil, &out); err != nil {
		return nil, err
	}
	return out.Collections, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var env struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil || env.Error.Code == "" {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    http.StatusText(resp.StatusCode),
			Message: strings.TrimSpace(string(data)),
		}
	}
	env.Error.Status = resp.StatusCode
	return &env.Error
}
