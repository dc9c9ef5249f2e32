package vqgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Option configures the Client.
type Option interface {
	apply(*Client)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*Client)

func (f optionFunc) apply(c *Client) { f(c) }

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *Client) { c.apiKey = key })
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *Client) { c.http = hc })
}

// WithTimeout sets the per-request timeout. Default: 30s.
// Ignored if a custom HTTP client is provided.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *Client) { c.timeout = d })
}

// Client is the vqgate API client.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// New creates a Client for the gateway at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o.apply(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// SearchRequest describes one query against a collection.
type SearchRequest struct {
	// Collection is the collection to search. Required.
	Collection string
	// Query is the natural language search text. Required.
	Query string
	// TopK limits the number of results. Zero means the server default.
	TopK int
	// ExcludeFields lists property names to drop from each result.
	ExcludeFields []string
	// Filter restricts results to matching documents. Optional.
	Filter *Filter
}

// SearchResultItem is a single normalized search hit. Score and Distance
// are nil when the backend did not report them.
type SearchResultItem struct {
	UUID       string         `json:"uuid"`
	Score      *float64       `json:"score,omitempty"`
	Distance   *float64       `json:"distance,omitempty"`
	Properties map[string]any `json:"properties"`
}

// Health is the gateway health report.
type Health struct {
	Status         string `json:"status"`
	BackendVersion string `json:"backend_version,omitempty"`
}

type searchRequestJSON struct {
	CollectionName string   `json:"collection_name"`
	Query          string   `json:"query"`
	TopK           *int     `json:"top_k,omitempty"`
	ExcludeFields  []string `json:"exclude_fields,omitempty"`
	Filter         *Filter  `json:"filter,omitempty"`
}

type collectionsJSON struct {
	Collections []string `json:"collections"`
}

// Query runs a semantic search and returns results in backend order.
func (c *Client) Query(ctx context.Context, req SearchRequest) ([]SearchResultItem, error) {
	body := searchRequestJSON{
		CollectionName: req.Collection,
		Query:          req.Query,
		ExcludeFields:  req.ExcludeFields,
		Filter:         req.Filter,
	}
	if req.TopK > 0 {
		body.TopK = &req.TopK
	}

	var items []SearchResultItem
	if err := c.do(ctx, http.MethodPost, "/query", body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Collections lists the collections known to the gateway.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	var resp collectionsJSON
	if err := c.do(ctx, http.MethodGet, "/collections", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

// Health reports gateway and backend health. A degraded or unhealthy
// status is returned in the report, not as an error, as long as the
// server responded.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, fmt.Errorf("vqgate: build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("vqgate: health: %w", err)
	}
	defer resp.Body.Close()

	// The health endpoint returns its report on 503 as well.
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("vqgate: decode health response: %w", err)
	}
	return h, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("vqgate: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("vqgate: build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("vqgate: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("vqgate: decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func decodeError(resp *http.Response) error {
	var apiErr APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "internal_error",
			Message:    resp.Status,
		}
	}
	apiErr.StatusCode = resp.StatusCode
	return &apiErr
}
