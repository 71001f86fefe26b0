// Package sanity provides client functionality for querying the Sanity content API with GROQ.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sitemapgen/internal/logger"
)

// Query errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrQueryError           = errors.New("query error")
	ErrNoResult             = errors.New("no result in response")
	ErrMissingProjectID     = errors.New("sanity project id is required")
	ErrMissingDataset       = errors.New("sanity dataset is required")
	ErrResponseTooLarge     = errors.New("response exceeds size limit")
)

// Defaults for ClientConfig.
const (
	DefaultAPIVersion       = "2024-03-31"
	DefaultTimeout          = 30 * time.Second
	DefaultMaxResponseBytes = 64 << 20
	UserAgent               = "sitemapgen/1.0"
)

// Client defines the interface for GROQ query execution.
type Client interface {
	Query(ctx context.Context, query string, params map[string]any) (*QueryResponse, error)
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// ClientConfig identifies the dataset to query.
type ClientConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	// APIHost overrides the computed https://<project>.api.sanity.io base URL.
	APIHost string
	Timeout time.Duration
	// MaxResponseBytes caps the size of a response body. Zero means DefaultMaxResponseBytes.
	MaxResponseBytes int64
	UseCDN           bool
}

// HTTPClient executes GROQ queries over the Sanity HTTP API.
type HTTPClient struct {
	httpClient       *http.Client
	logger           *logger.Logger
	endpoint         string
	token            string
	maxResponseBytes int64
}

// QueryRequest is the POST body of a query.
type QueryRequest struct {
	Params map[string]any `json:"params,omitempty"`
	Query  string         `json:"query"`
}

// QueryResponse is a query response.
type QueryResponse struct {
	Result json.RawMessage `json:"result"`
	Query  string          `json:"query,omitempty"`
	MS     int             `json:"ms,omitempty"`
}

// APIError is the error object Sanity returns with non-2xx responses.
type APIError struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Query       string `json:"query,omitempty"`
	Start       int    `json:"start,omitempty"`
	End         int    `json:"end,omitempty"`
}

// errorBody carries either an APIError object or a plain error string under "error".
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// NewHTTPClient creates a new query client.
func NewHTTPClient(cfg ClientConfig, log *logger.Logger) (*HTTPClient, error) {
	if cfg.ProjectID == "" && cfg.APIHost == "" {
		return nil, ErrMissingProjectID
	}

	if cfg.Dataset == "" {
		return nil, ErrMissingDataset
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}

	if log == nil {
		log = logger.Discard()
	}

	return &HTTPClient{
		endpoint: QueryEndpoint(cfg),
		token:    cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:           log,
		maxResponseBytes: cfg.MaxResponseBytes,
	}, nil
}

// QueryEndpoint returns the query URL for cfg.
// The CDN is only used for unauthenticated requests.
func QueryEndpoint(cfg ClientConfig) string {
	version := strings.TrimPrefix(cfg.APIVersion, "v")
	if version == "" {
		version = DefaultAPIVersion
	}

	host := cfg.APIHost
	if host == "" {
		domain := "api.sanity.io"
		if cfg.UseCDN && cfg.Token == "" {
			domain = "apicdn.sanity.io"
		}

		host = fmt.Sprintf("https://%s.%s", cfg.ProjectID, domain)
	}

	return fmt.Sprintf("%s/v%s/data/query/%s", strings.TrimRight(host, "/"), version, cfg.Dataset)
}

// Query sends a GROQ query and returns the response.
func (c *HTTPClient) Query(ctx context.Context, query string, params map[string]any) (resp *QueryResponse, err error) {
	c.logger.Debug("Executing GROQ query", "query", query[:min(len(query), 50)], "endpoint", c.endpoint)

	body, err := json.Marshal(QueryRequest{Query: query, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if int64(len(data)) > c.maxResponseBytes {
		c.logger.Error("GROQ response too large", "limit_bytes", c.maxResponseBytes, "status", httpResp.StatusCode)
		return nil, fmt.Errorf("%w: more than %d bytes (raise sanity.max_response_mb)", ErrResponseTooLarge, c.maxResponseBytes)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.statusError(httpResp.StatusCode, data)
	}

	var qr QueryResponse
	if err := json.Unmarshal(data, &qr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.logger.Debug("GROQ query completed", "ms", qr.MS, "bytes", len(data))

	return &qr, nil
}

func (c *HTTPClient) statusError(status int, data []byte) error {
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		var apiErr APIError
		if json.Unmarshal(eb.Error, &apiErr) == nil && apiErr.Description != "" {
			c.logger.Error("GROQ query rejected", "status", status, "type", apiErr.Type, "description", apiErr.Description)
			return fmt.Errorf("%w: %s: %s", ErrQueryError, apiErr.Type, apiErr.Description)
		}

		if eb.Message != "" {
			c.logger.Error("GROQ request failed", "status", status, "message", eb.Message)
			return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, status, eb.Message)
		}
	}

	c.logger.Error("GROQ request failed", "status", status)

	return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, status, strings.TrimSpace(string(data)))
}

// DecodeResult unmarshals the query result into T.
func DecodeResult[T any](resp *QueryResponse) (T, error) {
	var target T
	if resp == nil || len(resp.Result) == 0 {
		return target, ErrNoResult
	}

	if err := json.Unmarshal(resp.Result, &target); err != nil {
		return target, fmt.Errorf("failed to parse query result: %w", err)
	}

	return target, nil
}
