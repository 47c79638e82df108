// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseSize bounds response body reads: 256 MB. Exists solely so
// a pathological response cannot exhaust memory; legitimate responses
// are orders of magnitude smaller.
const maxResponseSize int64 = 256 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the base URL of the PMIS API (e.g., "http://127.0.0.1:8000").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to the PMIS backend. It is stateless: the bearer
// credential is passed per call by the session's owner.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for the given backend.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("apiclient: BaseURL is required")
	}

	// Validate the URL structure. The string form (trailing slash
	// stripped) is stored and request URLs are built by direct
	// concatenation.
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("apiclient: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the configured backend base URL (no trailing slash).
// Used to construct navigation targets like the document open URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs an HTTP request and returns the response body. On 2xx
// with a body, returns the bytes. On 204 No Content, returns (nil,
// nil) — callers distinguish "empty result" from "decoded JSON" by the
// nil body. On non-2xx, returns a *TransportError. token may be empty
// for unauthenticated endpoints.
func (c *Client) do(ctx context.Context, method, path, token string, requestBody any, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: creating request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("apiclient: reading response body: %w", err)
	}

	if response.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return nil, transportError(response.StatusCode, responseBody)
}

// getJSON performs a GET and decodes the JSON response into out. A 204
// response leaves out untouched and reports false.
func (c *Client) getJSON(ctx context.Context, path, token string, out any) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, path, token, nil, nil)
	if err != nil {
		return false, err
	}
	if body == nil {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("apiclient: parsing response from %s: %w", path, err)
	}
	return true, nil
}
