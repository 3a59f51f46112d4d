// Package tokens wraps the token-creation REST endpoint. Unlike the game
// client, failures here are normalized into a result value rather than a Go
// error: the form only ever shows a binary success/failure message.
package tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where the local token service listens.
const DefaultBaseURL = "http://127.0.0.1:8080"

// CreateRequest is the POST /create_token body.
type CreateRequest struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply int    `json:"total_supply"`
}

// CreateResult is what the form renders. Message carries either the
// backend's response body or the transport error text.
type CreateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Config holds configuration for the token service client.
type Config struct {
	// BaseURL of the token service. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with 10s timeout.
	HTTPClient *http.Client
}

// Client calls the token service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a token service client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}
}

// CreateToken issues the creation call. Transport and server errors are
// collapsed into a failure-shaped result; no error categories are
// distinguished.
func (c *Client) CreateToken(ctx context.Context, name, symbol string, totalSupply int) CreateResult {
	body, err := json.Marshal(CreateRequest{Name: name, Symbol: symbol, TotalSupply: totalSupply})
	if err != nil {
		return CreateResult{Success: false, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create_token", bytes.NewReader(body))
	if err != nil {
		return CreateResult{Success: false, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return CreateResult{Success: false, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CreateResult{Success: false, Message: err.Error()}
	}

	message := strings.TrimSpace(string(respBody))
	// The service answers with a bare JSON string; unquote it when it does.
	var unquoted string
	if json.Unmarshal(respBody, &unquoted) == nil {
		message = unquoted
	}

	return CreateResult{
		Success: resp.StatusCode >= 200 && resp.StatusCode < 300,
		Message: message,
	}
}
