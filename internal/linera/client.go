// Package linera provides a Go client for a Linera node serving a chain
// application over GraphQL.
//
// Queries and mutations go over HTTP to the per-chain, per-application
// endpoint. Subscriptions are forwarded onto a single shared websocket
// connection opened lazily against the node's /ws endpoint using the
// graphql-transport-ws subprotocol.
//
// # Usage
//
//	client := linera.NewClient(linera.Config{
//	    ChainID:       "256e1dbc...",
//	    ApplicationID: "e476187f...",
//	    Port:          8080,
//	})
//
//	resp, err := client.Query(ctx, &linera.Request{Query: "..."})
//
// The client does not retry or buffer: transport failures surface to
// whichever caller is active at the time.
package linera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Config holds configuration for the node client.
type Config struct {
	// ChainID is the chain the application lives on. Required.
	ChainID string

	// ApplicationID addresses the application within the chain. Required.
	ApplicationID string

	// Port is the node's service port. Defaults to 8080 if zero.
	Port int

	// Host is the node's host. Defaults to "localhost" if empty.
	Host string

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with 30s timeout.
	HTTPClient *http.Client

	// Dialer allows injecting a custom websocket dialer (useful for testing).
	// Defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Client talks to one application on one chain.
type Client struct {
	config Config
	http   *http.Client

	mu     sync.Mutex
	sock   *socket
	closed bool
}

// NewClient creates a node client bound to a chain/application address.
func NewClient(cfg Config) *Client {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

// ChainID returns the configured chain identifier.
func (c *Client) ChainID() string { return c.config.ChainID }

// ApplicationID returns the configured application identifier.
func (c *Client) ApplicationID() string { return c.config.ApplicationID }

// appURL is the HTTP endpoint for queries and mutations.
func (c *Client) appURL() string {
	return fmt.Sprintf("http://%s:%d/chains/%s/applications/%s",
		c.config.Host, c.config.Port, c.config.ChainID, c.config.ApplicationID)
}

// wsURL is the websocket endpoint for subscriptions.
func (c *Client) wsURL() string {
	return fmt.Sprintf("ws://%s:%d/ws", c.config.Host, c.config.Port)
}

// Query sends a GraphQL request to the application endpoint and decodes
// the response envelope. Mutations use the same wire path.
func (c *Client) Query(ctx context.Context, req *Request) (*Response, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("linera: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.appURL(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("linera: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("linera: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("linera: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var envelope Response
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("linera: invalid response JSON: %w", err)
	}
	return &envelope, nil
}

// Close tears down the shared websocket, if one was opened. Queries and
// mutations issued after Close still work; active subscriptions see their
// channels closed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.sock != nil {
		err := c.sock.close()
		c.sock = nil
		return err
	}
	return nil
}
