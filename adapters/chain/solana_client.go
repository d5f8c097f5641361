// Package chain implements ports.ChainReader against a Solana JSON-RPC
// node. Only lightweight read methods are used; anything that signs or
// submits transactions lives outside this service.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultRPCURL    = "https://api.devnet.solana.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client talks JSON-RPC 2.0 to a Solana node.
type Client struct {
	rpcURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithRPCURL sets the node endpoint.
func WithRPCURL(url string) ClientOption {
	return func(c *Client) {
		c.rpcURL = url
	}
}

// WithRateLimit sets the request pacing.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient swaps the HTTP client, for tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Solana RPC client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		rpcURL: DefaultRPCURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Health calls getHealth and succeeds when the node reports "ok".
func (c *Client) Health(ctx context.Context) error {
	var status string
	if err := c.call(ctx, "getHealth", nil, &status); err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("node health: %s", status)
	}
	return nil
}

// Slot calls getSlot, proving the node can serve reads.
func (c *Client) Slot(ctx context.Context) (uint64, error) {
	var slot uint64
	if err := c.call(ctx, "getSlot", nil, &slot); err != nil {
		return 0, err
	}
	return slot, nil
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}
