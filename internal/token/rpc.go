package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"pegswap/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client is a JSON-RPC 2.0 client to a host ledger node exposing the
// token capability set. The node holds the engine's signing authority;
// transfer calls execute under the treasury account configured there.
//
// Read calls (balances, decimals) are retried with exponential backoff.
// Transfer calls are never retried: a transport failure after submission
// leaves the outcome unknown, and the engine's balance reconciliation is
// what decides whether the swap stands.
type Client struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for read calls.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new ledger RPC client.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a Token bound to the given contract address.
func (c *Client) Token(address domain.Address) Token {
	return &rpcToken{client: c, address: address}
}

var _ Resolver = (*Client)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call. When retry is false the request is
// attempted exactly once.
func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}, retry bool) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	attempts := 1
	if retry {
		attempts = c.maxRetries + 1
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC-level errors are the collaborator's answer, not a
			// transport fault; never retried.
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	if !retry {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// rpcToken is a Token backed by the ledger RPC client.
type rpcToken struct {
	client  *Client
	address domain.Address
}

func (t *rpcToken) Address() domain.Address {
	return t.address
}

// balanceResult is the raw RPC response for token_balanceOf.
type balanceResult struct {
	Amount string `json:"amount"`
}

func (t *rpcToken) BalanceOf(ctx context.Context, account domain.Address) (*big.Int, error) {
	params := []interface{}{t.address.String(), account.String()}

	var result balanceResult
	if err := t.client.call(ctx, "token_balanceOf", params, &result, true); err != nil {
		return nil, err
	}

	return parseAmount(result.Amount)
}

// transferResult is the raw RPC response for transfer calls.
type transferResult struct {
	Success bool `json:"success"`
}

func (t *rpcToken) Transfer(ctx context.Context, to domain.Address, amount *big.Int) (bool, error) {
	params := []interface{}{t.address.String(), to.String(), amountString(amount)}

	var result transferResult
	if err := t.client.call(ctx, "token_transfer", params, &result, false); err != nil {
		return false, err
	}
	return result.Success, nil
}

func (t *rpcToken) TransferFrom(ctx context.Context, from, to domain.Address, amount *big.Int) (bool, error) {
	params := []interface{}{t.address.String(), from.String(), to.String(), amountString(amount)}

	var result transferResult
	if err := t.client.call(ctx, "token_transferFrom", params, &result, false); err != nil {
		return false, err
	}
	return result.Success, nil
}

// decimalsResult is the raw RPC response for token_decimals.
type decimalsResult struct {
	Decimals uint8 `json:"decimals"`
}

func (t *rpcToken) Decimals(ctx context.Context) (uint8, error) {
	params := []interface{}{t.address.String()}

	var result decimalsResult
	if err := t.client.call(ctx, "token_decimals", params, &result, true); err != nil {
		return 0, err
	}
	return result.Decimals, nil
}

var _ Token = (*rpcToken)(nil)

// parseAmount converts a decimal string amount off the wire. Amounts are
// transported as strings because token balances exceed uint64.
func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", s)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return amount, nil
}

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
