package oracle

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

	"github.com/mr-tron/base58"

	"pegswap/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout         = 15 * time.Second
	DefaultMaxRetries      = 3
	DefaultRetryDelay      = 500 * time.Millisecond
	DefaultMaxDelay        = 5 * time.Second
	DefaultFreshnessWindow = 5 * time.Minute
)

// HTTPSource queries an oracle node over JSON-RPC 2.0. Quote reads are
// retried with exponential backoff; every quote is verified as a signed
// attestation before its rate is released to the caller.
type HTTPSource struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
	freshness  time.Duration
	trusted    map[domain.Address]bool
	now        func() time.Time
	requestID  atomic.Uint64
}

// HTTPOption configures HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithMaxRetries sets maximum retry attempts per query.
func WithMaxRetries(n int) HTTPOption {
	return func(s *HTTPSource) {
		s.maxRetries = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		s.retryDelay = d
	}
}

// WithFreshnessWindow sets how old a quote may be before it is rejected
// as stale.
func WithFreshnessWindow(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		s.freshness = d
	}
}

// WithTrustedSigners pins the set of accepted attestation signers. With
// no pinned set, any on-curve signer with a valid signature is accepted.
func WithTrustedSigners(signers ...domain.Address) HTTPOption {
	return func(s *HTTPSource) {
		s.trusted = make(map[domain.Address]bool, len(signers))
		for _, signer := range signers {
			s.trusted[signer] = true
		}
	}
}

// WithClock overrides the freshness clock, primarily for tests.
func WithClock(now func() time.Time) HTTPOption {
	return func(s *HTTPSource) {
		s.now = now
	}
}

// NewHTTPSource creates an oracle source for the given endpoint.
func NewHTTPSource(endpoint string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
		freshness:  DefaultFreshnessWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Source = (*HTTPSource)(nil)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// quoteResult is the wire form of a signed quote. Rates travel as
// decimal strings, signatures as base58.
type quoteResult struct {
	Rate      string `json:"rate"`
	Timestamp int64  `json:"timestamp"`
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

// Rate queries the oracle for a pair quote and verifies it. A null
// result means the oracle does not quote the pair.
func (s *HTTPSource) Rate(ctx context.Context, tokenIn, tokenOut domain.Address) (*big.Int, error) {
	params := []interface{}{tokenIn.String(), tokenOut.String()}

	var result *quoteResult
	if err := s.call(ctx, "oracle_getRate", params, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrRateUnavailable, tokenIn, tokenOut)
	}

	return s.verifyQuote(tokenIn, tokenOut, result)
}

func (s *HTTPSource) verifyQuote(tokenIn, tokenOut domain.Address, q *quoteResult) (*big.Int, error) {
	rate, ok := new(big.Int).SetString(q.Rate, 10)
	if !ok {
		return nil, fmt.Errorf("malformed rate %q", q.Rate)
	}

	signature, err := base58.Decode(q.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	att := &RateAttestation{
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		Rate:      rate,
		Timestamp: q.Timestamp,
		Signer:    domain.Address(q.Signer),
		Signature: signature,
	}

	if s.trusted != nil && !s.trusted[att.Signer] {
		return nil, fmt.Errorf("%w: %s", ErrUntrustedSigner, att.Signer)
	}
	if err := att.Verify(); err != nil {
		return nil, err
	}

	age := s.now().Sub(time.UnixMilli(att.Timestamp))
	if age > s.freshness || age < -s.freshness {
		return nil, fmt.Errorf("%w: quote is %s old", ErrStaleQuote, age)
	}

	return rate, nil
}

func (s *HTTPSource) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      s.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := s.retryDelay
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.maxDelay {
				delay = s.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
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
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
