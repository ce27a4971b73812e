package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mr-tron/base58"

	"pegswap/internal/domain"
)

// Pair names a directional token pair on the feed.
type Pair struct {
	TokenIn  domain.Address `json:"token_in"`
	TokenOut domain.Address `json:"token_out"`
}

// PairUpdate is a verified rate quote pushed by the oracle.
type PairUpdate struct {
	TokenIn   domain.Address
	TokenOut  domain.Address
	Rate      *big.Int
	Timestamp int64
}

// FeedHandler receives verified pair updates. It runs on the feed's
// read goroutine and must not block.
type FeedHandler func(PairUpdate)

// FeedConfig configures feed behavior.
type FeedConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for keepalive ping frames.
	PingInterval time.Duration
	// ReadTimeout bounds a single read.
	ReadTimeout time.Duration
	// WriteTimeout bounds a single write.
	WriteTimeout time.Duration
	// TrustedSigners pins accepted attestation signers. Empty means any
	// on-curve signer with a valid signature is accepted.
	TrustedSigners []domain.Address
	// Freshness is the maximum accepted quote age.
	Freshness time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		Freshness:         DefaultFreshnessWindow,
	}
}

// Feed is a websocket subscription to oracle rate pushes. Updates that
// fail attestation verification are dropped with a log line; the feed
// reconnects and resubscribes on connection loss.
type Feed struct {
	endpoint string
	config   FeedConfig
	pairs    []Pair
	handler  FeedHandler
	logger   *log.Logger
	trusted  map[domain.Address]bool
	now      func() time.Time

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	reconnecting atomic.Bool
	done         chan struct{}
	wg           sync.WaitGroup
}

// NewFeed connects to the oracle feed and subscribes to the given pairs.
func NewFeed(ctx context.Context, endpoint string, pairs []Pair, handler FeedHandler, config *FeedConfig, logger *log.Logger) (*Feed, error) {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	f := &Feed{
		endpoint: endpoint,
		config:   cfg,
		pairs:    pairs,
		handler:  handler,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if len(cfg.TrustedSigners) > 0 {
		f.trusted = make(map[domain.Address]bool, len(cfg.TrustedSigners))
		for _, signer := range cfg.TrustedSigners {
			f.trusted[signer] = true
		}
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}
	if err := f.subscribe(); err != nil {
		f.Close()
		return nil, err
	}

	f.wg.Add(2)
	go f.readLoop()
	go f.pingLoop()

	return f, nil
}

func (f *Feed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	f.conn = conn
	return nil
}

func (f *Feed) subscribe() error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      f.requestID.Add(1),
		Method:  "oracle_subscribeRates",
		Params:  []interface{}{f.pairs},
	}

	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.conn == nil {
		return fmt.Errorf("not connected")
	}
	f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
	if err := f.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close terminates the feed.
func (f *Feed) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	return nil
}

func (f *Feed) readLoop() {
	defer f.wg.Done()

	reconnectDelay := f.config.ReconnectDelay

	for !f.closed.Load() {
		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		if conn == nil {
			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}

			if !f.reconnecting.Swap(true) {
				go f.reconnect(reconnectDelay)
			}

			reconnectDelay *= 2
			if reconnectDelay > f.config.MaxReconnectDelay {
				reconnectDelay = f.config.MaxReconnectDelay
			}

			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = f.config.ReconnectDelay
		f.handleMessage(message)
	}
}

func (f *Feed) reconnect(delay time.Duration) {
	defer f.reconnecting.Store(false)

	if f.closed.Load() {
		return
	}

	select {
	case <-f.done:
		return
	case <-time.After(delay):
	}

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
	f.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.connect(ctx); err != nil {
		// Will retry on the next read error.
		return
	}
	if err := f.subscribe(); err != nil {
		f.logger.Printf("[oracle] resubscribe failed: %v", err)
	}
}

func (f *Feed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			if f.conn != nil {
				f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				f.conn.WriteMessage(websocket.PingMessage, nil)
			}
			f.connMu.Unlock()
		}
	}
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64       `json:"subscription"`
	Result       quoteNotice `json:"result"`
}

type quoteNotice struct {
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	Rate      string `json:"rate"`
	Timestamp int64  `json:"timestamp"`
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

func (f *Feed) handleMessage(message []byte) {
	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err != nil {
		return
	}
	if notif.Method != "oracle_rateNotification" || notif.Params == nil {
		return
	}

	q := notif.Params.Result
	update, err := f.verifyNotice(q)
	if err != nil {
		f.logger.Printf("[oracle] dropping update %s/%s: %v", q.TokenIn, q.TokenOut, err)
		return
	}

	f.handler(update)
}

func (f *Feed) verifyNotice(q quoteNotice) (PairUpdate, error) {
	rate, ok := new(big.Int).SetString(q.Rate, 10)
	if !ok {
		return PairUpdate{}, fmt.Errorf("malformed rate %q", q.Rate)
	}

	signature, err := base58.Decode(q.Signature)
	if err != nil {
		return PairUpdate{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	att := &RateAttestation{
		TokenIn:   domain.Address(q.TokenIn),
		TokenOut:  domain.Address(q.TokenOut),
		Rate:      rate,
		Timestamp: q.Timestamp,
		Signer:    domain.Address(q.Signer),
		Signature: signature,
	}

	if f.trusted != nil && !f.trusted[att.Signer] {
		return PairUpdate{}, fmt.Errorf("%w: %s", ErrUntrustedSigner, att.Signer)
	}
	if err := att.Verify(); err != nil {
		return PairUpdate{}, err
	}

	age := f.now().Sub(time.UnixMilli(att.Timestamp))
	if age > f.config.Freshness || age < -f.config.Freshness {
		return PairUpdate{}, fmt.Errorf("%w: quote is %s old", ErrStaleQuote, age)
	}

	return PairUpdate{
		TokenIn:   att.TokenIn,
		TokenOut:  att.TokenOut,
		Rate:      rate,
		Timestamp: att.Timestamp,
	}, nil
}
