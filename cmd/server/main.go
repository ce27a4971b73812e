// Package main runs the exchange engine as an HTTP service:
// - Swap API: quote and execute swaps against the treasury
// - Admin API: rates, roles, pause, oracle, liquidity
// - Optional oracle feed: verified rate pushes applied live
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"pegswap/internal/access"
	"pegswap/internal/domain"
	"pegswap/internal/exchange"
	"pegswap/internal/guard"
	"pegswap/internal/observability"
	"pegswap/internal/oracle"
	"pegswap/internal/rates"
	"pegswap/internal/storage"
	chstore "pegswap/internal/storage/clickhouse"
	"pegswap/internal/storage/memory"
	"pegswap/internal/storage/migrations"
	pgstore "pegswap/internal/storage/postgres"
	"pegswap/internal/token"
)

// Server holds the engine and its collaborators.
type Server struct {
	engine   *exchange.Engine
	registry *rates.Registry
	logger   *log.Logger

	useMemory   bool
	postgresDSN string

	mu       sync.Mutex
	started  time.Time
	feed     *oracle.Feed
	receipts storage.ReceiptStore
}

// engineStores holds all storage implementations the engine needs.
type engineStores struct {
	rateStore      storage.RateStore
	roleStore      storage.RoleStore
	stateStore     storage.StateStore
	receiptStore   storage.ReceiptStore
	liquidityStore storage.LiquidityEventStore

	// history is the optional ClickHouse receipt archive.
	history *chstore.ReceiptHistoryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	tokenRPC := flag.String("token-rpc-endpoint", os.Getenv("TOKEN_RPC_ENDPOINT"), "Ledger JSON-RPC endpoint for token calls")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional receipt archive)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	treasury := flag.String("treasury", os.Getenv("TREASURY_ACCOUNT"), "Treasury account holding swap liquidity")
	admin := flag.String("admin", os.Getenv("INITIAL_ADMIN"), "Initial administrator account")
	listenAddr := flag.String("listen-addr", ":8080", "HTTP listen address")
	oracleFeed := flag.String("oracle-feed", os.Getenv("ORACLE_FEED_ENDPOINT"), "Oracle WebSocket feed endpoint (optional)")
	oracleSigners := flag.String("oracle-signers", os.Getenv("ORACLE_TRUSTED_SIGNERS"), "Comma-separated trusted oracle signer accounts")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *tokenRPC == "" {
		logger.Fatal("--token-rpc-endpoint is required")
	}
	if *treasury == "" {
		logger.Fatal("--treasury is required")
	}
	if *admin == "" {
		logger.Fatal("--admin is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Events flow to the log and, when ClickHouse is configured, swap
	// receipts are mirrored into the analytics archive.
	emitter := newFanoutEmitter(logger, stores.history)

	roles, err := access.NewController(ctx, stores.roleStore, domain.Address(*admin), emitter)
	if err != nil {
		logger.Fatalf("Failed to create role controller: %v", err)
	}

	registry, err := rates.NewRegistry(ctx, rates.Options{
		Store:   stores.rateStore,
		State:   stores.stateStore,
		Emitter: emitter,
		Logger:  log.New(os.Stdout, "[rates] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create rate registry: %v", err)
	}

	engine, err := exchange.NewEngine(exchange.Options{
		Treasury:  domain.Address(*treasury),
		Roles:     roles,
		Rates:     registry,
		Pause:     guard.NewPauseGuard(stores.stateStore),
		Tokens:    token.NewClient(*tokenRPC),
		Receipts:  stores.receiptStore,
		Liquidity: stores.liquidityStore,
		Emitter:   emitter,
		Logger:    log.New(os.Stdout, "[exchange] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	server := &Server{
		engine:      engine,
		registry:    registry,
		logger:      logger,
		useMemory:   *useMemory,
		postgresDSN: *postgresDSN,
		started:     time.Now(),
		receipts:    stores.receiptStore,
	}

	// Subscribe to the oracle feed for live rate pushes.
	if *oracleFeed != "" {
		feed, err := server.startOracleFeed(ctx, *oracleFeed, *oracleSigners, domain.Address(*admin))
		if err != nil {
			logger.Fatalf("Failed to start oracle feed: %v", err)
		}
		if feed != nil {
			server.feed = feed
			defer feed.Close()
		}
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: server.routes(),
	}

	go func() {
		logger.Printf("Listening on %s", *listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	sig := <-sigCh
	logger.Printf("Received signal %v, shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*engineStores, func(), error) {
	if useMemory {
		stores := &engineStores{
			rateStore:      memory.NewRateStore(),
			roleStore:      memory.NewRoleStore(),
			stateStore:     memory.NewStateStore(),
			receiptStore:   memory.NewReceiptStore(),
			liquidityStore: memory.NewLiquidityEventStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &engineStores{
		rateStore:      pgstore.NewRateStore(pool),
		roleStore:      pgstore.NewRoleStore(pool),
		stateStore:     pgstore.NewStateStore(pool),
		receiptStore:   pgstore.NewReceiptStore(pool),
		liquidityStore: pgstore.NewLiquidityEventStore(pool),
	}

	// ClickHouse (optional analytics archive)
	var chConn *chstore.Conn
	if clickhouseDSN != "" {
		chConn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		stores.history = chstore.NewReceiptHistoryStore(chConn)
	}

	cleanup := func() {
		if chConn != nil {
			chConn.Close()
		}
		pool.Close()
	}

	return stores, cleanup, nil
}

// newFanoutEmitter logs every event and mirrors executed swaps into the
// ClickHouse archive when one is configured.
func newFanoutEmitter(logger *log.Logger, history *chstore.ReceiptHistoryStore) domain.Emitter {
	return domain.EmitterFunc(func(event domain.Event) {
		logger.Printf("event %s: %+v", event.EventType(), event)

		if history == nil {
			return
		}
		swap, ok := event.(domain.SwapExecuted)
		if !ok {
			return
		}

		receipt := &domain.SwapReceipt{
			Caller:    swap.Caller,
			TokenIn:   swap.TokenIn,
			TokenOut:  swap.TokenOut,
			AmountIn:  swap.AmountIn,
			AmountOut: swap.AmountOut,
			Rate:      swap.Rate,
			Timestamp: time.Now().UnixMilli(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := history.Insert(ctx, receipt); err != nil {
			logger.Printf("archive receipt failed: %v", err)
		}
	})
}

// startOracleFeed subscribes to live rate pushes for every pair that has
// a stored rate. Verified updates are written as oracle-sourced rates
// under the administrator's authority.
func (s *Server) startOracleFeed(ctx context.Context, endpoint, signers string, actor domain.Address) (*oracle.Feed, error) {
	stored, err := s.registry.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	if len(stored) == 0 {
		s.logger.Println("No stored pairs yet, oracle feed not started")
		return nil, nil
	}

	pairs := make([]oracle.Pair, 0, len(stored))
	for _, rate := range stored {
		pairs = append(pairs, oracle.Pair{TokenIn: rate.TokenIn, TokenOut: rate.TokenOut})
	}

	config := oracle.DefaultFeedConfig()
	for _, signer := range strings.Split(signers, ",") {
		signer = strings.TrimSpace(signer)
		if signer != "" {
			config.TrustedSigners = append(config.TrustedSigners, domain.Address(signer))
		}
	}

	handler := func(update oracle.PairUpdate) {
		applyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.registry.ApplyOracleUpdate(applyCtx, actor, update); err != nil {
			s.logger.Printf("apply oracle update %s/%s: %v", update.TokenIn, update.TokenOut, err)
			return
		}
		observability.RecordRateUpdate(domain.RateSourceOracle)
	}

	feed, err := oracle.NewFeed(ctx, endpoint, pairs, handler,
		&config, log.New(os.Stdout, "[oracle] ", log.LstdFlags))
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Oracle feed subscribed to %d pairs on %s", len(pairs), endpoint)
	return feed, nil
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	mux.HandleFunc("/v1/swap", s.handleSwap)
	mux.HandleFunc("/v1/quote", s.handleQuote)
	mux.HandleFunc("/v1/rates", s.handleRates)
	mux.HandleFunc("/v1/receipts", s.handleReceipts)

	mux.HandleFunc("/v1/admin/rate", s.handleSetRate)
	mux.HandleFunc("/v1/admin/oracle", s.handleSetOracle)
	mux.HandleFunc("/v1/admin/oracle/sync", s.handleOracleSync)
	mux.HandleFunc("/v1/admin/exchanger", s.handleSetExchanger)
	mux.HandleFunc("/v1/admin/pause", s.handlePause)
	mux.HandleFunc("/v1/admin/unpause", s.handleUnpause)
	mux.HandleFunc("/v1/admin/liquidity/fund", s.handleFund)
	mux.HandleFunc("/v1/admin/liquidity/withdraw", s.handleWithdraw)

	return mux
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Paused   bool   `json:"paused"`
	Oracle   string `json:"oracle,omitempty"`
	Treasury string `json:"treasury"`
	Storage  string `json:"storage"`
	Feed     bool   `json:"oracle_feed_active"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	paused, err := s.engine.Paused(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	storageMode := "postgres"
	if s.useMemory {
		storageMode = "memory"
	}

	s.mu.Lock()
	uptime := time.Since(s.started).String()
	feedActive := s.feed != nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:   "running",
		Uptime:   uptime,
		Paused:   paused,
		Oracle:   s.registry.Oracle(),
		Treasury: s.engine.Treasury().String(),
		Storage:  storageMode,
		Feed:     feedActive,
	})
}

type swapRequest struct {
	Caller       string `json:"caller"`
	TokenIn      string `json:"token_in"`
	TokenOut     string `json:"token_out"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out,omitempty"`
	Deadline     int64  `json:"deadline,omitempty"`
}

type swapResponse struct {
	ID        int64  `json:"id"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Rate      string `json:"rate"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}

	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	amountIn, err := parseAmount(req.AmountIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var minOut *big.Int
	if req.MinAmountOut != "" {
		if minOut, err = parseAmount(req.MinAmountOut); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	receipt, err := s.engine.SwapWithDeadline(r.Context(),
		domain.Address(req.Caller), domain.Address(req.TokenIn), domain.Address(req.TokenOut),
		amountIn, minOut, req.Deadline)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, swapResponse{
		ID:        receipt.ID,
		AmountIn:  receipt.AmountIn.String(),
		AmountOut: receipt.AmountOut.String(),
		Rate:      receipt.Rate.String(),
		Timestamp: receipt.Timestamp,
	})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amountIn, err := parseAmount(q.Get("amount_in"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	amountOut, err := s.engine.Quote(r.Context(),
		domain.Address(q.Get("token_in")), domain.Address(q.Get("token_out")), amountIn)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"amount_out": amountOut.String()})
}

type rateView struct {
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	Value     string `json:"value"`
	Source    string `json:"source"`
	UpdatedBy string `json:"updated_by"`
	UpdatedAt int64  `json:"updated_at"`
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	rateList, err := s.registry.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]rateView, 0, len(rateList))
	for _, rate := range rateList {
		views = append(views, rateView{
			TokenIn:   rate.TokenIn.String(),
			TokenOut:  rate.TokenOut.String(),
			Value:     rate.Value.String(),
			Source:    rate.Source,
			UpdatedBy: rate.UpdatedBy.String(),
			UpdatedAt: rate.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type receiptView struct {
	ID        int64  `json:"id"`
	Caller    string `json:"caller"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Rate      string `json:"rate"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var receipts []*domain.SwapReceipt
	var err error
	switch {
	case q.Get("caller") != "":
		receipts, err = s.receipts.GetByCaller(r.Context(), domain.Address(q.Get("caller")))
	case q.Get("token_in") != "" && q.Get("token_out") != "":
		receipts, err = s.receipts.GetByPair(r.Context(),
			domain.Address(q.Get("token_in")), domain.Address(q.Get("token_out")))
	default:
		writeError(w, http.StatusBadRequest, errors.New("caller or token_in/token_out required"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]receiptView, 0, len(receipts))
	for _, receipt := range receipts {
		views = append(views, receiptView{
			ID:        receipt.ID,
			Caller:    receipt.Caller.String(),
			TokenIn:   receipt.TokenIn.String(),
			TokenOut:  receipt.TokenOut.String(),
			AmountIn:  receipt.AmountIn.String(),
			AmountOut: receipt.AmountOut.String(),
			Rate:      receipt.Rate.String(),
			Timestamp: receipt.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type setRateRequest struct {
	Actor    string `json:"actor"`
	TokenIn  string `json:"token_in"`
	TokenOut string `json:"token_out"`
	Value    string `json:"value"`
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}

	var req setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	value, ok := new(big.Int).SetString(req.Value, 10)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed value %q", req.Value))
		return
	}

	err := s.engine.SetRate(r.Context(), domain.Address(req.Actor),
		domain.Address(req.TokenIn), domain.Address(req.TokenOut), value)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type setOracleRequest struct {
	Actor    string `json:"actor"`
	Endpoint string `json:"endpoint"`
}

func (s *Server) handleSetOracle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}

	var req setOracleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if err := s.engine.SetRateOracle(r.Context(), domain.Address(req.Actor), req.Endpoint); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type oracleSyncRequest struct {
	Actor    string `json:"actor"`
	TokenIn  string `json:"token_in"`
	TokenOut string `json:"token_out"`
}

func (s *Server) handleOracleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}

	var req oracleSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	value, err := s.engine.SyncRateFromOracle(r.Context(), domain.Address(req.Actor),
		domain.Address(req.TokenIn), domain.Address(req.TokenOut))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": value.String()})
}

type setExchangerRequest struct {
	Actor   string `json:"actor"`
	Account string `json:"account"`
	Allowed bool   `json:"allowed"`
}

func (s *Server) handleSetExchanger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}

	var req setExchangerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	err := s.engine.SetCanExchange(r.Context(), domain.Address(req.Actor),
		domain.Address(req.Account), req.Allowed)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type actorRequest struct {
	Actor string `json:"actor"`
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handlePauseToggle(w, r, s.engine.Pause)
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	s.handlePauseToggle(w, r, s.engine.Unpause)
}

func (s *Server) handlePauseToggle(w http.ResponseWriter, r *http.Request, toggle func(context.Context, domain.Address) error) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if err := toggle(r.Context(), domain.Address(req.Actor)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type liquidityRequest struct {
	Actor  string `json:"actor"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

func (s *Server) handleFund(w http.ResponseWriter, r *http.Request) {
	s.handleLiquidity(w, r, s.engine.FundLiquidity)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleLiquidity(w, r, s.engine.Withdraw)
}

func (s *Server) handleLiquidity(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.Address, domain.Address, *big.Int) error) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("POST required"))
		return
	}

	var req liquidityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := op(r.Context(), domain.Address(req.Actor), domain.Address(req.Token), amount); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, access.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, guard.ErrPaused),
		errors.Is(err, guard.ErrAlreadyPaused),
		errors.Is(err, guard.ErrNotPaused),
		errors.Is(err, guard.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, domain.ErrZeroAddress),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrSameToken),
		errors.Is(err, domain.ErrZeroAmount),
		errors.Is(err, rates.ErrInvalidRate):
		return http.StatusBadRequest
	case errors.Is(err, exchange.ErrDeadlineExpired),
		errors.Is(err, exchange.ErrRateNotSet),
		errors.Is(err, exchange.ErrSlippageExceeded),
		errors.Is(err, exchange.ErrInsufficientInputBalance),
		errors.Is(err, exchange.ErrInsufficientLiquidity),
		errors.Is(err, rates.ErrOracleNotSet),
		errors.Is(err, rates.ErrOracleRateInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", s)
	}
	return amount, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
