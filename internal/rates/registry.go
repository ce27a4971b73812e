// Package rates manages the directional exchange-rate map. Rates are
// fixed at admin discretion, either written manually or pulled from the
// configured oracle; nothing here floats with market state on its own.
package rates

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"pegswap/internal/domain"
	"pegswap/internal/oracle"
	"pegswap/internal/storage"
)

var (
	// ErrInvalidRate rejects a nil or negative manual rate. Zero is a
	// valid write: it disables the pair.
	ErrInvalidRate = errors.New("rates: invalid rate")
	// ErrOracleNotSet means a sync was requested before an oracle was
	// configured.
	ErrOracleNotSet = errors.New("rates: oracle not set")
	// ErrOracleRateInvalid means the oracle answered with something the
	// registry refuses to store.
	ErrOracleRateInvalid = errors.New("rates: oracle rate invalid")
)

// SourceFactory builds a live oracle source for an endpoint.
type SourceFactory func(endpoint string) oracle.Source

// Options configures a Registry.
type Options struct {
	Store   storage.RateStore
	State   storage.StateStore
	Emitter domain.Emitter
	Logger  *log.Logger
	// NewSource builds the live source when an oracle endpoint is set.
	// Defaults to an HTTP source with default options.
	NewSource SourceFactory
}

// Registry owns rate reads and writes. Mutations are serialized so that
// the old-value reported on each update event is exact.
type Registry struct {
	store     storage.RateStore
	state     storage.StateStore
	emitter   domain.Emitter
	logger    *log.Logger
	newSource SourceFactory
	now       func() time.Time

	mu       sync.Mutex
	source   oracle.Source
	endpoint string
}

// NewRegistry creates a registry and restores any persisted oracle
// reference, reviving its live source.
func NewRegistry(ctx context.Context, opts Options) (*Registry, error) {
	if opts.Emitter == nil {
		opts.Emitter = domain.NopEmitter{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.NewSource == nil {
		opts.NewSource = func(endpoint string) oracle.Source {
			return oracle.NewHTTPSource(endpoint)
		}
	}

	r := &Registry{
		store:     opts.Store,
		state:     opts.State,
		emitter:   opts.Emitter,
		logger:    opts.Logger,
		newSource: opts.NewSource,
		now:       time.Now,
	}

	endpoint, err := opts.State.OracleEndpoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore oracle endpoint: %w", err)
	}
	if endpoint != "" {
		r.endpoint = endpoint
		r.source = opts.NewSource(endpoint)
		r.logger.Printf("[rates] restored oracle %s", endpoint)
	}

	return r, nil
}

// SetClock overrides the registry clock, primarily for deterministic
// testing.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// Rate retrieves the stored rate for the pair. storage.ErrNotFound when
// the pair has never been written.
func (r *Registry) Rate(ctx context.Context, tokenIn, tokenOut domain.Address) (*domain.Rate, error) {
	if err := domain.ValidatePair(tokenIn, tokenOut); err != nil {
		return nil, err
	}
	return r.store.Get(ctx, tokenIn, tokenOut)
}

// All retrieves every stored rate.
func (r *Registry) All(ctx context.Context) ([]*domain.Rate, error) {
	return r.store.All(ctx)
}

// SetRate writes a manual rate for the directional pair. Writing zero
// disables the pair without deleting its row.
func (r *Registry) SetRate(ctx context.Context, actor, tokenIn, tokenOut domain.Address, value *big.Int) error {
	if err := domain.ValidatePair(tokenIn, tokenOut); err != nil {
		return err
	}
	if value == nil || value.Sign() < 0 {
		return ErrInvalidRate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.putLocked(ctx, actor, tokenIn, tokenOut, value, domain.RateSourceManual)
}

// SetOracle configures the oracle reference. Re-setting the current
// reference is accepted and still observable through the emitted event.
func (r *Registry) SetOracle(ctx context.Context, actor domain.Address, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: empty oracle reference", domain.ErrZeroAddress)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.state.SetOracleEndpoint(ctx, endpoint); err != nil {
		return fmt.Errorf("persist oracle endpoint: %w", err)
	}
	r.endpoint = endpoint
	r.source = r.newSource(endpoint)

	r.emitter.Emit(domain.OracleUpdated{Endpoint: endpoint, Actor: actor})
	r.logger.Printf("[rates] oracle set to %s by %s", endpoint, actor)
	return nil
}

// Oracle reports the configured oracle endpoint, "" when unset.
func (r *Registry) Oracle() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoint
}

// SyncFromOracle pulls the oracle's current rate for the pair and stores
// it. The write happens even when the rate is unchanged, so that the
// update timestamp and event trail reflect the sync.
func (r *Registry) SyncFromOracle(ctx context.Context, actor, tokenIn, tokenOut domain.Address) (*big.Int, error) {
	if err := domain.ValidatePair(tokenIn, tokenOut); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.source == nil {
		return nil, ErrOracleNotSet
	}

	value, err := r.source.Rate(ctx, tokenIn, tokenOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleRateInvalid, err)
	}
	if value == nil || value.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrOracleRateInvalid, value)
	}

	if err := r.putLocked(ctx, actor, tokenIn, tokenOut, value, domain.RateSourceOracle); err != nil {
		return nil, err
	}
	return value, nil
}

// ApplyOracleUpdate stores a rate pushed by the oracle feed. The feed
// has already verified the attestation; the registry still refuses
// non-positive values.
func (r *Registry) ApplyOracleUpdate(ctx context.Context, actor domain.Address, update oracle.PairUpdate) error {
	if err := domain.ValidatePair(update.TokenIn, update.TokenOut); err != nil {
		return err
	}
	if update.Rate == nil || update.Rate.Sign() <= 0 {
		return fmt.Errorf("%w: %s", ErrOracleRateInvalid, update.Rate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.putLocked(ctx, actor, update.TokenIn, update.TokenOut, update.Rate, domain.RateSourceOracle)
}

func (r *Registry) putLocked(ctx context.Context, actor, tokenIn, tokenOut domain.Address, value *big.Int, source string) error {
	var oldValue *big.Int
	old, err := r.store.Get(ctx, tokenIn, tokenOut)
	switch {
	case err == nil:
		oldValue = old.Value
	case errors.Is(err, storage.ErrNotFound):
	default:
		return fmt.Errorf("read current rate: %w", err)
	}

	rate := &domain.Rate{
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		Value:     new(big.Int).Set(value),
		Source:    source,
		UpdatedBy: actor,
		UpdatedAt: r.now().UnixMilli(),
	}
	if err := r.store.Put(ctx, rate); err != nil {
		return fmt.Errorf("store rate: %w", err)
	}

	r.emitter.Emit(domain.RateUpdated{
		TokenIn:  tokenIn,
		TokenOut: tokenOut,
		OldRate:  oldValue,
		NewRate:  new(big.Int).Set(value),
		Source:   source,
		Actor:    actor,
	})
	r.logger.Printf("[rates] %s/%s = %s (%s) by %s", tokenIn, tokenOut, value, source, actor)
	return nil
}
