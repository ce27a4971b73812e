package memory

import (
	"context"
	"sort"
	"sync"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// RateStore is an in-memory implementation of storage.RateStore.
type RateStore struct {
	mu   sync.RWMutex
	data map[pairKey]*domain.Rate
}

type pairKey struct {
	tokenIn  domain.Address
	tokenOut domain.Address
}

// NewRateStore creates a new in-memory rate store.
func NewRateStore() *RateStore {
	return &RateStore{
		data: make(map[pairKey]*domain.Rate),
	}
}

// Get retrieves the stored rate for (tokenIn, tokenOut).
func (s *RateStore) Get(_ context.Context, tokenIn, tokenOut domain.Address) (*domain.Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rate, ok := s.data[pairKey{tokenIn, tokenOut}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rate.Clone(), nil
}

// Put overwrites the rate for its pair unconditionally.
func (s *RateStore) Put(_ context.Context, rate *domain.Rate) error {
	if rate == nil || rate.TokenIn.IsZero() || rate.TokenOut.IsZero() || rate.Value == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[pairKey{rate.TokenIn, rate.TokenOut}] = rate.Clone()
	return nil
}

// All retrieves every stored rate, ordered by (token_in, token_out).
func (s *RateStore) All(_ context.Context) ([]*domain.Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Rate, 0, len(s.data))
	for _, rate := range s.data {
		result = append(result, rate.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TokenIn != result[j].TokenIn {
			return result[i].TokenIn < result[j].TokenIn
		}
		return result[i].TokenOut < result[j].TokenOut
	})

	return result, nil
}

var _ storage.RateStore = (*RateStore)(nil)
