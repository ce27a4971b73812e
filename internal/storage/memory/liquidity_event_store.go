package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// LiquidityEventStore is an in-memory implementation of
// storage.LiquidityEventStore.
type LiquidityEventStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.LiquidityEvent
}

// NewLiquidityEventStore creates a new in-memory liquidity event store.
func NewLiquidityEventStore() *LiquidityEventStore {
	return &LiquidityEventStore{nextID: 1}
}

// Insert appends a liquidity event and assigns its ID.
func (s *LiquidityEventStore) Insert(_ context.Context, event *domain.LiquidityEvent) error {
	if event == nil || event.Token.IsZero() || event.Amount == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := event.Clone()
	copy.ID = s.nextID
	if copy.CreatedAt == 0 {
		copy.CreatedAt = time.Now().UnixMilli()
	}
	s.nextID++
	s.data = append(s.data, copy)

	event.ID = copy.ID
	event.CreatedAt = copy.CreatedAt
	return nil
}

// GetByToken retrieves all events for a token, ordered by timestamp ASC.
func (s *LiquidityEventStore) GetByToken(_ context.Context, token domain.Address) ([]*domain.LiquidityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquidityEvent
	for _, e := range s.data {
		if e.Token == token {
			result = append(result, e.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.LiquidityEventStore = (*LiquidityEventStore)(nil)
