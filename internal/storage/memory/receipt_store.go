package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// ReceiptStore is an in-memory implementation of storage.ReceiptStore.
type ReceiptStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.SwapReceipt
}

// NewReceiptStore creates a new in-memory receipt store.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{nextID: 1}
}

// Insert appends a completed swap receipt and assigns its ID.
func (s *ReceiptStore) Insert(_ context.Context, receipt *domain.SwapReceipt) error {
	if receipt == nil || receipt.Caller.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := receipt.Clone()
	copy.ID = s.nextID
	if copy.CreatedAt == 0 {
		copy.CreatedAt = time.Now().UnixMilli()
	}
	s.nextID++
	s.data = append(s.data, copy)

	receipt.ID = copy.ID
	receipt.CreatedAt = copy.CreatedAt
	return nil
}

// GetByCaller retrieves all receipts for a caller, ordered by timestamp ASC.
func (s *ReceiptStore) GetByCaller(_ context.Context, caller domain.Address) ([]*domain.SwapReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapReceipt
	for _, r := range s.data {
		if r.Caller == caller {
			result = append(result, r.Clone())
		}
	}
	sortReceipts(result)
	return result, nil
}

// GetByPair retrieves all receipts for an ordered pair, ordered by timestamp ASC.
func (s *ReceiptStore) GetByPair(_ context.Context, tokenIn, tokenOut domain.Address) ([]*domain.SwapReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapReceipt
	for _, r := range s.data {
		if r.TokenIn == tokenIn && r.TokenOut == tokenOut {
			result = append(result, r.Clone())
		}
	}
	sortReceipts(result)
	return result, nil
}

func sortReceipts(receipts []*domain.SwapReceipt) {
	sort.Slice(receipts, func(i, j int) bool {
		if receipts[i].Timestamp != receipts[j].Timestamp {
			return receipts[i].Timestamp < receipts[j].Timestamp
		}
		return receipts[i].ID < receipts[j].ID
	})
}

var _ storage.ReceiptStore = (*ReceiptStore)(nil)
