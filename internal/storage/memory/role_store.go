package memory

import (
	"context"
	"sort"
	"sync"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// RoleStore is an in-memory implementation of storage.RoleStore.
type RoleStore struct {
	mu   sync.RWMutex
	data map[roleKey]*domain.RoleGrant
}

type roleKey struct {
	account domain.Address
	role    domain.Role
}

// NewRoleStore creates a new in-memory role store.
func NewRoleStore() *RoleStore {
	return &RoleStore{
		data: make(map[roleKey]*domain.RoleGrant),
	}
}

// Has reports whether account is a member of role.
func (s *RoleStore) Has(_ context.Context, account domain.Address, role domain.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[roleKey{account, role}]
	return ok, nil
}

// Grant adds the account to the role. Granting an existing member keeps
// the original grant record.
func (s *RoleStore) Grant(_ context.Context, grant *domain.RoleGrant) error {
	if grant == nil || grant.Account.IsZero() || grant.Role == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := roleKey{grant.Account, grant.Role}
	if _, ok := s.data[key]; ok {
		return nil
	}
	copy := *grant
	s.data[key] = &copy
	return nil
}

// Revoke removes the account from the role.
func (s *RoleStore) Revoke(_ context.Context, account domain.Address, role domain.Role) error {
	if account.IsZero() || role == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, roleKey{account, role})
	return nil
}

// Members retrieves all accounts holding role.
func (s *RoleStore) Members(_ context.Context, role domain.Role) ([]domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Address
	for key := range s.data {
		if key.role == role {
			result = append(result, key.account)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	return result, nil
}

var _ storage.RoleStore = (*RoleStore)(nil)
