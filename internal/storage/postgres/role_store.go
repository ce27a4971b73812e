package postgres

import (
	"context"
	"fmt"

	"pegswap/internal/domain"
	"pegswap/internal/storage"
)

// RoleStore implements storage.RoleStore using PostgreSQL.
type RoleStore struct {
	pool *Pool
}

// NewRoleStore creates a new RoleStore.
func NewRoleStore(pool *Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RoleStore = (*RoleStore)(nil)

// Has reports whether account is a member of role.
func (s *RoleStore) Has(ctx context.Context, account domain.Address, role domain.Role) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM roles WHERE account = $1 AND role = $2)`

	var has bool
	if err := s.pool.QueryRow(ctx, query, account.String(), string(role)).Scan(&has); err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return has, nil
}

// Grant adds the account to the role. Granting an existing member
// succeeds without change, keeping the original grant record.
func (s *RoleStore) Grant(ctx context.Context, grant *domain.RoleGrant) error {
	if grant == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO roles (account, role, granted_by, granted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account, role) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query,
		grant.Account.String(),
		string(grant.Role),
		grant.GrantedBy.String(),
		grant.GrantedAt,
	)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

// Revoke removes the account from the role. Revoking a non-member
// succeeds without change.
func (s *RoleStore) Revoke(ctx context.Context, account domain.Address, role domain.Role) error {
	query := `DELETE FROM roles WHERE account = $1 AND role = $2`

	if _, err := s.pool.Exec(ctx, query, account.String(), string(role)); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

// Members retrieves all accounts holding role, ordered by account.
func (s *RoleStore) Members(ctx context.Context, role domain.Role) ([]domain.Address, error) {
	query := `SELECT account FROM roles WHERE role = $1 ORDER BY account ASC`

	rows, err := s.pool.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("list role members: %w", err)
	}
	defer rows.Close()

	var members []domain.Address
	for rows.Next() {
		var account string
		if err := rows.Scan(&account); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		members = append(members, domain.Address(account))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member rows: %w", err)
	}
	return members, nil
}
