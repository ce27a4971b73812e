package domain

// Role names a permission set on the engine.
type Role string

const (
	// RoleAdmin holds lifecycle authority: pause, rate and oracle
	// management, role grants, liquidity operations.
	RoleAdmin Role = "admin"

	// RoleExchanger authorizes invoking swap operations.
	RoleExchanger Role = "exchanger"
)

// RoleGrant records one account's membership in one role.
// Corresponds to the roles table in PostgreSQL.
type RoleGrant struct {
	Account   Address
	Role      Role
	GrantedBy Address
	GrantedAt int64 // ms
}
