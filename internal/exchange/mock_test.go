package exchange

import (
	"context"
	"math/big"

	"pegswap/internal/domain"
	"pegswap/internal/token"
)

// ledger is an in-memory token balance book shared by all mock tokens.
type ledger struct {
	balances map[domain.Address]map[domain.Address]*big.Int // token -> account -> balance
}

func newLedger() *ledger {
	return &ledger{balances: make(map[domain.Address]map[domain.Address]*big.Int)}
}

func (l *ledger) balance(tok, account domain.Address) *big.Int {
	if accounts, ok := l.balances[tok]; ok {
		if b, ok := accounts[account]; ok {
			return new(big.Int).Set(b)
		}
	}
	return new(big.Int)
}

func (l *ledger) set(tok, account domain.Address, amount *big.Int) {
	if l.balances[tok] == nil {
		l.balances[tok] = make(map[domain.Address]*big.Int)
	}
	l.balances[tok][account] = new(big.Int).Set(amount)
}

// mockToken is a scriptable token contract. The default behavior is an
// honest token; the flags turn it hostile in specific ways.
type mockToken struct {
	ledger   *ledger
	address  domain.Address
	treasury domain.Address
	decimals uint8

	decimalsErr  error    // Decimals reports this error
	failTransfer bool     // transfers return false without moving anything
	lieTransfer  bool     // transfers return true without moving anything
	fee          *big.Int // deducted from both the sender's debit and the recipient's credit
	skim         *big.Int // recipient short-credited by this much, sender debited in full
	overcharge   *big.Int // sender debited this much extra, recipient credited in full
	// onTransfer runs during Transfer before the balance movement,
	// simulating attacker code executing inside the token call.
	onTransfer func()
}

func (m *mockToken) Address() domain.Address { return m.address }

func (m *mockToken) BalanceOf(_ context.Context, account domain.Address) (*big.Int, error) {
	return m.ledger.balance(m.address, account), nil
}

func (m *mockToken) Transfer(_ context.Context, to domain.Address, amount *big.Int) (bool, error) {
	if m.onTransfer != nil {
		m.onTransfer()
	}
	return m.doMove(m.treasury, to, amount), nil
}

func (m *mockToken) TransferFrom(_ context.Context, from, to domain.Address, amount *big.Int) (bool, error) {
	return m.doMove(from, to, amount), nil
}

func (m *mockToken) doMove(from, to domain.Address, amount *big.Int) bool {
	if m.failTransfer {
		return false
	}
	if m.lieTransfer {
		return true
	}
	debit := new(big.Int).Set(amount)
	credit := new(big.Int).Set(amount)
	if m.fee != nil {
		debit.Sub(debit, m.fee)
		credit.Sub(credit, m.fee)
	}
	if m.skim != nil {
		credit.Sub(credit, m.skim)
	}
	if m.overcharge != nil {
		debit.Add(debit, m.overcharge)
	}
	l := m.ledger
	l.set(m.address, from, new(big.Int).Sub(l.balance(m.address, from), debit))
	l.set(m.address, to, new(big.Int).Add(l.balance(m.address, to), credit))
	return true
}

func (m *mockToken) Decimals(context.Context) (uint8, error) {
	if m.decimalsErr != nil {
		return 0, m.decimalsErr
	}
	return m.decimals, nil
}

var _ token.Token = (*mockToken)(nil)

// mapResolver binds token addresses to mock tokens.
type mapResolver map[domain.Address]token.Token

func (r mapResolver) Token(address domain.Address) token.Token {
	return r[address]
}
