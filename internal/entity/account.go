package entity

import "github.com/shopspring/decimal"

// Account is the running balance and lock status of one client.
// Total must always equal Available + Held; transitions recompute it,
// they never mutate it independently. Locked is monotonic within a run.
type Account struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// NewAccount returns a fresh unlocked account with zero balances.
func NewAccount(client ClientID) Account {
	return Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// Equal reports whether two accounts hold the same balances and status.
// Decimal fields are compared by value, not by internal representation.
func (a Account) Equal(b Account) bool {
	return a.Client == b.Client &&
		a.Available.Equal(b.Available) &&
		a.Held.Equal(b.Held) &&
		a.Total.Equal(b.Total) &&
		a.Locked == b.Locked
}
