package engine

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rafalpiotrowski/tx-guard/internal/entity"
)

var (
	// ErrFrozen rejects any transaction against a locked account.
	ErrFrozen = errors.New("account is frozen")
	// ErrInsufficientFunds rejects a withdrawal exceeding available funds.
	ErrInsufficientFunds = errors.New("insufficient funds for withdrawal")
	// ErrNoSuchTx rejects a dispute/resolve/chargeback referencing an
	// unknown transaction.
	ErrNoSuchTx = errors.New("referenced transaction not found")
	// ErrNotDisputed rejects a resolve/chargeback on a transaction that is
	// not under dispute.
	ErrNotDisputed = errors.New("referenced transaction not in dispute")
	// ErrAlreadyDisputed rejects a second dispute on the same transaction.
	ErrAlreadyDisputed = errors.New("referenced transaction already in dispute")
)

// Ledger is the private history of applied deposits and withdrawals for one
// client, keyed by transaction id. It is owned exclusively by that client's
// actor and never shared.
type Ledger map[entity.TxID]*entity.LedgerEntry

// Apply runs one transaction against an account and its ledger, returning
// the new account state. On error the account is returned unchanged and the
// ledger untouched. The only ledger mutation here is the InDispute flag;
// recording deposits and withdrawals into the ledger is the caller's job,
// after Apply succeeds.
func Apply(acc entity.Account, tx entity.Transaction, ledger Ledger) (entity.Account, error) {
	switch tx.Kind {
	case entity.Deposit:
		return deposit(acc, tx.Amount)
	case entity.Withdrawal:
		return withdraw(acc, tx.Amount)
	case entity.Dispute:
		return dispute(acc, tx.TxID, ledger)
	case entity.Resolve:
		return resolve(acc, tx.TxID, ledger)
	case entity.Chargeback:
		return chargeback(acc, tx.TxID, ledger)
	default:
		return acc, errors.Errorf("unhandled transaction kind %s", tx.Kind)
	}
}

func deposit(acc entity.Account, amount decimal.Decimal) (entity.Account, error) {
	if acc.Locked {
		return acc, ErrFrozen
	}

	acc.Available = acc.Available.Add(amount)
	acc.Total = acc.Available.Add(acc.Held)
	return acc, nil
}

func withdraw(acc entity.Account, amount decimal.Decimal) (entity.Account, error) {
	if acc.Locked {
		return acc, ErrFrozen
	}
	if acc.Available.LessThan(amount) {
		return acc, ErrInsufficientFunds
	}

	acc.Available = acc.Available.Sub(amount)
	acc.Total = acc.Available.Add(acc.Held)
	return acc, nil
}

func dispute(acc entity.Account, id entity.TxID, ledger Ledger) (entity.Account, error) {
	if acc.Locked {
		return acc, ErrFrozen
	}
	entry, ok := ledger[id]
	if !ok {
		return acc, ErrNoSuchTx
	}
	if entry.InDispute {
		return acc, ErrAlreadyDisputed
	}

	entry.InDispute = true
	acc.Available = acc.Available.Sub(entry.Amount)
	acc.Held = acc.Held.Add(entry.Amount)
	acc.Total = acc.Available.Add(acc.Held)
	return acc, nil
}

func resolve(acc entity.Account, id entity.TxID, ledger Ledger) (entity.Account, error) {
	if acc.Locked {
		return acc, ErrFrozen
	}
	entry, ok := ledger[id]
	if !ok {
		return acc, ErrNoSuchTx
	}
	if !entry.InDispute {
		return acc, ErrNotDisputed
	}

	entry.InDispute = false
	acc.Available = acc.Available.Add(entry.Amount)
	acc.Held = acc.Held.Sub(entry.Amount)
	acc.Total = acc.Available.Add(acc.Held)
	return acc, nil
}

func chargeback(acc entity.Account, id entity.TxID, ledger Ledger) (entity.Account, error) {
	if acc.Locked {
		return acc, ErrFrozen
	}
	entry, ok := ledger[id]
	if !ok {
		return acc, ErrNoSuchTx
	}
	if !entry.InDispute {
		return acc, ErrNotDisputed
	}

	entry.InDispute = false
	acc.Held = acc.Held.Sub(entry.Amount)
	acc.Total = acc.Available.Add(acc.Held)
	acc.Locked = true
	return acc, nil
}
