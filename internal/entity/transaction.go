package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ClientID identifies a single client account.
type ClientID uint16

// TxID identifies a deposit or withdrawal transaction, unique within a run.
// Disputes, resolves and chargebacks carry no identity of their own, they
// reference a prior TxID.
type TxID uint32

// TxKind is the type of a transaction event.
type TxKind int

const (
	Deposit TxKind = iota
	Withdrawal
	Dispute
	Resolve
	Chargeback
)

// ParseTxKind converts a raw kind field into a TxKind. Matching is
// case-insensitive.
func ParseTxKind(s string) (TxKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return Deposit, nil
	case "withdrawal":
		return Withdrawal, nil
	case "dispute":
		return Dispute, nil
	case "resolve":
		return Resolve, nil
	case "chargeback":
		return Chargeback, nil
	default:
		return 0, fmt.Errorf("unknown transaction kind %q", s)
	}
}

func (k TxKind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	case Dispute:
		return "dispute"
	case Resolve:
		return "resolve"
	case Chargeback:
		return "chargeback"
	default:
		return fmt.Sprintf("TxKind(%d)", int(k))
	}
}

// Transaction is a single typed event from the input stream. Amount is set
// only for deposits and withdrawals; the other kinds reference a prior
// transaction by TxID and use the amount recorded back then.
type Transaction struct {
	Kind   TxKind
	Client ClientID
	TxID   TxID
	Amount decimal.Decimal
}

// LedgerEntry is the stored copy of an applied deposit or withdrawal,
// kept so later disputes can look up the original amount. InDispute flips
// while a dispute is open.
type LedgerEntry struct {
	Kind      TxKind
	Amount    decimal.Decimal
	InDispute bool
}
