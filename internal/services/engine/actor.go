package engine

import (
	"go.uber.org/zap"

	"github.com/rafalpiotrowski/tx-guard/internal/entity"
)

// Journal records successfully applied transactions. Implementations must be
// safe for concurrent use, every actor appends to the same journal.
type Journal interface {
	Append(tx entity.Transaction) error
}

// actor serializes all mutation of one client's account and ledger. It is
// the only goroutine that ever touches them. Transactions arrive on the
// mailbox in dispatcher order; closing the mailbox is the end-of-stream
// signal.
type actor struct {
	account entity.Account
	ledger  Ledger
	mailbox chan entity.Transaction
	journal Journal
	logger  *zap.Logger
}

func newActor(client entity.ClientID, buffer int, journal Journal, logger *zap.Logger) *actor {
	return &actor{
		account: entity.NewAccount(client),
		ledger:  make(Ledger),
		mailbox: make(chan entity.Transaction, buffer),
		journal: journal,
		logger:  logger,
	}
}

// run drains the mailbox until it is closed, then emits the final account
// exactly once. A rejected transaction is logged and dropped, it never
// terminates the actor.
func (a *actor) run(results chan<- entity.Account) {
	for tx := range a.mailbox {
		next, err := Apply(a.account, tx, a.ledger)
		if err != nil {
			a.logger.Warn("transaction rejected",
				zap.Uint16("client", uint16(tx.Client)),
				zap.Uint32("tx", uint32(tx.TxID)),
				zap.String("kind", tx.Kind.String()),
				zap.Error(err))
			continue
		}

		a.account = next
		if tx.Kind == entity.Deposit || tx.Kind == entity.Withdrawal {
			a.ledger[tx.TxID] = &entity.LedgerEntry{Kind: tx.Kind, Amount: tx.Amount}
		}

		if a.journal != nil {
			if err := a.journal.Append(tx); err != nil {
				a.logger.Error("failed to journal transaction",
					zap.Uint16("client", uint16(tx.Client)),
					zap.Uint32("tx", uint32(tx.TxID)),
					zap.Error(err))
			}
		}
	}

	results <- a.account
}
