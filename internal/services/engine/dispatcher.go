package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/rafalpiotrowski/tx-guard/internal/entity"
)

// DefaultBuffer is the mailbox capacity used when none is configured.
const DefaultBuffer = 32

// Dispatcher fans the single incoming transaction stream out to one actor
// per client. It is the sole owner of the client-to-mailbox mapping and the
// only producer for every mailbox, so per-client ordering is structural.
type Dispatcher struct {
	buffer  int
	journal Journal
	logger  *zap.Logger

	actors map[entity.ClientID]*actor
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given mailbox capacity.
// journal may be nil to disable the audit trail.
func NewDispatcher(buffer int, journal Journal, logger *zap.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Dispatcher{
		buffer:  buffer,
		journal: journal,
		logger:  logger,
		actors:  make(map[entity.ClientID]*actor),
	}
}

// Run consumes the stream until it is closed, routing each transaction to
// its client's actor and creating actors on first sight of a client. It
// returns only after every mailbox has been drained and every final account
// emitted, so callers may write output immediately. The order of the
// returned accounts is unspecified.
func (d *Dispatcher) Run(stream <-chan entity.Transaction) []entity.Account {
	results := make(chan entity.Account)
	collected := make(chan []entity.Account)
	go func() {
		var accounts []entity.Account
		for acc := range results {
			accounts = append(accounts, acc)
		}
		collected <- accounts
	}()

	for tx := range stream {
		a, ok := d.actors[tx.Client]
		if !ok {
			a = newActor(tx.Client, d.buffer, d.journal, d.logger)
			d.actors[tx.Client] = a
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				a.run(results)
			}()
			d.logger.Debug("created account actor", zap.Uint16("client", uint16(tx.Client)))
		}
		a.mailbox <- tx
	}

	// Shutdown barrier: close every mailbox, then wait for each actor to
	// drain and emit its final account before reporting completion.
	for _, a := range d.actors {
		close(a.mailbox)
	}
	d.wg.Wait()
	close(results)

	return <-collected
}
