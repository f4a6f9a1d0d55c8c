// Package journal keeps an append-only audit trail of applied transactions
// on top of a write-ahead log. It is a per-run record for inspection, the
// engine never reads it back to restore state.
package journal

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"

	"github.com/rafalpiotrowski/tx-guard/internal/entity"
)

const recordKeyPrefix = "tx_applied_"

// Record is one journaled transaction.
type Record struct {
	ID     string          `json:"id"`
	Kind   string          `json:"kind"`
	Client entity.ClientID `json:"client"`
	TxID   entity.TxID     `json:"tx"`
	Amount decimal.Decimal `json:"amount"`
}

// Journal wraps a WAL so that concurrently running actors can append
// applied transactions. Writes are serialized with a mutex because the WAL
// index must advance monotonically.
type Journal struct {
	mu  sync.Mutex
	wal *gowal.Wal
}

// New opens (or creates) a journal in dir.
func New(dir string) (*Journal, error) {
	w, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "seg_",
		SegmentThreshold: 1000,
		MaxSegments:      100,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open journal wal")
	}

	return &Journal{wal: w}, nil
}

// Append writes one applied transaction to the journal.
func (j *Journal) Append(tx entity.Transaction) error {
	rec := Record{
		ID:     uuid.New().String(),
		Kind:   tx.Kind.String(),
		Client: tx.Client,
		TxID:   tx.TxID,
		Amount: tx.Amount,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to marshal journal record")
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.wal.Write(j.wal.CurrentIndex()+1, recordKeyPrefix+rec.ID, data)
}

// Records decodes every journaled transaction, in write order.
func (j *Journal) Records() ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var records []Record
	for msg := range j.wal.Iterator() {
		var rec Record
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal journal record %s", msg.Key)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Close flushes and closes the underlying WAL.
func (j *Journal) Close() error {
	return j.wal.Close()
}
