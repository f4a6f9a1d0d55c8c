// Package ingest reads the raw transaction stream and turns it into typed
// entity.Transaction values for the engine. It owns all input-format
// concerns: header handling, field trimming, kind parsing and amount
// validation.
package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rafalpiotrowski/tx-guard/internal/entity"
)

// MalformedPolicy decides what happens when a row cannot be parsed.
type MalformedPolicy string

const (
	// Abort stops reading and returns the row error to the caller.
	Abort MalformedPolicy = "abort"
	// Skip logs the row error and continues with the next row.
	Skip MalformedPolicy = "skip"
)

// ParseMalformedPolicy validates a policy string from config.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch MalformedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case Abort:
		return Abort, nil
	case Skip:
		return Skip, nil
	case "":
		return Abort, nil
	default:
		return "", errors.Errorf("unknown malformed-row policy %q (want abort or skip)", s)
	}
}

// Reader streams transactions out of CSV input shaped
// `type,client,tx,amount`. The amount column is empty or missing for
// dispute/resolve/chargeback rows.
type Reader struct {
	policy MalformedPolicy
	logger *zap.Logger
}

// NewReader creates a reader with the given malformed-row policy.
func NewReader(policy MalformedPolicy, logger *zap.Logger) *Reader {
	return &Reader{policy: policy, logger: logger}
}

// Read parses rows from r and sends each transaction to out, preserving
// input order. It always closes out before returning so the consumer sees
// end-of-stream exactly once. With the Abort policy the first bad row stops
// the read and is returned as an error; with Skip it is logged and dropped.
func (rd *Reader) Read(r io.Reader, out chan<- entity.Transaction) error {
	defer close(out)

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	// header row
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.Wrap(err, "reading header")
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			if rd.policy == Skip {
				rd.logger.Warn("skipping unreadable row", zap.Int("line", line), zap.Error(err))
				continue
			}
			return errors.Wrapf(err, "reading row %d", line)
		}

		tx, err := parseRow(record)
		if err != nil {
			if rd.policy == Skip {
				rd.logger.Warn("skipping malformed row", zap.Int("line", line), zap.Error(err))
				continue
			}
			return errors.Wrapf(err, "row %d", line)
		}

		out <- tx
	}
}

func parseRow(record []string) (entity.Transaction, error) {
	if len(record) < 3 {
		return entity.Transaction{}, errors.Errorf("expected at least 3 fields, got %d", len(record))
	}

	kind, err := entity.ParseTxKind(record[0])
	if err != nil {
		return entity.Transaction{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 16)
	if err != nil {
		return entity.Transaction{}, errors.Wrapf(err, "invalid client id %q", record[1])
	}

	id, err := strconv.ParseUint(strings.TrimSpace(record[2]), 10, 32)
	if err != nil {
		return entity.Transaction{}, errors.Wrapf(err, "invalid tx id %q", record[2])
	}

	tx := entity.Transaction{
		Kind:   kind,
		Client: entity.ClientID(client),
		TxID:   entity.TxID(id),
		Amount: decimal.Zero,
	}

	switch kind {
	case entity.Deposit, entity.Withdrawal:
		amount, err := parseAmount(record)
		if err != nil {
			return entity.Transaction{}, err
		}
		tx.Amount = amount
	default:
		// dispute/resolve/chargeback rows reference a prior tx, any
		// amount column is left empty and ignored here.
	}

	return tx, nil
}

func parseAmount(record []string) (decimal.Decimal, error) {
	if len(record) < 4 || strings.TrimSpace(record[3]) == "" {
		return decimal.Decimal{}, errors.New("amount is required for deposit/withdrawal")
	}

	raw := strings.TrimSpace(record[3])
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "invalid amount %q", raw)
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, errors.Errorf("amount %q must not be negative", raw)
	}
	if amount.Exponent() < -4 {
		return decimal.Decimal{}, errors.Errorf("amount %q exceeds 4 fractional digits", raw)
	}

	return amount, nil
}
