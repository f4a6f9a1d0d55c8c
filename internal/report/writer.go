// Package report renders final account states in the output format
// `client,available,held,total,locked`. Row order follows the slice it is
// given; callers must not rely on any particular ordering.
package report

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/rafalpiotrowski/tx-guard/internal/entity"
)

const header = "client,available,held,total,locked"

// Write emits the header line followed by one row per account. Amounts are
// rendered with exactly 4 fractional digits.
func Write(w io.Writer, accounts []entity.Account) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for _, acc := range accounts {
		_, err := fmt.Fprintf(w, "%d,%s,%s,%s,%t\n",
			acc.Client,
			acc.Available.StringFixed(4),
			acc.Held.StringFixed(4),
			acc.Total.StringFixed(4),
			acc.Locked)
		if err != nil {
			return errors.Wrapf(err, "writing account %d", acc.Client)
		}
	}

	return nil
}
