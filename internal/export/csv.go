// Package export serializes transaction sequences to CSV.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gastos/internal/core"
	"gastos/internal/snapshot"
)

// ErrNoTransactions signals an empty input set. Callers get this
// instead of a header-only file.
var ErrNoTransactions = errors.New("no transactions to export")

const csvHeader = "Date,Description,Category,Type,Amount\n"

type Engine struct {
	store snapshot.Store
}

func NewEngine(store snapshot.Store) *Engine {
	return &Engine{store: store}
}

// CSV serializes the given transactions in input order. A nil slice
// means "the full transaction set". Fields are double-quoted; embedded
// quote characters are not escaped, a known limitation of the format
// this tool has always produced.
func (e *Engine) CSV(ctx context.Context, txns []core.Transaction) (string, error) {
	if txns == nil {
		txns = e.store.Load(ctx).Transactions
	}
	if len(txns) == 0 {
		return "", ErrNoTransactions
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	for _, t := range txns {
		fmt.Fprintf(&b, "\"%s\",\"%s\",\"%s\",\"%s\",\"%s\"\n",
			t.Date.String(), t.Description, t.Category, t.Type, t.Amount.Format())
	}
	return b.String(), nil
}

// TransactionsInRange returns the transactions dated within
// [start, end], both bounds inclusive. The result is never nil, so it
// stays distinct from the "export all" sentinel CSV uses.
func (e *Engine) TransactionsInRange(ctx context.Context, start, end core.Date) []core.Transaction {
	filtered := []core.Transaction{}
	for _, t := range e.store.Load(ctx).Transactions {
		if t.Date.InRange(start, end) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// CSVByDateRange exports the transactions dated within [start, end],
// both bounds inclusive.
func (e *Engine) CSVByDateRange(ctx context.Context, start, end core.Date) (string, error) {
	return e.CSV(ctx, e.TransactionsInRange(ctx, start, end))
}
