// Package filter applies the multi-criteria transaction views: up to
// six independently combinable predicates, a stable sort, and the
// aggregate stats over a filtered set.
package filter

import (
	"context"
	"sort"
	"strings"

	"gastos/internal/core"
	"gastos/internal/snapshot"
)

// Sentinel values that skip the category and type predicates.
const (
	AllCategories = "todas"
	AllTypes      = "todos"
)

// Sort fields and directions.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldType        = "type"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Filters holds the optional predicates. Zero values (empty strings,
// nil pointers) disable the corresponding predicate; the date range
// applies only when both bounds are present. All active predicates
// combine with logical AND.
type Filters struct {
	Category  string
	Type      string
	StartDate *core.Date
	EndDate   *core.Date
	Search    string
	MinAmount *core.Money
	MaxAmount *core.Money

	// SortField defaults to date, SortOrder to descending.
	SortField string
	SortOrder string
}

// Stats summarizes a transaction set; money figures carry exactly two
// decimals.
type Stats struct {
	Count        int    `json:"count"`
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	Balance      string `json:"balance"`
}

type Engine struct {
	store snapshot.Store
}

func NewEngine(store snapshot.Store) *Engine {
	return &Engine{store: store}
}

// Filter applies the predicates over the full transaction set and
// sorts the result. The sort is stable: equal keys keep their relative
// insertion order.
func (e *Engine) Filter(ctx context.Context, f Filters) []core.Transaction {
	var out []core.Transaction
	for _, t := range e.store.Load(ctx).Transactions {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	sortTransactions(out, f.SortField, f.SortOrder)
	return out
}

func matches(t core.Transaction, f Filters) bool {
	if f.Category != "" && f.Category != AllCategories && t.Category != f.Category {
		return false
	}
	if f.Type != "" && f.Type != AllTypes && t.Type != f.Type {
		return false
	}
	if f.StartDate != nil && f.EndDate != nil && !t.Date.InRange(*f.StartDate, *f.EndDate) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Search)) {
		return false
	}
	if f.MinAmount != nil && t.Amount.Cents < f.MinAmount.Cents {
		return false
	}
	if f.MaxAmount != nil && t.Amount.Cents > f.MaxAmount.Cents {
		return false
	}
	return true
}

func sortTransactions(txns []core.Transaction, field, order string) {
	if field == "" {
		field = FieldDate
	}
	if order == "" {
		order = OrderDesc
	}

	less := func(a, b core.Transaction) bool {
		switch field {
		case FieldDescription:
			return a.Description < b.Description
		case FieldAmount:
			return a.Amount.Cents < b.Amount.Cents
		case FieldCategory:
			return a.Category < b.Category
		case FieldType:
			return a.Type < b.Type
		default:
			return a.Date.Time.Before(b.Date.Time)
		}
	}

	sort.SliceStable(txns, func(i, j int) bool {
		if order == OrderAsc {
			return less(txns[i], txns[j])
		}
		return less(txns[j], txns[i])
	})
}

// ComputeStats reduces a transaction sequence to count, income,
// expense and balance.
func ComputeStats(txns []core.Transaction) Stats {
	var income, expense int64
	for _, t := range txns {
		switch t.Type {
		case core.TypeIncome:
			income += t.Amount.Cents
		case core.TypeExpense:
			expense += t.Amount.Cents
		}
	}
	return Stats{
		Count:        len(txns),
		TotalIncome:  core.Money{Cents: income}.Format(),
		TotalExpense: core.Money{Cents: expense}.Format(),
		Balance:      core.Money{Cents: income - expense}.Format(),
	}
}
