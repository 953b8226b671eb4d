// Package report derives the read views of the ledger: total balance,
// current-month chart buckets, the monthly trend series, the monthly
// summary with previous-month comparison, and per-category analysis.
// Every query re-reads the snapshot; nothing is cached between calls.
package report

import (
	"context"
	"sort"
	"time"

	"gastos/internal/budget"
	"gastos/internal/core"
	"gastos/internal/snapshot"
)

// Trend directions for month-over-month comparisons.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
	TrendStable  = "stable"
)

// Category analysis status tiers.
const (
	StatusWithinBudget = "within-budget"
	StatusNearLimit    = "near-limit"
	StatusOverBudget   = "over-budget"
)

type Engine struct {
	store   snapshot.Store
	budgets *budget.Engine
	now     func() time.Time
}

func NewEngine(store snapshot.Store, budgets *budget.Engine) *Engine {
	return &Engine{store: store, budgets: budgets, now: time.Now}
}

// Balance is the signed sum over all transactions: income adds,
// everything else subtracts. Format() renders it with two decimals.
func (e *Engine) Balance(ctx context.Context) core.Money {
	var total int64
	for _, t := range e.store.Load(ctx).Transactions {
		if t.Type == core.TypeIncome {
			total += t.Amount.Cents
		} else {
			total -= t.Amount.Cents
		}
	}
	return core.Money{Cents: total}
}

// ChartData buckets the current month's amounts by category name, one
// set of parallel label/value/color slices per side. Labels keep
// first-seen order; colors resolve through the category list with a
// neutral fallback for names that no longer match a category.
type ChartData struct {
	ExpenseLabels []string     `json:"expenseLabels"`
	ExpenseValues []core.Money `json:"expenseValues"`
	ExpenseColors []string     `json:"expenseColors"`
	IncomeLabels  []string     `json:"incomeLabels"`
	IncomeValues  []core.Money `json:"incomeValues"`
	IncomeColors  []string     `json:"incomeColors"`

	// CurrentMonthTransactions is the raw month subset, exposed so the
	// presentation layer does not filter a second time.
	CurrentMonthTransactions []core.Transaction `json:"currentMonthTransactions"`
}

func (e *Engine) ChartData(ctx context.Context) ChartData {
	snap := e.store.Load(ctx)
	now := e.now()
	year, month := now.Year(), int(now.Month())

	colorOf := func(name string) string {
		for _, c := range snap.Categories {
			if c.Name == name {
				return c.Color
			}
		}
		return core.DefaultColor
	}

	data := ChartData{CurrentMonthTransactions: []core.Transaction{}}
	expense := map[string]int64{}
	income := map[string]int64{}

	for _, t := range snap.Transactions {
		if !t.Date.InMonth(year, month) {
			continue
		}
		data.CurrentMonthTransactions = append(data.CurrentMonthTransactions, t)
		switch t.Type {
		case core.TypeExpense:
			if _, seen := expense[t.Category]; !seen {
				data.ExpenseLabels = append(data.ExpenseLabels, t.Category)
			}
			expense[t.Category] += t.Amount.Cents
		case core.TypeIncome:
			if _, seen := income[t.Category]; !seen {
				data.IncomeLabels = append(data.IncomeLabels, t.Category)
			}
			income[t.Category] += t.Amount.Cents
		}
	}

	for _, label := range data.ExpenseLabels {
		data.ExpenseValues = append(data.ExpenseValues, core.Money{Cents: expense[label]})
		data.ExpenseColors = append(data.ExpenseColors, colorOf(label))
	}
	for _, label := range data.IncomeLabels {
		data.IncomeValues = append(data.IncomeValues, core.Money{Cents: income[label]})
		data.IncomeColors = append(data.IncomeColors, colorOf(label))
	}
	return data
}

// MonthlyTrend buckets all transactions by YYYY-MM key. Keys are
// sorted lexicographically, which for zero-padded keys is
// chronological order.
type MonthlyTrend struct {
	Labels  []string     `json:"labels"`
	Income  []core.Money `json:"incomeData"`
	Expense []core.Money `json:"expenseData"`
}

func (e *Engine) MonthlyTrend(ctx context.Context) MonthlyTrend {
	type bucket struct{ income, expense int64 }
	buckets := map[string]*bucket{}

	for _, t := range e.store.Load(ctx).Transactions {
		key := t.Date.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		if t.Type == core.TypeIncome {
			b.income += t.Amount.Cents
		} else {
			b.expense += t.Amount.Cents
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	trend := MonthlyTrend{Labels: keys}
	for _, k := range keys {
		trend.Income = append(trend.Income, core.Money{Cents: buckets[k].income})
		trend.Expense = append(trend.Expense, core.Money{Cents: buckets[k].expense})
	}
	return trend
}

// MonthlySummary totals one month and diffs it against the month
// before. January never looks back across the year boundary: its
// baseline is zero and both trends read neutral. The lookback is a
// single explicit step, not recursion, but the output is the same.
type MonthlySummary struct {
	Year             int        `json:"year"`
	Month            int        `json:"month"`
	Income           core.Money `json:"income"`
	Expense          core.Money `json:"expense"`
	Balance          core.Money `json:"balance"`
	TransactionCount int        `json:"transactionCount"`
	IncomeTrend      string     `json:"incomeTrend"`
	ExpenseTrend     string     `json:"expenseTrend"`
	IncomeChange     core.Money `json:"incomeChange"`
	ExpenseChange    core.Money `json:"expenseChange"`
}

func (e *Engine) MonthlySummary(ctx context.Context, year, month int) MonthlySummary {
	now := e.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	txns := e.store.Load(ctx).Transactions
	income, expense, count := monthTotals(txns, year, month)

	summary := MonthlySummary{
		Year:             year,
		Month:            month,
		Income:           core.Money{Cents: income},
		Expense:          core.Money{Cents: expense},
		Balance:          core.Money{Cents: income - expense},
		TransactionCount: count,
		IncomeTrend:      TrendNeutral,
		ExpenseTrend:     TrendNeutral,
		IncomeChange:     core.Money{Cents: income},
		ExpenseChange:    core.Money{Cents: expense},
	}

	if month > 1 {
		prevIncome, prevExpense, _ := monthTotals(txns, year, month-1)
		summary.IncomeTrend = direction(income, prevIncome, TrendNeutral)
		summary.ExpenseTrend = direction(expense, prevExpense, TrendNeutral)
		summary.IncomeChange = core.Money{Cents: income - prevIncome}
		summary.ExpenseChange = core.Money{Cents: expense - prevExpense}
	}
	return summary
}

// CategoryAnalysis is the budget and trend picture of one category.
type CategoryAnalysis struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Color        string     `json:"color"`
	Spent        core.Money `json:"spent"`
	Budget       core.Money `json:"budget"`
	Percentage   float64    `json:"percentage"`
	Status       string     `json:"status"`
	Trend        string     `json:"trend"`
	MonthlySpent core.Money `json:"monthlySpent"`
}

// CategoryAnalysisAll analyses every category: current-month spend,
// budget usage (zero when no budget is set), a status tier, and an
// up/down/stable trend against last month's spend.
func (e *Engine) CategoryAnalysisAll(ctx context.Context) []CategoryAnalysis {
	snap := e.store.Load(ctx)
	now := e.now()
	year, month := now.Year(), int(now.Month())

	var out []CategoryAnalysis
	for _, c := range snap.Categories {
		spent := e.budgets.CategorySpending(ctx, c.Name, year, month)

		var pct float64
		if c.HasBudget() {
			pct = float64(spent.Cents) / float64(c.Budget.Cents) * 100
		}
		status := StatusWithinBudget
		if pct >= 100 {
			status = StatusOverBudget
		} else if pct >= 80 {
			status = StatusNearLimit
		}

		var prev core.Money
		if month > 1 {
			prev = e.budgets.CategorySpending(ctx, c.Name, year, month-1)
		}

		out = append(out, CategoryAnalysis{
			ID:           c.ID,
			Name:         c.Name,
			Type:         c.Type,
			Color:        c.Color,
			Spent:        spent,
			Budget:       c.Budget,
			Percentage:   pct,
			Status:       status,
			Trend:        direction(spent.Cents, prev.Cents, TrendStable),
			MonthlySpent: spent,
		})
	}
	return out
}

func monthTotals(txns []core.Transaction, year, month int) (income, expense int64, count int) {
	for _, t := range txns {
		if !t.Date.InMonth(year, month) {
			continue
		}
		count++
		if t.Type == core.TypeIncome {
			income += t.Amount.Cents
		} else {
			expense += t.Amount.Cents
		}
	}
	return income, expense, count
}

func direction(current, previous int64, equal string) string {
	switch {
	case current > previous:
		return TrendUp
	case current < previous:
		return TrendDown
	default:
		return equal
	}
}
