// Package budget computes per-category spend against budget ceilings.
// Everything is recomputed from the snapshot on every call; alert state
// is never cached, so a budget change is visible on the next request.
package budget

import (
	"context"
	"time"

	"gastos/internal/core"
	"gastos/internal/snapshot"
)

// Status classification thresholds: below 80% is ok, 80-99% warns,
// 100% and over is danger.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusDanger  = "danger"

	warningThreshold = 80.0
	dangerThreshold  = 100.0
)

// CategoryStatus is the spend-vs-budget picture of one category.
type CategoryStatus struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Budget     core.Money `json:"budget"`
	Spent      core.Money `json:"spent"`
	Remaining  core.Money `json:"remaining"`
	Percentage float64    `json:"percentage"`
	Status     string     `json:"status"`
	Color      string     `json:"color"`
}

type Engine struct {
	store snapshot.Store
	now   func() time.Time
}

func NewEngine(store snapshot.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// CategorySpending sums the expense-type transactions for the named
// category within the target month. Zero year or month means "current".
// Income transactions never count, whatever category they carry.
func (e *Engine) CategorySpending(ctx context.Context, categoryName string, year, month int) core.Money {
	year, month = e.resolveMonth(year, month)

	var total int64
	for _, t := range e.store.Load(ctx).Transactions {
		if t.Category != categoryName || t.Type != core.TypeExpense {
			continue
		}
		if t.Date.InMonth(year, month) {
			total += t.Amount.Cents
		}
	}
	return core.Money{Cents: total}
}

// BudgetStatus reports every expense category with a budget set,
// classified against the current month's spend.
func (e *Engine) BudgetStatus(ctx context.Context) []CategoryStatus {
	snap := e.store.Load(ctx)
	year, month := e.resolveMonth(0, 0)

	var out []CategoryStatus
	for _, c := range snap.Categories {
		if !c.HasBudget() || c.Type != core.TypeExpense {
			continue
		}
		spent := e.CategorySpending(ctx, c.Name, year, month)
		pct := float64(spent.Cents) / float64(c.Budget.Cents) * 100

		out = append(out, CategoryStatus{
			ID:         c.ID,
			Name:       c.Name,
			Budget:     c.Budget,
			Spent:      spent,
			Remaining:  core.Money{Cents: c.Budget.Cents - spent.Cents},
			Percentage: pct,
			Status:     Classify(pct),
			Color:      c.Color,
		})
	}
	return out
}

// BudgetAlerts is the warning/danger subset of BudgetStatus.
func (e *Engine) BudgetAlerts(ctx context.Context) []CategoryStatus {
	var out []CategoryStatus
	for _, s := range e.BudgetStatus(ctx) {
		if s.Status == StatusWarning || s.Status == StatusDanger {
			out = append(out, s)
		}
	}
	return out
}

// Classify maps a budget-usage percentage to its status tier.
func Classify(percentage float64) string {
	switch {
	case percentage >= dangerThreshold:
		return StatusDanger
	case percentage >= warningThreshold:
		return StatusWarning
	default:
		return StatusOK
	}
}

func (e *Engine) resolveMonth(year, month int) (int, int) {
	now := e.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return year, month
}
