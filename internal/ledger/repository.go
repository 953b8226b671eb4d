// Package ledger implements record-level operations over the snapshot
// store: transaction and category CRUD, the category deletion guard,
// and name uniqueness. Every mutation is a whole-snapshot
// read-modify-write; a process-local mutex serializes writers so two
// concurrent mutations cannot silently drop each other's changes.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gastos/internal/core"
	"gastos/internal/snapshot"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("category name already exists")
)

type Repository struct {
	mu    sync.Mutex
	store snapshot.Store
	now   func() time.Time
}

func NewRepository(store snapshot.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// TransactionDraft carries the user-supplied fields of a new
// transaction; id and date are assigned by the repository.
type TransactionDraft struct {
	Description string
	Amount      core.Money
	Type        string
	Category    string
}

// TransactionPatch holds optional replacement fields for an update.
// Nil fields keep their current value; id and date are never patched.
type TransactionPatch struct {
	Description *string
	Amount      *core.Money
	Type        *string
	Category    *string
}

type CategoryDraft struct {
	Name  string
	Type  string
	Color string
}

type CategoryPatch struct {
	Name  *string
	Type  *string
	Color *string
}

// DeleteCategoryResult distinguishes not-found, blocked-by-in-use and
// storage failure; Message is surfaced verbatim to the end user.
type DeleteCategoryResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Transactions returns all transactions in insertion order.
func (r *Repository) Transactions(ctx context.Context) []core.Transaction {
	return r.store.Load(ctx).Transactions
}

// TransactionByID finds a transaction by id.
func (r *Repository) TransactionByID(ctx context.Context, id int64) (core.Transaction, bool) {
	for _, t := range r.store.Load(ctx).Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// TransactionsByMonth returns the transactions dated in the given year
// and month, in insertion order.
func (r *Repository) TransactionsByMonth(ctx context.Context, year, month int) []core.Transaction {
	var out []core.Transaction
	for _, t := range r.store.Load(ctx).Transactions {
		if t.Date.InMonth(year, month) {
			out = append(out, t)
		}
	}
	return out
}

// AddTransaction assigns the next shared id, stamps today's date,
// appends and persists. The stored record is returned.
func (r *Repository) AddTransaction(ctx context.Context, draft TransactionDraft) (core.Transaction, error) {
	tx := core.Transaction{
		Description: strings.TrimSpace(draft.Description),
		Amount:      draft.Amount,
		Type:        draft.Type,
		Category:    draft.Category,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.store.Load(ctx)
	tx.ID = snap.NextID
	tx.Date = core.DateOf(r.now())
	snap.NextID++
	snap.Transactions = append(snap.Transactions, tx)

	if err := r.store.Save(ctx, snap); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction added",
		"id", tx.ID, "type", tx.Type, "category", tx.Category, "amount_cents", tx.Amount.Cents)
	return tx, nil
}

// UpdateTransaction merges the patch over the record found by id. The
// id and creation date are immutable.
func (r *Repository) UpdateTransaction(ctx context.Context, id int64, patch TransactionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.store.Load(ctx)
	idx := -1
	for i, t := range snap.Transactions {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	tx := snap.Transactions[idx]
	if patch.Description != nil {
		tx.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	snap.Transactions[idx] = tx

	if err := r.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}
	return nil
}

// DeleteTransaction removes the transaction by id. Deleting an absent
// id is not an error; only a persistence failure is.
func (r *Repository) DeleteTransaction(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.store.Load(ctx)
	kept := snap.Transactions[:0]
	for _, t := range snap.Transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	snap.Transactions = kept

	if err := r.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

// Categories returns all categories in insertion order.
func (r *Repository) Categories(ctx context.Context) []core.Category {
	return r.store.Load(ctx).Categories
}

// CategoryByID finds a category by id.
func (r *Repository) CategoryByID(ctx context.Context, id int64) (core.Category, bool) {
	for _, c := range r.store.Load(ctx).Categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// CategoryExists reports whether a category with the given name exists,
// compared case-insensitively.
func (r *Repository) CategoryExists(ctx context.Context, name string) bool {
	for _, c := range r.store.Load(ctx).Categories {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// AddCategory assigns the next shared id, appends and persists. Names
// must be unique case-insensitively.
func (r *Repository) AddCategory(ctx context.Context, draft CategoryDraft) (core.Category, error) {
	cat := core.Category{
		Name:  strings.TrimSpace(draft.Name),
		Type:  draft.Type,
		Color: draft.Color,
	}
	if cat.Color == "" {
		cat.Color = core.DefaultColor
	}
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.store.Load(ctx)
	for _, c := range snap.Categories {
		if strings.EqualFold(c.Name, cat.Name) {
			return core.Category{}, ErrDuplicateName
		}
	}

	cat.ID = snap.NextID
	snap.NextID++
	snap.Categories = append(snap.Categories, cat)

	if err := r.store.Save(ctx, snap); err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}

	slog.InfoContext(ctx, "Category added", "id", cat.ID, "name", cat.Name, "type", cat.Type)
	return cat, nil
}

// UpdateCategory merges the patch over the category found by id.
// Renaming does not touch transactions referencing the old name; they
// keep pointing at a name that no longer exists.
func (r *Repository) UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.store.Load(ctx)
	idx := -1
	for i, c := range snap.Categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	cat := snap.Categories[idx]
	if patch.Name != nil {
		cat.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Type != nil {
		cat.Type = *patch.Type
	}
	if patch.Color != nil {
		cat.Color = *patch.Color
		if cat.Color == "" {
			cat.Color = core.DefaultColor
		}
	}
	if err := cat.Validate(); err != nil {
		return err
	}
	for _, c := range snap.Categories {
		if c.ID != id && strings.EqualFold(c.Name, cat.Name) {
			return ErrDuplicateName
		}
	}
	snap.Categories[idx] = cat

	if err := r.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("update category %d: %w", id, err)
	}
	return nil
}

// DeleteCategory removes the category by id, refusing while any
// transaction still references its name.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) DeleteCategoryResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.store.Load(ctx)
	idx := -1
	for i, c := range snap.Categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return DeleteCategoryResult{Success: false, Message: "Categoría no encontrada"}
	}

	name := snap.Categories[idx].Name
	for _, t := range snap.Transactions {
		if t.Category == name {
			return DeleteCategoryResult{
				Success: false,
				Message: "No se puede eliminar: hay transacciones usando esta categoría",
			}
		}
	}

	snap.Categories = append(snap.Categories[:idx], snap.Categories[idx+1:]...)
	if err := r.store.Save(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "Category delete failed to persist", "id", id, "error", err)
		return DeleteCategoryResult{Success: false, Message: "Error al eliminar"}
	}
	return DeleteCategoryResult{Success: true, Message: "Categoría eliminada"}
}

// SetBudget sets or replaces the budget ceiling of a category. A zero
// amount clears the budget.
func (r *Repository) SetBudget(ctx context.Context, id int64, amount core.Money) error {
	if amount.Cents < 0 {
		return core.ErrInvalidBudget
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.store.Load(ctx)
	idx := -1
	for i, c := range snap.Categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}
	snap.Categories[idx].Budget = amount

	if err := r.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("set budget for category %d: %w", id, err)
	}
	return nil
}
