package core

import (
	"errors"
	"strings"
)

// Transaction and category type labels. The tracker predates any i18n
// effort, so the persisted labels are Spanish and stay that way.
const (
	TypeIncome  = "ingreso"
	TypeExpense = "gasto"
	TypeMixed   = "mixto"
)

// DefaultColor is used for categories created without a color and for
// chart buckets whose category no longer exists.
const DefaultColor = "#6c757d"

type (
	// Transaction is a single dated money movement. The sign lives in
	// Type; Amount is always positive. Category is a weak reference by
	// name, not by id.
	Transaction struct {
		ID          int64  `json:"id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Date        Date   `json:"date"`
	}

	// Category groups transactions by name. Budget with zero cents
	// means "no budget set".
	Category struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Type   string `json:"type"`
		Color  string `json:"color"`
		Budget Money  `json:"budget"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid type")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 100 characters)")
	ErrInvalidBudget      = errors.New("invalid budget")
)

// ValidTransactionType reports whether t is an allowed transaction type.
func ValidTransactionType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// ValidCategoryType reports whether t is an allowed category type.
func ValidCategoryType(t string) bool {
	return t == TypeIncome || t == TypeExpense || t == TypeMixed
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !ValidTransactionType(t.Type) {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrNameTooLong
	}
	if !ValidCategoryType(c.Type) {
		return ErrInvalidType
	}
	if c.Budget.Cents < 0 {
		return ErrInvalidBudget
	}
	return nil
}

// HasBudget reports whether a budget ceiling is set for the category.
func (c Category) HasBudget() bool {
	return c.Budget.Cents > 0
}
