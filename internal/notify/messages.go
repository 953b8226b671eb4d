package notify

import (
	"encoding/json"
	"time"
)

// BudgetAlertMessage is published whenever a category sits in the
// warning or danger tier after a mutation. Amounts are cents.
type BudgetAlertMessage struct {
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	BudgetCents int64     `json:"budget_cents"`
	SpentCents  int64     `json:"spent_cents"`
	Percentage  float64   `json:"percentage"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

func NewBudgetAlertMessage(categoryID int64, name string, budgetCents, spentCents int64, percentage float64, status string) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		CategoryID:  categoryID,
		Name:        name,
		BudgetCents: budgetCents,
		SpentCents:  spentCents,
		Percentage:  percentage,
		Status:      status,
		At:          time.Now().UTC(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var m BudgetAlertMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
