package core

// Snapshot is the single persisted document: every transaction, every
// category, and the shared id counter. It is always read and written
// whole; there is no partial update of the persisted state.
type Snapshot struct {
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
	NextID       int64         `json:"nextId"`
}

// EmptySnapshot is the valid zero state a corrupt or missing store
// degrades to.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Transactions: []Transaction{},
		Categories:   []Category{},
		NextID:       1,
	}
}

// SeededSnapshot is the state created on first use: no transactions and
// the six starter categories. NextID starts past the seeded ids so the
// shared counter invariant (nextId greater than every present id) holds
// from the very first insert.
func SeededSnapshot() Snapshot {
	return Snapshot{
		Transactions: []Transaction{},
		Categories: []Category{
			{ID: 1, Name: "Comida", Type: TypeExpense, Color: "#FF6384"},
			{ID: 2, Name: "Transporte", Type: TypeExpense, Color: "#36A2EB"},
			{ID: 3, Name: "Entretenimiento", Type: TypeExpense, Color: "#FFCE56"},
			{ID: 4, Name: "Salario", Type: TypeIncome, Color: "#4BC0C0"},
			{ID: 5, Name: "Freelance", Type: TypeIncome, Color: "#9966FF"},
			{ID: 6, Name: "Otros", Type: TypeMixed, Color: "#FF9F40"},
		},
		NextID: 7,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the
// stored slices.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Transactions: make([]Transaction, len(s.Transactions)),
		Categories:   make([]Category, len(s.Categories)),
		NextID:       s.NextID,
	}
	copy(out.Transactions, s.Transactions)
	copy(out.Categories, s.Categories)
	return out
}
