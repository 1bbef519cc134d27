package models

// TransactionType represents the type of transaction. The sign of a
// transaction is carried by its type, never by the amount.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Transaction represents a single ledger entry. Dates are calendar dates in
// ISO YYYY-MM-DD form stored as text, so date comparisons are plain string
// comparisons.
type Transaction struct {
	Base
	Amount             float64         `gorm:"not null" json:"amount"`
	Description        string          `gorm:"not null" json:"description"`
	Category           string          `gorm:"not null;index" json:"category"`
	Date               string          `gorm:"not null;index" json:"date"`
	Type               TransactionType `gorm:"not null" json:"type"`
	ExcludeFromReports bool            `gorm:"default:false" json:"exclude_from_reports"`
	Merchant           *string         `json:"merchant,omitempty"`

	// Set when the transaction was generated from a recurring template.
	// Deleting the template does not cascade here; the pointer simply
	// becomes an orphaned reference.
	RecurringTransactionID *uint `json:"recurring_transaction_id,omitempty"`

	// Relationships
	LineItems []LineItem `gorm:"foreignKey:TransactionID" json:"line_items,omitempty"`
}
