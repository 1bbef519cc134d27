package models

// Budget represents a monthly spending cap for one category. At most one
// budget exists per (category, month, year); writes against an existing key
// update the amount instead of erroring.
type Budget struct {
	Base
	Category string  `gorm:"not null;uniqueIndex:idx_budgets_category_month" json:"category"`
	Amount   float64 `gorm:"not null" json:"amount"`
	Month    string  `gorm:"not null;uniqueIndex:idx_budgets_category_month" json:"month"` // YYYY-MM
	Year     int     `gorm:"not null;uniqueIndex:idx_budgets_category_month" json:"year"`
}
