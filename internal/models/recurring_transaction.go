package models

// Frequency is the unit of recurrence for a recurring transaction template.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// RecurringTransaction is a template that periodically generates concrete
// transactions. NextDate points at the next occurrence to materialize; each
// successful generation advances it by exactly one period. When the advanced
// date passes EndDate the template deactivates itself.
type RecurringTransaction struct {
	Base
	Amount            float64         `gorm:"not null" json:"amount"`
	Description       string          `gorm:"not null" json:"description"`
	Category          string          `gorm:"not null" json:"category"`
	Type              TransactionType `gorm:"not null" json:"type"`
	Merchant          *string         `json:"merchant,omitempty"`
	Frequency         Frequency       `gorm:"not null" json:"frequency"`
	IntervalCount     int             `gorm:"not null;default:1" json:"interval_count"`
	NextDate          string          `gorm:"not null;index" json:"next_date"`           // YYYY-MM-DD
	EndDate           *string         `json:"end_date,omitempty"`                        // YYYY-MM-DD
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	LastGeneratedDate *string         `json:"last_generated_date,omitempty"` // YYYY-MM-DD
}
