package models

// LineItem represents an itemized row of a transaction, typically extracted
// from a scanned receipt. TotalPrice is expected to equal Quantity*UnitPrice
// but is not enforced; a mismatch is surfaced as a warning, never an error.
type LineItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	TransactionID uint    `gorm:"not null;index" json:"transaction_id"`
	Name          string  `gorm:"not null" json:"name"`
	Quantity      float64 `gorm:"not null" json:"quantity"`
	UnitPrice     float64 `gorm:"not null" json:"unit_price"`
	TotalPrice    float64 `gorm:"not null" json:"total_price"`
}
