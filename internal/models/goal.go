package models

// Goal represents a savings target. CurrentAmount grows through explicit
// contributions or full edits.
type Goal struct {
	Base
	Name          string  `gorm:"not null" json:"name"`
	TargetAmount  float64 `gorm:"not null" json:"target_amount"`
	CurrentAmount float64 `gorm:"default:0" json:"current_amount"`
	Deadline      string  `gorm:"not null" json:"deadline"` // YYYY-MM-DD
}
