// Package budget implements the budget progress calculations: classifying
// spending against a monthly cap and aggregating per-category progress into
// a monthly total. All functions here are pure; the services layer feeds
// them figures read from the store.
package budget

import (
	"fmt"
	"math"
)

// Status classifies how far spending has progressed against a budget.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusOver     Status = "over"
)

// Thresholds (in percent) at which a budget moves between status tiers.
// AlertMessage uses the same three values; a test pins them together.
const (
	warningThreshold  = 80
	criticalThreshold = 90
	overThreshold     = 100
)

// Progress is the derived per-category view of spending against a budget.
// Percentage is capped at 100 for display; Remaining is never capped and
// goes negative once the budget is exceeded.
type Progress struct {
	Category   string  `json:"category"`
	Budget     float64 `json:"budget"`
	Spent      float64 `json:"spent"`
	Percentage float64 `json:"percentage"`
	Status     Status  `json:"status"`
	Color      string  `json:"color"`
	Remaining  float64 `json:"remaining"`
}

// Summary aggregates progress across all budgeted categories for one month.
// Unlike the per-category Percentage, the aggregate percentage is not capped.
type Summary struct {
	TotalBudget float64 `json:"total_budget"`
	TotalSpent  float64 `json:"total_spent"`
	Percentage  float64 `json:"percentage"`
	Remaining   float64 `json:"remaining"`
}

// ComputeProgress derives the progress view for one category. A zero budget
// means "no budget set": the percentage stays at zero and the status reports
// healthy no matter how much was spent, which keeps an unset budget from
// masquerading as an exceeded one.
func ComputeProgress(spent, budget float64, category string) Progress {
	var percentage float64
	if budget > 0 {
		percentage = spent / budget * 100
	}
	remaining := budget - spent

	var status Status
	switch {
	case percentage >= overThreshold:
		status = StatusOver
	case percentage >= criticalThreshold:
		status = StatusCritical
	case percentage >= warningThreshold:
		status = StatusWarning
	default:
		status = StatusHealthy
	}

	return Progress{
		Category:   category,
		Budget:     budget,
		Spent:      spent,
		Percentage: math.Min(percentage, 100), // display cap
		Status:     status,
		Color:      StatusColor(status),
		Remaining:  remaining,
	}
}

// StatusColor returns the display color for a status tier.
func StatusColor(status Status) string {
	switch status {
	case StatusOver:
		return "#991b1b"
	case StatusCritical:
		return "#ef4444"
	case StatusWarning:
		return "#f59e0b"
	default:
		return "#10b981"
	}
}

// AggregateMonth sums per-category progress entries into a monthly total.
func AggregateMonth(progress []Progress) Summary {
	var s Summary
	for _, p := range progress {
		s.TotalBudget += p.Budget
		s.TotalSpent += p.Spent
	}
	if s.TotalBudget > 0 {
		s.Percentage = s.TotalSpent / s.TotalBudget * 100
	}
	s.Remaining = s.TotalBudget - s.TotalSpent
	return s
}

// ShouldAlert reports whether the given percentage warrants a user alert.
func ShouldAlert(percentage float64) bool {
	return percentage >= warningThreshold
}

// AlertMessage maps a percentage to a human-readable alert for the category.
// The second return value is false below the warning threshold.
func AlertMessage(category string, percentage float64) (string, bool) {
	switch {
	case percentage >= overThreshold:
		return fmt.Sprintf("You've exceeded your %s budget!", category), true
	case percentage >= criticalThreshold:
		return fmt.Sprintf("Warning: %s budget is at %.0f%%", category, percentage), true
	case percentage >= warningThreshold:
		return fmt.Sprintf("Heads up: %s budget is at %.0f%%", category, percentage), true
	}
	return "", false
}
