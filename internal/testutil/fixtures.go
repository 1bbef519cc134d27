package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"pennypilot/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestExpense creates a non-excluded EXPENSE transaction for the
// category on the given date.
func CreateTestExpense(t *testing.T, db *gorm.DB, category string, amount float64, date string) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, category, models.TransactionTypeExpense, amount, date, false)
}

// CreateTestTransaction creates a transaction with full control over type
// and the exclude-from-reports flag.
func CreateTestTransaction(t *testing.T, db *gorm.DB, category string, txType models.TransactionType, amount float64, date string, excluded bool) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Amount:             amount,
		Description:        fmt.Sprintf("Test Transaction %d", nextID()),
		Category:           category,
		Date:               date,
		Type:               txType,
		ExcludeFromReports: excluded,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget for the category and month.
func CreateTestBudget(t *testing.T, db *gorm.DB, category, month string, year int, amount float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Category: category,
		Amount:   amount,
		Month:    month,
		Year:     year,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates a savings goal.
func CreateTestGoal(t *testing.T, db *gorm.DB, target, current float64) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      "2030-12-31",
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestRecurring creates an active monthly template due on nextDate.
func CreateTestRecurring(t *testing.T, db *gorm.DB, nextDate string) *models.RecurringTransaction {
	t.Helper()
	return CreateTestRecurringWithSchedule(t, db, models.FrequencyMonthly, 1, nextDate, nil)
}

// CreateTestRecurringWithSchedule creates an active template with full
// control over the schedule rule.
func CreateTestRecurringWithSchedule(t *testing.T, db *gorm.DB, freq models.Frequency, interval int, nextDate string, endDate *string) *models.RecurringTransaction {
	t.Helper()

	tpl := &models.RecurringTransaction{
		Amount:        50,
		Description:   fmt.Sprintf("Test Recurring %d", nextID()),
		Category:      "Bills",
		Type:          models.TransactionTypeExpense,
		Frequency:     freq,
		IntervalCount: interval,
		NextDate:      nextDate,
		EndDate:       endDate,
		IsActive:      true,
	}
	if err := db.Create(tpl).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return tpl
}
