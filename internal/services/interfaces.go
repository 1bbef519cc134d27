package services

import (
	"context"

	"pennypilot/internal/budget"
	"pennypilot/internal/models"
	"pennypilot/internal/pagination"
)

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *string
	ToDate   *string
	Type     *models.TransactionType
	Category *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(amount float64, description, category, date string, txType models.TransactionType, merchant *string, excludeFromReports bool) (*models.Transaction, error)
	GetTransactionByID(id uint) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	UpdateTransaction(id uint, upd TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(id uint) error
	SumExpenses(category, month string) (float64, error)

	AddLineItem(transactionID uint, name string, quantity, unitPrice, totalPrice float64) (*models.LineItem, error)
	GetLineItems(transactionID uint) ([]models.LineItem, error)
	UpdateLineItem(id uint, name string, quantity, unitPrice, totalPrice float64) (*models.LineItem, error)
	DeleteLineItem(id uint) error
	LineItemsMismatch(transactionID uint) (float64, bool, error)
}

// TransactionUpdate carries the explicitly settable transaction fields; nil
// pointers leave the stored value untouched.
type TransactionUpdate struct {
	Amount             *float64
	Description        *string
	Category           *string
	Date               *string
	Type               *models.TransactionType
	Merchant           *string
	ExcludeFromReports *bool
}

// BudgetServicer defines the contract for budget-related business logic.
// The progress operations feed store figures into the pure calculation
// package and return its derived views.
type BudgetServicer interface {
	UpsertBudget(category string, amount float64, month string, year int) (*models.Budget, error)
	GetBudget(category, month string, year int) (*models.Budget, error)
	GetBudgetsForMonth(month string, year int) ([]models.Budget, error)
	DeleteBudget(id uint) error
	GetBudgetProgress(category, month string, year int) (*budget.Progress, error)
	GetAllBudgetProgress(month string, year int) ([]budget.Progress, error)
	GetMonthlySummary(month string, year int) (*budget.Summary, error)
	GetBudgetAlerts(month string, year int) ([]string, error)
}

// GoalServicer defines the contract for savings-goal business logic.
type GoalServicer interface {
	CreateGoal(name string, targetAmount, currentAmount float64, deadline string) (*models.Goal, error)
	GetGoalByID(id uint) (*models.Goal, error)
	GetGoals() ([]models.Goal, error)
	UpdateGoal(id uint, name *string, targetAmount, currentAmount *float64, deadline *string) (*models.Goal, error)
	AddContribution(id uint, amount float64) (*models.Goal, error)
	DeleteGoal(id uint) error
}

// RecurringServicer defines the contract for the recurring transaction
// scheduler: template CRUD plus due-date generation.
type RecurringServicer interface {
	CreateRecurring(amount float64, description, category string, txType models.TransactionType, merchant *string, frequency models.Frequency, intervalCount int, nextDate string, endDate *string) (*models.RecurringTransaction, error)
	GetRecurringByID(id uint) (*models.RecurringTransaction, error)
	GetRecurring(activeOnly bool) ([]models.RecurringTransaction, error)
	UpdateRecurring(id uint, upd RecurringUpdate) (*models.RecurringTransaction, error)
	SetRecurringActive(id uint, active bool) (*models.RecurringTransaction, error)
	DeleteRecurring(id uint) error
	GenerateDueTransactions(asOf string) (int, error)
}

// RecurringUpdate carries the explicitly settable template fields.
type RecurringUpdate struct {
	Amount        *float64
	Description   *string
	Category      *string
	Merchant      *string
	Frequency     *models.Frequency
	IntervalCount *int
	NextDate      *string
	EndDate       *string
}

// ReceiptAnalyzer turns a receipt image into structured transaction data.
// The production implementation calls a vision model; tests substitute a
// local double.
type ReceiptAnalyzer interface {
	AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptData, error)
}

// ReceiptServicer defines the contract for receipt-scan import.
type ReceiptServicer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*ReceiptData, error)
	ImportReceipt(data *ReceiptData) (*models.Transaction, []string, error)
}
