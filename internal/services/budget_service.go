package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pennypilot/internal/budget"
	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/models"
)

// budgetService handles budget persistence and feeds stored figures into the
// pure progress calculations.
type budgetService struct {
	db           *gorm.DB
	transactions TransactionServicer
}

// NewBudgetService creates a new BudgetServicer. The transaction service
// supplies the monthly expense sums.
func NewBudgetService(db *gorm.DB, transactions TransactionServicer) BudgetServicer {
	return &budgetService{db: db, transactions: transactions}
}

// UpsertBudget writes the monthly cap for a category. Writing a duplicate
// (category, month, year) key updates the amount instead of erroring.
func (s *budgetService) UpsertBudget(category string, amount float64, month string, year int) (*models.Budget, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	b := &models.Budget{
		Category: category,
		Amount:   amount,
		Month:    month,
		Year:     year,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount":     amount,
			"updated_at": time.Now(),
		}),
	}).Create(b).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Re-read so callers get the stored row (the conflict path keeps the
	// original id and created_at).
	return s.GetBudget(category, month, year)
}

// GetBudget returns the budget for a (category, month, year) key.
func (s *budgetService) GetBudget(category, month string, year int) (*models.Budget, error) {
	var b models.Budget
	err := s.db.Where("category = ? AND month = ? AND year = ?", category, month, year).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &b, nil
}

// GetBudgetsForMonth returns all budgets for the month, by category.
func (s *budgetService) GetBudgetsForMonth(month string, year int) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.Where("month = ? AND year = ?", month, year).Order("category").Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget by id. Transactions are untouched.
func (s *budgetService) DeleteBudget(id uint) error {
	res := s.db.Delete(&models.Budget{}, id)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}

// GetBudgetProgress computes spending progress for one category and month.
func (s *budgetService) GetBudgetProgress(category, month string, year int) (*budget.Progress, error) {
	b, err := s.GetBudget(category, month, year)
	if err != nil {
		return nil, err
	}

	spent, err := s.transactions.SumExpenses(category, month)
	if err != nil {
		return nil, err
	}

	p := budget.ComputeProgress(spent, b.Amount, category)
	return &p, nil
}

// GetAllBudgetProgress computes per-category progress for every budget in
// the month.
func (s *budgetService) GetAllBudgetProgress(month string, year int) ([]budget.Progress, error) {
	budgets, err := s.GetBudgetsForMonth(month, year)
	if err != nil {
		return nil, err
	}

	progress := make([]budget.Progress, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.transactions.SumExpenses(b.Category, month)
		if err != nil {
			return nil, err
		}
		progress = append(progress, budget.ComputeProgress(spent, b.Amount, b.Category))
	}
	return progress, nil
}

// GetMonthlySummary aggregates all category progress for the month into a
// single total.
func (s *budgetService) GetMonthlySummary(month string, year int) (*budget.Summary, error) {
	progress, err := s.GetAllBudgetProgress(month, year)
	if err != nil {
		return nil, err
	}
	summary := budget.AggregateMonth(progress)
	return &summary, nil
}

// GetBudgetAlerts returns the alert messages for every category at or past
// the warning threshold this month. Alerts key off the raw (uncapped)
// spending ratio so the top tier still distinguishes itself.
func (s *budgetService) GetBudgetAlerts(month string, year int) ([]string, error) {
	progress, err := s.GetAllBudgetProgress(month, year)
	if err != nil {
		return nil, err
	}

	alerts := make([]string, 0)
	for _, p := range progress {
		raw := p.Percentage
		if p.Budget > 0 {
			raw = p.Spent / p.Budget * 100
		}
		if msg, ok := budget.AlertMessage(p.Category, raw); ok {
			alerts = append(alerts, msg)
		}
	}
	return alerts, nil
}
