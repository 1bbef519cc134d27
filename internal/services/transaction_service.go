package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/models"
	"pennypilot/internal/pagination"
)

// lineItemTolerance is the largest amount (in currency units) by which line
// item totals may drift from the transaction amount before the mismatch is
// surfaced as a warning.
const lineItemTolerance = 0.01

// transactionService handles transaction and line item business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction creates a new ledger entry.
func (s *transactionService) CreateTransaction(
	amount float64,
	description, category, date string,
	txType models.TransactionType,
	merchant *string,
	excludeFromReports bool,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.ErrInvalidDate
	}

	tx := &models.Transaction{
		Amount:             amount,
		Description:        description,
		Category:           category,
		Date:               date,
		Type:               txType,
		Merchant:           merchant,
		ExcludeFromReports: excludeFromReports,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// GetTransactionByID returns a transaction with its line items.
func (s *transactionService) GetTransactionByID(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.Preload("LineItems").First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tx, nil
}

// GetTransactions returns a paginated list of transactions, newest first,
// with optional date range, type, and category filters.
func (s *transactionService) GetTransactions(
	page pagination.PageRequest,
	filter TransactionFilter,
) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{})
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txs []models.Transaction
	if err := base.Order("date DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(txs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateTransaction applies the explicitly set fields of upd.
func (s *transactionService) UpdateTransaction(id uint, upd TransactionUpdate) (*models.Transaction, error) {
	tx, err := s.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.Amount != nil {
		if *upd.Amount <= 0 {
			return nil, apperrors.ErrInvalidAmount
		}
		updates["amount"] = *upd.Amount
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.Category != nil {
		updates["category"] = *upd.Category
	}
	if upd.Date != nil {
		if _, err := time.Parse("2006-01-02", *upd.Date); err != nil {
			return nil, apperrors.ErrInvalidDate
		}
		updates["date"] = *upd.Date
	}
	if upd.Type != nil {
		updates["type"] = *upd.Type
	}
	if upd.Merchant != nil {
		updates["merchant"] = *upd.Merchant
	}
	if upd.ExcludeFromReports != nil {
		updates["exclude_from_reports"] = *upd.ExcludeFromReports
	}

	if len(updates) > 0 {
		if err := s.db.Model(tx).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return tx, nil
}

// DeleteTransaction removes a transaction and its line items. Line items are
// owned exclusively by their transaction; the delete cascades to them in the
// same store transaction.
func (s *transactionService) DeleteTransaction(id uint) error {
	tx, err := s.GetTransactionByID(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(dtx *gorm.DB) error {
		if err := dtx.Where("transaction_id = ?", id).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		return dtx.Delete(tx).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SumExpenses returns the sum of EXPENSE transaction amounts for the
// category within the calendar month (YYYY-MM), skipping transactions
// excluded from reports. INCOME entries never contribute, even when they
// carry a budgeted category.
func (s *transactionService) SumExpenses(category, month string) (float64, error) {
	var spent float64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("category = ? AND type = ? AND exclude_from_reports = ? AND date LIKE ?",
			category, models.TransactionTypeExpense, false, month+"-%").
		Scan(&spent).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

// AddLineItem attaches an itemized row to a transaction.
func (s *transactionService) AddLineItem(transactionID uint, name string, quantity, unitPrice, totalPrice float64) (*models.LineItem, error) {
	if _, err := s.GetTransactionByID(transactionID); err != nil {
		return nil, err
	}

	item := &models.LineItem{
		TransactionID: transactionID,
		Name:          name,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    totalPrice,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// GetLineItems returns the line items of a transaction in insertion order.
func (s *transactionService) GetLineItems(transactionID uint) ([]models.LineItem, error) {
	var items []models.LineItem
	if err := s.db.Where("transaction_id = ?", transactionID).Order("id").Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// UpdateLineItem rewrites a line item in place.
func (s *transactionService) UpdateLineItem(id uint, name string, quantity, unitPrice, totalPrice float64) (*models.LineItem, error) {
	var item models.LineItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLineItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"name":        name,
		"quantity":    quantity,
		"unit_price":  unitPrice,
		"total_price": totalPrice,
	}
	if err := s.db.Model(&item).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// DeleteLineItem removes a single line item.
func (s *transactionService) DeleteLineItem(id uint) error {
	res := s.db.Delete(&models.LineItem{}, id)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrLineItemNotFound
	}
	return nil
}

// LineItemsMismatch compares the sum of a transaction's line item totals
// against the transaction amount. It returns the signed difference and
// whether it exceeds the tolerance. The mismatch is advisory; nothing here
// blocks a save.
func (s *transactionService) LineItemsMismatch(transactionID uint) (float64, bool, error) {
	tx, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return 0, false, err
	}
	if len(tx.LineItems) == 0 {
		return 0, false, nil
	}

	var sum float64
	for _, item := range tx.LineItems {
		sum += item.TotalPrice
	}
	diff := sum - tx.Amount
	return diff, math.Abs(diff) > lineItemTolerance, nil
}
