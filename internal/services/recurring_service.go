package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/logger"
	"pennypilot/internal/models"
)

const dateLayout = "2006-01-02"

// NextOccurrence advances a calendar date by one period of the given
// frequency. Month and year steps use Go's AddDate normalization, so
// Jan 31 + 1 month lands on Mar 2/3 across a non-leap February; that
// calendar behavior is relied on by the scheduler and its tests.
func NextOccurrence(date string, frequency models.Frequency, intervalCount int) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", apperrors.ErrInvalidDate
	}

	switch frequency {
	case models.FrequencyDaily:
		t = t.AddDate(0, 0, intervalCount)
	case models.FrequencyWeekly:
		t = t.AddDate(0, 0, 7*intervalCount)
	case models.FrequencyMonthly:
		t = t.AddDate(0, intervalCount, 0)
	case models.FrequencyYearly:
		t = t.AddDate(intervalCount, 0, 0)
	default:
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown frequency")
	}
	return t.Format(dateLayout), nil
}

// IsDue reports whether an active template's next occurrence has arrived.
// ISO dates compare lexically, so this is a plain string comparison.
func IsDue(tpl *models.RecurringTransaction, asOf string) bool {
	return tpl.IsActive && tpl.NextDate <= asOf
}

// PreviewOccurrences returns the next count occurrence dates starting at
// startDate (inclusive). Used for UI preview only; nothing is persisted.
func PreviewOccurrences(startDate string, frequency models.Frequency, intervalCount, count int) ([]string, error) {
	dates := make([]string, 0, count)
	current := startDate
	for i := 0; i < count; i++ {
		dates = append(dates, current)
		next, err := NextOccurrence(current, frequency, intervalCount)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return dates, nil
}

// DescribeFrequency renders a schedule label, singular iff the interval is 1.
func DescribeFrequency(frequency models.Frequency, intervalCount int) string {
	var singular, unit string
	switch frequency {
	case models.FrequencyDaily:
		singular, unit = "Daily", "days"
	case models.FrequencyWeekly:
		singular, unit = "Weekly", "weeks"
	case models.FrequencyMonthly:
		singular, unit = "Monthly", "months"
	case models.FrequencyYearly:
		singular, unit = "Yearly", "years"
	default:
		return string(frequency)
	}
	if intervalCount == 1 {
		return singular
	}
	return fmt.Sprintf("Every %d %s", intervalCount, unit)
}

// recurringService owns recurring transaction templates and their
// generation state machine.
type recurringService struct {
	db *gorm.DB

	// Serializes generation sweeps so overlapping invocations (startup
	// sweep racing the midnight sweep) cannot double-generate a
	// transaction for the same due template.
	generating sync.Mutex
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

// CreateRecurring creates an active template. The end date, when given,
// must be strictly after the first occurrence.
func (s *recurringService) CreateRecurring(
	amount float64,
	description, category string,
	txType models.TransactionType,
	merchant *string,
	frequency models.Frequency,
	intervalCount int,
	nextDate string,
	endDate *string,
) (*models.RecurringTransaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if intervalCount < 1 {
		return nil, apperrors.ErrInvalidInterval
	}
	if _, err := time.Parse(dateLayout, nextDate); err != nil {
		return nil, apperrors.ErrInvalidDate
	}
	if endDate != nil {
		if _, err := time.Parse(dateLayout, *endDate); err != nil {
			return nil, apperrors.ErrInvalidDate
		}
		if *endDate <= nextDate {
			return nil, apperrors.ErrInvalidEndDate
		}
	}

	tpl := &models.RecurringTransaction{
		Amount:        amount,
		Description:   description,
		Category:      category,
		Type:          txType,
		Merchant:      merchant,
		Frequency:     frequency,
		IntervalCount: intervalCount,
		NextDate:      nextDate,
		EndDate:       endDate,
		IsActive:      true,
	}
	if err := s.db.Create(tpl).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tpl, nil
}

// GetRecurringByID returns a template by id.
func (s *recurringService) GetRecurringByID(id uint) (*models.RecurringTransaction, error) {
	var tpl models.RecurringTransaction
	if err := s.db.First(&tpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tpl, nil
}

// GetRecurring lists templates, optionally only active ones.
func (s *recurringService) GetRecurring(activeOnly bool) ([]models.RecurringTransaction, error) {
	q := s.db.Order("next_date")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var tpls []models.RecurringTransaction
	if err := q.Find(&tpls).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tpls, nil
}

// UpdateRecurring applies the explicitly set fields of upd.
func (s *recurringService) UpdateRecurring(id uint, upd RecurringUpdate) (*models.RecurringTransaction, error) {
	tpl, err := s.GetRecurringByID(id)
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
	if upd.Merchant != nil {
		updates["merchant"] = *upd.Merchant
	}
	if upd.Frequency != nil {
		updates["frequency"] = *upd.Frequency
	}
	if upd.IntervalCount != nil {
		if *upd.IntervalCount < 1 {
			return nil, apperrors.ErrInvalidInterval
		}
		updates["interval_count"] = *upd.IntervalCount
	}

	nextDate := tpl.NextDate
	if upd.NextDate != nil {
		if _, err := time.Parse(dateLayout, *upd.NextDate); err != nil {
			return nil, apperrors.ErrInvalidDate
		}
		nextDate = *upd.NextDate
		updates["next_date"] = nextDate
	}
	if upd.EndDate != nil {
		if _, err := time.Parse(dateLayout, *upd.EndDate); err != nil {
			return nil, apperrors.ErrInvalidDate
		}
		if *upd.EndDate <= nextDate {
			return nil, apperrors.ErrInvalidEndDate
		}
		updates["end_date"] = *upd.EndDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(tpl).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return tpl, nil
}

// SetRecurringActive toggles a template on or off. Reactivating a template
// whose schedule already passed its end date is allowed; the next
// generation cycle will immediately deactivate it again after producing
// the pending occurrence.
func (s *recurringService) SetRecurringActive(id uint, active bool) (*models.RecurringTransaction, error) {
	tpl, err := s.GetRecurringByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(tpl).Update("is_active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tpl, nil
}

// DeleteRecurring removes a template. Transactions it generated keep their
// back-reference and are never cascaded.
func (s *recurringService) DeleteRecurring(id uint) error {
	res := s.db.Delete(&models.RecurringTransaction{}, id)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrRecurringNotFound
	}
	return nil
}

// GenerateDueTransactions materializes one transaction for every due
// template and advances each template by exactly one period. A template
// that fell several periods behind catches up one period per call; invoke
// again until it reports zero. Per-template failures are logged and
// skipped so a broken template never blocks the batch. Returns the number
// of transactions generated.
func (s *recurringService) GenerateDueTransactions(asOf string) (int, error) {
	s.generating.Lock()
	defer s.generating.Unlock()

	if _, err := time.Parse(dateLayout, asOf); err != nil {
		return 0, apperrors.ErrInvalidDate
	}

	var due []models.RecurringTransaction
	err := s.db.Where("is_active = ? AND next_date <= ?", true, asOf).
		Order("next_date").Find(&due).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Named("recurring")
	generated := 0
	for i := range due {
		if err := s.generateFromTemplate(&due[i]); err != nil {
			log.Errorw("generation failed", "template_id", due[i].ID, "error", err)
			continue
		}
		generated++
		log.Infow("generated transaction", "template_id", due[i].ID, "date", due[i].NextDate)
	}
	return generated, nil
}

// generateFromTemplate creates the concrete transaction dated at the
// template's current next occurrence and advances the template's schedule
// pointer, all in one store transaction.
func (s *recurringService) generateFromTemplate(tpl *models.RecurringTransaction) error {
	newNextDate, err := NextOccurrence(tpl.NextDate, tpl.Frequency, tpl.IntervalCount)
	if err != nil {
		return err
	}

	// Deactivate once the advanced pointer passes the end date.
	isActive := tpl.IsActive
	if tpl.EndDate != nil && newNextDate > *tpl.EndDate {
		isActive = false
	}

	return s.db.Transaction(func(dtx *gorm.DB) error {
		tx := &models.Transaction{
			Amount:      tpl.Amount,
			Description: tpl.Description,
			Category:    tpl.Category,
			// Dated at the occurrence being materialized, not at the
			// sweep time, so late sweeps stay historically accurate.
			Date:                   tpl.NextDate,
			Type:                   tpl.Type,
			Merchant:               tpl.Merchant,
			ExcludeFromReports:     false,
			RecurringTransactionID: &tpl.ID,
		}
		if err := dtx.Create(tx).Error; err != nil {
			return err
		}

		return dtx.Model(&models.RecurringTransaction{}).
			Where("id = ?", tpl.ID).
			Updates(map[string]interface{}{
				"next_date":           newNextDate,
				"last_generated_date": tpl.NextDate,
				"is_active":           isActive,
			}).Error
	})
}
