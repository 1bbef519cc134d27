package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pennypilot/internal/errors"
	"pennypilot/internal/models"
)

// goalService handles savings-goal business logic.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// CreateGoal creates a savings goal.
func (s *goalService) CreateGoal(name string, targetAmount, currentAmount float64, deadline string) (*models.Goal, error) {
	if targetAmount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	goal := &models.Goal{
		Name:          name,
		TargetAmount:  targetAmount,
		CurrentAmount: currentAmount,
		Deadline:      deadline,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// GetGoalByID returns a goal by id.
func (s *goalService) GetGoalByID(id uint) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.First(&goal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// GetGoals returns all goals ordered by deadline.
func (s *goalService) GetGoals() ([]models.Goal, error) {
	var goals []models.Goal
	if err := s.db.Order("deadline").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// UpdateGoal applies the explicitly set fields.
func (s *goalService) UpdateGoal(id uint, name *string, targetAmount, currentAmount *float64, deadline *string) (*models.Goal, error) {
	goal, err := s.GetGoalByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	if targetAmount != nil {
		if *targetAmount <= 0 {
			return nil, apperrors.ErrInvalidAmount
		}
		updates["target_amount"] = *targetAmount
	}
	if currentAmount != nil {
		updates["current_amount"] = *currentAmount
	}
	if deadline != nil {
		updates["deadline"] = *deadline
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return goal, nil
}

// AddContribution increases a goal's progress by the given amount.
func (s *goalService) AddContribution(id uint, amount float64) (*models.Goal, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	goal, err := s.GetGoalByID(id)
	if err != nil {
		return nil, err
	}

	newAmount := goal.CurrentAmount + amount
	if err := s.db.Model(goal).Update("current_amount", newAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// DeleteGoal removes a goal.
func (s *goalService) DeleteGoal(id uint) error {
	res := s.db.Delete(&models.Goal{}, id)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrGoalNotFound
	}
	return nil
}
