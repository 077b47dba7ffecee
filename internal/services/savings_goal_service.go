package services

import (
	"errors"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/progress"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// savingsGoalService handles savings goal business logic.
type savingsGoalService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSavingsGoalService creates a new SavingsGoalServicer.
func NewSavingsGoalService(db *gorm.DB) SavingsGoalServicer {
	return &savingsGoalService{db: db, now: time.Now}
}

func (s *savingsGoalService) today() models.Date {
	return models.DateOf(s.now())
}

// view attaches derived progress to a goal.
func (s *savingsGoalService) view(goal *models.SavingsGoal) *SavingsGoalView {
	return &SavingsGoalView{
		SavingsGoal: *goal,
		Progress: progress.Compute(progress.Input{
			Current:  goal.CurrentAmount,
			Target:   goal.TargetAmount,
			Created:  models.DateOf(goal.CreatedAt.Local()),
			Deadline: goal.Deadline,
			Today:    s.today(),
		}),
	}
}

// CreateGoal creates a savings goal with nothing saved yet.
func (s *savingsGoalService) CreateGoal(userID string, in SavingsGoalInput) (*SavingsGoalView, error) {
	if in.Name == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "name", "name is required")
	}
	if in.TargetAmount == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "target_amount", "target_amount is required")
	}
	if in.Deadline == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "deadline", "deadline is required")
	}

	goal := &models.SavingsGoal{UserID: userID, CurrentAmount: decimal.Zero}
	applyGoalInput(goal, in)
	if err := s.validate(goal, true); err != nil {
		return nil, err
	}

	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.view(goal), nil
}

// GetUserGoals returns the user's goals, newest first.
func (s *savingsGoalService) GetUserGoals(userID string) ([]SavingsGoalView, error) {
	var goals []models.SavingsGoal
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views := make([]SavingsGoalView, 0, len(goals))
	for i := range goals {
		views = append(views, *s.view(&goals[i]))
	}
	return views, nil
}

func (s *savingsGoalService) findGoal(userID, goalID string) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSavingsGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// GetGoalByID returns a goal if it belongs to the user.
func (s *savingsGoalService) GetGoalByID(userID, goalID string) (*SavingsGoalView, error) {
	goal, err := s.findGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	return s.view(goal), nil
}

// UpdateGoal applies the non-nil fields of in to an existing goal. A
// deadline is only checked against today when it changes, so goals past
// their deadline stay editable.
func (s *savingsGoalService) UpdateGoal(userID, goalID string, in SavingsGoalInput) (*SavingsGoalView, error) {
	goal, err := s.findGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	deadlineChanged := in.Deadline != nil && !in.Deadline.Equal(goal.Deadline.Time)
	applyGoalInput(goal, in)
	if err := s.validate(goal, deadlineChanged); err != nil {
		return nil, err
	}

	if err := s.db.Save(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.view(goal), nil
}

// DeleteGoal soft-deletes a goal.
func (s *savingsGoalService) DeleteGoal(userID, goalID string) error {
	goal, err := s.findGoal(userID, goalID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddFunds increments the saved amount of a goal in a single UPDATE so
// concurrent deposits are not lost.
func (s *savingsGoalService) AddFunds(userID, goalID string, amount decimal.Decimal) (*SavingsGoalView, error) {
	if err := validatePositiveAmount("amount", amount); err != nil {
		return nil, err
	}

	goal, err := s.findGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	if !models.ValidMoneyPrecision(goal.CurrentAmount.Add(amount)) {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "amount", "Resulting amount is too large.")
	}

	result := s.db.Model(&models.SavingsGoal{}).
		Where("id = ? AND user_id = ?", goalID, userID).
		Update("current_amount", gorm.Expr("current_amount + ?", amount))
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrSavingsGoalNotFound
	}

	return s.GetGoalByID(userID, goalID)
}

func (s *savingsGoalService) validate(goal *models.SavingsGoal, checkDeadline bool) error {
	if err := validateText("name", goal.Name); err != nil {
		return err
	}
	if err := validatePositiveAmount("target_amount", goal.TargetAmount); err != nil {
		return err
	}
	if goal.CurrentAmount.IsNegative() {
		return apperrors.WithField(apperrors.ErrInvalidInput, "current_amount", "current_amount cannot be negative")
	}
	if !models.ValidMoneyPrecision(goal.CurrentAmount) {
		return apperrors.WithField(apperrors.ErrInvalidInput, "current_amount", "Ensure there are no more than 2 decimal places and 10 digits before the point.")
	}
	if goal.Deadline.IsZero() {
		return apperrors.WithField(apperrors.ErrInvalidInput, "deadline", "deadline is required")
	}
	if checkDeadline && goal.Deadline.Before(s.today().Time) {
		return apperrors.WithField(apperrors.ErrInvalidInput, "deadline", "Deadline cannot be in the past.")
	}
	return nil
}

func applyGoalInput(goal *models.SavingsGoal, in SavingsGoalInput) {
	if in.Name != nil {
		goal.Name = *in.Name
	}
	if in.TargetAmount != nil {
		goal.TargetAmount = *in.TargetAmount
	}
	if in.CurrentAmount != nil {
		goal.CurrentAmount = *in.CurrentAmount
	}
	if in.Deadline != nil {
		goal.Deadline = *in.Deadline
	}
}
