package services

import (
	"errors"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// incomeService handles income-related business logic.
type incomeService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB) IncomeServicer {
	return &incomeService{db: db, now: time.Now}
}

func (s *incomeService) today() models.Date {
	return models.DateOf(s.now())
}

// CreateIncome records a new income entry for the user.
func (s *incomeService) CreateIncome(userID string, in IncomeInput) (*models.Income, error) {
	if in.Source == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "source", "source is required")
	}
	if in.Amount == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "amount", "amount is required")
	}
	if in.Date == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "date", "date is required")
	}

	income := &models.Income{UserID: userID}
	applyIncomeInput(income, in)
	if err := s.validate(income); err != nil {
		return nil, err
	}

	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

// GetUserIncomes returns the user's income entries, newest first unless
// filter.Ordering says otherwise.
func (s *incomeService) GetUserIncomes(userID string, filter EntryFilter) ([]models.Income, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	order, err := orderClause(filter.Ordering, incomeOrderFields)
	if err != nil {
		return nil, err
	}

	q := applyEntryFilter(s.db.Where("user_id = ?", userID), "source", filter)

	incomes := []models.Income{}
	if err := q.Order(order).Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return incomes, nil
}

// GetIncomeByID returns an income entry if it belongs to the user.
func (s *incomeService) GetIncomeByID(userID, incomeID string) (*models.Income, error) {
	var income models.Income
	if err := s.db.Where("id = ? AND user_id = ?", incomeID, userID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}

// UpdateIncome applies the non-nil fields of in to an existing entry.
func (s *incomeService) UpdateIncome(userID, incomeID string, in IncomeInput) (*models.Income, error) {
	income, err := s.GetIncomeByID(userID, incomeID)
	if err != nil {
		return nil, err
	}

	applyIncomeInput(income, in)
	if err := s.validate(income); err != nil {
		return nil, err
	}

	if err := s.db.Save(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

// DeleteIncome soft-deletes an income entry.
func (s *incomeService) DeleteIncome(userID, incomeID string) error {
	income, err := s.GetIncomeByID(userID, incomeID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(income).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetMonthlyTotal sums the user's income for the current calendar month.
func (s *incomeService) GetMonthlyTotal(userID string) (*MonthlyTotal, error) {
	today := s.today()
	total, err := s.SumIncome(userID, MonthRange(today))
	if err != nil {
		return nil, err
	}
	return &MonthlyTotal{Month: monthLabel(today), Total: total}, nil
}

// SumIncome totals the user's income within r.
func (s *incomeService) SumIncome(userID string, r DateRange) (decimal.Decimal, error) {
	return sumAmounts(s.db, &models.Income{}, userID, r)
}

func (s *incomeService) validate(income *models.Income) error {
	if err := validateText("source", income.Source); err != nil {
		return err
	}
	if err := validatePositiveAmount("amount", income.Amount); err != nil {
		return err
	}
	if income.Date.IsZero() {
		return apperrors.WithField(apperrors.ErrInvalidInput, "date", "date is required")
	}
	if income.Date.After(s.today().Time) {
		return apperrors.WithField(apperrors.ErrInvalidInput, "date", "Date cannot be in the future.")
	}
	return nil
}

func applyIncomeInput(income *models.Income, in IncomeInput) {
	if in.Source != nil {
		income.Source = *in.Source
	}
	if in.Amount != nil {
		income.Amount = *in.Amount
	}
	if in.Date != nil {
		income.Date = *in.Date
	}
	if in.Notes != nil {
		income.Notes = *in.Notes
	}
}
