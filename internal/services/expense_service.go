package services

import (
	"errors"
	"slices"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db, now: time.Now}
}

// CreateExpense records a new expense for the user. The category defaults
// to "other".
func (s *expenseService) CreateExpense(userID string, in ExpenseInput) (*models.Expense, error) {
	if in.Title == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "title", "title is required")
	}
	if in.Amount == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "amount", "amount is required")
	}
	if in.Date == nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "date", "date is required")
	}

	expense := &models.Expense{UserID: userID, Category: models.CategoryOther}
	applyExpenseInput(expense, in)
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetUserExpenses returns the user's expenses, newest first unless
// filter.Ordering says otherwise.
func (s *expenseService) GetUserExpenses(userID string, filter EntryFilter) ([]models.Expense, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	order, err := orderClause(filter.Ordering, expenseOrderFields)
	if err != nil {
		return nil, err
	}

	q := applyEntryFilter(s.db.Where("user_id = ?", userID), "title", filter)

	expenses := []models.Expense{}
	if err := q.Order(order).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// GetExpenseByID returns an expense if it belongs to the user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense applies the non-nil fields of in to an existing expense.
func (s *expenseService) UpdateExpense(userID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	applyExpenseInput(expense, in)
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	if err := s.db.Save(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// DeleteExpense soft-deletes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetMonthlyTotal sums the user's expenses for the current calendar month.
func (s *expenseService) GetMonthlyTotal(userID string) (*MonthlyTotal, error) {
	today := models.DateOf(s.now())
	total, err := s.SumExpenses(userID, MonthRange(today))
	if err != nil {
		return nil, err
	}
	return &MonthlyTotal{Month: monthLabel(today), Total: total}, nil
}

// GetTotalsByCategory sums the user's expenses per category, largest first.
// Categories without expenses are omitted.
func (s *expenseService) GetTotalsByCategory(userID string) ([]CategoryTotal, error) {
	var rows []struct {
		Category models.ExpenseCategory
		Total    decimal.Decimal
	}
	err := s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ?", userID).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make([]CategoryTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, CategoryTotal{
			Category: row.Category,
			Label:    row.Category.Label(),
			Total:    models.RoundMoney(row.Total),
		})
	}
	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		if a.Category < b.Category {
			return -1
		}
		if a.Category > b.Category {
			return 1
		}
		return 0
	})
	return totals, nil
}

// SumExpenses totals the user's expenses within r.
func (s *expenseService) SumExpenses(userID string, r DateRange) (decimal.Decimal, error) {
	return sumAmounts(s.db, &models.Expense{}, userID, r)
}

func validateExpense(expense *models.Expense) error {
	if err := validateText("title", expense.Title); err != nil {
		return err
	}
	if !expense.Category.Valid() {
		return apperrors.WithField(apperrors.ErrInvalidInput, "category", "\""+string(expense.Category)+"\" is not a valid choice.")
	}
	if err := validatePositiveAmount("amount", expense.Amount); err != nil {
		return err
	}
	if expense.Date.IsZero() {
		return apperrors.WithField(apperrors.ErrInvalidInput, "date", "date is required")
	}
	return nil
}

func applyExpenseInput(expense *models.Expense, in ExpenseInput) {
	if in.Title != nil {
		expense.Title = *in.Title
	}
	if in.Category != nil && *in.Category != "" {
		expense.Category = *in.Category
	}
	if in.Amount != nil {
		expense.Amount = *in.Amount
	}
	if in.Date != nil {
		expense.Date = *in.Date
	}
	if in.Notes != nil {
		expense.Notes = *in.Notes
	}
}
