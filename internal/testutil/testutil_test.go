package testutil_test

import (
	"testing"
	"time"

	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "incomes", "expenses", "savings_goals", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected empty second database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	day := models.NewDate(2024, time.November, 3)

	income := testutil.CreateTestIncome(t, db, user.ID, "1500.00", day)
	var storedIncome models.Income
	db.First(&storedIncome, "id = ?", income.ID)
	if !storedIncome.Amount.Equal(testutil.Amount(t, "1500")) {
		t.Errorf("expected amount 1500, got %s", storedIncome.Amount)
	}
	if !storedIncome.Date.Equal(day.Time) {
		t.Errorf("expected date %s, got %s", day, storedIncome.Date)
	}

	expense := testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "54.30", day)
	var storedExpense models.Expense
	db.First(&storedExpense, "id = ?", expense.ID)
	if !storedExpense.Amount.Equal(testutil.Amount(t, "54.30")) {
		t.Errorf("expected amount 54.30, got %s", storedExpense.Amount)
	}
	if storedExpense.CategoryLabel != "Food & Dining" {
		t.Errorf("expected category label to be filled, got %q", storedExpense.CategoryLabel)
	}

	goal := testutil.CreateTestSavingsGoal(t, db, user.ID, "1000", "250.50", day)
	if !goal.CurrentAmount.Equal(testutil.Amount(t, "250.5")) {
		t.Errorf("expected current amount 250.50, got %s", goal.CurrentAmount)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrIncomeNotFound, "custom message")
	testutil.AssertAppError(t, err, "INCOME_NOT_FOUND")
}

func TestAssertFieldError(t *testing.T) {
	err := errors.WithField(errors.ErrInvalidInput, "amount", "Amount must be greater than zero.")
	testutil.AssertFieldError(t, err, "amount")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
