package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/testutil"

	"gorm.io/gorm"
)

func newTestExpenseService(db *gorm.DB) *expenseService {
	svc := NewExpenseService(db).(*expenseService)
	svc.now = fixedClock
	return svc
}

func categoryPtr(c models.ExpenseCategory) *models.ExpenseCategory { return &c }

func TestCreateExpense(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		expense, err := svc.CreateExpense(user.ID, ExpenseInput{
			Title:    strPtr("Groceries"),
			Category: categoryPtr(models.CategoryFood),
			Amount:   decPtr(t, "54.30"),
			Date:     datePtr(models.NewDate(2024, time.November, 3)),
		})
		testutil.AssertNoError(t, err)

		if expense.Category != models.CategoryFood {
			t.Errorf("expected category food, got %s", expense.Category)
		}
		if expense.CategoryLabel != models.CategoryFood.Label() {
			t.Errorf("expected label %q, got %q", models.CategoryFood.Label(), expense.CategoryLabel)
		}
	})

	t.Run("category_defaults_to_other", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		expense, err := svc.CreateExpense(user.ID, ExpenseInput{
			Title:  strPtr("Misc"),
			Amount: decPtr(t, "5"),
			Date:   datePtr(models.NewDate(2024, time.November, 3)),
		})
		testutil.AssertNoError(t, err)
		if expense.Category != models.CategoryOther {
			t.Errorf("expected category other, got %s", expense.Category)
		}
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(user.ID, ExpenseInput{
			Title:    strPtr("Yacht"),
			Category: categoryPtr("luxury"),
			Amount:   decPtr(t, "5"),
			Date:     datePtr(models.NewDate(2024, time.November, 3)),
		})
		testutil.AssertFieldError(t, err, "category")
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(user.ID, ExpenseInput{
			Title:  strPtr("Coffee"),
			Amount: decPtr(t, "0"),
			Date:   datePtr(models.NewDate(2024, time.November, 3)),
		})
		testutil.AssertFieldError(t, err, "amount")
	})

	t.Run("missing_title", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(user.ID, ExpenseInput{
			Amount: decPtr(t, "1"),
			Date:   datePtr(models.NewDate(2024, time.November, 3)),
		})
		testutil.AssertFieldError(t, err, "title")
	})
}

func TestGetUserExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestExpenseService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	rent := testutil.CreateTestExpense(t, db, user.ID, models.CategoryRent, "1200", models.NewDate(2024, time.November, 1))
	db.Model(rent).Update("title", "Apartment Rent")
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "40", models.NewDate(2024, time.November, 2))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "60", models.NewDate(2024, time.October, 2))
	testutil.CreateTestExpense(t, db, other.ID, models.CategoryFood, "10", models.NewDate(2024, time.November, 2))

	t.Run("all", func(t *testing.T) {
		expenses, err := svc.GetUserExpenses(user.ID, EntryFilter{})
		testutil.AssertNoError(t, err)
		if len(expenses) != 3 {
			t.Fatalf("expected 3 expenses, got %d", len(expenses))
		}
		if expenses[0].Date.Day() != 2 || expenses[0].Date.Month() != time.November {
			t.Errorf("expected newest expense first, got %s", expenses[0].Date)
		}
		for _, e := range expenses {
			if e.CategoryLabel == "" {
				t.Errorf("expected category label on %s", e.ID)
			}
		}
	})

	t.Run("category", func(t *testing.T) {
		expenses, err := svc.GetUserExpenses(user.ID, EntryFilter{Category: categoryPtr(models.CategoryFood)})
		testutil.AssertNoError(t, err)
		if len(expenses) != 2 {
			t.Errorf("expected 2 food expenses, got %d", len(expenses))
		}
	})

	t.Run("category_and_month", func(t *testing.T) {
		expenses, err := svc.GetUserExpenses(user.ID, EntryFilter{
			Category: categoryPtr(models.CategoryFood),
			Year:     intPtr(2024),
			Month:    intPtr(10),
		})
		testutil.AssertNoError(t, err)
		if len(expenses) != 1 {
			t.Errorf("expected 1 food expense in October, got %d", len(expenses))
		}
	})

	t.Run("search_title", func(t *testing.T) {
		expenses, err := svc.GetUserExpenses(user.ID, EntryFilter{Search: "RENT"})
		testutil.AssertNoError(t, err)
		if len(expenses) != 1 || expenses[0].ID != rent.ID {
			t.Errorf("expected only the rent expense, got %d", len(expenses))
		}
	})

	t.Run("ordering_by_category", func(t *testing.T) {
		expenses, err := svc.GetUserExpenses(user.ID, EntryFilter{Ordering: "category,-amount"})
		testutil.AssertNoError(t, err)
		if len(expenses) != 3 {
			t.Fatalf("expected 3 expenses, got %d", len(expenses))
		}
		for i, want := range []string{"60", "40", "1200"} {
			if !expenses[i].Amount.Equal(testutil.Amount(t, want)) {
				t.Errorf("position %d: expected %s, got %s", i, want, expenses[i].Amount)
			}
		}
	})

	t.Run("invalid_ordering", func(t *testing.T) {
		_, err := svc.GetUserExpenses(user.ID, EntryFilter{Ordering: "title"})
		testutil.AssertFieldError(t, err, "ordering")
	})

	t.Run("invalid_category", func(t *testing.T) {
		_, err := svc.GetUserExpenses(user.ID, EntryFilter{Category: categoryPtr("luxury")})
		testutil.AssertFieldError(t, err, "category")
	})
}

func TestUpdateExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestExpenseService(db)
	user := testutil.CreateTestUser(t, db)
	expense := testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "20", models.NewDate(2024, time.November, 1))

	updated, err := svc.UpdateExpense(user.ID, expense.ID, ExpenseInput{Category: categoryPtr(models.CategoryTravel)})
	testutil.AssertNoError(t, err)

	if updated.Category != models.CategoryTravel {
		t.Errorf("expected category travel, got %s", updated.Category)
	}
	if updated.CategoryLabel != models.CategoryTravel.Label() {
		t.Errorf("expected label to follow category, got %q", updated.CategoryLabel)
	}
	if !updated.Amount.Equal(testutil.Amount(t, "20")) {
		t.Errorf("expected amount unchanged, got %s", updated.Amount)
	}

	intruder := testutil.CreateTestUser(t, db)
	_, err = svc.UpdateExpense(intruder.ID, expense.ID, ExpenseInput{Title: strPtr("stolen")})
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}

func TestDeleteExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestExpenseService(db)
	user := testutil.CreateTestUser(t, db)
	expense := testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "20", models.NewDate(2024, time.November, 1))

	testutil.AssertNoError(t, svc.DeleteExpense(user.ID, expense.ID))

	err := svc.DeleteExpense(user.ID, expense.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")

	total, err := svc.SumExpenses(user.ID, DateRange{})
	testutil.AssertNoError(t, err)
	if !total.IsZero() {
		t.Errorf("expected deleted expense excluded from sums, got %s", total)
	}
}

func TestGetTotalsByCategory(t *testing.T) {
	t.Run("groceries_example", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(user.ID, ExpenseInput{
			Title:    strPtr("Groceries"),
			Category: categoryPtr(models.CategoryFood),
			Amount:   decPtr(t, "54.30"),
			Date:     datePtr(models.NewDate(2024, time.November, 3)),
		})
		testutil.AssertNoError(t, err)

		totals, err := svc.GetTotalsByCategory(user.ID)
		testutil.AssertNoError(t, err)

		if len(totals) != 1 {
			t.Fatalf("expected 1 category, got %d", len(totals))
		}
		if totals[0].Category != models.CategoryFood {
			t.Errorf("expected category food, got %s", totals[0].Category)
		}
		if !totals[0].Total.Equal(testutil.Amount(t, "54.30")) {
			t.Errorf("expected total 54.30, got %s", totals[0].Total)
		}
	})

	t.Run("ordered_and_scoped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		day := models.NewDate(2024, time.November, 3)

		testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "30.10", day)
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "20.20", day)
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryRent, "900", day)
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryHealth, "50.30", day)
		testutil.CreateTestExpense(t, db, other.ID, models.CategoryTravel, "5000", day)

		totals, err := svc.GetTotalsByCategory(user.ID)
		testutil.AssertNoError(t, err)

		want := []struct {
			category models.ExpenseCategory
			total    string
		}{
			{models.CategoryRent, "900"},
			{models.CategoryFood, "50.30"},
			{models.CategoryHealth, "50.30"},
		}
		if len(totals) != len(want) {
			t.Fatalf("expected %d categories, got %d", len(want), len(totals))
		}
		for i, w := range want {
			if totals[i].Category != w.category {
				t.Errorf("position %d: expected %s, got %s", i, w.category, totals[i].Category)
			}
			if !totals[i].Total.Equal(testutil.Amount(t, w.total)) {
				t.Errorf("position %d: expected total %s, got %s", i, w.total, totals[i].Total)
			}
			if totals[i].Label == "" {
				t.Errorf("position %d: expected label", i)
			}
		}
	})

	t.Run("no_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		totals, err := svc.GetTotalsByCategory(user.ID)
		testutil.AssertNoError(t, err)
		if totals == nil || len(totals) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", totals)
		}
	})
}

func TestExpenseMonthlyTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestExpenseService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "12.34", models.NewDate(2024, time.November, 30))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "1.66", models.NewDate(2024, time.November, 1))
	testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "100", models.NewDate(2024, time.December, 1))

	total, err := svc.GetMonthlyTotal(user.ID)
	testutil.AssertNoError(t, err)

	if total.Month != "November 2024" {
		t.Errorf("expected month November 2024, got %s", total.Month)
	}
	if !total.Total.Equal(testutil.Amount(t, "14")) {
		t.Errorf("expected total 14.00, got %s", total.Total)
	}
}
