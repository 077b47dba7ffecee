package services

import (
	"errors"
	"testing"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/testutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestDashboardService(db *gorm.DB) *dashboardService {
	goals := NewSavingsGoalService(db).(*savingsGoalService)
	goals.now = fixedClock
	svc := NewDashboardService(
		NewUserService(db),
		newTestIncomeService(db),
		newTestExpenseService(db),
		goals,
	).(*dashboardService)
	svc.now = fixedClock
	return svc
}

// backdateUser moves the user's join date so the series length is predictable.
func backdateUser(t *testing.T, db *gorm.DB, user *models.User, joined time.Time) {
	t.Helper()
	if err := db.Model(user).UpdateColumn("created_at", joined).Error; err != nil {
		t.Fatalf("failed to backdate user: %v", err)
	}
}

func TestGetSummary(t *testing.T) {
	t.Run("totals_and_series", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestDashboardService(db)
		user := testutil.CreateTestUser(t, db)
		backdateUser(t, db, user, time.Date(2023, time.January, 10, 12, 0, 0, 0, time.Local))

		testutil.CreateTestIncome(t, db, user.ID, "3000", models.NewDate(2024, time.November, 1))
		testutil.CreateTestIncome(t, db, user.ID, "3000", models.NewDate(2024, time.October, 1))
		testutil.CreateTestIncome(t, db, user.ID, "500", models.NewDate(2024, time.January, 1))
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryRent, "1200", models.NewDate(2024, time.November, 2))
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "54.30", models.NewDate(2024, time.November, 3))
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryFood, "45.70", models.NewDate(2024, time.June, 3))
		testutil.CreateTestSavingsGoal(t, db, user.ID, "1000", "250", models.NewDate(2025, time.June, 1))

		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestIncome(t, db, other.ID, "99999", models.NewDate(2024, time.November, 1))

		summary, err := svc.GetSummary(user.ID)
		testutil.AssertNoError(t, err)

		checks := []struct {
			name string
			got  decimal.Decimal
			want string
		}{
			{"total_income", summary.TotalIncome, "6500"},
			{"total_expenses", summary.TotalExpenses, "1300"},
			{"balance", summary.Balance, "5200"},
			{"month_income", summary.MonthIncome, "3000"},
			{"month_expenses", summary.MonthExpenses, "1254.30"},
		}
		for _, c := range checks {
			if !c.got.Equal(testutil.Amount(t, c.want)) {
				t.Errorf("%s: expected %s, got %s", c.name, c.want, c.got)
			}
		}

		wantMonths := []string{"Jun 2024", "Jul 2024", "Aug 2024", "Sep 2024", "Oct 2024", "Nov 2024"}
		if len(summary.MonthlyData) != len(wantMonths) {
			t.Fatalf("expected %d months, got %d", len(wantMonths), len(summary.MonthlyData))
		}
		for i, m := range wantMonths {
			if summary.MonthlyData[i].Month != m {
				t.Errorf("month %d: expected %s, got %s", i, m, summary.MonthlyData[i].Month)
			}
		}
		if !summary.MonthlyData[0].Expenses.Equal(testutil.Amount(t, "45.70")) {
			t.Errorf("expected June expenses 45.70, got %s", summary.MonthlyData[0].Expenses)
		}
		if !summary.MonthlyData[4].Income.Equal(testutil.Amount(t, "3000")) {
			t.Errorf("expected October income 3000, got %s", summary.MonthlyData[4].Income)
		}
		if !summary.MonthlyData[1].Income.IsZero() || !summary.MonthlyData[1].Expenses.IsZero() {
			t.Error("expected empty July to be zero")
		}

		if len(summary.ExpensesByCategory) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(summary.ExpensesByCategory))
		}
		if summary.ExpensesByCategory[0].Category != models.CategoryRent {
			t.Errorf("expected rent first, got %s", summary.ExpensesByCategory[0].Category)
		}
		if !summary.ExpensesByCategory[1].Total.Equal(testutil.Amount(t, "100")) {
			t.Errorf("expected food total 100, got %s", summary.ExpensesByCategory[1].Total)
		}

		if len(summary.SavingsGoals) != 1 {
			t.Fatalf("expected 1 goal, got %d", len(summary.SavingsGoals))
		}
		if !summary.SavingsGoals[0].Percentage.Equal(decimal.NewFromInt(25)) {
			t.Errorf("expected goal at 25%%, got %s", summary.SavingsGoals[0].Percentage)
		}
	})

	t.Run("negative_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestDashboardService(db)
		user := testutil.CreateTestUser(t, db)
		backdateUser(t, db, user, time.Date(2024, time.November, 1, 12, 0, 0, 0, time.Local))

		testutil.CreateTestIncome(t, db, user.ID, "100", models.NewDate(2024, time.November, 1))
		testutil.CreateTestExpense(t, db, user.ID, models.CategoryShopping, "150.50", models.NewDate(2024, time.November, 2))

		summary, err := svc.GetSummary(user.ID)
		testutil.AssertNoError(t, err)
		if !summary.Balance.Equal(testutil.Amount(t, "-50.50")) {
			t.Errorf("expected balance -50.50, got %s", summary.Balance)
		}
	})

	t.Run("young_account_shorter_series", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestDashboardService(db)
		user := testutil.CreateTestUser(t, db)
		backdateUser(t, db, user, time.Date(2024, time.September, 20, 12, 0, 0, 0, time.Local))

		summary, err := svc.GetSummary(user.ID)
		testutil.AssertNoError(t, err)

		want := []string{"Sep 2024", "Oct 2024", "Nov 2024"}
		if len(summary.MonthlyData) != len(want) {
			t.Fatalf("expected %d months, got %d", len(want), len(summary.MonthlyData))
		}
		for i, m := range want {
			if summary.MonthlyData[i].Month != m {
				t.Errorf("month %d: expected %s, got %s", i, m, summary.MonthlyData[i].Month)
			}
		}
	})

	t.Run("empty_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestDashboardService(db)
		user := testutil.CreateTestUser(t, db)
		backdateUser(t, db, user, fixedNow)

		summary, err := svc.GetSummary(user.ID)
		testutil.AssertNoError(t, err)

		if !summary.Balance.IsZero() {
			t.Errorf("expected zero balance, got %s", summary.Balance)
		}
		if len(summary.MonthlyData) != 1 {
			t.Errorf("expected only the current month, got %d", len(summary.MonthlyData))
		}
		if summary.ExpensesByCategory == nil || summary.SavingsGoals == nil {
			t.Error("expected empty slices rather than nil")
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestDashboardService(db)

		_, err := svc.GetSummary("0190b2a0-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

// failingExpenseService wraps a real service and fails category totals.
type failingExpenseService struct {
	ExpenseServicer
}

func (failingExpenseService) GetTotalsByCategory(string) ([]CategoryTotal, error) {
	return nil, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("connection reset"))
}

func TestGetSummaryPropagatesErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)

	svc := NewDashboardService(
		NewUserService(db),
		NewIncomeService(db),
		failingExpenseService{NewExpenseService(db)},
		NewSavingsGoalService(db),
	)

	summary, err := svc.GetSummary(user.ID)
	testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	if summary != nil {
		t.Error("expected no partial summary on failure")
	}
}

func TestSeriesMonths(t *testing.T) {
	today := models.NewDate(2024, time.March, 10)

	tests := []struct {
		name   string
		joined models.Date
		first  string
		count  int
	}{
		{"old_account", models.NewDate(2020, time.May, 1), "2023-10-01", 6},
		{"crosses_year", models.NewDate(2023, time.December, 31), "2023-12-01", 4},
		{"joined_this_month", models.NewDate(2024, time.March, 9), "2024-03-01", 1},
		{"clock_skew", models.NewDate(2024, time.May, 1), "2024-03-01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months := seriesMonths(today, tt.joined)
			if len(months) != tt.count {
				t.Fatalf("expected %d months, got %d", tt.count, len(months))
			}
			if months[0].String() != tt.first {
				t.Errorf("expected first month %s, got %s", tt.first, months[0])
			}
			if last := months[len(months)-1]; last.String() != "2024-03-01" {
				t.Errorf("expected series to end at current month, got %s", last)
			}
		})
	}
}
