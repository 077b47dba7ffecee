package services

import (
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/progress"

	"github.com/shopspring/decimal"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(username, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	ClearRefreshTokenHash(userID string) error
}

// DateRange bounds a query to [From, Before). Nil ends are open.
type DateRange struct {
	From   *models.Date
	Before *models.Date
}

// MonthRange returns the range covering the calendar month of d.
func MonthRange(d models.Date) DateRange {
	from := d.FirstOfMonth()
	before := from.AddMonths(1)
	return DateRange{From: &from, Before: &before}
}

// EntryFilter holds optional filter parameters for listing income and
// expense entries. All set filters must match.
type EntryFilter struct {
	// Search matches the income source or expense title, case-insensitively.
	Search   string
	Category *models.ExpenseCategory
	Year     *int
	Month    *int
	DateFrom *models.Date
	DateTo   *models.Date
	Limit    int
	// Ordering is a comma-separated list of columns, '-' for descending.
	// Empty lists newest first.
	Ordering string
}

// MonthlyTotal is the sum of entries in the current calendar month.
type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// CategoryTotal is the expense sum of one category.
type CategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Label    string                 `json:"label"`
	Total    decimal.Decimal        `json:"total"`
}

// IncomeInput carries the fields of an income entry. Nil fields are left
// unchanged on update.
type IncomeInput struct {
	Source *string
	Amount *decimal.Decimal
	Date   *models.Date
	Notes  *string
}

// IncomeServicer defines the contract for income-related business logic.
type IncomeServicer interface {
	CreateIncome(userID string, in IncomeInput) (*models.Income, error)
	GetUserIncomes(userID string, filter EntryFilter) ([]models.Income, error)
	GetIncomeByID(userID, incomeID string) (*models.Income, error)
	UpdateIncome(userID, incomeID string, in IncomeInput) (*models.Income, error)
	DeleteIncome(userID, incomeID string) error
	GetMonthlyTotal(userID string) (*MonthlyTotal, error)
	SumIncome(userID string, r DateRange) (decimal.Decimal, error)
}

// ExpenseInput carries the fields of an expense entry. Nil fields are left
// unchanged on update.
type ExpenseInput struct {
	Title    *string
	Category *models.ExpenseCategory
	Amount   *decimal.Decimal
	Date     *models.Date
	Notes    *string
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID string, in ExpenseInput) (*models.Expense, error)
	GetUserExpenses(userID string, filter EntryFilter) ([]models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, in ExpenseInput) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	GetMonthlyTotal(userID string) (*MonthlyTotal, error)
	GetTotalsByCategory(userID string) ([]CategoryTotal, error)
	SumExpenses(userID string, r DateRange) (decimal.Decimal, error)
}

// SavingsGoalView is a goal together with its derived progress.
type SavingsGoalView struct {
	models.SavingsGoal
	progress.Progress
}

// SavingsGoalInput carries the fields of a savings goal. Nil fields are left
// unchanged on update.
type SavingsGoalInput struct {
	Name          *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *models.Date
}

// SavingsGoalServicer defines the contract for savings goal business logic.
type SavingsGoalServicer interface {
	CreateGoal(userID string, in SavingsGoalInput) (*SavingsGoalView, error)
	GetUserGoals(userID string) ([]SavingsGoalView, error)
	GetGoalByID(userID, goalID string) (*SavingsGoalView, error)
	UpdateGoal(userID, goalID string, in SavingsGoalInput) (*SavingsGoalView, error)
	DeleteGoal(userID, goalID string) error
	AddFunds(userID, goalID string, amount decimal.Decimal) (*SavingsGoalView, error)
}

// MonthlyPoint is one month of the dashboard's income/expense series.
type MonthlyPoint struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// DashboardSummary aggregates a user's finances.
type DashboardSummary struct {
	TotalIncome        decimal.Decimal   `json:"total_income"`
	TotalExpenses      decimal.Decimal   `json:"total_expenses"`
	Balance            decimal.Decimal   `json:"balance"`
	MonthIncome        decimal.Decimal   `json:"month_income"`
	MonthExpenses      decimal.Decimal   `json:"month_expenses"`
	MonthlyData        []MonthlyPoint    `json:"monthly_data"`
	ExpensesByCategory []CategoryTotal   `json:"expenses_by_category"`
	SavingsGoals       []SavingsGoalView `json:"savings_goals"`
}

// DashboardServicer defines the contract for dashboard aggregation.
type DashboardServicer interface {
	GetSummary(userID string) (*DashboardSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
	GetUserLogs(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
