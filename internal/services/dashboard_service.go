package services

import (
	"time"

	"fintrack/internal/models"

	"golang.org/x/sync/errgroup"
)

// dashboardMonths is the length of the income/expense series.
const dashboardMonths = 6

// maxDashboardQueries bounds the reads a single summary runs at once.
const maxDashboardQueries = 4

// dashboardService composes the entity services into a single summary.
type dashboardService struct {
	userService    UserServicer
	incomeService  IncomeServicer
	expenseService ExpenseServicer
	goalService    SavingsGoalServicer
	now            func() time.Time
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(
	userService UserServicer,
	incomeService IncomeServicer,
	expenseService ExpenseServicer,
	goalService SavingsGoalServicer,
) DashboardServicer {
	return &dashboardService{
		userService:    userService,
		incomeService:  incomeService,
		expenseService: expenseService,
		goalService:    goalService,
		now:            time.Now,
	}
}

// GetSummary aggregates totals, the recent monthly series, category sums
// and goals for the user. The reads are independent and run concurrently;
// any failure fails the whole summary.
func (s *dashboardService) GetSummary(userID string) (*DashboardSummary, error) {
	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	today := models.DateOf(s.now())
	months := seriesMonths(today, models.DateOf(user.CreatedAt.Local()))

	summary := &DashboardSummary{MonthlyData: make([]MonthlyPoint, len(months))}

	var g errgroup.Group
	g.SetLimit(maxDashboardQueries)

	g.Go(func() (err error) {
		summary.TotalIncome, err = s.incomeService.SumIncome(userID, DateRange{})
		return err
	})
	g.Go(func() (err error) {
		summary.TotalExpenses, err = s.expenseService.SumExpenses(userID, DateRange{})
		return err
	})
	g.Go(func() (err error) {
		summary.MonthIncome, err = s.incomeService.SumIncome(userID, MonthRange(today))
		return err
	})
	g.Go(func() (err error) {
		summary.MonthExpenses, err = s.expenseService.SumExpenses(userID, MonthRange(today))
		return err
	})
	g.Go(func() (err error) {
		summary.ExpensesByCategory, err = s.expenseService.GetTotalsByCategory(userID)
		return err
	})
	g.Go(func() (err error) {
		summary.SavingsGoals, err = s.goalService.GetUserGoals(userID)
		return err
	})
	for i, month := range months {
		point := &summary.MonthlyData[i]
		point.Month = month.Format("Jan 2006")
		r := MonthRange(month)
		g.Go(func() (err error) {
			point.Income, err = s.incomeService.SumIncome(userID, r)
			return err
		})
		g.Go(func() (err error) {
			point.Expenses, err = s.expenseService.SumExpenses(userID, r)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpenses)
	if summary.ExpensesByCategory == nil {
		summary.ExpensesByCategory = []CategoryTotal{}
	}
	if summary.SavingsGoals == nil {
		summary.SavingsGoals = []SavingsGoalView{}
	}
	return summary, nil
}

// seriesMonths returns the first day of each month in the series, oldest
// first. The series covers the last six months including the current one
// but never starts before the month the account was created.
func seriesMonths(today, joined models.Date) []models.Date {
	start := today.AddMonths(-(dashboardMonths - 1))
	if joinedMonth := joined.FirstOfMonth(); joinedMonth.After(start.Time) {
		start = joinedMonth
	}

	current := today.FirstOfMonth()
	var months []models.Date
	for m := start; !m.After(current.Time); m = m.AddMonths(1) {
		months = append(months, m)
	}
	if len(months) == 0 {
		months = append(months, current)
	}
	return months
}
