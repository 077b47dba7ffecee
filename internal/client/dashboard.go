package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// MonthlyPoint is one month of the income/expense series.
type MonthlyPoint struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Summary is the server's dashboard, passed through unmodified.
type Summary struct {
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	Balance            decimal.Decimal `json:"balance"`
	MonthIncome        decimal.Decimal `json:"month_income"`
	MonthExpenses      decimal.Decimal `json:"month_expenses"`
	MonthlyData        []MonthlyPoint  `json:"monthly_data"`
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
	SavingsGoals       []SavingsGoal   `json:"savings_goals"`
}

// Overview is the summary together with the most recent entries.
type Overview struct {
	Summary        *Summary
	RecentIncome   []Income
	RecentExpenses []Expense
}

// ActivityEntry is one audited change.
type ActivityEntry struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Changes      string    `json:"changes"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActivityPage is one page of the activity log.
type ActivityPage struct {
	Data       []ActivityEntry `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalItems int64           `json:"total_items"`
	TotalPages int             `json:"total_pages"`
	HasNext    bool            `json:"has_next"`
}

// DashboardService reads aggregated views.
type DashboardService struct {
	client   *Client
	income   *IncomeService
	expenses *ExpenseService
}

// NewDashboardService creates a DashboardService on s.
func NewDashboardService(s *Session) *DashboardService {
	return &DashboardService{
		client:   s.Client(),
		income:   NewIncomeService(s),
		expenses: NewExpenseService(s),
	}
}

// GetSummary returns the dashboard summary.
func (s *DashboardService) GetSummary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/dashboard/"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Overview fetches the summary and the n most recent income and expense
// entries concurrently. Any failure fails the whole overview.
func (s *DashboardService) Overview(ctx context.Context, n int) (*Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.GetSummary(gctx)
		ov.Summary = summary
		return err
	})
	g.Go(func() error {
		incomes, err := s.income.List(gctx, EntryFilter{Limit: n})
		ov.RecentIncome = incomes
		return err
	})
	g.Go(func() error {
		expenses, err := s.expenses.List(gctx, EntryFilter{Limit: n})
		ov.RecentExpenses = expenses
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}

// Activity returns one page of the caller's audit log. Zero values use the
// server defaults.
func (s *DashboardService) Activity(ctx context.Context, page, pageSize int) (*ActivityPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	var out ActivityPage
	if err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/activity/", Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
