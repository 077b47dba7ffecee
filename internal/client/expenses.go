package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// Expense is one recorded expense.
type Expense struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Category        models.ExpenseCategory `json:"category"`
	CategoryDisplay string                 `json:"category_display"`
	Amount          decimal.Decimal        `json:"amount"`
	Date            models.Date            `json:"date"`
	Notes           string                 `json:"notes"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ExpenseInput carries expense fields. Nil fields are omitted; on create a
// missing category defaults to other.
type ExpenseInput struct {
	Title    *string                 `json:"title,omitempty"`
	Category *models.ExpenseCategory `json:"category,omitempty"`
	Amount   *decimal.Decimal        `json:"amount,omitempty"`
	Date     *models.Date            `json:"date,omitempty"`
	Notes    *string                 `json:"notes,omitempty"`
}

// CategoryTotal is the sum of one category's expenses.
type CategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Label    string                 `json:"label"`
	Total    decimal.Decimal        `json:"total"`
}

// ExpenseService manages the session user's expenses.
type ExpenseService struct {
	client *Client
}

// NewExpenseService creates an ExpenseService on s.
func NewExpenseService(s *Session) *ExpenseService {
	return &ExpenseService{client: s.Client()}
}

// List returns expenses matching filter, newest first. Search matches the title.
func (s *ExpenseService) List(ctx context.Context, filter EntryFilter) ([]Expense, error) {
	var out struct {
		Expenses []Expense `json:"expenses"`
	}
	err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/expenses/", Query: filter.values("title")}, &out)
	if err != nil {
		return nil, err
	}
	return out.Expenses, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*Expense, error) {
	return s.send(ctx, http.MethodGet, expensePath(id), nil)
}

func (s *ExpenseService) Create(ctx context.Context, in ExpenseInput) (*Expense, error) {
	return s.send(ctx, http.MethodPost, "/expenses/", in)
}

// Update replaces an expense; title, amount and date are required.
func (s *ExpenseService) Update(ctx context.Context, id string, in ExpenseInput) (*Expense, error) {
	return s.send(ctx, http.MethodPut, expensePath(id), in)
}

// Patch changes only the non-nil fields of in.
func (s *ExpenseService) Patch(ctx context.Context, id string, in ExpenseInput) (*Expense, error) {
	return s.send(ctx, http.MethodPatch, expensePath(id), in)
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	return s.client.call(ctx, &Request{Method: http.MethodDelete, Path: expensePath(id)}, nil)
}

// MonthlyTotal sums expenses dated in the current month.
func (s *ExpenseService) MonthlyTotal(ctx context.Context) (*MonthlyTotal, error) {
	var out MonthlyTotal
	if err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/expenses/monthly_total/"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByCategory returns per-category totals, largest first. Categories
// without expenses are absent.
func (s *ExpenseService) ByCategory(ctx context.Context) ([]CategoryTotal, error) {
	var out struct {
		Categories []CategoryTotal `json:"categories"`
	}
	if err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/expenses/by_category/"}, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (s *ExpenseService) send(ctx context.Context, method, path string, body interface{}) (*Expense, error) {
	var out struct {
		Expense Expense `json:"expense"`
	}
	if err := s.client.call(ctx, &Request{Method: method, Path: path, Body: body}, &out); err != nil {
		return nil, err
	}
	return &out.Expense, nil
}

func expensePath(id string) string {
	return "/expenses/" + url.PathEscape(id) + "/"
}
