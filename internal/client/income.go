package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// EntryFilter narrows income and expense listings. Zero values are ignored
// and set values are ANDed.
type EntryFilter struct {
	// Search matches the income source or expense title, case-insensitively.
	Search   string
	Category models.ExpenseCategory
	Year     int
	Month    int
	DateFrom *models.Date
	DateTo   *models.Date
	Limit    int
	// Ordering such as "-amount,date"; empty lists newest first.
	Ordering string
}

func (f EntryFilter) values(searchParam string) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set(searchParam, f.Search)
	}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	if f.Month != 0 {
		q.Set("month", strconv.Itoa(f.Month))
	}
	if f.DateFrom != nil {
		q.Set("date_from", f.DateFrom.String())
	}
	if f.DateTo != nil {
		q.Set("date_to", f.DateTo.String())
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Ordering != "" {
		q.Set("ordering", f.Ordering)
	}
	return q
}

// MonthlyTotal is the sum of a month's entries, e.g. {"November 2024", 1250.30}.
type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Income is one recorded income entry.
type Income struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Amount    decimal.Decimal `json:"amount"`
	Date      models.Date     `json:"date"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IncomeInput carries income fields. Nil fields are omitted, which Patch
// treats as unchanged.
type IncomeInput struct {
	Source *string          `json:"source,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Date   *models.Date     `json:"date,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
}

// IncomeService manages the session user's income.
type IncomeService struct {
	client *Client
}

// NewIncomeService creates an IncomeService on s.
func NewIncomeService(s *Session) *IncomeService {
	return &IncomeService{client: s.Client()}
}

// List returns income matching filter, newest first.
func (s *IncomeService) List(ctx context.Context, filter EntryFilter) ([]Income, error) {
	var out struct {
		Incomes []Income `json:"incomes"`
	}
	err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/income/", Query: filter.values("source")}, &out)
	if err != nil {
		return nil, err
	}
	return out.Incomes, nil
}

// Get returns one income entry.
func (s *IncomeService) Get(ctx context.Context, id string) (*Income, error) {
	return s.send(ctx, http.MethodGet, "/income/"+url.PathEscape(id)+"/", nil)
}

// Create records a new income entry.
func (s *IncomeService) Create(ctx context.Context, in IncomeInput) (*Income, error) {
	return s.send(ctx, http.MethodPost, "/income/", in)
}

// Update replaces an income entry; source, amount and date are required.
func (s *IncomeService) Update(ctx context.Context, id string, in IncomeInput) (*Income, error) {
	return s.send(ctx, http.MethodPut, "/income/"+url.PathEscape(id)+"/", in)
}

// Patch changes only the non-nil fields of in.
func (s *IncomeService) Patch(ctx context.Context, id string, in IncomeInput) (*Income, error) {
	return s.send(ctx, http.MethodPatch, "/income/"+url.PathEscape(id)+"/", in)
}

// Delete removes an income entry.
func (s *IncomeService) Delete(ctx context.Context, id string) error {
	return s.client.call(ctx, &Request{Method: http.MethodDelete, Path: "/income/" + url.PathEscape(id) + "/"}, nil)
}

// MonthlyTotal sums income dated in the current month.
func (s *IncomeService) MonthlyTotal(ctx context.Context) (*MonthlyTotal, error) {
	var out MonthlyTotal
	if err := s.client.call(ctx, &Request{Method: http.MethodGet, Path: "/income/monthly_total/"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *IncomeService) send(ctx context.Context, method, path string, body interface{}) (*Income, error) {
	var out struct {
		Income Income `json:"income"`
	}
	if err := s.client.call(ctx, &Request{Method: method, Path: path, Body: body}, &out); err != nil {
		return nil, err
	}
	return &out.Income, nil
}
