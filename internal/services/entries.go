package services

import (
	"fmt"
	"strings"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxTextLength = 200

// entryOrder lists newest entries first.
const entryOrder = "date DESC, created_at DESC"

// Columns a list may be ordered by.
var (
	incomeOrderFields  = map[string]bool{"date": true, "amount": true, "created_at": true}
	expenseOrderFields = map[string]bool{"date": true, "amount": true, "created_at": true, "category": true}
)

// orderClause turns an ordering such as "-amount,date" into an ORDER BY
// clause. A leading '-' sorts descending. Ties fall back to newest first.
func orderClause(ordering string, allowed map[string]bool) (string, error) {
	if strings.TrimSpace(ordering) == "" {
		return entryOrder, nil
	}

	var terms []string
	hasCreated := false
	for _, part := range strings.Split(ordering, ",") {
		field, dir := strings.TrimSpace(part), "ASC"
		if strings.HasPrefix(field, "-") {
			field, dir = field[1:], "DESC"
		}
		if !allowed[field] {
			return "", apperrors.WithField(apperrors.ErrInvalidInput, "ordering", fmt.Sprintf("%q is not a valid ordering field", field))
		}
		hasCreated = hasCreated || field == "created_at"
		terms = append(terms, field+" "+dir)
	}
	if !hasCreated {
		terms = append(terms, "created_at DESC")
	}
	return strings.Join(terms, ", "), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// applyEntryFilter narrows an income or expense query. searchColumn is the
// free-text column matched by filter.Search.
func applyEntryFilter(db *gorm.DB, searchColumn string, filter EntryFilter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		db = db.Where("LOWER("+searchColumn+`) LIKE ? ESCAPE '\'`, containsPattern(s))
	}
	if filter.Category != nil {
		db = db.Where("category = ?", *filter.Category)
	}

	switch {
	case filter.Year != nil && filter.Month != nil:
		r := MonthRange(models.NewDate(*filter.Year, time.Month(*filter.Month), 1))
		db = applyDateRange(db, r)
	case filter.Year != nil:
		from := models.NewDate(*filter.Year, time.January, 1)
		before := models.NewDate(*filter.Year+1, time.January, 1)
		db = applyDateRange(db, DateRange{From: &from, Before: &before})
	case filter.Month != nil:
		db = db.Where(monthExpr(db)+" = ?", *filter.Month)
	}

	if filter.DateFrom != nil {
		db = db.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("date <= ?", *filter.DateTo)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	return db
}

// monthExpr extracts the month number of the date column in the current dialect.
func monthExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%m', date) AS INTEGER)"
	}
	return "EXTRACT(MONTH FROM date)"
}

func applyDateRange(db *gorm.DB, r DateRange) *gorm.DB {
	if r.From != nil {
		db = db.Where("date >= ?", *r.From)
	}
	if r.Before != nil {
		db = db.Where("date < ?", *r.Before)
	}
	return db
}

// sumAmounts totals the amount column of model for the user within r.
func sumAmounts(db *gorm.DB, model interface{}, userID string, r DateRange) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := applyDateRange(db.Model(model).Where("user_id = ?", userID), r)
	if err := q.Select("COALESCE(SUM(amount), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return models.RoundMoney(total), nil
}

// validateFilter rejects filter values no date can match.
func validateFilter(filter EntryFilter) error {
	if filter.Month != nil && (*filter.Month < 1 || *filter.Month > 12) {
		return apperrors.WithField(apperrors.ErrInvalidInput, "month", "month must be between 1 and 12")
	}
	if filter.Year != nil && (*filter.Year < 1 || *filter.Year > 9999) {
		return apperrors.WithField(apperrors.ErrInvalidInput, "year", "year is out of range")
	}
	if filter.Category != nil && !filter.Category.Valid() {
		return apperrors.WithField(apperrors.ErrInvalidInput, "category", fmt.Sprintf("%q is not a valid category", *filter.Category))
	}
	return nil
}

// validateText checks a required, bounded text field.
func validateText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.WithField(apperrors.ErrInvalidInput, field, field+" is required")
	}
	if len([]rune(value)) > maxTextLength {
		return apperrors.WithField(apperrors.ErrInvalidInput, field, fmt.Sprintf("%s must be at most %d characters", field, maxTextLength))
	}
	return nil
}

// validatePositiveAmount checks a money amount that must be greater than zero.
func validatePositiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.WithField(apperrors.ErrInvalidInput, field, "Amount must be greater than zero.")
	}
	if !models.ValidMoneyPrecision(amount) {
		return apperrors.WithField(apperrors.ErrInvalidInput, field, "Ensure there are no more than 2 decimal places and 10 digits before the point.")
	}
	return nil
}

func monthLabel(d models.Date) string {
	return d.Format("January 2006")
}
