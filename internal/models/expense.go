package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseCategory is the fixed classification of an expense.
type ExpenseCategory string

// Expense categories.
const (
	CategoryFood          ExpenseCategory = "food"
	CategoryRent          ExpenseCategory = "rent"
	CategoryUtilities     ExpenseCategory = "utilities"
	CategoryTravel        ExpenseCategory = "travel"
	CategoryEntertainment ExpenseCategory = "entertainment"
	CategoryHealth        ExpenseCategory = "health"
	CategoryShopping      ExpenseCategory = "shopping"
	CategoryEducation     ExpenseCategory = "education"
	CategorySavings       ExpenseCategory = "savings"
	CategoryOther         ExpenseCategory = "other"
)

var categoryLabels = map[ExpenseCategory]string{
	CategoryFood:          "Food & Dining",
	CategoryRent:          "Rent & Housing",
	CategoryUtilities:     "Utilities",
	CategoryTravel:        "Travel & Transport",
	CategoryEntertainment: "Entertainment",
	CategoryHealth:        "Health & Fitness",
	CategoryShopping:      "Shopping",
	CategoryEducation:     "Education",
	CategorySavings:       "Savings Transfer",
	CategoryOther:         "Other",
}

// Categories returns every category in display order.
func Categories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryFood, CategoryRent, CategoryUtilities, CategoryTravel, CategoryEntertainment,
		CategoryHealth, CategoryShopping, CategoryEducation, CategorySavings, CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c ExpenseCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable name; unknown categories fall back to
// their raw value.
func (c ExpenseCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Expense is money spent by a user on a given day.
type Expense struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"-"`
	Title         string          `gorm:"size:200;not null" json:"title"`
	Category      ExpenseCategory `gorm:"size:20;not null;default:'other';index" json:"category"`
	CategoryLabel string          `gorm:"-" json:"category_display"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date          Date            `gorm:"not null;index" json:"date"`
	Notes         string          `gorm:"type:text" json:"notes"`
}

// AfterFind fills the display label and normalizes the amount.
func (e *Expense) AfterFind(tx *gorm.DB) error {
	e.Amount = RoundMoney(e.Amount)
	e.CategoryLabel = e.Category.Label()
	return nil
}

// AfterSave keeps the display label in step with the category.
func (e *Expense) AfterSave(tx *gorm.DB) error {
	e.CategoryLabel = e.Category.Label()
	return nil
}
