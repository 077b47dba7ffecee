package validator

import (
	"testing"

	"fintrack/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type entryInput struct {
	Amount   *decimal.Decimal `validate:"required,gt=0,money"`
	Category string           `validate:"omitempty,expense_category"`
	Date     *models.Date     `validate:"required"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	RegisterOn(v)
	return v
}

func TestEntryValidation(t *testing.T) {
	v := newValidate()
	day := models.Today()
	amt := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	cases := []struct {
		name  string
		input entryInput
		ok    bool
	}{
		{"valid", entryInput{Amount: amt("54.30"), Category: "food", Date: &day}, true},
		{"no_category", entryInput{Amount: amt("1"), Date: &day}, true},
		{"missing_amount", entryInput{Date: &day}, false},
		{"zero_amount", entryInput{Amount: amt("0"), Date: &day}, false},
		{"negative_amount", entryInput{Amount: amt("-5"), Date: &day}, false},
		{"three_decimals", entryInput{Amount: amt("1.005"), Date: &day}, false},
		{"too_large", entryInput{Amount: amt("10000000000"), Date: &day}, false},
		{"bad_category", entryInput{Amount: amt("1"), Category: "gambling", Date: &day}, false},
		{"missing_date", entryInput{Amount: amt("1")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.input)
			if tc.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

type registerInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestFieldErrors(t *testing.T) {
	v := newValidate()

	err := v.Struct(registerInput{Password: "short"})
	fields, ok := FieldErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if fields["username"] != "This field is required." {
		t.Errorf("unexpected username message %q", fields["username"])
	}
	if fields["password"] != "Ensure this field has at least 8 characters." {
		t.Errorf("unexpected password message %q", fields["password"])
	}

	if _, ok := FieldErrors(nil); ok {
		t.Error("expected nil error not to be a validation failure")
	}
}
