package models

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of fractional digits kept for amounts.
const MoneyPlaces = 2

// maxMoney bounds amounts to the decimal(12,2) columns.
var maxMoney = decimal.New(1, 10)

// RoundMoney normalizes an amount read back from storage. SQLite keeps
// decimals as floating point, so sums and increments are rounded to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ValidMoneyPrecision reports whether d fits decimal(12,2): at most two
// fractional digits and ten integer digits.
func ValidMoneyPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces)) && d.Abs().LessThan(maxMoney)
}
