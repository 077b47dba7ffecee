// Package progress derives savings goal progress from the saved amount, the
// target and the time window between the goal's creation and its deadline.
package progress

import (
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input describes a goal at a point in time.
type Input struct {
	Current  decimal.Decimal
	Target   decimal.Decimal
	Created  models.Date
	Deadline models.Date
	Today    models.Date
}

// Progress is the derived view of a savings goal.
type Progress struct {
	// Ratio is current/target*100 and may exceed 100.
	Ratio decimal.Decimal `json:"-"`
	// Percentage is Ratio clamped to [0, 100], to two decimals.
	Percentage    decimal.Decimal `json:"progress_percentage"`
	Completed     bool            `json:"is_completed"`
	OnTrack       bool            `json:"is_on_track"`
	DaysRemaining int             `json:"days_remaining"`
}

// Compute derives the progress of a goal. A non-positive target yields zero
// progress rather than an error.
func Compute(in Input) Progress {
	var p Progress

	if in.Target.IsPositive() {
		p.Ratio = in.Current.Div(in.Target).Mul(hundred)
	}
	p.Percentage = clamp(p.Ratio, decimal.Zero, hundred).Round(2)
	p.Completed = in.Target.IsPositive() && p.Ratio.GreaterThanOrEqual(hundred)

	// Negative once the deadline has passed; zero on the deadline itself.
	p.DaysRemaining = in.Today.DaysUntil(in.Deadline)

	p.OnTrack = onTrack(in, p)
	return p
}

// onTrack compares the elapsed share of the goal's window with the saved
// share of its target. A saver is on track when savings keep pace with time.
func onTrack(in Input, p Progress) bool {
	if p.Completed {
		return true
	}

	totalDays := in.Created.DaysUntil(in.Deadline)
	if totalDays <= 0 {
		return in.Target.IsPositive() && in.Current.GreaterThanOrEqual(in.Target)
	}

	elapsed := decimal.NewFromInt(int64(in.Created.DaysUntil(in.Today))).
		Div(decimal.NewFromInt(int64(totalDays)))
	elapsed = clamp(elapsed, decimal.Zero, decimal.NewFromInt(1))

	return elapsed.Mul(hundred).LessThanOrEqual(p.Ratio)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
