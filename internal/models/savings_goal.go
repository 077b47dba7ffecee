package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SavingsGoal is a target amount a user saves toward by a deadline.
type SavingsGoal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"-"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_amount"`
	Deadline      Date            `gorm:"not null" json:"deadline"`
}

// AfterFind normalizes stored amounts.
func (g *SavingsGoal) AfterFind(tx *gorm.DB) error {
	g.TargetAmount = RoundMoney(g.TargetAmount)
	g.CurrentAmount = RoundMoney(g.CurrentAmount)
	return nil
}
