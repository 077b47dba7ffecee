package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Income is money received by a user on a given day.
type Income struct {
	Base
	UserID string          `gorm:"type:uuid;not null;index" json:"-"`
	Source string          `gorm:"size:200;not null" json:"source"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date   Date            `gorm:"not null;index" json:"date"`
	Notes  string          `gorm:"type:text" json:"notes"`
}

// AfterFind normalizes the stored amount.
func (i *Income) AfterFind(tx *gorm.DB) error {
	i.Amount = RoundMoney(i.Amount)
	return nil
}
