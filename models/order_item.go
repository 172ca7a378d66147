package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	ItemID    uint            `gorm:"not null" json:"itemId"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// LineTotal is Price × Quantity, unrounded.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
