package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"categoryId"`
	Name      string    `gorm:"type:varchar(100);unique;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CatalogItem is a sellable menu item. Carts copy Name and Price at add time.
type CatalogItem struct {
	ID         uint            `gorm:"primaryKey" json:"itemId"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID uint            `gorm:"not null;index" json:"categoryId"`
	Category   *Category       `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
