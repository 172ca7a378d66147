package models

import "time"

// Block is a named group of tables (a floor, a terrace).
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"blockId"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Tables    []Table   `gorm:"foreignKey:BlockID" json:"tables"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Table is a seating unit. OrderID is nil while the table is free.
// OrderStatus mirrors the referenced order and is filled in by the backend;
// DisplayStatus is derived on the console side.
type Table struct {
	ID            uint        `gorm:"primaryKey" json:"tableId"`
	BlockID       uint        `gorm:"not null;index" json:"blockId"`
	Name          string      `gorm:"column:table_name;type:varchar(50);not null" json:"tableName"`
	OrderID       *uint       `json:"orderId"`
	OrderStatus   OrderStatus `gorm:"-" json:"orderStatus,omitempty"`
	DisplayStatus OrderStatus `gorm:"-" json:"displayStatus,omitempty"`
	CreatedAt     time.Time   `json:"-"`
	UpdatedAt     time.Time   `json:"-"`
}

func (t Table) Occupied() bool {
	return t.OrderID != nil
}

func (t Table) Ref() TableRef {
	return TableRef{BlockID: t.BlockID, TableID: t.ID}
}
