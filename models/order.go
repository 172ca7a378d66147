package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TableRef points a dine-in order at its seat.
type TableRef struct {
	BlockID uint `json:"blockId"`
	TableID uint `json:"tableId"`
}

// Order is the console's projection of a backend order. The backend owns it;
// Items is the snapshot taken when the order was last submitted.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"orderId"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null" json:"status"`
	Type          OrderType       `gorm:"type:varchar(20);not null" json:"type"`
	IsPaid        bool            `gorm:"not null;default:false" json:"isPaid"`
	PaymentMethod *PaymentMode    `gorm:"type:varchar(10)" json:"paymentMethod"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	BlockID       *uint           `json:"-"`
	TableID       *uint           `gorm:"index" json:"-"`
	TableInfo     *TableRef       `gorm:"-" json:"tableInfo,omitempty"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	ModifiedBy    uint            `json:"modifiedBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeSave(tx *gorm.DB) error {
	if o.TableInfo == nil {
		o.BlockID, o.TableID = nil, nil
		return nil
	}
	blockID, tableID := o.TableInfo.BlockID, o.TableInfo.TableID
	o.BlockID, o.TableID = &blockID, &tableID
	return nil
}

func (o *Order) AfterFind(tx *gorm.DB) error {
	if o.BlockID != nil && o.TableID != nil {
		o.TableInfo = &TableRef{BlockID: *o.BlockID, TableID: *o.TableID}
	}
	return nil
}

// SubmissionItem is one cart line as the backend receives it.
type SubmissionItem struct {
	ID       uint            `json:"id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Name     string          `json:"name,omitempty"`
}

// OrderSubmission is the create/update payload assembled from a cart.
type OrderSubmission struct {
	Items         []SubmissionItem `json:"items"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	Status        OrderStatus      `json:"status"`
	Type          OrderType        `json:"type"`
	IsPaid        bool             `json:"isPaid"`
	PaymentMethod *PaymentMode     `json:"paymentMethod"`
	TableInfo     *TableRef        `json:"tableInfo,omitempty"`
}

// StatusUpdate persists one lifecycle step.
type StatusUpdate struct {
	OrderID    uint        `json:"orderId"`
	Status     OrderStatus `json:"status"`
	ModifiedBy uint        `json:"modifiedBy"`
}

type PaymentUpdate struct {
	IsPaid        bool         `json:"isPaid"`
	PaymentMethod *PaymentMode `json:"paymentMethod"`
	ModifiedBy    uint         `json:"modifiedBy"`
}
