package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the wire value of an order's status. Values outside the
// known set are carried through unchanged so a newer backend never breaks
// the console.
type OrderStatus string

const (
	StatusOrdered    OrderStatus = "ORDERED"
	StatusServed     OrderStatus = "SERVED"
	StatusBilled     OrderStatus = "BILLED"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusAvailable  OrderStatus = "AVAILABLE"
	StatusInProgress OrderStatus = "INPROGRESS"
	StatusPreparing  OrderStatus = "PREPARING"
	StatusReady      OrderStatus = "READY"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusPaid       OrderStatus = "PAID"
	StatusCancelled  OrderStatus = "CANCELLED"
)

var knownStatuses = map[OrderStatus]bool{
	StatusOrdered:    true,
	StatusServed:     true,
	StatusBilled:     true,
	StatusCompleted:  true,
	StatusAvailable:  true,
	StatusInProgress: true,
	StatusPreparing:  true,
	StatusReady:      true,
	StatusDelivered:  true,
	StatusPaid:       true,
	StatusCancelled:  true,
}

// Known reports whether s is one of the recognised status literals.
func (s OrderStatus) Known() bool {
	return knownStatuses[s]
}

func (s OrderStatus) String() string {
	return string(s)
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeAway OrderType = "TAKE_AWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

// ParseOrderType accepts the canonical literals plus the spellings older
// pages emitted (DINEIN, TAKEAWAY, dine_in, takeout) and returns the
// canonical form.
func ParseOrderType(raw string) (OrderType, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)

	switch key {
	case "DINEIN":
		return OrderTypeDineIn, nil
	case "TAKEAWAY", "TAKEOUT":
		return OrderTypeTakeAway, nil
	case "DELIVERY":
		return OrderTypeDelivery, nil
	}
	return "", fmt.Errorf("%w: order type %q", ErrInvalidInput, raw)
}

// Order type wire styles understood by OrderTypeCodec.
const (
	OrderTypeStyleCanonical = "canonical"
	OrderTypeStyleLegacy    = "legacy"
)

// OrderTypeCodec is the one place where order types are translated to the
// literal the backend expects.
type OrderTypeCodec struct {
	Style string
}

func NewOrderTypeCodec(style string) (OrderTypeCodec, error) {
	switch style {
	case "", OrderTypeStyleCanonical:
		return OrderTypeCodec{Style: OrderTypeStyleCanonical}, nil
	case OrderTypeStyleLegacy:
		return OrderTypeCodec{Style: OrderTypeStyleLegacy}, nil
	}
	return OrderTypeCodec{}, fmt.Errorf("unknown order type style %q", style)
}

// Encode returns the backend literal for t.
func (c OrderTypeCodec) Encode(t OrderType) OrderType {
	if c.Style != OrderTypeStyleLegacy {
		return t
	}
	switch t {
	case OrderTypeDineIn:
		return "DINEIN"
	case OrderTypeTakeAway:
		return "TAKEAWAY"
	}
	return t
}

// Decode normalises whatever the backend sent back to the canonical form.
// Unparseable values are returned as-is.
func (c OrderTypeCodec) Decode(t OrderType) OrderType {
	parsed, err := ParseOrderType(string(t))
	if err != nil {
		return t
	}
	return parsed
}

type PaymentMode string

const (
	PaymentCash   PaymentMode = "CASH"
	PaymentCard   PaymentMode = "CARD"
	PaymentUPI    PaymentMode = "UPI"
	PaymentOnline PaymentMode = "ONLINE"
)

func ParsePaymentMode(raw string) (PaymentMode, error) {
	switch m := PaymentMode(strings.ToUpper(strings.TrimSpace(raw))); m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentOnline:
		return m, nil
	}
	return "", fmt.Errorf("%w: payment mode %q", ErrInvalidInput, raw)
}
