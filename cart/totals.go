package cart

import (
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/models"
)

// MoneyPlaces is the precision used for display and submission.
const MoneyPlaces = 2

type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// Rounded rounds every amount to MoneyPlaces. Only call it at the edge:
// intermediate arithmetic stays exact.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:       t.Subtotal.Round(MoneyPlaces),
		DiscountAmount: t.DiscountAmount.Round(MoneyPlaces),
		TaxAmount:      t.TaxAmount.Round(MoneyPlaces),
		GrandTotal:     t.GrandTotal.Round(MoneyPlaces),
	}
}

// Totals recomputes everything from the current lines and percentages.
// Nothing is cached, so a caller can never observe stale totals.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, id := range c.order {
		subtotal = subtotal.Add(c.lines[id].Total())
	}

	discount := percentOf(subtotal, c.discountPercent)
	tax := percentOf(subtotal.Sub(discount), c.taxPercent)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		GrandTotal:     subtotal.Sub(discount).Add(tax),
	}
}

// percentOf is amount × percent / 100; the shift keeps it exact.
func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Shift(-2)
}

// Meta is the order metadata a submission needs besides the lines.
type Meta struct {
	Status        models.OrderStatus
	Type          models.OrderType
	IsPaid        bool
	PaymentMethod *models.PaymentMode
	TableInfo     *models.TableRef
}

// Submission assembles the backend payload. The grand total is rounded here,
// at the point of submission.
func (c *Cart) Submission(meta Meta) models.OrderSubmission {
	items := make([]models.SubmissionItem, 0, len(c.order))
	for _, line := range c.Lines() {
		items = append(items, models.SubmissionItem{
			ID:       line.ItemID,
			Quantity: line.Quantity,
			Price:    line.UnitPrice,
			Name:     line.Name,
		})
	}

	return models.OrderSubmission{
		Items:         items,
		TotalAmount:   c.Totals().GrandTotal.Round(MoneyPlaces),
		Status:        meta.Status,
		Type:          meta.Type,
		IsPaid:        meta.IsPaid,
		PaymentMethod: meta.PaymentMethod,
		TableInfo:     meta.TableInfo,
	}
}
