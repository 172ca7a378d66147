package cart

import (
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/models"
)

// Snapshot is a detached copy of a cart's full state.
type Snapshot struct {
	Lines           []LineItem      `json:"lines"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Lines:           c.Lines(),
		DiscountPercent: c.discountPercent,
		TaxPercent:      c.taxPercent,
	}
}

// Restore replaces the cart's contents with s.
func (c *Cart) Restore(s Snapshot) {
	c.Clear()
	for _, line := range s.Lines {
		if _, dup := c.lines[line.ItemID]; dup || line.Quantity < 1 {
			continue
		}
		l := line
		c.lines[l.ItemID] = &l
		c.order = append(c.order, l.ItemID)
	}
	c.discountPercent = s.DiscountPercent
	c.taxPercent = s.TaxPercent
}

// FromOrder seeds a cart with the lines of an existing order so staff can add
// to it. Prices come from the order snapshot, not the live catalog.
func FromOrder(order models.Order) *Cart {
	c := New()
	for _, item := range order.Items {
		if item.Quantity < 1 {
			continue
		}
		if existing, ok := c.lines[item.ItemID]; ok {
			existing.Quantity += item.Quantity
			continue
		}
		c.lines[item.ItemID] = &LineItem{
			ItemID:    item.ItemID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		}
		c.order = append(c.order, item.ItemID)
	}
	return c
}
