// Package cart holds the line items of one order being built and derives its
// totals. A Cart has a single owner and is not safe for concurrent use.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/models"
)

// LineItem is a catalog item placed in the cart. Name and UnitPrice are
// copied when the item is first added; later catalog changes do not touch it.
type LineItem struct {
	ItemID    uint            `json:"itemId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Total is UnitPrice × Quantity, unrounded.
func (l LineItem) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	lines           map[uint]*LineItem
	order           []uint
	discountPercent decimal.Decimal
	taxPercent      decimal.Decimal
}

func New() *Cart {
	return &Cart{lines: make(map[uint]*LineItem)}
}

// AddItem puts one unit of item in the cart. A second add of the same item
// bumps the existing line instead of creating another one.
func (c *Cart) AddItem(item models.CatalogItem) {
	if line, ok := c.lines[item.ID]; ok {
		line.Quantity++
		return
	}
	c.lines[item.ID] = &LineItem{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
	}
	c.order = append(c.order, item.ID)
}

// Increment adds one to the line's quantity. It reports false, and changes
// nothing, when the item is not in the cart.
func (c *Cart) Increment(itemID uint) bool {
	line, ok := c.lines[itemID]
	if !ok {
		return false
	}
	line.Quantity++
	return true
}

// Decrement takes one off the line's quantity and drops the line once it
// would fall below 1.
func (c *Cart) Decrement(itemID uint) bool {
	line, ok := c.lines[itemID]
	if !ok {
		return false
	}
	line.Quantity--
	if line.Quantity <= 0 {
		c.drop(itemID)
	}
	return true
}

// Remove drops the line regardless of its quantity.
func (c *Cart) Remove(itemID uint) bool {
	if _, ok := c.lines[itemID]; !ok {
		return false
	}
	c.drop(itemID)
	return true
}

// Clear empties the cart and resets both percentages to zero.
func (c *Cart) Clear() {
	c.lines = make(map[uint]*LineItem)
	c.order = nil
	c.discountPercent = decimal.Zero
	c.taxPercent = decimal.Zero
}

// SetDiscountPercent stores p as given; range checks belong to the caller.
func (c *Cart) SetDiscountPercent(p decimal.Decimal) {
	c.discountPercent = p
}

// SetTaxPercent stores p as given; range checks belong to the caller.
func (c *Cart) SetTaxPercent(p decimal.Decimal) {
	c.taxPercent = p
}

func (c *Cart) DiscountPercent() decimal.Decimal {
	return c.discountPercent
}

func (c *Cart) TaxPercent() decimal.Decimal {
	return c.taxPercent
}

// Lines returns copies of the lines in the order they were first added.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

func (c *Cart) Line(itemID uint) (LineItem, bool) {
	line, ok := c.lines[itemID]
	if !ok {
		return LineItem{}, false
	}
	return *line, true
}

func (c *Cart) Len() int {
	return len(c.order)
}

func (c *Cart) IsEmpty() bool {
	return len(c.order) == 0
}

func (c *Cart) drop(itemID uint) {
	delete(c.lines, itemID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
