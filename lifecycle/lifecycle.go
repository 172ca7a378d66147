// Package lifecycle holds the order status rules the console enforces before
// it asks the backend to persist anything. Every function here is pure.
package lifecycle

import (
	"fmt"

	"github.com/yeremiapane/restaurant-pos/models"
)

// CreationStatus is the status every new order is submitted with, whatever
// its type.
const CreationStatus = models.StatusOrdered

// sequence is the only forward path an order can walk.
var sequence = []models.OrderStatus{
	models.StatusOrdered,
	models.StatusServed,
	models.StatusBilled,
	models.StatusCompleted,
}

var nextOf = func() map[models.OrderStatus]models.OrderStatus {
	m := make(map[models.OrderStatus]models.OrderStatus, len(sequence)-1)
	for i := 0; i < len(sequence)-1; i++ {
		m[sequence[i]] = sequence[i+1]
	}
	return m
}()

// Sequence returns a copy of the forward path.
func Sequence() []models.OrderStatus {
	out := make([]models.OrderStatus, len(sequence))
	copy(out, sequence)
	return out
}

// InSequence reports whether s is one of the forward-path statuses.
func InSequence(s models.OrderStatus) bool {
	for _, step := range sequence {
		if step == s {
			return true
		}
	}
	return false
}

// Next returns the status that immediately follows current. ok is false for
// COMPLETED and for anything outside the forward path (AVAILABLE, CANCELLED,
// unknown values), which are all treated as terminal.
func Next(current models.OrderStatus) (next models.OrderStatus, ok bool) {
	next, ok = nextOf[current]
	return next, ok
}

func CanAdvance(current models.OrderStatus) bool {
	_, ok := nextOf[current]
	return ok
}

// Advance is Next with an error for callers that prefer one.
func Advance(current models.OrderStatus) (models.OrderStatus, error) {
	next, ok := Next(current)
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrNotAdvanceable, current)
	}
	return next, nil
}

// IsStep reports whether moving from -> to is a single forward step.
func IsStep(from, to models.OrderStatus) bool {
	next, ok := Next(from)
	return ok && next == to
}

// Editable reports whether items may still be added to an order in status s.
// Once billed the order is closed for edits.
func Editable(s models.OrderStatus) bool {
	return s == models.StatusOrdered || s == models.StatusServed
}

// CanRelease reports whether a table holding an order in status s may have
// its order reference cleared.
func CanRelease(s models.OrderStatus) bool {
	return s == models.StatusCompleted
}

// TableStatus is the status a table shows. A free table is always AVAILABLE;
// an occupied one mirrors its order and never shows AVAILABLE.
func TableStatus(t models.Table) models.OrderStatus {
	if !t.Occupied() {
		return models.StatusAvailable
	}
	if t.OrderStatus == "" || t.OrderStatus == models.StatusAvailable {
		return CreationStatus
	}
	return t.OrderStatus
}

// Decorate fills DisplayStatus on every table of every block.
func Decorate(blocks []models.Block) []models.Block {
	for i := range blocks {
		for j := range blocks[i].Tables {
			blocks[i].Tables[j].DisplayStatus = TableStatus(blocks[i].Tables[j])
		}
	}
	return blocks
}
