package models

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrDraftNotFound     = errors.New("draft not found")
	ErrSubmitInProgress  = errors.New("order submission already in progress")
	ErrNotAdvanceable    = errors.New("order status cannot be advanced")
	ErrOrderLocked       = errors.New("order can no longer be edited")
	ErrTableNotFound     = errors.New("table not found")
	ErrTableNotOccupied  = errors.New("table has no active order")
	ErrTableOccupied     = errors.New("table already has an active order")
	ErrOrderNotCompleted = errors.New("order is not completed")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session expired")
	ErrUnknownCapability = errors.New("unknown capability")
)
