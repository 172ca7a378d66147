package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/session"
)

// stubBackend answers like the REST backend, from memory.
type stubBackend struct {
	mu        sync.Mutex
	items     []models.CatalogItem
	blocks    []models.Block
	orders    map[uint]*models.Order
	nextID    uint
	createErr error
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		items: []models.CatalogItem{
			{ID: 1, Name: "Nasi Goreng", Price: decimal.NewFromInt(100), CategoryID: 1},
			{ID: 2, Name: "Es Teh", Price: decimal.NewFromInt(50), CategoryID: 2},
		},
		blocks: []models.Block{
			{ID: 1, Name: "Ground Floor", Tables: []models.Table{{ID: 1, BlockID: 1, Name: "G1"}, {ID: 2, BlockID: 1, Name: "G2"}}},
		},
		orders: make(map[uint]*models.Order),
		nextID: 1,
	}
}

func (s *stubBackend) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	if creds.Password != "secret123" {
		return nil, &services.BackendError{Op: "login", StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	user := models.User{ID: 7, Name: "Admin", Email: creds.Email, Role: "admin"}
	perms := []models.Permission{{Capability: "POS"}, {Capability: "DINING"}, {Capability: "DASHBOARD"}}
	if creds.Email == "cashier@example.com" {
		user.ID, user.Role = 8, "cashier"
		perms = perms[:2]
	}

	token, err := session.IssueToken("stub-secret", user, time.Hour)
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{Token: token, User: user, Permissions: perms}, nil
}

func (s *stubBackend) Items(ctx context.Context, token string) ([]models.CatalogItem, error) {
	return append([]models.CatalogItem(nil), s.items...), nil
}

func (s *stubBackend) Categories(ctx context.Context, token string) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Food"}, {ID: 2, Name: "Drinks"}}, nil
}

func (s *stubBackend) Blocks(ctx context.Context, token string) ([]models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = b
		out[i].Tables = make([]models.Table, len(b.Tables))
		for j, t := range b.Tables {
			if t.OrderID != nil {
				t.OrderStatus = s.orders[*t.OrderID].Status
			}
			out[i].Tables[j] = t
		}
	}
	return out, nil
}

func (s *stubBackend) CreateOrder(ctx context.Context, token string, sub models.OrderSubmission) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}

	o := &models.Order{
		ID:          s.nextID,
		Status:      sub.Status,
		Type:        sub.Type,
		TotalAmount: sub.TotalAmount,
		TableInfo:   sub.TableInfo,
	}
	for _, it := range sub.Items {
		o.Items = append(o.Items, models.OrderItem{ItemID: it.ID, Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	s.orders[o.ID] = o
	s.nextID++

	if ref := sub.TableInfo; ref != nil {
		if t := s.table(ref.BlockID, ref.TableID); t != nil {
			id := o.ID
			t.OrderID = &id
		}
	}
	cp := *o
	return &cp, nil
}

func (s *stubBackend) UpdateOrder(ctx context.Context, token string, orderID uint, sub models.OrderSubmission) (*models.Order, error) {
	return nil, &services.BackendError{Op: "update order", StatusCode: http.StatusNotImplemented, Message: "not implemented"}
}

func (s *stubBackend) GetOrder(ctx context.Context, token string, orderID uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, &services.BackendError{Op: "get order", StatusCode: http.StatusNotFound, Message: "record not found"}
	}
	cp := *o
	return &cp, nil
}

func (s *stubBackend) UpdateStatus(ctx context.Context, token string, update models.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[update.OrderID]
	if !ok {
		return &services.BackendError{Op: "update status", StatusCode: http.StatusNotFound, Message: "record not found"}
	}
	if !lifecycle.IsStep(o.Status, update.Status) {
		return &services.BackendError{Op: "update status", StatusCode: http.StatusConflict, Message: "not a single step"}
	}
	o.Status = update.Status
	return nil
}

func (s *stubBackend) UpdatePayment(ctx context.Context, token string, orderID uint, update models.PaymentUpdate) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, &services.BackendError{Op: "update payment", StatusCode: http.StatusNotFound, Message: "record not found"}
	}
	o.IsPaid = update.IsPaid
	o.PaymentMethod = update.PaymentMethod
	cp := *o
	return &cp, nil
}

func (s *stubBackend) ClearTable(ctx context.Context, token string, blockID, tableID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(blockID, tableID)
	if t == nil {
		return &services.BackendError{Op: "clear table", StatusCode: http.StatusNotFound, Message: "table not found"}
	}
	t.OrderID = nil
	return nil
}

// table must be called with mu held.
func (s *stubBackend) table(blockID, tableID uint) *models.Table {
	for i := range s.blocks {
		if s.blocks[i].ID != blockID {
			continue
		}
		for j := range s.blocks[i].Tables {
			if s.blocks[i].Tables[j].ID == tableID {
				return &s.blocks[i].Tables[j]
			}
		}
	}
	return nil
}
