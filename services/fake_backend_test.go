package services

import (
	"context"
	"sync"

	"github.com/yeremiapane/restaurant-pos/models"
)

// fakeBackend is an in-memory Backend. Hooks let tests fail or stall calls.
type fakeBackend struct {
	mu      sync.Mutex
	items   []models.CatalogItem
	blocks  []models.Block
	orders  map[uint]*models.Order
	nextID  uint
	updates []models.StatusUpdate
	cleared []models.TableRef

	createErr error
	// createGate, when set, blocks CreateOrder until it is closed
	createGate chan struct{}
	// afterStatus runs after a status update, e.g. to simulate another terminal
	afterStatus func(o *models.Order)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{orders: make(map[uint]*models.Order), nextID: 1}
}

func (f *fakeBackend) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	return &models.LoginResult{Token: "tok"}, nil
}

func (f *fakeBackend) Items(ctx context.Context, token string) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CatalogItem(nil), f.items...), nil
}

func (f *fakeBackend) Categories(ctx context.Context, token string) ([]models.Category, error) {
	return nil, nil
}

func (f *fakeBackend) Blocks(ctx context.Context, token string) ([]models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Block, len(f.blocks))
	for i, b := range f.blocks {
		out[i] = b
		out[i].Tables = make([]models.Table, len(b.Tables))
		for j, t := range b.Tables {
			if t.OrderID != nil {
				if o, ok := f.orders[*t.OrderID]; ok {
					t.OrderStatus = o.Status
				}
			}
			out[i].Tables[j] = t
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateOrder(ctx context.Context, token string, sub models.OrderSubmission) (*models.Order, error) {
	if f.createGate != nil {
		<-f.createGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}

	o := &models.Order{
		ID:            f.nextID,
		Status:        sub.Status,
		Type:          sub.Type,
		IsPaid:        sub.IsPaid,
		PaymentMethod: sub.PaymentMethod,
		TotalAmount:   sub.TotalAmount,
		TableInfo:     sub.TableInfo,
	}
	for _, it := range sub.Items {
		o.Items = append(o.Items, models.OrderItem{ItemID: it.ID, Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	f.orders[o.ID] = o
	f.nextID++

	if sub.TableInfo != nil {
		f.occupy(*sub.TableInfo, o.ID)
	}
	cp := *o
	return &cp, nil
}

func (f *fakeBackend) UpdateOrder(ctx context.Context, token string, orderID uint, sub models.OrderSubmission) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[orderID]
	if !ok {
		return nil, &BackendError{Op: "update order", StatusCode: 404, Message: "order not found"}
	}
	o.Items = nil
	for _, it := range sub.Items {
		o.Items = append(o.Items, models.OrderItem{ItemID: it.ID, Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	o.TotalAmount = sub.TotalAmount
	cp := *o
	return &cp, nil
}

func (f *fakeBackend) GetOrder(ctx context.Context, token string, orderID uint) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[orderID]
	if !ok {
		return nil, &BackendError{Op: "get order", StatusCode: 404, Message: "order not found"}
	}
	cp := *o
	return &cp, nil
}

func (f *fakeBackend) UpdateStatus(ctx context.Context, token string, update models.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[update.OrderID]
	if !ok {
		return &BackendError{Op: "update status", StatusCode: 404, Message: "order not found"}
	}
	f.updates = append(f.updates, update)
	o.Status = update.Status
	if f.afterStatus != nil {
		f.afterStatus(o)
	}
	return nil
}

func (f *fakeBackend) UpdatePayment(ctx context.Context, token string, orderID uint, update models.PaymentUpdate) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[orderID]
	if !ok {
		return nil, &BackendError{Op: "update payment", StatusCode: 404, Message: "order not found"}
	}
	o.IsPaid = update.IsPaid
	o.PaymentMethod = update.PaymentMethod
	cp := *o
	return &cp, nil
}

func (f *fakeBackend) ClearTable(ctx context.Context, token string, blockID, tableID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.blocks {
		for j := range f.blocks[i].Tables {
			t := &f.blocks[i].Tables[j]
			if f.blocks[i].ID == blockID && t.ID == tableID {
				t.OrderID = nil
				f.cleared = append(f.cleared, models.TableRef{BlockID: blockID, TableID: tableID})
				return nil
			}
		}
	}
	return &BackendError{Op: "clear table", StatusCode: 404, Message: "table not found"}
}

// occupy must be called with mu held.
func (f *fakeBackend) occupy(ref models.TableRef, orderID uint) {
	for i := range f.blocks {
		for j := range f.blocks[i].Tables {
			if f.blocks[i].ID == ref.BlockID && f.blocks[i].Tables[j].ID == ref.TableID {
				id := orderID
				f.blocks[i].Tables[j].OrderID = &id
			}
		}
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []models.Order
	tables []models.Table
	snaps  int
	notes  []string
}

func (n *recordingNotifier) BroadcastOrderUpdate(order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
}

func (n *recordingNotifier) BroadcastTableUpdate(table models.Table) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tables = append(n.tables, table)
}

func (n *recordingNotifier) BroadcastTables(blocks []models.Block) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snaps++
}

func (n *recordingNotifier) BroadcastStaffNotification(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, message)
}
