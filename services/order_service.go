package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-pos/cart"
	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Notifier is told about order and table changes made through the console.
type Notifier interface {
	BroadcastOrderUpdate(order models.Order)
	BroadcastTableUpdate(table models.Table)
	BroadcastTables(blocks []models.Block)
	BroadcastStaffNotification(message string)
}

type noopNotifier struct{}

func (noopNotifier) BroadcastOrderUpdate(models.Order) {}
func (noopNotifier) BroadcastTableUpdate(models.Table) {}
func (noopNotifier) BroadcastTables([]models.Block) {}
func (noopNotifier) BroadcastStaffNotification(string) {}

// DraftOptions opens a draft. Setting OrderID reopens an existing order so
// items can be added to it; Type and TableInfo are then taken from the order.
type DraftOptions struct {
	Type      string           `json:"type"`
	TableInfo *models.TableRef `json:"tableInfo"`
	OrderID   *uint            `json:"orderId"`
}

type SubmitOptions struct {
	IsPaid        bool   `json:"isPaid"`
	PaymentMethod string `json:"paymentMethod"`
}

// OrderService is the order flow shared by every console page: drafts,
// submission, status advancement and table release.
type OrderService struct {
	backend  Backend
	drafts   *DraftStore
	notifier Notifier
}

func NewOrderService(backend Backend, drafts *DraftStore, notifier Notifier) *OrderService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrderService{backend: backend, drafts: drafts, notifier: notifier}
}

func (s *OrderService) Drafts() *DraftStore {
	return s.drafts
}

// EndSession throws away the unsent drafts of a session that logged out or
// expired.
func (s *OrderService) EndSession(sessionID string) {
	if n := s.drafts.DiscardSession(sessionID); n > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{"drafts": n}).Info("Discarded drafts of ended session")
	}
}

func (s *OrderService) OpenDraft(ctx context.Context, sess *session.Session, opts DraftOptions) (DraftView, error) {
	if opts.OrderID != nil {
		return s.reopenOrder(ctx, sess, *opts.OrderID)
	}

	orderType, err := models.ParseOrderType(opts.Type)
	if err != nil {
		return DraftView{}, models.ValidationError{Field: "type", Message: "must be one of DINE_IN, TAKE_AWAY, DELIVERY"}
	}

	dineIn := orderType == models.OrderTypeDineIn
	if dineIn && opts.TableInfo == nil {
		return DraftView{}, models.ValidationError{Field: "tableInfo", Message: "required for dine-in orders"}
	}
	if !dineIn && opts.TableInfo != nil {
		return DraftView{}, models.ValidationError{Field: "tableInfo", Message: "only dine-in orders take a table"}
	}

	var tableInfo *models.TableRef
	if dineIn {
		blocks, err := s.backend.Blocks(ctx, sess.Token)
		if err != nil {
			return DraftView{}, err
		}
		table, err := findTable(blocks, opts.TableInfo.BlockID, opts.TableInfo.TableID)
		if err != nil {
			return DraftView{}, err
		}
		if table.Occupied() {
			return DraftView{}, models.ErrTableOccupied
		}
		tableInfo = &models.TableRef{BlockID: opts.TableInfo.BlockID, TableID: table.ID}
	}

	view := s.drafts.open(sess.ID, &draft{
		orderType: orderType,
		tableInfo: tableInfo,
		status:    lifecycle.CreationStatus,
	})
	utils.InfoLogger.Printf("Draft %s opened by user %d (%s)", view.ID, sess.User.ID, orderType)
	return view, nil
}

func (s *OrderService) reopenOrder(ctx context.Context, sess *session.Session, orderID uint) (DraftView, error) {
	order, err := s.backend.GetOrder(ctx, sess.Token, orderID)
	if err != nil {
		return DraftView{}, err
	}
	if !lifecycle.Editable(order.Status) {
		return DraftView{}, models.ErrOrderLocked
	}

	id := order.ID
	view := s.drafts.open(sess.ID, &draft{
		orderType: order.Type,
		tableInfo: order.TableInfo,
		orderID:   &id,
		status:    order.Status,
		cart:      cart.FromOrder(*order),
	})
	utils.InfoLogger.Printf("Draft %s reopened order #%d", view.ID, order.ID)
	return view, nil
}

func (s *OrderService) Draft(sess *session.Session, draftID string) (DraftView, error) {
	return s.drafts.View(sess.ID, draftID)
}

// Mutate applies fn to the draft's cart and returns the updated draft.
func (s *OrderService) Mutate(sess *session.Session, draftID string, fn func(c *cart.Cart) error) (DraftView, error) {
	return s.drafts.Mutate(sess.ID, draftID, fn)
}

// AddItem adds a catalog item to the draft, copying its current name and
// price from the backend catalog.
func (s *OrderService) AddItem(ctx context.Context, sess *session.Session, draftID string, itemID uint) (DraftView, error) {
	if _, err := s.drafts.View(sess.ID, draftID); err != nil {
		return DraftView{}, err
	}

	items, err := s.backend.Items(ctx, sess.Token)
	if err != nil {
		return DraftView{}, err
	}

	for _, item := range items {
		if item.ID == itemID {
			return s.drafts.Mutate(sess.ID, draftID, func(c *cart.Cart) error {
				c.AddItem(item)
				return nil
			})
		}
	}
	return DraftView{}, models.ValidationError{Field: "itemId", Message: "unknown catalog item"}
}

func (s *OrderService) CancelDraft(sess *session.Session, draftID string) error {
	return s.drafts.Discard(sess.ID, draftID)
}

// Submit sends the draft to the backend. On success the draft is gone; on
// any failure it is left exactly as it was so the staff member can retry.
func (s *OrderService) Submit(ctx context.Context, sess *session.Session, draftID string, opts SubmitOptions) (*models.Order, error) {
	var method *models.PaymentMode
	if opts.PaymentMethod != "" {
		m, err := models.ParsePaymentMode(opts.PaymentMethod)
		if err != nil {
			return nil, models.ValidationError{Field: "paymentMethod", Message: "must be one of CASH, CARD, UPI, ONLINE"}
		}
		method = &m
	}

	pending, err := s.drafts.beginSubmit(sess.ID, draftID, opts.IsPaid, method)
	if err != nil {
		return nil, err
	}

	succeeded := false
	defer func() { s.drafts.finishSubmit(pending.draftID, succeeded) }()

	if err := pending.submission.Validate(); err != nil {
		return nil, err
	}

	var order *models.Order
	if pending.orderID == nil {
		order, err = s.backend.CreateOrder(ctx, sess.Token, pending.submission)
	} else {
		order, err = s.backend.UpdateOrder(ctx, sess.Token, *pending.orderID, pending.submission)
	}
	if err != nil {
		utils.ErrorLogger.Printf("Submitting draft %s failed, cart kept: %v", draftID, err)
		return nil, err
	}

	succeeded = true
	utils.InfoLogger.Printf("Draft %s submitted as order #%d (%s, total %s)",
		draftID, order.ID, order.Status, utils.FormatMoney(order.TotalAmount))
	s.notifier.BroadcastOrderUpdate(*order)
	return order, nil
}

func (s *OrderService) Order(ctx context.Context, sess *session.Session, orderID uint) (*models.Order, error) {
	return s.backend.GetOrder(ctx, sess.Token, orderID)
}

// Advance moves an order one step along its lifecycle. The returned order is
// re-fetched after the update, so a concurrent change by another terminal
// shows up here rather than being papered over.
func (s *OrderService) Advance(ctx context.Context, sess *session.Session, orderID uint) (*models.Order, error) {
	current, err := s.backend.GetOrder(ctx, sess.Token, orderID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Advance(current.Status)
	if err != nil {
		return nil, err
	}

	update := models.StatusUpdate{OrderID: orderID, Status: next, ModifiedBy: sess.User.ID}
	if err := s.backend.UpdateStatus(ctx, sess.Token, update); err != nil {
		return nil, err
	}

	fresh, err := s.backend.GetOrder(ctx, sess.Token, orderID)
	if err != nil {
		return nil, err
	}
	if fresh.Status != next {
		utils.InfoLogger.Warnf("Order #%d advanced to %s but backend now reports %s", orderID, next, fresh.Status)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":    orderID,
		"from":        current.Status,
		"to":          fresh.Status,
		"modified_by": sess.User.ID,
	}).Info("Order status advanced")
	s.notifier.BroadcastOrderUpdate(*fresh)
	return fresh, nil
}

// RecordPayment marks an order paid with the given mode. Settlement itself
// happens in the backend.
func (s *OrderService) RecordPayment(ctx context.Context, sess *session.Session, orderID uint, mode string) (*models.Order, error) {
	m, err := models.ParsePaymentMode(mode)
	if err != nil {
		return nil, models.ValidationError{Field: "paymentMethod", Message: "must be one of CASH, CARD, UPI, ONLINE"}
	}

	order, err := s.backend.UpdatePayment(ctx, sess.Token, orderID, models.PaymentUpdate{
		IsPaid:        true,
		PaymentMethod: &m,
		ModifiedBy:    sess.User.ID,
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"order_id": orderID, "method": m}).Info("Payment recorded")
	s.notifier.BroadcastOrderUpdate(*order)
	return order, nil
}

// ReleaseTable clears a table's order reference, which is the only way a
// table becomes AVAILABLE again. The order must be COMPLETED.
func (s *OrderService) ReleaseTable(ctx context.Context, sess *session.Session, blockID, tableID uint) (*models.Table, error) {
	blocks, err := s.backend.Blocks(ctx, sess.Token)
	if err != nil {
		return nil, err
	}

	table, err := findTable(blocks, blockID, tableID)
	if err != nil {
		return nil, err
	}
	if !table.Occupied() {
		return nil, models.ErrTableNotOccupied
	}

	order, err := s.backend.GetOrder(ctx, sess.Token, *table.OrderID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanRelease(order.Status) {
		return nil, models.ErrOrderNotCompleted
	}

	if err := s.backend.ClearTable(ctx, sess.Token, blockID, tableID); err != nil {
		return nil, err
	}

	released := *table
	released.OrderID = nil
	released.OrderStatus = ""
	released.DisplayStatus = lifecycle.TableStatus(released)

	utils.InfoLogger.Printf("Table %s released after order #%d", released.Name, order.ID)
	s.notifier.BroadcastTableUpdate(released)
	return &released, nil
}

// Tables returns every block with the status each table should display.
func (s *OrderService) Tables(ctx context.Context, sess *session.Session) ([]models.Block, error) {
	blocks, err := s.backend.Blocks(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	return lifecycle.Decorate(blocks), nil
}

func (s *OrderService) Dashboard(ctx context.Context, sess *session.Session) (OccupancyStats, error) {
	blocks, err := s.Tables(ctx, sess)
	if err != nil {
		return OccupancyStats{}, err
	}
	stats := Occupancy(blocks)
	stats.OpenDrafts = s.drafts.Count()
	return stats, nil
}

func findTable(blocks []models.Block, blockID, tableID uint) (*models.Table, error) {
	for _, b := range blocks {
		if b.ID != blockID {
			continue
		}
		for i := range b.Tables {
			if b.Tables[i].ID == tableID {
				t := b.Tables[i]
				return &t, nil
			}
		}
	}
	return nil, models.ErrTableNotFound
}
