package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/cart"
	"github.com/yeremiapane/restaurant-pos/models"
)

// draft is one order being built. Its cart is only touched under the store
// lock.
type draft struct {
	id         string
	sessionID  string
	orderType  models.OrderType
	tableInfo  *models.TableRef
	orderID    *uint
	status     models.OrderStatus
	cart       *cart.Cart
	createdAt  time.Time
	submitting bool
	// orphaned is set when the owning session ends mid-submit
	orphaned bool
}

// DraftView is a consistent copy of a draft with freshly computed totals.
type DraftView struct {
	ID              string           `json:"draftId"`
	Type            models.OrderType `json:"type"`
	TableInfo       *models.TableRef `json:"tableInfo,omitempty"`
	OrderID         *uint            `json:"orderId,omitempty"`
	Lines           []cart.LineItem  `json:"lines"`
	DiscountPercent decimal.Decimal  `json:"discountPercent"`
	TaxPercent      decimal.Decimal  `json:"taxPercent"`
	Totals          cart.Totals      `json:"totals"`
	Submitting      bool             `json:"submitting"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// pendingSubmit is what Submit needs once the draft is locked for submission.
type pendingSubmit struct {
	draftID    string
	orderID    *uint
	submission models.OrderSubmission
}

// DraftStore keeps the drafts of every session. A draft is only visible to the
// session that opened it.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]*draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]*draft)}
}

func (ds *DraftStore) open(sessionID string, d *draft) DraftView {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	d.id = uuid.NewString()
	d.sessionID = sessionID
	d.createdAt = time.Now()
	if d.cart == nil {
		d.cart = cart.New()
	}
	ds.drafts[d.id] = d
	return d.view()
}

// lookup must be called with mu held.
func (ds *DraftStore) lookup(sessionID, id string) (*draft, error) {
	d, ok := ds.drafts[id]
	if !ok || d.orphaned || d.sessionID != sessionID {
		return nil, models.ErrDraftNotFound
	}
	return d, nil
}

func (ds *DraftStore) View(sessionID, id string) (DraftView, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	d, err := ds.lookup(sessionID, id)
	if err != nil {
		return DraftView{}, err
	}
	return d.view(), nil
}

// Mutate applies fn to the draft's cart. Drafts being submitted are frozen.
func (ds *DraftStore) Mutate(sessionID, id string, fn func(c *cart.Cart) error) (DraftView, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	d, err := ds.lookup(sessionID, id)
	if err != nil {
		return DraftView{}, err
	}
	if d.submitting {
		return DraftView{}, models.ErrSubmitInProgress
	}

	// fn may fail half way; restore so the cart is all-or-nothing
	before := d.cart.Snapshot()
	if err := fn(d.cart); err != nil {
		d.cart.Restore(before)
		return DraftView{}, err
	}
	return d.view(), nil
}

func (ds *DraftStore) Discard(sessionID, id string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	d, err := ds.lookup(sessionID, id)
	if err != nil {
		return err
	}
	if d.submitting {
		return models.ErrSubmitInProgress
	}
	delete(ds.drafts, id)
	return nil
}

// DiscardSession drops every draft of a session and returns how many it
// dropped. Drafts mid-submit become unreachable at once and leave the store
// when their submission finishes, whatever its outcome.
func (ds *DraftStore) DiscardSession(sessionID string) int {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	n := 0
	for id, d := range ds.drafts {
		if d.sessionID != sessionID || d.orphaned {
			continue
		}
		if d.submitting {
			d.orphaned = true
		} else {
			delete(ds.drafts, id)
		}
		n++
	}
	return n
}

func (ds *DraftStore) Count() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.drafts)
}

// beginSubmit freezes the draft and assembles its payload. Only one
// submission per draft may be in flight.
func (ds *DraftStore) beginSubmit(sessionID, id string, isPaid bool, method *models.PaymentMode) (pendingSubmit, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	d, err := ds.lookup(sessionID, id)
	if err != nil {
		return pendingSubmit{}, err
	}
	if d.submitting {
		return pendingSubmit{}, models.ErrSubmitInProgress
	}
	if d.cart.IsEmpty() {
		return pendingSubmit{}, models.ErrEmptyCart
	}

	d.submitting = true
	sub := d.cart.Submission(cart.Meta{
		Status:        d.status,
		Type:          d.orderType,
		IsPaid:        isPaid,
		PaymentMethod: method,
		TableInfo:     d.tableInfo,
	})
	return pendingSubmit{draftID: d.id, orderID: d.orderID, submission: sub}, nil
}

// finishSubmit unfreezes the draft, or drops it when the submission went
// through or its session ended meanwhile.
func (ds *DraftStore) finishSubmit(id string, succeeded bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	d, ok := ds.drafts[id]
	if !ok {
		return
	}
	if succeeded || d.orphaned {
		delete(ds.drafts, id)
		return
	}
	d.submitting = false
}

func (d *draft) view() DraftView {
	return DraftView{
		ID:              d.id,
		Type:            d.orderType,
		TableInfo:       d.tableInfo,
		OrderID:         d.orderID,
		Lines:           d.cart.Lines(),
		DiscountPercent: d.cart.DiscountPercent(),
		TaxPercent:      d.cart.TaxPercent(),
		Totals:          d.cart.Totals().Rounded(),
		Submitting:      d.submitting,
		CreatedAt:       d.createdAt,
	}
}
