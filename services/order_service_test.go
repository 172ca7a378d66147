package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/cart"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/session"
)

func seededBackend() *fakeBackend {
	fb := newFakeBackend()
	fb.items = []models.CatalogItem{
		{ID: 1, Name: "Nasi Goreng", Price: decimal.NewFromInt(100), CategoryID: 1},
		{ID: 2, Name: "Es Teh", Price: decimal.NewFromInt(50), CategoryID: 2},
	}
	fb.blocks = []models.Block{
		{ID: 1, Name: "Ground", Tables: []models.Table{
			{ID: 1, BlockID: 1, Name: "T1"},
			{ID: 2, BlockID: 1, Name: "T2"},
		}},
	}
	return fb
}

func testSession(id string) *session.Session {
	return &session.Session{
		ID:        id,
		Token:     "tok",
		User:      models.User{ID: 5, Name: "Ayu", Role: "cashier"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newTestService(fb *fakeBackend) (*OrderService, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewOrderService(fb, NewDraftStore(), n), n
}

func takeAwayDraft(t *testing.T, svc *OrderService, sess *session.Session) DraftView {
	t.Helper()
	view, err := svc.OpenDraft(context.Background(), sess, DraftOptions{Type: "TAKEAWAY"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderTypeTakeAway, view.Type)
	return view
}

func TestAddItemCapturesCatalogPrice(t *testing.T) {
	fb := seededBackend()
	svc, _ := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	view := takeAwayDraft(t, svc, sess)
	_, err := svc.AddItem(ctx, sess, view.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, sess, view.ID, 1)
	require.NoError(t, err)
	view, err = svc.AddItem(ctx, sess, view.ID, 2)
	require.NoError(t, err)

	view, err = svc.Mutate(sess, view.ID, func(c *cart.Cart) error {
		c.SetTaxPercent(decimal.NewFromInt(10))
		return nil
	})
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.Equal(t, "250", view.Totals.Subtotal.String())
	assert.Equal(t, "25", view.Totals.TaxAmount.String())
	assert.Equal(t, "275", view.Totals.GrandTotal.String())

	// catalog repricing does not touch existing lines
	fb.items[0].Price = decimal.NewFromInt(999)
	view, err = svc.Draft(sess, view.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(view.Lines[0].UnitPrice))

	_, err = svc.AddItem(ctx, sess, view.ID, 77)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	fb := seededBackend()
	svc, n := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	view := takeAwayDraft(t, svc, sess)
	svc.AddItem(ctx, sess, view.ID, 1)
	svc.AddItem(ctx, sess, view.ID, 2)
	before, err := svc.Draft(sess, view.ID)
	require.NoError(t, err)

	fb.createErr = &BackendError{Op: "create order", Err: errors.New("connection refused")}
	_, err = svc.Submit(ctx, sess, view.ID, SubmitOptions{})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	after, err := svc.Draft(sess, view.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Lines, after.Lines)
	assert.Equal(t, before.Totals, after.Totals)
	assert.False(t, after.Submitting)
	assert.Empty(t, n.orders)

	// retry without re-entering anything
	fb.createErr = nil
	order, err := svc.Submit(ctx, sess, view.ID, SubmitOptions{PaymentMethod: "cash", IsPaid: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOrdered, order.Status)
	assert.Equal(t, "150", order.TotalAmount.String())
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, models.PaymentCash, *order.PaymentMethod)
	require.Len(t, n.orders, 1)

	_, err = svc.Draft(sess, view.ID)
	assert.ErrorIs(t, err, models.ErrDraftNotFound)
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	svc, _ := newTestService(seededBackend())
	sess := testSession("s1")

	view := takeAwayDraft(t, svc, sess)
	_, err := svc.Submit(context.Background(), sess, view.ID, SubmitOptions{})
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	// still usable afterwards
	_, err = svc.AddItem(context.Background(), sess, view.ID, 1)
	assert.NoError(t, err)
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	fb := seededBackend()
	fb.createGate = make(chan struct{})
	svc, _ := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	view := takeAwayDraft(t, svc, sess)
	_, err := svc.AddItem(ctx, sess, view.ID, 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, sess, view.ID, SubmitOptions{})
		done <- err
	}()

	require.Eventually(t, func() bool {
		v, err := svc.Draft(sess, view.ID)
		return err == nil && v.Submitting
	}, time.Second, 5*time.Millisecond)

	_, err = svc.Submit(ctx, sess, view.ID, SubmitOptions{})
	assert.ErrorIs(t, err, models.ErrSubmitInProgress)

	_, err = svc.Mutate(sess, view.ID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	assert.ErrorIs(t, err, models.ErrSubmitInProgress)
	assert.ErrorIs(t, svc.CancelDraft(sess, view.ID), models.ErrSubmitInProgress)

	close(fb.createGate)
	require.NoError(t, <-done)
	assert.Len(t, fb.orders, 1)
}

func TestDraftsAreScopedToSession(t *testing.T) {
	svc, _ := newTestService(seededBackend())
	owner, other := testSession("s1"), testSession("s2")

	view := takeAwayDraft(t, svc, owner)

	_, err := svc.Draft(other, view.ID)
	assert.ErrorIs(t, err, models.ErrDraftNotFound)
	assert.ErrorIs(t, svc.CancelDraft(other, view.ID), models.ErrDraftNotFound)

	assert.Equal(t, 1, svc.Drafts().DiscardSession(owner.ID))
	assert.Zero(t, svc.Drafts().Count())
}

func TestEndedSessionDropsDraftAfterFailedSubmit(t *testing.T) {
	fb := seededBackend()
	fb.createGate = make(chan struct{})
	fb.createErr = &BackendError{Op: "create order", StatusCode: 503, Message: "unavailable"}
	svc, _ := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	view := takeAwayDraft(t, svc, sess)
	_, err := svc.AddItem(ctx, sess, view.ID, 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, sess, view.ID, SubmitOptions{})
		done <- err
	}()

	require.Eventually(t, func() bool {
		v, err := svc.Draft(sess, view.ID)
		return err == nil && v.Submitting
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, svc.Drafts().DiscardSession(sess.ID))
	_, err = svc.Draft(sess, view.ID)
	assert.ErrorIs(t, err, models.ErrDraftNotFound)
	assert.Zero(t, svc.Drafts().DiscardSession(sess.ID))

	close(fb.createGate)
	assert.Error(t, <-done)

	assert.Zero(t, svc.Drafts().Count())
	_, err = svc.Draft(sess, view.ID)
	assert.ErrorIs(t, err, models.ErrDraftNotFound)
}

func TestEndSessionDiscardsOnlyThatSession(t *testing.T) {
	svc, _ := newTestService(seededBackend())
	owner, other := testSession("s1"), testSession("s2")

	takeAwayDraft(t, svc, owner)
	takeAwayDraft(t, svc, owner)
	kept := takeAwayDraft(t, svc, other)

	svc.EndSession(owner.ID)

	assert.Equal(t, 1, svc.Drafts().Count())
	_, err := svc.Draft(other, kept.ID)
	assert.NoError(t, err)
}

func TestMutateIsAllOrNothing(t *testing.T) {
	svc, _ := newTestService(seededBackend())
	sess := testSession("s1")
	ctx := context.Background()

	view := takeAwayDraft(t, svc, sess)
	_, err := svc.AddItem(ctx, sess, view.ID, 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = svc.Mutate(sess, view.ID, func(c *cart.Cart) error {
		c.Remove(1)
		c.SetDiscountPercent(decimal.NewFromInt(50))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	view, err = svc.Draft(sess, view.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.DiscountPercent.IsZero())
}

func TestOpenDineInDraft(t *testing.T) {
	fb := seededBackend()
	svc, _ := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	_, err := svc.OpenDraft(ctx, sess, DraftOptions{Type: "DINE_IN"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.OpenDraft(ctx, sess, DraftOptions{Type: "DELIVERY", TableInfo: &models.TableRef{BlockID: 1, TableID: 1}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.OpenDraft(ctx, sess, DraftOptions{Type: "DINE_IN", TableInfo: &models.TableRef{BlockID: 1, TableID: 9}})
	assert.ErrorIs(t, err, models.ErrTableNotFound)

	view, err := svc.OpenDraft(ctx, sess, DraftOptions{Type: "dinein", TableInfo: &models.TableRef{BlockID: 1, TableID: 1}})
	require.NoError(t, err)
	assert.Equal(t, models.OrderTypeDineIn, view.Type)

	svc.AddItem(ctx, sess, view.ID, 1)
	order, err := svc.Submit(ctx, sess, view.ID, SubmitOptions{})
	require.NoError(t, err)
	require.NotNil(t, order.TableInfo)

	_, err = svc.OpenDraft(ctx, sess, DraftOptions{Type: "DINE_IN", TableInfo: &models.TableRef{BlockID: 1, TableID: 1}})
	assert.ErrorIs(t, err, models.ErrTableOccupied)
}

func TestReopenOrderAddsToExistingItems(t *testing.T) {
	fb := seededBackend()
	svc, _ := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	view := takeAwayDraft(t, svc, sess)
	svc.AddItem(ctx, sess, view.ID, 1)
	order, err := svc.Submit(ctx, sess, view.ID, SubmitOptions{})
	require.NoError(t, err)

	edit, err := svc.OpenDraft(ctx, sess, DraftOptions{OrderID: &order.ID})
	require.NoError(t, err)
	require.NotNil(t, edit.OrderID)
	require.Len(t, edit.Lines, 1)

	_, err = svc.AddItem(ctx, sess, edit.ID, 2)
	require.NoError(t, err)
	updated, err := svc.Submit(ctx, sess, edit.ID, SubmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, order.ID, updated.ID)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, "150", updated.TotalAmount.String())

	fb.orders[order.ID].Status = models.StatusBilled
	_, err = svc.OpenDraft(ctx, sess, DraftOptions{OrderID: &order.ID})
	assert.ErrorIs(t, err, models.ErrOrderLocked)
}

func submittedDineIn(t *testing.T, svc *OrderService, sess *session.Session, tableID uint) *models.Order {
	t.Helper()
	ctx := context.Background()
	view, err := svc.OpenDraft(ctx, sess, DraftOptions{Type: "DINE_IN", TableInfo: &models.TableRef{BlockID: 1, TableID: tableID}})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, sess, view.ID, 1)
	require.NoError(t, err)
	order, err := svc.Submit(ctx, sess, view.ID, SubmitOptions{})
	require.NoError(t, err)
	return order
}

func TestAdvanceWalksToCompletedAndRefetches(t *testing.T) {
	fb := seededBackend()
	svc, n := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	order := submittedDineIn(t, svc, sess, 1)

	for _, want := range []models.OrderStatus{models.StatusServed, models.StatusBilled, models.StatusCompleted} {
		got, err := svc.Advance(ctx, sess, order.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	_, err := svc.Advance(ctx, sess, order.ID)
	assert.ErrorIs(t, err, models.ErrNotAdvanceable)

	require.Len(t, fb.updates, 3)
	assert.Equal(t, models.StatusUpdate{OrderID: order.ID, Status: models.StatusServed, ModifiedBy: 5}, fb.updates[0])
	// one broadcast for the submit, one per advance
	assert.Len(t, n.orders, 4)
}

func TestAdvanceReturnsAuthoritativeStatus(t *testing.T) {
	fb := seededBackend()
	svc, _ := newTestService(fb)
	sess := testSession("s1")

	order := submittedDineIn(t, svc, sess, 1)
	fb.afterStatus = func(o *models.Order) { o.Status = models.StatusBilled }

	got, err := svc.Advance(context.Background(), sess, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBilled, got.Status)
}

func TestAdvanceUnknownStatusFailsClosed(t *testing.T) {
	fb := seededBackend()
	svc, _ := newTestService(fb)
	sess := testSession("s1")

	order := submittedDineIn(t, svc, sess, 1)
	fb.orders[order.ID].Status = "ON_HOLD"

	_, err := svc.Advance(context.Background(), sess, order.ID)
	assert.ErrorIs(t, err, models.ErrNotAdvanceable)
	assert.Empty(t, fb.updates)
}

func TestReleaseTable(t *testing.T) {
	fb := seededBackend()
	svc, n := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	_, err := svc.ReleaseTable(ctx, sess, 1, 2)
	assert.ErrorIs(t, err, models.ErrTableNotOccupied)
	_, err = svc.ReleaseTable(ctx, sess, 3, 1)
	assert.ErrorIs(t, err, models.ErrTableNotFound)

	order := submittedDineIn(t, svc, sess, 1)

	blocks, err := svc.Tables(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOrdered, blocks[0].Tables[0].DisplayStatus)
	assert.Equal(t, models.StatusAvailable, blocks[0].Tables[1].DisplayStatus)

	_, err = svc.ReleaseTable(ctx, sess, 1, 1)
	assert.ErrorIs(t, err, models.ErrOrderNotCompleted)

	for i := 0; i < 3; i++ {
		_, err := svc.Advance(ctx, sess, order.ID)
		require.NoError(t, err)
	}

	table, err := svc.ReleaseTable(ctx, sess, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, table.OrderID)
	assert.Equal(t, models.StatusAvailable, table.DisplayStatus)
	assert.Equal(t, []models.TableRef{{BlockID: 1, TableID: 1}}, fb.cleared)
	require.Len(t, n.tables, 1)

	stats, err := svc.Dashboard(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTables)
	assert.Equal(t, 2, stats.Available)
}

func TestRecordPayment(t *testing.T) {
	fb := seededBackend()
	svc, _ := newTestService(fb)
	sess := testSession("s1")
	ctx := context.Background()

	order := submittedDineIn(t, svc, sess, 2)

	_, err := svc.RecordPayment(ctx, sess, order.ID, "bitcoin")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	paid, err := svc.RecordPayment(ctx, sess, order.ID, "upi")
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, models.PaymentUPI, *paid.PaymentMethod)
}
