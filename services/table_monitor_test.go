package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
)

func TestPollBroadcastsOnlyChanges(t *testing.T) {
	fb := seededBackend()
	n := &recordingNotifier{}
	tm := NewTableMonitor(fb, n, time.Second)
	ctx := context.Background()

	assert.Zero(t, tm.Poll(ctx))
	assert.Equal(t, 1, n.snaps)
	assert.Empty(t, n.tables)

	assert.Zero(t, tm.Poll(ctx))

	svc := NewOrderService(fb, NewDraftStore(), nil)
	order := submittedDineIn(t, svc, testSession("s1"), 2)

	assert.Equal(t, 1, tm.Poll(ctx))
	require.Len(t, n.tables, 1)
	assert.Equal(t, uint(2), n.tables[0].ID)
	assert.Equal(t, models.StatusOrdered, n.tables[0].DisplayStatus)

	fb.orders[order.ID].Status = models.StatusServed
	assert.Equal(t, 1, tm.Poll(ctx))
	assert.Equal(t, models.StatusServed, n.tables[1].DisplayStatus)
	assert.Empty(t, n.notes)

	fb.orders[order.ID].Status = models.StatusCompleted
	assert.Equal(t, 1, tm.Poll(ctx))
	require.Len(t, n.notes, 1)
	assert.Contains(t, n.notes[0], "can be cleared")
}

func TestMonitorStartStop(t *testing.T) {
	fb := seededBackend()
	n := &recordingNotifier{}
	tm := NewTableMonitor(fb, n, 10*time.Millisecond)

	tm.Start(context.Background())
	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return n.snaps == 1
	}, time.Second, 5*time.Millisecond)

	tm.Stop()
	tm.Stop()
}
