package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// TableMonitor polls the backend's table list and pushes display-status
// changes to the live feed. The backend has no push channel of its own.
type TableMonitor struct {
	Backend  Backend
	Notifier Notifier
	Interval time.Duration
	StopChan chan struct{}

	mu       sync.Mutex
	last     map[models.TableRef]models.OrderStatus
	stopOnce sync.Once
	done     chan struct{}
}

func NewTableMonitor(backend Backend, notifier Notifier, interval time.Duration) *TableMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &TableMonitor{
		Backend:  backend,
		Notifier: notifier,
		Interval: interval,
		StopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (tm *TableMonitor) Start(ctx context.Context) {
	go func() {
		defer close(tm.done)

		ticker := time.NewTicker(tm.Interval)
		defer ticker.Stop()

		tm.Poll(ctx)
		for {
			select {
			case <-ticker.C:
				tm.Poll(ctx)
			case <-tm.StopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	utils.InfoLogger.Printf("Table monitor started, polling every %v", tm.Interval)
}

// Stop ends polling and waits for the loop to exit. Only call it after Start.
func (tm *TableMonitor) Stop() {
	tm.stopOnce.Do(func() { close(tm.StopChan) })
	<-tm.done
}

// Poll fetches the tables once and broadcasts the ones whose display status
// changed since the previous poll. The first poll only records a baseline
// and sends one full snapshot.
func (tm *TableMonitor) Poll(ctx context.Context) int {
	reqCtx, cancel := context.WithTimeout(ctx, tm.Interval)
	defer cancel()

	blocks, err := tm.Backend.Blocks(reqCtx, "")
	if err != nil {
		utils.ErrorLogger.Printf("Error fetching tables: %v", err)
		return 0
	}
	blocks = lifecycle.Decorate(blocks)

	tm.mu.Lock()
	first := tm.last == nil
	current := make(map[models.TableRef]models.OrderStatus)
	var changed []models.Table
	for _, b := range blocks {
		for _, t := range b.Tables {
			ref := models.TableRef{BlockID: b.ID, TableID: t.ID}
			current[ref] = t.DisplayStatus
			if !first && tm.last[ref] != t.DisplayStatus {
				changed = append(changed, t)
			}
		}
	}
	tm.last = current
	tm.mu.Unlock()

	if first {
		tm.Notifier.BroadcastTables(blocks)
		return 0
	}

	for _, t := range changed {
		utils.InfoLogger.Printf("Table %s is now %s", t.Name, t.DisplayStatus)
		tm.Notifier.BroadcastTableUpdate(t)
		if t.DisplayStatus == models.StatusCompleted {
			tm.Notifier.BroadcastStaffNotification(fmt.Sprintf("Table %s is completed and can be cleared", t.Name))
		}
	}
	return len(changed)
}
