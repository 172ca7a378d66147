package services

import (
	"fmt"
	"io"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
)

// OccupancyStats summarises the floor for the dashboard.
type OccupancyStats struct {
	TotalTables int                        `json:"totalTables"`
	Occupied    int                        `json:"occupied"`
	Available   int                        `json:"available"`
	ByStatus    map[models.OrderStatus]int `json:"byStatus"`
	OpenDrafts  int                        `json:"openDrafts"`
}

// Occupancy counts tables per display status. blocks must already be
// decorated.
func Occupancy(blocks []models.Block) OccupancyStats {
	stats := OccupancyStats{ByStatus: make(map[models.OrderStatus]int)}
	for _, b := range blocks {
		for _, t := range b.Tables {
			stats.TotalTables++
			if t.Occupied() {
				stats.Occupied++
			} else {
				stats.Available++
			}
			status := t.DisplayStatus
			if status == "" {
				status = lifecycle.TableStatus(t)
			}
			stats.ByStatus[status]++
		}
	}
	return stats
}

// statusOrder lists AVAILABLE, then the forward path, then anything else the
// backend reported in name order.
func (s OccupancyStats) statusOrder() []models.OrderStatus {
	order := append([]models.OrderStatus{models.StatusAvailable}, lifecycle.Sequence()...)
	seen := make(map[models.OrderStatus]bool, len(order))
	for _, st := range order {
		seen[st] = true
	}

	var extra []models.OrderStatus
	for st := range s.ByStatus {
		if !seen[st] {
			extra = append(extra, st)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}

// RenderOccupancyChart draws a PNG bar chart of tables per display status.
func RenderOccupancyChart(w io.Writer, stats OccupancyStats) error {
	maxCount := 1
	var bars []chart.Value
	for _, st := range stats.statusOrder() {
		n := stats.ByStatus[st]
		if n > maxCount {
			maxCount = n
		}
		bars = append(bars, chart.Value{Label: string(st), Value: float64(n)})
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("Tables (%d occupied of %d)", stats.Occupied, stats.TotalTables),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      800,
		Height:     400,
		BarWidth:   50,
		BarSpacing: 40,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("error rendering occupancy chart: %w", err)
	}
	return nil
}
