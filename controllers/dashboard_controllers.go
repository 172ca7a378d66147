package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type DashboardController struct {
	Orders   *services.OrderService
	Sessions *session.Manager
	Hub      *hub.Hub
}

func NewDashboardController(orders *services.OrderService, sessions *session.Manager, h *hub.Hub) *DashboardController {
	return &DashboardController{Orders: orders, Sessions: sessions, Hub: h}
}

// Stats returns table occupancy and pushes the same numbers to every live
// console.
func (dc *DashboardController) Stats(c *gin.Context) {
	stats, err := dc.Orders.Dashboard(c.Request.Context(), middlewares.CurrentSession(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	dc.Hub.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"occupancy":    stats,
		"liveClients":  dc.Hub.Clients(),
		"openSessions": dc.Sessions.Count(),
	})
}

func (dc *DashboardController) OccupancyChart(c *gin.Context) {
	stats, err := dc.Orders.Dashboard(c.Request.Context(), middlewares.CurrentSession(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.RenderOccupancyChart(&buf, stats); err != nil {
		utils.ErrorLogger.Printf("Rendering occupancy chart failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
