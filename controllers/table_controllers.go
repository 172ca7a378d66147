package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type TableController struct {
	Orders *services.OrderService
}

func NewTableController(orders *services.OrderService) *TableController {
	return &TableController{Orders: orders}
}

// List returns every block with the status each table should display.
func (tc *TableController) List(c *gin.Context) {
	blocks, err := tc.Orders.Tables(c.Request.Context(), middlewares.CurrentSession(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", blocks)
}

func (tc *TableController) Release(c *gin.Context) {
	blockID, err := uintParam(c, "block_id")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	tableID, err := uintParam(c, "table_id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	table, err := tc.Orders.ReleaseTable(c.Request.Context(), middlewares.CurrentSession(c), blockID, tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table released", table)
}
