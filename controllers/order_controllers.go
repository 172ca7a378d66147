package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type OrderController struct {
	Orders     *services.OrderService
	Restaurant string
}

func NewOrderController(orders *services.OrderService, restaurant string) *OrderController {
	return &OrderController{Orders: orders, Restaurant: restaurant}
}

func (oc *OrderController) Get(c *gin.Context) {
	id, err := uintParam(c, "order_id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := oc.Orders.Order(c.Request.Context(), middlewares.CurrentSession(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// Advance moves the order to its next status.
func (oc *OrderController) Advance(c *gin.Context) {
	id, err := uintParam(c, "order_id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := oc.Orders.Advance(c.Request.Context(), middlewares.CurrentSession(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Order is now %s", order.Status), order)
}

func (oc *OrderController) Payment(c *gin.Context) {
	id, err := uintParam(c, "order_id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var body struct {
		PaymentMethod string `json:"paymentMethod" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.RecordPayment(c.Request.Context(), middlewares.CurrentSession(c), id, body.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment recorded", order)
}

// Bill renders the order as a printable PDF.
func (oc *OrderController) Bill(c *gin.Context) {
	id, err := uintParam(c, "order_id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := oc.Orders.Order(c.Request.Context(), middlewares.CurrentSession(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.RenderBill(&buf, *order, oc.Restaurant); err != nil {
		utils.ErrorLogger.Printf("Rendering bill for order #%d failed: %v", order.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := services.BillNumber(*order, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", strings.ReplaceAll(filename, "/", "-")+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
