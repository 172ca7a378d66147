package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/cart"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var hundred = decimal.NewFromInt(100)

// DraftController drives the cart of an order that has not been sent yet.
// Every response carries the draft's lines and totals as they stand now.
type DraftController struct {
	Orders *services.OrderService
}

func NewDraftController(orders *services.OrderService) *DraftController {
	return &DraftController{Orders: orders}
}

func (dc *DraftController) Open(c *gin.Context) {
	var opts services.DraftOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	view, err := dc.Orders.OpenDraft(c.Request.Context(), middlewares.CurrentSession(c), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Draft opened", view)
}

func (dc *DraftController) Get(c *gin.Context) {
	view, err := dc.Orders.Draft(middlewares.CurrentSession(c), c.Param("draft_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Draft detail", view)
}

func (dc *DraftController) Delete(c *gin.Context) {
	if err := dc.Orders.CancelDraft(middlewares.CurrentSession(c), c.Param("draft_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Draft discarded", nil)
}

func (dc *DraftController) AddItem(c *gin.Context) {
	var body struct {
		ItemID uint `json:"itemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	view, err := dc.Orders.AddItem(c.Request.Context(), middlewares.CurrentSession(c), c.Param("draft_id"), body.ItemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added", view)
}

// Increment, Decrement and RemoveItem ignore item ids that are not in the
// cart; the draft is returned unchanged.
func (dc *DraftController) Increment(c *gin.Context) {
	dc.mutateLine(c, "Item incremented", (*cart.Cart).Increment)
}

func (dc *DraftController) Decrement(c *gin.Context) {
	dc.mutateLine(c, "Item decremented", (*cart.Cart).Decrement)
}

func (dc *DraftController) RemoveItem(c *gin.Context) {
	dc.mutateLine(c, "Item removed", (*cart.Cart).Remove)
}

func (dc *DraftController) mutateLine(c *gin.Context, message string, op func(*cart.Cart, uint) bool) {
	itemID, err := uintParam(c, "item_id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	view, err := dc.Orders.Mutate(middlewares.CurrentSession(c), c.Param("draft_id"), func(ct *cart.Cart) error {
		op(ct, itemID)
		return nil
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, view)
}

func (dc *DraftController) Clear(c *gin.Context) {
	view, err := dc.Orders.Mutate(middlewares.CurrentSession(c), c.Param("draft_id"), func(ct *cart.Cart) error {
		ct.Clear()
		return nil
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", view)
}

// Adjustments sets the discount and/or tax percentage. Both must lie in
// [0, 100]; if either is out of range neither is applied.
func (dc *DraftController) Adjustments(c *gin.Context) {
	var body struct {
		DiscountPercent *decimal.Decimal `json:"discountPercent"`
		TaxPercent      *decimal.Decimal `json:"taxPercent"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	view, err := dc.Orders.Mutate(middlewares.CurrentSession(c), c.Param("draft_id"), func(ct *cart.Cart) error {
		if body.DiscountPercent != nil {
			if !validPercent(*body.DiscountPercent) {
				return models.ValidationError{Field: "discountPercent", Message: "must be between 0 and 100"}
			}
			ct.SetDiscountPercent(*body.DiscountPercent)
		}
		if body.TaxPercent != nil {
			if !validPercent(*body.TaxPercent) {
				return models.ValidationError{Field: "taxPercent", Message: "must be between 0 and 100"}
			}
			ct.SetTaxPercent(*body.TaxPercent)
		}
		return nil
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Adjustments applied", view)
}

// Submit sends the draft to the backend. The body is optional.
func (dc *DraftController) Submit(c *gin.Context) {
	var opts services.SubmitOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := dc.Orders.Submit(c.Request.Context(), middlewares.CurrentSession(c), c.Param("draft_id"), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order submitted", order)
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
