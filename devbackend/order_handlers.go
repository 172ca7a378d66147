package devbackend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// CreateOrder stores a submitted cart. Dine-in orders take their table in the
// same transaction, and a table that already holds an order is refused.
func (s *Server) CreateOrder(c *gin.Context) {
	var sub models.OrderSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := sub.Validate(); err != nil {
		respondStoreError(c, err)
		return
	}

	orderType, _ := models.ParseOrderType(string(sub.Type))
	method, _ := normalisePaymentMode(sub.PaymentMethod)
	status := sub.Status
	if status == "" {
		status = lifecycle.CreationStatus
	}
	if !status.Known() {
		respondStoreError(c, models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)})
		return
	}

	order := models.Order{
		Status:        status,
		Type:          orderType,
		IsPaid:        sub.IsPaid,
		PaymentMethod: method,
		TotalAmount:   sub.TotalAmount,
		TableInfo:     sub.TableInfo,
		ModifiedBy:    c.GetUint("userID"),
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		items, err := orderItems(tx, sub.Items)
		if err != nil {
			return err
		}
		order.Items = items

		if sub.TableInfo != nil {
			var table models.Table
			err := tx.Where("id = ? AND block_id = ?", sub.TableInfo.TableID, sub.TableInfo.BlockID).First(&table).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrTableNotFound
			}
			if err != nil {
				return err
			}
			if table.Occupied() {
				return models.ErrTableOccupied
			}
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if sub.TableInfo != nil {
			res := tx.Model(&models.Table{}).
				Where("id = ? AND order_id IS NULL", sub.TableInfo.TableID).
				Update("order_id", order.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.ErrTableOccupied
			}
		}
		return nil
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order #%d created (%s, %s, total %s)",
		order.ID, order.Type, order.Status, utils.FormatMoney(order.TotalAmount))
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

func (s *Server) GetOrder(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		respondStoreError(c, err)
		return
	}

	var order models.Order
	if err := s.DB.Preload("Items").First(&order, id).Error; err != nil {
		respondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrder replaces the items and total of an order that is still open for
// edits. Status, type and table are left as they are.
func (s *Server) UpdateOrder(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		respondStoreError(c, err)
		return
	}

	var sub models.OrderSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := sub.Validate(); err != nil {
		respondStoreError(c, err)
		return
	}

	method, _ := normalisePaymentMode(sub.PaymentMethod)

	var order models.Order
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return err
		}
		if !lifecycle.Editable(order.Status) {
			return models.ErrOrderLocked
		}

		items, err := orderItems(tx, sub.Items)
		if err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"total_amount":   sub.TotalAmount,
			"is_paid":        sub.IsPaid,
			"payment_method": method,
			"modified_by":    c.GetUint("userID"),
		}).Error
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if err := s.DB.Preload("Items").First(&order, id).Error; err != nil {
		respondStoreError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order #%d updated (%d lines, total %s)",
		order.ID, len(order.Items), utils.FormatMoney(order.TotalAmount))
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// UpdateStatus applies a single forward lifecycle step. Anything else,
// including a step computed from a status that has since moved on, is a
// conflict.
func (s *Server) UpdateStatus(c *gin.Context) {
	var update models.StatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if update.OrderID == 0 {
		respondStoreError(c, models.ValidationError{Field: "orderId", Message: "is required"})
		return
	}

	var order models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, update.OrderID).Error; err != nil {
			return err
		}
		if !lifecycle.IsStep(order.Status, update.Status) {
			return fmt.Errorf("%w: %s to %s", models.ErrNotAdvanceable, order.Status, update.Status)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{"status": update.Status, "modified_by": update.ModifiedBy})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotAdvanceable
		}
		return nil
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order #%d status %s -> %s by user %d", order.ID, order.Status, update.Status, update.ModifiedBy)
	order.Status = update.Status
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func (s *Server) UpdatePayment(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		respondStoreError(c, err)
		return
	}

	var update models.PaymentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	method, err := normalisePaymentMode(update.PaymentMethod)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	var order models.Order
	if err := s.DB.First(&order, id).Error; err != nil {
		respondStoreError(c, err)
		return
	}

	err = s.DB.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"is_paid":        update.IsPaid,
		"payment_method": method,
		"modified_by":    update.ModifiedBy,
	}).Error
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if err := s.DB.Preload("Items").First(&order, id).Error; err != nil {
		respondStoreError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order #%d payment recorded (paid=%t)", order.ID, order.IsPaid)
	utils.RespondJSON(c, http.StatusOK, "Payment updated", order)
}

// orderItems turns submitted lines into order rows. Every item must exist in
// the catalog; a missing name is filled from it, the submitted price is kept.
func orderItems(tx *gorm.DB, lines []models.SubmissionItem) ([]models.OrderItem, error) {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ID)
	}

	var catalog []models.CatalogItem
	if err := tx.Where("id IN ?", ids).Find(&catalog).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(catalog))
	for _, item := range catalog {
		names[item.ID] = item.Name
	}

	items := make([]models.OrderItem, 0, len(lines))
	for i, l := range lines {
		name, ok := names[l.ID]
		if !ok {
			return nil, models.ValidationError{Field: fmt.Sprintf("items[%d].id", i), Message: "unknown catalog item"}
		}
		if l.Name != "" {
			name = l.Name
		}
		items = append(items, models.OrderItem{
			ItemID:   l.ID,
			Name:     name,
			Quantity: l.Quantity,
			Price:    l.Price,
		})
	}
	return items, nil
}

func normalisePaymentMode(m *models.PaymentMode) (*models.PaymentMode, error) {
	if m == nil {
		return nil, nil
	}
	parsed, err := models.ParsePaymentMode(string(*m))
	if err != nil {
		return nil, models.ValidationError{Field: "paymentMethod", Message: "must be one of CASH, CARD, UPI, ONLINE"}
	}
	return &parsed, nil
}
