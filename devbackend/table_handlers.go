package devbackend

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/lifecycle"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// ListBlocks returns every block with its tables. Occupied tables carry the
// status of the order they hold.
func (s *Server) ListBlocks(c *gin.Context) {
	var blocks []models.Block
	err := s.DB.Preload("Tables", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Order("id").Find(&blocks).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var orderIDs []uint
	for _, b := range blocks {
		for _, t := range b.Tables {
			if t.OrderID != nil {
				orderIDs = append(orderIDs, *t.OrderID)
			}
		}
	}

	if len(orderIDs) > 0 {
		var orders []models.Order
		if err := s.DB.Select("id", "status").Where("id IN ?", orderIDs).Find(&orders).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		statusOf := make(map[uint]models.OrderStatus, len(orders))
		for _, o := range orders {
			statusOf[o.ID] = o.Status
		}
		for i := range blocks {
			for j := range blocks[i].Tables {
				if id := blocks[i].Tables[j].OrderID; id != nil {
					blocks[i].Tables[j].OrderStatus = statusOf[*id]
				}
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "List of blocks", blocks)
}

// ClearTableOrder frees a table. Only a completed order may be cleared.
func (s *Server) ClearTableOrder(c *gin.Context) {
	blockID, err := paramID(c, "block_id")
	if err != nil {
		respondStoreError(c, err)
		return
	}
	tableID, err := paramID(c, "table_id")
	if err != nil {
		respondStoreError(c, err)
		return
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Where("id = ? AND block_id = ?", tableID, blockID).First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrTableNotFound
			}
			return err
		}
		if table.OrderID == nil {
			return models.ErrTableNotOccupied
		}

		var order models.Order
		if err := tx.Select("id", "status").First(&order, *table.OrderID).Error; err != nil {
			return err
		}
		if !lifecycle.CanRelease(order.Status) {
			return models.ErrOrderNotCompleted
		}

		return tx.Model(&models.Table{}).Where("id = ?", table.ID).Update("order_id", nil).Error
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d in block %d cleared", tableID, blockID)
	utils.RespondJSON(c, http.StatusOK, "Table released", nil)
}
