package devbackend

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func (s *Server) ListItems(c *gin.Context) {
	var items []models.CatalogItem
	if err := s.DB.Order("id").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of items", items)
}

func (s *Server) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := s.DB.Order("id").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}
