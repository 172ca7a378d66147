package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// CatalogController passes the backend catalog through to the console.
type CatalogController struct {
	Backend services.Backend
}

func NewCatalogController(backend services.Backend) *CatalogController {
	return &CatalogController{Backend: backend}
}

func (cc *CatalogController) Items(c *gin.Context) {
	sess := middlewares.CurrentSession(c)

	items, err := cc.Backend.Items(c.Request.Context(), sess.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of items", items)
}

func (cc *CatalogController) Categories(c *gin.Context) {
	sess := middlewares.CurrentSession(c)

	categories, err := cc.Backend.Categories(c.Request.Context(), sess.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}
