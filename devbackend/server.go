// Package devbackend is a small stand-in for the restaurant REST backend. It
// serves the same contract the console's BackendClient speaks, backed by gorm,
// so the console can be run and tested without the real service.
package devbackend

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var errUnauthorized = errors.New("missing or invalid bearer token")

type Server struct {
	DB            *gorm.DB
	Secret        string
	TokenLifetime time.Duration
}

func NewServer(db *gorm.DB, secret string, tokenLifetime time.Duration) *Server {
	if tokenLifetime <= 0 {
		tokenLifetime = 24 * time.Hour
	}
	return &Server{DB: db, Secret: secret, TokenLifetime: tokenLifetime}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())

	r.POST("/login", s.Login)
	// Table state is public so the console's monitor can poll it without a
	// staff token.
	r.GET("/blocks", s.ListBlocks)

	auth := r.Group("/")
	auth.Use(s.bearerAuth())
	{
		auth.GET("/catalog/items", s.ListItems)
		auth.GET("/catalog/categories", s.ListCategories)

		auth.POST("/orders", s.CreateOrder)
		auth.PATCH("/orders/status", s.UpdateStatus)
		auth.GET("/orders/:order_id", s.GetOrder)
		auth.PUT("/orders/:order_id", s.UpdateOrder)
		auth.PATCH("/orders/:order_id/payment", s.UpdatePayment)

		auth.DELETE("/blocks/:block_id/tables/:table_id/order", s.ClearTableOrder)
	}

	return r
}

func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.AbortWithError(c, http.StatusUnauthorized, errUnauthorized)
			return
		}

		claims, err := session.ParseToken(strings.TrimPrefix(header, "Bearer "), s.Secret)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, models.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return uint(id), nil
}

// respondStoreError maps domain and gorm errors onto status codes.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, models.ErrTableNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, models.ErrTableOccupied),
		errors.Is(err, models.ErrTableNotOccupied),
		errors.Is(err, models.ErrOrderNotCompleted),
		errors.Is(err, models.ErrNotAdvanceable),
		errors.Is(err, models.ErrOrderLocked):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("devbackend %s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
