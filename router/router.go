package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Dependencies is everything the console routes need, built once in main.
// SetupRouter also ties session ends to draft and live-feed cleanup, so it
// should be called once per Sessions.
type Dependencies struct {
	Config   *config.Config
	Sessions *session.Manager
	Backend  services.Backend
	Orders   *services.OrderService
	Hub      *hub.Hub
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.Config.CORS.AllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, time.Second).RateLimit())

	deps.Sessions.OnEnd(deps.Orders.EndSession)
	deps.Sessions.OnEnd(func(sessionID string) {
		if n := deps.Hub.DropSession(sessionID); n > 0 {
			utils.InfoLogger.Printf("Closed %d live connections of ended session", n)
		}
	})

	sessionCtrl := controllers.NewSessionController(deps.Sessions)
	catalogCtrl := controllers.NewCatalogController(deps.Backend)
	draftCtrl := controllers.NewDraftController(deps.Orders)
	orderCtrl := controllers.NewOrderController(deps.Orders, deps.Config.Server.RestaurantName)
	tableCtrl := controllers.NewTableController(deps.Orders)
	dashboardCtrl := controllers.NewDashboardController(deps.Orders, deps.Sessions, deps.Hub)
	liveCtrl := controllers.NewLiveController(deps.Hub, deps.Config.CORS.AllowedOrigins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	loginLimiter := middlewares.NewLoginLimiter(12*time.Second, 5)
	r.POST("/api/session/login", loginLimiter.Limit(), sessionCtrl.Login)

	// ----------------------------------------------------------------
	//                      SESSION ROUTES
	// ----------------------------------------------------------------
	auth := middlewares.SessionAuth(deps.Sessions)

	r.GET("/ws", auth, liveCtrl.Serve)

	api := r.Group("/api")
	api.Use(auth)
	{
		api.POST("/session/logout", sessionCtrl.Logout)
		api.GET("/session/me", sessionCtrl.Me)

		api.GET("/catalog/items", catalogCtrl.Items)
		api.GET("/catalog/categories", catalogCtrl.Categories)

		drafts := api.Group("/drafts")
		{
			drafts.POST("", draftCtrl.Open)
			drafts.GET("/:draft_id", draftCtrl.Get)
			drafts.DELETE("/:draft_id", draftCtrl.Delete)
			drafts.POST("/:draft_id/items", draftCtrl.AddItem)
			drafts.POST("/:draft_id/items/:item_id/increment", draftCtrl.Increment)
			drafts.POST("/:draft_id/items/:item_id/decrement", draftCtrl.Decrement)
			drafts.DELETE("/:draft_id/items/:item_id", draftCtrl.RemoveItem)
			drafts.POST("/:draft_id/clear", draftCtrl.Clear)
			drafts.PUT("/:draft_id/adjustments", draftCtrl.Adjustments)
			drafts.POST("/:draft_id/submit", draftCtrl.Submit)
		}

		orders := api.Group("/orders")
		{
			orders.GET("/:order_id", orderCtrl.Get)
			orders.POST("/:order_id/advance", orderCtrl.Advance)
			orders.POST("/:order_id/payment", orderCtrl.Payment)
			orders.GET("/:order_id/bill.pdf", orderCtrl.Bill)
		}

		api.GET("/tables", tableCtrl.List)
		api.POST("/tables/:block_id/:table_id/release", tableCtrl.Release)

		dashboard := api.Group("/dashboard")
		dashboard.Use(middlewares.RequireCapability("DASHBOARD"))
		{
			dashboard.GET("", dashboardCtrl.Stats)
			dashboard.GET("/occupancy.png", dashboardCtrl.OccupancyChart)
		}
	}

	return r
}
