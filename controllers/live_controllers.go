package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// LiveController upgrades signed-in consoles to the websocket feed of order
// and table changes.
type LiveController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewLiveController accepts upgrades from the given origins. Requests without
// an Origin header (non-browser clients) are always accepted.
func NewLiveController(h *hub.Hub, allowedOrigins []string) *LiveController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &LiveController{
		Hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

func (lc *LiveController) Serve(c *gin.Context) {
	sess := middlewares.CurrentSession(c)

	ws, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.InfoLogger.Printf("Websocket upgrade refused: %v", err)
		return
	}

	lc.Hub.Register(ws, sess.ID, sess.User.Role)
	utils.InfoLogger.Printf("Live feed opened for user %d (%d connected)", sess.User.ID, lc.Hub.Clients())

	// consoles never send anything; reading only detects the disconnect,
	// including the hub closing us when the session ends
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	lc.Hub.Unregister(ws)
}
