package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type SessionController struct {
	Sessions *session.Manager
}

func NewSessionController(sessions *session.Manager) *SessionController {
	return &SessionController{Sessions: sessions}
}

// Login exchanges staff credentials for a console session.
func (sc *SessionController) Login(c *gin.Context) {
	var input models.Credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sess, err := sc.Sessions.Login(c.Request.Context(), input)
	if err != nil {
		var be *services.BackendError
		if !errors.As(err, &be) {
			// the backend answered but its token could not be read
			utils.ErrorLogger.Printf("Login failed: %v", err)
			utils.RespondError(c, http.StatusBadGateway, err)
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", sess)
}

// Logout closes the session. The manager's end hooks take its drafts and
// live connections with it.
func (sc *SessionController) Logout(c *gin.Context) {
	sess := middlewares.CurrentSession(c)

	if err := sc.Sessions.Logout(sess.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Session closed for user %d", sess.User.ID)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (sc *SessionController) Me(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Current session", middlewares.CurrentSession(c))
}
