package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	// SessionHeader carries the console session id on API calls.
	SessionHeader = "X-Session-ID"
	// SessionQuery carries it on websocket upgrades, where browsers cannot
	// set headers.
	SessionQuery = "session"

	sessionKey = "session"
)

// SessionStore resolves a session id to an open session.
type SessionStore interface {
	Get(id string) (*session.Session, error)
}

func SessionAuth(store SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			id = c.Query(SessionQuery)
		}
		if id == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("session id missing"))
			return
		}

		sess, err := store.Get(id)
		if err != nil {
			if !errors.Is(err, models.ErrSessionExpired) {
				err = models.ErrSessionNotFound
			}
			utils.AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		c.Set(sessionKey, sess)
		c.Set("userID", sess.User.ID)
		c.Set("role", sess.User.Role)
		c.Next()
	}
}

// CurrentSession returns the session SessionAuth stored on c.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// RequireCapability stops requests from sessions whose menu lacks key.
func RequireCapability(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			utils.AbortWithError(c, http.StatusUnauthorized, models.ErrSessionNotFound)
			return
		}
		if !sess.Can(key) {
			utils.AbortWithError(c, http.StatusForbidden, errors.New(key+" access required"))
			return
		}
		c.Next()
	}
}
