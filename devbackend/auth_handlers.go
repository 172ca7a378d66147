package devbackend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var errInvalidCredentials = errors.New("invalid credentials")

// Login checks the password and returns a signed token with the role's menu.
func (s *Server) Login(c *gin.Context) {
	var input models.Credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, err := session.IssueToken(s.Secret, user, s.TokenLifetime)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var permissions []models.Permission
	if err := s.DB.Where("role = ?", user.Role).Order("id").Find(&permissions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", models.LoginResult{
		Token:       token,
		User:        user,
		Permissions: permissions,
	})
}
