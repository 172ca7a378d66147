package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// respondServiceError turns an error from the order flow into a response.
// Backend failures that might go through on a second attempt are 503 so the
// console can offer a retry; anything else the backend refused is passed on.
func respondServiceError(c *gin.Context, err error) {
	var be *services.BackendError
	if errors.As(err, &be) {
		utils.RespondError(c, backendStatus(be), err)
		return
	}

	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrEmptyCart):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, models.ErrDraftNotFound), errors.Is(err, models.ErrTableNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrSessionExpired):
		utils.RespondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, models.ErrSubmitInProgress),
		errors.Is(err, models.ErrNotAdvanceable),
		errors.Is(err, models.ErrOrderLocked),
		errors.Is(err, models.ErrTableOccupied),
		errors.Is(err, models.ErrTableNotOccupied),
		errors.Is(err, models.ErrOrderNotCompleted):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func backendStatus(be *services.BackendError) int {
	switch be.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return http.StatusBadRequest
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
		return be.StatusCode
	}
	if be.Retryable() {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func uintParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, models.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return uint(id), nil
}
