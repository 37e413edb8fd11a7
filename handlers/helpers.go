package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Ruzakiff/wealthtogether/middlewares"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps the engine's sentinel errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorConflict), errors.Is(err, utils.ErrorExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorBadRequest), errors.Is(err, utils.ErrorInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// currentUserId returns the authenticated caller's id, or empty when the
// request carried no token.
func currentUserId(c *gin.Context) string {
	claim := middlewares.CtxValue(c.Request.Context())
	if claim == nil {
		return ""
	}
	return claim.ID
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
