package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/pricing"
)

func handleError(c *gin.Context, err error) {
	var validationErr *errors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"code":    "validation_error",
			"details": validationErr.Details,
		})
		return
	}

	if code := pricing.Code(err); code != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  code,
		})
		return
	}

	switch {
	case errors.Is(err, errors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, errors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "order was modified concurrently"})
	default:
		logging.NewLogger("handlers").Error("Unhandled error", logging.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
