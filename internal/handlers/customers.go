package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
)

// GetCustomer handles GET /api/v1/customers/:id
func (h *Handlers) GetCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		handleError(c, errors.NewValidationError("id", "invalid customer ID"))
		return
	}

	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCustomerResponse(customer))
}
