package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

// ListProducts handles GET /api/v1/products
func (h *Handlers) ListProducts(c *gin.Context) {
	filter := &models.ProductListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    50,
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 200 {
			filter.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	views := make([]productResponse, len(products))
	for i, p := range products {
		views[i] = newProductResponse(p, h.currency())
	}

	c.JSON(http.StatusOK, gin.H{
		"products": views,
		"count":    len(views),
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// GetProduct handles GET /api/v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		handleError(c, errors.NewValidationError("id", "invalid product ID"))
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProductResponse(product, h.currency()))
}
