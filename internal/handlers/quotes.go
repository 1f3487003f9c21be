package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/penzflow/penzflow-sales-service/internal/models"
)

// Quote handles POST /api/v1/quotes. Nothing is persisted.
func (h *Handlers) Quote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	priced, err := h.orderService.Quote(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newQuoteResponse(priced))
}

type tierView struct {
	MinQuantity     int     `json:"min_quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// PricingTiers handles GET /api/v1/pricing/tiers
func (h *Handlers) PricingTiers(c *gin.Context) {
	tiers := h.orderService.Tiers().List()
	views := make([]tierView, len(tiers))
	for i, t := range tiers {
		views[i] = tierView{MinQuantity: t.MinQuantity, DiscountPercent: tierPercent(t)}
	}

	c.JSON(http.StatusOK, gin.H{
		"currency": h.currency(),
		"tiers":    views,
	})
}
