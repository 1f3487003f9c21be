package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
	"github.com/penzflow/penzflow-sales-service/internal/service"
)

// CreateOrder handles POST /api/v1/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

// GetOrderByNumber handles GET /api/v1/orders/number/:number
func (h *Handlers) GetOrderByNumber(c *gin.Context) {
	order, err := h.orderService.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := service.ValidateUpdateOrderStatusRequest(&req); err != nil {
		handleError(c, err)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

// SubmitOrder handles POST /api/v1/orders/:id/submit
func (h *Handlers) SubmitOrder(c *gin.Context) {
	order, err := h.orderService.SubmitOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

type decisionRequest struct {
	Approver string `json:"approver"`
	Notes    string `json:"notes"`
}

// ApproveOrder handles POST /api/v1/orders/:id/approve
func (h *Handlers) ApproveOrder(c *gin.Context) {
	h.decide(c, true)
}

// RejectOrder handles POST /api/v1/orders/:id/reject
func (h *Handlers) RejectOrder(c *gin.Context) {
	h.decide(c, false)
}

func (h *Handlers) decide(c *gin.Context, approve bool) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderService.DecideOrder(c.Request.Context(), c.Param("id"), &models.ApprovalDecision{
		Approve:  approve,
		Approver: req.Approver,
		Notes:    req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(order))
}

// ListOrders handles GET /api/v1/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	filter := &models.OrderListFilter{}

	if customerID := c.Query("customer_id"); customerID != "" {
		id, err := strconv.ParseInt(customerID, 10, 64)
		if err != nil {
			handleError(c, errors.NewValidationError("customer_id", "customer_id must be a number"))
			return
		}
		filter.CustomerID = id
	}

	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		filter.Status = &s
	}

	if channel := c.Query("channel"); channel != "" {
		ch := models.Channel(channel)
		filter.Channel = &ch
	}

	filter.SalesRep = c.Query("sales_rep")

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &filter.StartDate},
		{"end_date", &filter.EndDate},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			handleError(c, errors.NewValidationError(p.name, "expected YYYY-MM-DD"))
			return
		}
		*p.dst = &t
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	if err := service.ValidateOrderListFilter(filter); err != nil {
		handleError(c, err)
		return
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	views := make([]orderResponse, len(orders))
	for i, o := range orders {
		views[i] = newOrderResponse(o)
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": views,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}
