package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/server/http/dto"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// OrderHandler serves the back-office order views.
type OrderHandler struct {
	orders *usecase.OrderUseCase
}

// NewOrderHandler creates OrderHandler.
func NewOrderHandler(orders *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /api/admin/orders?status=&limit=.
func (h *OrderHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := h.orders.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrders(orders))
}

// Get handles GET /api/admin/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// UpdateStatus handles PATCH /api/admin/orders/:id.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), CurrentAdmin(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(order))
}
