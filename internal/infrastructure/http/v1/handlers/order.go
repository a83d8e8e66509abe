package handlers

import (
	"github.com/gin-gonic/gin"

	"dispensary/internal/core/appctx"
	"dispensary/internal/core/id"
	"dispensary/internal/domain/orders"
	"dispensary/internal/infrastructure/http/v1/dto"
)

// OrderHandler serves order placement and history.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

func NewOrderHandler(service *orders.Service) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Place converts the caller's cart into an order.
func (h *OrderHandler) Place(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	var req dto.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	approvals := make(map[id.ID]bool, len(req.PrescriptionApprovals))
	for _, raw := range req.PrescriptionApprovals {
		medicineID, err := id.Parse(raw)
		if err != nil {
			continue // unknown entries simply don't approve anything
		}
		approvals[medicineID] = true
	}

	placed, err := h.service.PlaceOrder(c.Request.Context(), userID, approvals)
	if err != nil {
		h.Error(c, err)
		return
	}

	order, items, err := h.service.GetOrder(c.Request.Context(), placed.ID, userID, false)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(order, items))
}

// Get returns one order with items. Customers see only their own.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	order, items, err := h.service.GetOrder(c.Request.Context(), orderID, userID, appctx.IsStaff(c.Request.Context()))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(order, items))
}

// List returns the caller's order history.
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	list, err := h.service.ListOrders(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrders(list))
}
