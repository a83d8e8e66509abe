package handlers

import (
	"github.com/gin-gonic/gin"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
	"dispensary/internal/domain/cart"
	"dispensary/internal/infrastructure/http/v1/dto"
)

// CartHandler serves the caller's shopping cart.
type CartHandler struct {
	*BaseHandler
	service *cart.Service
}

func NewCartHandler(service *cart.Service) *CartHandler {
	return &CartHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Get returns the caller's cart.
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	lines, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCartLines(lines))
}

// Add adds units on top of the caller's existing line.
func (h *CartHandler) Add(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	var req dto.AddToCartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	medicineID, err := id.Parse(req.MedicineID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid medicine id").WithDetail("field", "medicineId"))
		return
	}

	line, err := h.service.AddToCart(c.Request.Context(), userID, medicineID, types.Quantity(req.Quantity))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCartLine(line))
}

// SetQuantity replaces a line's quantity. Zero removes the line.
func (h *CartHandler) SetQuantity(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	medicineID, ok := h.ParseIDParam(c, "medicineId")
	if !ok {
		return
	}

	var req dto.SetCartQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line, err := h.service.SetQuantity(c.Request.Context(), userID, medicineID, types.Quantity(req.Quantity))
	if err != nil {
		h.Error(c, err)
		return
	}
	if line == nil {
		h.NoContent(c)
		return
	}
	h.OK(c, dto.FromCartLine(line))
}

// Remove deletes a line from the caller's cart.
func (h *CartHandler) Remove(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	medicineID, ok := h.ParseIDParam(c, "medicineId")
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, medicineID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
