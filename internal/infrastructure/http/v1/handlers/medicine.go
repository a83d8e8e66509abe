package handlers

import (
	"github.com/gin-gonic/gin"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/types"
	"dispensary/internal/domain"
	"dispensary/internal/domain/catalogs/medicine"
	"dispensary/internal/domain/inventory"
	"dispensary/internal/infrastructure/http/v1/dto"
)

// MedicineHandler serves the medicine catalog plus per-medicine
// availability.
type MedicineHandler struct {
	*BaseHandler
	service *medicine.Service
	calc    *inventory.Calculator
}

func NewMedicineHandler(service *medicine.Service, calc *inventory.Calculator) *MedicineHandler {
	return &MedicineHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		calc:        calc,
	}
}

// Create adds a catalog entry. Staff only.
func (h *MedicineHandler) Create(c *gin.Context) {
	var req dto.CreateMedicineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := req.ToMedicine()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unit price").WithDetail("field", "unitPrice"))
		return
	}

	if err := h.service.Create(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m.ID.String())
}

// Get returns one catalog entry.
func (h *MedicineHandler) Get(c *gin.Context) {
	medicineID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), medicineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMedicine(m))
}

// List returns catalog entries matching the query.
func (h *MedicineHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := domain.DefaultListFilter()
	filter.Search = q.Search
	filter.IncludeDeleted = q.IncludeDeleted
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	filter.Offset = q.Offset

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.ListResponse[dto.MedicineResponse]{
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
		Items:      make([]dto.MedicineResponse, 0, len(result.Items)),
	}
	for i := range result.Items {
		resp.Items = append(resp.Items, dto.FromMedicine(&result.Items[i]))
	}
	h.OK(c, resp)
}

// Update modifies a catalog entry. Staff only.
func (h *MedicineHandler) Update(c *gin.Context) {
	medicineID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMedicineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), medicineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	m.Version = req.Version
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.GenericName != nil {
		m.GenericName = req.GenericName
	}
	if req.Manufacturer != nil {
		m.Manufacturer = req.Manufacturer
	}
	if req.Schedule != nil {
		m.Schedule = *req.Schedule
	}
	if req.RequiresPrescription != nil {
		m.RequiresPrescription = *req.RequiresPrescription
	}
	if req.UnitPrice != nil {
		price, err := types.NewMoneyFromString(*req.UnitPrice)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid unit price").WithDetail("field", "unitPrice"))
			return
		}
		m.UnitPrice = price
	}
	if req.Description != nil {
		m.Description = req.Description
	}

	if err := h.service.Update(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMedicine(m))
}

// Delete soft-deletes a catalog entry. Staff only.
func (h *MedicineHandler) Delete(c *gin.Context) {
	medicineID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkDeleted(c.Request.Context(), medicineID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Availability reports sellable stock for a medicine from the caller's
// point of view (their own cart reservation is not counted against them).
func (h *MedicineHandler) Availability(c *gin.Context) {
	medicineID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	available, err := h.calc.AvailableStock(c.Request.Context(), medicineID, &userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AvailabilityResponse{
		MedicineID:     medicineID.String(),
		AvailableStock: available.Int64(),
	})
}
