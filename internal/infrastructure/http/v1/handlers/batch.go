package handlers

import (
	"github.com/gin-gonic/gin"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
	"dispensary/internal/domain/inventory"
	"dispensary/internal/infrastructure/http/v1/dto"
)

// BatchHandler serves the batch ledger. All endpoints are staff only.
type BatchHandler struct {
	*BaseHandler
	ledger *inventory.Service
}

func NewBatchHandler(ledger *inventory.Service) *BatchHandler {
	return &BatchHandler{
		BaseHandler: NewBaseHandler(),
		ledger:      ledger,
	}
}

// Add records a received batch.
func (h *BatchHandler) Add(c *gin.Context) {
	var req dto.AddBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	medicineID, err := id.Parse(req.MedicineID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid medicine id").WithDetail("field", "medicineId"))
		return
	}
	expiry, err := req.ParseExpiry()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid expiry date, expected YYYY-MM-DD").
			WithDetail("field", "expiryDate"))
		return
	}

	batch := inventory.NewBatch(medicineID, req.BatchNumber, types.Quantity(req.Quantity), expiry)
	if err := h.ledger.AddBatch(c.Request.Context(), batch); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, batch.ID.String())
}

// Get returns one batch.
func (h *BatchHandler) Get(c *gin.Context) {
	batchID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.ledger.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatch(batch))
}

// ListByMedicine returns all batches for a medicine, FIFO-ordered.
func (h *BatchHandler) ListByMedicine(c *gin.Context) {
	medicineID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	batches, err := h.ledger.ListBatches(c.Request.Context(), medicineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatches(batches))
}

// Update partially corrects a batch.
func (h *BatchHandler) Update(c *gin.Context) {
	batchID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	upd, err := req.ToBatchUpdate()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid expiry date, expected YYYY-MM-DD").
			WithDetail("field", "expiryDate"))
		return
	}

	batch, err := h.ledger.UpdateBatch(c.Request.Context(), batchID, upd)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatch(batch))
}

// Dispose withdraws a batch from sale with a mandatory reason.
func (h *BatchHandler) Dispose(c *gin.Context) {
	batchID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.DisposeBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batch, err := h.ledger.DisposeBatch(c.Request.Context(), batchID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatch(batch))
}

// Expiring returns batches expiring within the window (default 30 days).
func (h *BatchHandler) Expiring(c *gin.Context) {
	withinDays := h.ParseIntQuery(c, "withinDays", 30)

	batches, err := h.ledger.ExpiringBatches(c.Request.Context(), withinDays)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatches(batches))
}

// Expired returns past-expiry batches awaiting disposal.
func (h *BatchHandler) Expired(c *gin.Context) {
	batches, err := h.ledger.ExpiredBatches(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatches(batches))
}
