package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appenrollment "github.com/institute/backend/internal/application/enrollment"
	"github.com/institute/backend/internal/interfaces/http/middleware"
)

// BatchHandler handles batch API endpoints
type BatchHandler struct {
	BaseHandler
	batchService *appenrollment.BatchService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(batchService *appenrollment.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

// CreateBatchRequest is the request body for creating a batch
type CreateBatchRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	StartDate string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Fee       decimal.Decimal `json:"fee"`
	Capacity  int             `json:"capacity" binding:"omitempty,min=0"`
	TrainerID string          `json:"trainer_id" binding:"omitempty,uuid"`
}

// Create creates a new batch
func (h *BatchHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	startDate, _ := time.Parse(dateLayout, req.StartDate)
	appReq := appenrollment.CreateBatchRequest{
		TenantID:  tenantID,
		Name:      req.Name,
		StartDate: startDate,
		Fee:       req.Fee,
		Capacity:  req.Capacity,
	}
	if req.EndDate != "" {
		d, _ := time.Parse(dateLayout, req.EndDate)
		appReq.EndDate = &d
	}
	if req.TrainerID != "" {
		trainerID := uuid.MustParse(req.TrainerID)
		appReq.TrainerID = &trainerID
	}

	batch, err := h.batchService.CreateBatch(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batch)
}

// Get returns a single batch
func (h *BatchHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	batch, err := h.batchService.GetBatch(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// List returns all batches for the tenant
func (h *BatchHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	activeOnly := c.Query("active_only") == "true"

	batches, err := h.batchService.ListBatches(c.Request.Context(), tenantID, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batches)
}

// Close marks a batch inactive so it stops accepting enrollments
func (h *BatchHandler) Close(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	if err := h.batchService.CloseBatch(c.Request.Context(), tenantID, batchID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers batch routes on the given router group
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/batches")
	{
		batches.POST("", h.Create)
		batches.GET("", h.List)
		batches.GET("/:id", h.Get)
		batches.POST("/:id/close", h.Close)
	}
}
