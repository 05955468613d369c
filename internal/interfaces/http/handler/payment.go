package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appfinance "github.com/institute/backend/internal/application/finance"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/interfaces/http/dto"
	"github.com/institute/backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader carries the client-generated key that makes payment
// creation safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

const dateLayout = "2006-01-02"

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *appfinance.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appfinance.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest is the request body for recording a payment.
// Amount accepts a JSON number or string; strings avoid float rounding.
type RecordPaymentRequest struct {
	StudentID   string          `json:"student_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Method      string          `json:"method" binding:"omitempty,oneof=CASH CHECK BANK_TRANSFER ONLINE OTHER"`
	Reference   string          `json:"reference" binding:"max=200"`
	Notes       string          `json:"notes"`
	NextDueDate string          `json:"next_due_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdatePaymentRequest is the request body for editing a payment.
// Absent fields are left untouched.
type UpdatePaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	PaymentDate *string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Method      *string          `json:"method" binding:"omitempty,oneof=CASH CHECK BANK_TRANSFER ONLINE OTHER"`
	Reference   *string          `json:"reference" binding:"omitempty,max=200"`
	Notes       *string          `json:"notes"`
	NextDueDate *string          `json:"next_due_date" binding:"omitempty,datetime=2006-01-02"`
}

// Create records a payment against a student's ledger
func (h *PaymentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := appfinance.RecordPaymentRequest{
		TenantID:       tenantID,
		StudentID:      uuid.MustParse(req.StudentID),
		Amount:         req.Amount,
		Method:         finance.PaymentMethod(req.Method),
		Reference:      req.Reference,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}
	if req.PaymentDate != "" {
		d, _ := time.Parse(dateLayout, req.PaymentDate)
		appReq.PaymentDate = d
	}
	if req.NextDueDate != "" {
		d, _ := time.Parse(dateLayout, req.NextDueDate)
		appReq.NextDueDate = &d
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get returns a single payment
func (h *PaymentHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// List returns payments for the tenant, filterable by student, method, and
// payment date range
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	listReq.Normalize()

	filter := finance.PaymentFilter{}
	filter.Page = listReq.Page
	filter.PageSize = listReq.PageSize
	filter.OrderBy = listReq.OrderBy
	filter.OrderDir = listReq.OrderDir
	filter.Search = listReq.Search

	if s := c.Query("student_id"); s != "" {
		studentID, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid student ID")
			return
		}
		filter.StudentID = &studentID
	}
	if m := c.Query("method"); m != "" {
		method := finance.PaymentMethod(m)
		filter.Method = &method
	}
	if f := c.Query("from"); f != "" {
		from, err := time.Parse(dateLayout, f)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.From = &from
	}
	if t := c.Query("to"); t != "" {
		to, err := time.Parse(dateLayout, t)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		filter.To = &to
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, listReq.Page, listReq.PageSize)
}

// Update edits a payment; amount changes reconcile the student's ledger by
// the delta
func (h *PaymentHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := appfinance.UpdatePaymentRequest{
		Amount:    req.Amount,
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	if req.PaymentDate != nil {
		d, _ := time.Parse(dateLayout, *req.PaymentDate)
		appReq.PaymentDate = &d
	}
	if req.Method != nil {
		m := finance.PaymentMethod(*req.Method)
		appReq.Method = &m
	}
	if req.NextDueDate != nil {
		d, _ := time.Parse(dateLayout, *req.NextDueDate)
		appReq.NextDueDate = &d
	}

	result, err := h.paymentService.UpdatePayment(c.Request.Context(), tenantID, paymentID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete removes a payment and rolls its amount back out of the ledger
func (h *PaymentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.paymentService.DeletePayment(c.Request.Context(), tenantID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers payment routes on the given router group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Create)
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
		payments.PUT("/:id", h.Update)
		payments.DELETE("/:id", h.Delete)
	}
}
