package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcrm "github.com/institute/backend/internal/application/crm"
	"github.com/institute/backend/internal/domain/crm"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/interfaces/http/dto"
	"github.com/institute/backend/internal/interfaces/http/middleware"
)

// LeadHandler handles lead API endpoints, including the conversion pipeline
type LeadHandler struct {
	BaseHandler
	leadService *appcrm.LeadService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *appcrm.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// CaptureLeadRequest is the request body for capturing a lead
type CaptureLeadRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=200"`
	Phone          string `json:"phone" binding:"required,min=1,max=50"`
	Email          string `json:"email" binding:"omitempty,email,max=200"`
	Source         string `json:"source" binding:"max=100"`
	CourseInterest string `json:"course_interest" binding:"max=200"`
	Notes          string `json:"notes"`
	AssignedUserID string `json:"assigned_user_id" binding:"omitempty,uuid"`
}

// UpdateLeadRequest is the request body for updating a lead. Absent fields
// are left untouched.
type UpdateLeadRequest struct {
	Status         *string `json:"status" binding:"omitempty,oneof=NEW CONTACTED QUALIFIED DROPPED"`
	Email          *string `json:"email" binding:"omitempty,email,max=200"`
	Notes          *string `json:"notes"`
	AssignedUserID *string `json:"assigned_user_id" binding:"omitempty,uuid"`
}

// ConvertLeadRequest is the request body for converting a lead into a
// student. An initial_payment above zero records the first payment in the
// same transaction.
type ConvertLeadRequest struct {
	BatchID        string          `json:"batch_id" binding:"required,uuid"`
	EnrollmentDate string          `json:"enrollment_date" binding:"required,datetime=2006-01-02"`
	TotalFee       decimal.Decimal `json:"total_fee" binding:"required"`
	InitialPayment decimal.Decimal `json:"initial_payment"`
	PaymentMethod  string          `json:"payment_method" binding:"omitempty,oneof=CASH CHECK BANK_TRANSFER ONLINE OTHER"`
	PaymentDate    string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Reference      string          `json:"reference" binding:"max=200"`
}

// Create captures a new lead
func (h *LeadHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CaptureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := appcrm.CaptureLeadRequest{
		TenantID:       tenantID,
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Source:         req.Source,
		CourseInterest: req.CourseInterest,
		Notes:          req.Notes,
	}
	if req.AssignedUserID != "" {
		userID := uuid.MustParse(req.AssignedUserID)
		appReq.AssignedUserID = &userID
	}

	lead, err := h.leadService.CaptureLead(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, lead)
}

// Get returns a single lead
func (h *LeadHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	lead, err := h.leadService.GetLead(c.Request.Context(), tenantID, leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lead)
}

// List returns leads for the tenant, filterable by status and assignee
func (h *LeadHandler) List(c *gin.Context) {
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

	filter := crm.LeadFilter{}
	filter.Page = listReq.Page
	filter.PageSize = listReq.PageSize
	filter.OrderBy = listReq.OrderBy
	filter.OrderDir = listReq.OrderDir
	filter.Search = listReq.Search

	if s := c.Query("status"); s != "" {
		status := crm.LeadStatus(s)
		filter.Status = &status
	}
	if a := c.Query("assigned_user_id"); a != "" {
		userID, err := uuid.Parse(a)
		if err != nil {
			h.BadRequest(c, "Invalid assigned user ID")
			return
		}
		filter.AssignedUserID = &userID
	}

	leads, total, err := h.leadService.ListLeads(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, leads, total, listReq.Page, listReq.PageSize)
}

// Update changes a lead's status, contact details, or assignment
func (h *LeadHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := appcrm.UpdateLeadRequest{
		Email: req.Email,
		Notes: req.Notes,
	}
	if req.Status != nil {
		status := crm.LeadStatus(*req.Status)
		appReq.Status = &status
	}
	if req.AssignedUserID != nil {
		userID := uuid.MustParse(*req.AssignedUserID)
		appReq.AssignedUserID = &userID
	}

	lead, err := h.leadService.UpdateLead(c.Request.Context(), tenantID, leadID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lead)
}

// Convert turns a lead into an enrolled student. Student creation, optional
// first payment, and the lead status flip commit in one transaction.
func (h *LeadHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	var req ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := appcrm.ConvertLeadRequest{
		TenantID:       tenantID,
		LeadID:         leadID,
		BatchID:        uuid.MustParse(req.BatchID),
		TotalFee:       req.TotalFee,
		InitialPayment: req.InitialPayment,
		PaymentMethod:  finance.PaymentMethod(req.PaymentMethod),
		Reference:      req.Reference,
	}
	enrollmentDate, _ := time.Parse(dateLayout, req.EnrollmentDate)
	appReq.EnrollmentDate = enrollmentDate
	if req.PaymentDate != "" {
		d, _ := time.Parse(dateLayout, req.PaymentDate)
		appReq.PaymentDate = d
	}

	result, err := h.leadService.ConvertLeadToStudent(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Delete removes a lead
func (h *LeadHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	if err := h.leadService.DeleteLead(c.Request.Context(), tenantID, leadID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers lead routes on the given router group
func (h *LeadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	{
		leads.POST("", h.Create)
		leads.GET("", h.List)
		leads.GET("/:id", h.Get)
		leads.PUT("/:id", h.Update)
		leads.POST("/:id/convert", h.Convert)
		leads.DELETE("/:id", h.Delete)
	}
}
