package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appenrollment "github.com/institute/backend/internal/application/enrollment"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/interfaces/http/dto"
	"github.com/institute/backend/internal/interfaces/http/middleware"
)

// StudentHandler handles student API endpoints
type StudentHandler struct {
	BaseHandler
	studentService *appenrollment.StudentService
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(studentService *appenrollment.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// EnrollStudentRequest is the request body for direct enrollment. A non-zero
// initial_payment creates the first payment in the same transaction.
type EnrollStudentRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Phone          string          `json:"phone" binding:"required,min=1,max=50"`
	Email          string          `json:"email" binding:"omitempty,email,max=200"`
	ParentName     string          `json:"parent_name" binding:"max=200"`
	ParentPhone    string          `json:"parent_phone" binding:"max=50"`
	BatchID        string          `json:"batch_id" binding:"required,uuid"`
	EnrollmentDate string          `json:"enrollment_date" binding:"omitempty,datetime=2006-01-02"`
	TotalFee       decimal.Decimal `json:"total_fee" binding:"required"`
	InitialPayment decimal.Decimal `json:"initial_payment"`
	PaymentMethod  string          `json:"payment_method" binding:"omitempty,oneof=CASH CHECK BANK_TRANSFER ONLINE OTHER"`
	Notes          string          `json:"notes"`
}

// UpdateStudentRequest is the request body for updating a student. Absent
// fields are left untouched; fee_paid is never writable directly.
type UpdateStudentRequest struct {
	Phone       *string          `json:"phone" binding:"omitempty,min=1,max=50"`
	Email       *string          `json:"email" binding:"omitempty,email,max=200"`
	ParentName  *string          `json:"parent_name" binding:"omitempty,max=200"`
	ParentPhone *string          `json:"parent_phone" binding:"omitempty,max=50"`
	BatchID     *string          `json:"batch_id" binding:"omitempty,uuid"`
	TotalFee    *decimal.Decimal `json:"total_fee"`
	Notes       *string          `json:"notes"`
}

// Create enrolls a student directly, outside the lead pipeline
func (h *StudentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := appenrollment.EnrollStudentRequest{
		TenantID:       tenantID,
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		ParentName:     req.ParentName,
		ParentPhone:    req.ParentPhone,
		BatchID:        uuid.MustParse(req.BatchID),
		TotalFee:       req.TotalFee,
		InitialPayment: req.InitialPayment,
		PaymentMethod:  finance.PaymentMethod(req.PaymentMethod),
		Notes:          req.Notes,
	}
	if req.EnrollmentDate != "" {
		d, _ := time.Parse(dateLayout, req.EnrollmentDate)
		appReq.EnrollmentDate = d
	}

	result, err := h.studentService.EnrollStudent(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get returns a single student with the current ledger state
func (h *StudentHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	student, err := h.studentService.GetStudent(c.Request.Context(), tenantID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, student)
}

// List returns students for the tenant, filterable by batch and active state
func (h *StudentHandler) List(c *gin.Context) {
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

	filter := enrollment.StudentFilter{}
	filter.Page = listReq.Page
	filter.PageSize = listReq.PageSize
	filter.OrderBy = listReq.OrderBy
	filter.OrderDir = listReq.OrderDir
	filter.Search = listReq.Search
	filter.ActiveOnly = c.Query("active_only") == "true"

	if b := c.Query("batch_id"); b != "" {
		batchID, err := uuid.Parse(b)
		if err != nil {
			h.BadRequest(c, "Invalid batch ID")
			return
		}
		filter.BatchID = &batchID
	}

	students, total, err := h.studentService.ListStudents(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, students, total, listReq.Page, listReq.PageSize)
}

// Update changes a student's contact details, batch, or total fee
func (h *StudentHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := appenrollment.UpdateStudentRequest{
		Phone:       req.Phone,
		Email:       req.Email,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		TotalFee:    req.TotalFee,
		Notes:       req.Notes,
	}
	if req.BatchID != nil {
		batchID := uuid.MustParse(*req.BatchID)
		appReq.BatchID = &batchID
	}

	student, err := h.studentService.UpdateStudent(c.Request.Context(), tenantID, studentID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, student)
}

// Deactivate marks a student inactive without touching the ledger
func (h *StudentHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	if err := h.studentService.DeactivateStudent(c.Request.Context(), tenantID, studentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete removes a student; their payments cascade with them
func (h *StudentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	if err := h.studentService.DeleteStudent(c.Request.Context(), tenantID, studentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers student routes on the given router group
func (h *StudentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	students := rg.Group("/students")
	{
		students.POST("", h.Create)
		students.GET("", h.List)
		students.GET("/:id", h.Get)
		students.PUT("/:id", h.Update)
		students.POST("/:id/deactivate", h.Deactivate)
		students.DELETE("/:id", h.Delete)
	}
}
