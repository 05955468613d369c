package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/institute/backend/internal/application/identity"
	"github.com/institute/backend/internal/interfaces/http/middleware"
)

// TenantHandler handles organization settings API endpoints
type TenantHandler struct {
	BaseHandler
	tenantService *appidentity.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *appidentity.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// UpdateSettingsRequest is the request body for updating organization
// settings. The settings feed the invoice letterhead.
type UpdateSettingsRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Address string `json:"address" binding:"max=500"`
	Phone   string `json:"phone" binding:"max=50"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Website string `json:"website" binding:"max=200"`
	GSTIN   string `json:"gstin" binding:"max=50"`
}

// PrepareLogoUploadRequest is the request body for requesting a logo upload URL
type PrepareLogoUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/png image/jpeg image/svg+xml"`
}

// GetSettings returns the organization settings
func (h *TenantHandler) GetSettings(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenantService.GetSettings(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// UpdateSettings replaces the organization settings
func (h *TenantHandler) UpdateSettings(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tenant, err := h.tenantService.UpdateSettings(c.Request.Context(), tenantID, appidentity.UpdateSettingsRequest{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		Website: req.Website,
		GSTIN:   req.GSTIN,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// PrepareLogoUpload returns a presigned URL the client uploads the institute
// logo to
func (h *TenantHandler) PrepareLogoUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req PrepareLogoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	uploadURL, err := h.tenantService.PrepareLogoUpload(c.Request.Context(), tenantID, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"upload_url": uploadURL})
}

// RegisterRoutes registers organization settings routes on the given router group
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	org := rg.Group("/organization")
	{
		org.GET("/settings", h.GetSettings)
		org.PUT("/settings", h.UpdateSettings)
		org.POST("/settings/logo-upload", h.PrepareLogoUpload)
	}
}
