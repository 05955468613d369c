package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appprinting "github.com/institute/backend/internal/application/printing"
)

// InvoiceHandler streams rendered invoice PDFs
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appprinting.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *appprinting.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// PaymentInvoice renders the invoice PDF for a single payment
func (h *InvoiceHandler) PaymentInvoice(c *gin.Context) {
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

	doc, err := h.invoiceService.RenderInvoice(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	servePDF(c, doc)
}

// StudentInvoice renders a consolidated invoice PDF covering all of a
// student's payments
func (h *InvoiceHandler) StudentInvoice(c *gin.Context) {
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

	doc, err := h.invoiceService.RenderConsolidatedInvoice(c.Request.Context(), tenantID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	servePDF(c, doc)
}

func servePDF(c *gin.Context, doc *appprinting.InvoiceDocument) {
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.InvoiceNo+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc.PDFData)
}

// RegisterRoutes registers invoice routes on the given router group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/:id/invoice", h.PaymentInvoice)
	rg.GET("/students/:id/invoice", h.StudentInvoice)
}
