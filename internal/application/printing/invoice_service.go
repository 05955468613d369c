package printing

import (
	"context"

	"github.com/google/uuid"
	infra "github.com/institute/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// InvoiceService turns payments into PDF invoices. The data provider loads
// the payment(s) plus student and organization settings, the template engine
// executes the fixed invoice layout, and the PDF renderer converts the HTML
// to bytes the handler streams back.
type InvoiceService struct {
	dataProvider   infra.InvoiceDataProvider
	templateEngine *infra.TemplateEngine
	pdfRenderer    infra.PDFRenderer
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	dataProvider infra.InvoiceDataProvider,
	templateEngine *infra.TemplateEngine,
	pdfRenderer infra.PDFRenderer,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		dataProvider:   dataProvider,
		templateEngine: templateEngine,
		pdfRenderer:    pdfRenderer,
		logger:         logger,
	}
}

// InvoiceDocument is a rendered invoice ready to stream
type InvoiceDocument struct {
	InvoiceNo string
	PDFData   []byte
}

// RenderInvoice renders the invoice for a single payment
func (s *InvoiceService) RenderInvoice(ctx context.Context, tenantID, paymentID uuid.UUID) (*InvoiceDocument, error) {
	data, err := s.dataProvider.GetPaymentInvoiceData(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, data)
}

// RenderConsolidatedInvoice renders one summary invoice covering all
// payments of a student
func (s *InvoiceService) RenderConsolidatedInvoice(ctx context.Context, tenantID, studentID uuid.UUID) (*InvoiceDocument, error) {
	data, err := s.dataProvider.GetConsolidatedInvoiceData(ctx, tenantID, studentID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, data)
}

func (s *InvoiceService) render(ctx context.Context, data *infra.InvoiceData) (*InvoiceDocument, error) {
	html, err := infra.RenderInvoiceHTML(s.templateEngine, data)
	if err != nil {
		return nil, err
	}

	result, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		HTML:    html,
		Title:   data.InvoiceNo,
		Margins: infra.DefaultMargins(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice rendered",
		zap.String("invoice_no", data.InvoiceNo),
		zap.Int("bytes", len(result.PDFData)))

	return &InvoiceDocument{
		InvoiceNo: data.InvoiceNo,
		PDFData:   result.PDFData,
	}, nil
}
