package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateEngine(t *testing.T) {
	engine := NewTemplateEngine()
	assert.NotNil(t, engine)
	assert.NotNil(t, engine.funcMap)
}

func TestTemplateEngine_GetFuncMap(t *testing.T) {
	engine := NewTemplateEngine()
	funcMap := engine.GetFuncMap()

	assert.NotNil(t, funcMap["formatAmount"])
	assert.NotNil(t, funcMap["formatDate"])
	assert.NotNil(t, funcMap["formatDateTime"])
	assert.NotNil(t, funcMap["add"])
	assert.NotNil(t, funcMap["sub"])
}

func TestTemplateEngine_RenderString_Simple(t *testing.T) {
	engine := NewTemplateEngine()

	html, err := engine.RenderString("greeting", `<p>Hello, {{.Name}}!</p>`, map[string]interface{}{
		"Name": "World",
	})

	require.NoError(t, err)
	assert.Contains(t, html, "Hello, World!")
}

func TestTemplateEngine_RenderString_EmptyContent(t *testing.T) {
	engine := NewTemplateEngine()

	_, err := engine.RenderString("empty", "", nil)

	require.Error(t, err)
	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₹ 15000.00", formatAmount(decimal.NewFromInt(15000)))
	assert.Equal(t, "₹ 1999.99", formatAmount(decimal.RequireFromString("1999.99")))
	assert.Equal(t, "₹ 0.00", formatAmount(decimal.Zero))
	assert.Equal(t, "₹ -5000.00", formatAmount(decimal.NewFromInt(-5000)))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "15 July 2024", formatDate(d))
	assert.Equal(t, "15 July 2024", formatDate(&d))
	assert.Equal(t, "", formatDate(nil))
	assert.Equal(t, "", formatDate((*time.Time)(nil)))
}

func newInvoiceFixture() *InvoiceData {
	next := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)
	return &InvoiceData{
		InvoiceNo:   "INV-1A2B3C4D",
		InvoiceDate: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Organization: OrganizationInfo{
			Name:    "Apex Skills Institute",
			Address: "12 MG Road, Pune",
			Phone:   "020-1234567",
			Email:   "accounts@apexskills.example",
			GSTIN:   "27AAAAA0000A1Z5",
		},
		Student: StudentInfo{
			ID:        uuid.New(),
			Name:      "Priya Sharma",
			Phone:     "9876543210",
			BatchName: "FSD-2024-July",
			TotalFee:  decimal.NewFromInt(50000),
			FeePaid:   decimal.NewFromInt(25000),
			FeeDue:    decimal.NewFromInt(25000),
		},
		Lines: []PaymentLine{{
			Description: "Bank Transfer",
			Date:        time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
			Reference:   "UTR-20240715-001",
			Amount:      decimal.NewFromInt(15000),
		}},
		TotalAmount: decimal.NewFromInt(15000),
		NextDueDate: &next,
		Terms:       InvoiceTerms,
	}
}

func TestRenderInvoiceHTML_SinglePayment(t *testing.T) {
	engine := NewTemplateEngine()
	data := newInvoiceFixture()

	html, err := RenderInvoiceHTML(engine, data)
	require.NoError(t, err)

	assert.Contains(t, html, "FEE INVOICE")
	assert.NotContains(t, html, "CONSOLIDATED")
	assert.Contains(t, html, "Apex Skills Institute")
	assert.Contains(t, html, "GSTIN: 27AAAAA0000A1Z5")
	assert.Contains(t, html, "Priya Sharma")
	assert.Contains(t, html, "Batch: FSD-2024-July")
	assert.Contains(t, html, "UTR-20240715-001")
	assert.Contains(t, html, "₹ 15000.00")
	assert.Contains(t, html, "Total: ₹ 15000.00")
	assert.Contains(t, html, "15 July 2024")
	assert.Contains(t, html, "Next payment due on 15 August 2024")
	assert.Contains(t, html, "Balance: ₹ 25000.00")

	// full terms block renders
	assert.Equal(t, len(InvoiceTerms), strings.Count(html, "<li>"))
	for _, clause := range InvoiceTerms {
		assert.Contains(t, html, clause)
	}
}

func TestRenderInvoiceHTML_NoLogoRendersWithoutImage(t *testing.T) {
	engine := NewTemplateEngine()
	data := newInvoiceFixture()
	data.Organization.LogoDataURL = ""

	html, err := RenderInvoiceHTML(engine, data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<img")
}

func TestRenderInvoiceHTML_Consolidated(t *testing.T) {
	engine := NewTemplateEngine()
	data := newInvoiceFixture()
	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	data.InvoiceNo = "CINV-1A2B3C4D"
	data.Consolidated = true
	data.PeriodFrom = &from
	data.PeriodTo = &to
	data.NextDueDate = nil
	data.Lines = append(data.Lines, PaymentLine{
		Description: "Cash Payment",
		Date:        to,
		Amount:      decimal.NewFromInt(10000),
	})
	data.TotalAmount = decimal.NewFromInt(25000)

	html, err := RenderInvoiceHTML(engine, data)
	require.NoError(t, err)

	assert.Contains(t, html, "CONSOLIDATED FEE INVOICE")
	assert.Contains(t, html, "Covering payments from 10 June 2024 to 20 August 2024")
	assert.Contains(t, html, "Total: ₹ 25000.00")
	assert.NotContains(t, html, "Next payment due")
}

func TestRenderInvoiceHTML_EscapesStudentInput(t *testing.T) {
	engine := NewTemplateEngine()
	data := newInvoiceFixture()
	data.Student.Name = `<script>alert("x")</script>`

	html, err := RenderInvoiceHTML(engine, data)
	require.NoError(t, err)
	assert.NotContains(t, html, `<script>alert`)
}
