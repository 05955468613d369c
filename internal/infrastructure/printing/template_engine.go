package printing

import (
	"bytes"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/institute/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TemplateEngine renders HTML templates with invoice data. It uses Go's
// html/template package with helper functions for currency and date
// formatting.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a new template engine with the invoice helpers
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{}

	e.funcMap = template.FuncMap{
		"formatAmount":   formatAmount,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,

		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"trim":    strings.TrimSpace,
		"default": defaultFunc,

		"add": func(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) },
		"sub": func(a, b decimal.Decimal) decimal.Decimal { return a.Sub(b) },

		// safeHTML bypasses escaping. Only used for fixed markup baked into
		// the invoice template itself, never for tenant or student input.
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
		"safeURL":  func(s string) template.URL { return template.URL(s) },
	}

	return e
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatAmount formats a decimal as invoice currency.
// Example: 15000 -> "₹ 15000.00"
func formatAmount(v interface{}) string {
	return valueobject.CurrencySymbol(valueobject.DefaultCurrency) + " " + toDecimal(v).StringFixed(2)
}

// formatDate formats a time value in the long form used on invoices.
// Example: 2024-07-15 -> "15 July 2024"
func formatDate(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02 January 2006")
}

// formatDateTime formats a time value as a datetime string
func formatDateTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02 January 2006 15:04")
}

func defaultFunc(def, val interface{}) interface{} {
	if val == nil {
		return def
	}
	if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
		return def
	}
	return val
}

func toDecimal(v interface{}) decimal.Decimal {
	switch d := v.(type) {
	case decimal.Decimal:
		return d
	case *decimal.Decimal:
		if d == nil {
			return decimal.Zero
		}
		return *d
	case valueobject.Money:
		return d.Amount()
	case int:
		return decimal.NewFromInt(int64(d))
	case int64:
		return decimal.NewFromInt(d)
	case float64:
		return decimal.NewFromFloat(d)
	case string:
		parsed, err := decimal.NewFromString(d)
		if err != nil {
			return decimal.Zero
		}
		return parsed
	default:
		return decimal.Zero
	}
}

func toTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return *t
	default:
		return time.Time{}
	}
}
