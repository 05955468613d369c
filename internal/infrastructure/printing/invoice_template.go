package printing

// RenderInvoiceHTML executes the fixed invoice layout with the given data
func RenderInvoiceHTML(engine *TemplateEngine, data *InvoiceData) (string, error) {
	return engine.RenderString("invoice", invoiceTemplate, data)
}

// invoiceTemplate is the fixed invoice layout. The same template serves both
// the single-payment and the consolidated variant; the consolidated flag adds
// the covered date range under the title and the synthetic summary row text.
const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.InvoiceNo}}</title>
<style>
  body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; font-size: 12px; color: #1a1a1a; margin: 0; }
  .header { display: flex; align-items: center; justify-content: space-between; border-bottom: 3px solid #2c3e50; padding-bottom: 12px; }
  .header .org { text-align: right; }
  .header .org h1 { margin: 0; font-size: 20px; color: #2c3e50; }
  .header .org p { margin: 2px 0; color: #555; }
  .logo { max-height: 64px; }
  .title { text-align: center; margin: 18px 0 6px; }
  .title h2 { margin: 0; font-size: 16px; letter-spacing: 2px; color: #2c3e50; }
  .title .period { color: #777; font-size: 11px; margin-top: 4px; }
  .meta, .billto { margin-top: 14px; }
  .meta table { width: 100%; }
  .meta td { padding: 2px 0; }
  .meta .label { color: #777; width: 110px; }
  .billto h3 { margin: 0 0 4px; font-size: 12px; text-transform: uppercase; color: #777; }
  table.lines { width: 100%; border-collapse: collapse; margin-top: 16px; }
  table.lines th { background: #2c3e50; color: #fff; text-align: left; padding: 6px 8px; font-size: 11px; }
  table.lines td { border-bottom: 1px solid #ddd; padding: 6px 8px; }
  table.lines td.amount, table.lines th.amount { text-align: right; }
  .totalbox { margin-top: 12px; text-align: right; }
  .totalbox .box { display: inline-block; background: #2c3e50; color: #fff; padding: 8px 16px; font-size: 14px; }
  .nextdue { margin-top: 10px; text-align: right; color: #b03a2e; }
  .ledger { margin-top: 10px; text-align: right; color: #555; }
  .terms { margin-top: 28px; }
  .terms h3 { font-size: 11px; text-transform: uppercase; color: #777; margin-bottom: 4px; }
  .terms ol { margin: 0; padding-left: 16px; color: #555; font-size: 10px; }
  .terms li { margin: 2px 0; }
  .footer { margin-top: 32px; border-top: 1px solid #ddd; padding-top: 8px; text-align: center; color: #999; font-size: 10px; }
</style>
</head>
<body>
  <div class="header">
    <div>
      {{if .Organization.LogoDataURL}}<img class="logo" src="{{safeURL .Organization.LogoDataURL}}" alt="logo">{{end}}
    </div>
    <div class="org">
      <h1>{{.Organization.Name}}</h1>
      {{if .Organization.Address}}<p>{{.Organization.Address}}</p>{{end}}
      <p>{{.Organization.Phone}}{{if .Organization.Email}} &middot; {{.Organization.Email}}{{end}}</p>
      {{if .Organization.Website}}<p>{{.Organization.Website}}</p>{{end}}
      {{if .Organization.GSTIN}}<p>GSTIN: {{.Organization.GSTIN}}</p>{{end}}
    </div>
  </div>

  <div class="title">
    <h2>{{if .Consolidated}}CONSOLIDATED FEE INVOICE{{else}}FEE INVOICE{{end}}</h2>
    {{if .Consolidated}}{{if .PeriodFrom}}<div class="period">Covering payments from {{formatDate .PeriodFrom}} to {{formatDate .PeriodTo}}</div>{{end}}{{end}}
  </div>

  <div class="meta">
    <table>
      <tr><td class="label">Invoice No</td><td>{{.InvoiceNo}}</td></tr>
      <tr><td class="label">Invoice Date</td><td>{{formatDate .InvoiceDate}}</td></tr>
    </table>
  </div>

  <div class="billto">
    <h3>Bill To</h3>
    <strong>{{.Student.Name}}</strong><br>
    {{.Student.Phone}}{{if .Student.Email}} &middot; {{.Student.Email}}{{end}}<br>
    {{if .Student.BatchName}}Batch: {{.Student.BatchName}}{{end}}
  </div>

  <table class="lines">
    <thead>
      <tr><th>Description</th><th>Date</th><th>Reference</th><th class="amount">Amount</th></tr>
    </thead>
    <tbody>
      {{range .Lines}}
      <tr>
        <td>{{.Description}}</td>
        <td>{{formatDate .Date}}</td>
        <td>{{.Reference}}</td>
        <td class="amount">{{formatAmount .Amount}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <div class="totalbox">
    <span class="box">Total: {{formatAmount .TotalAmount}}</span>
  </div>

  <div class="ledger">
    Total Fee: {{formatAmount .Student.TotalFee}} &middot;
    Paid: {{formatAmount .Student.FeePaid}} &middot;
    Balance: {{formatAmount .Student.FeeDue}}
  </div>

  {{if .NextDueDate}}
  <div class="nextdue">Next payment due on {{formatDate .NextDueDate}}</div>
  {{end}}

  <div class="terms">
    <h3>Terms &amp; Conditions</h3>
    <ol>
      {{range .Terms}}<li>{{.}}</li>{{end}}
    </ol>
  </div>

  <div class="footer">
    This is a computer generated invoice and does not require a signature. &middot; {{.Organization.Name}}
  </div>
</body>
</html>`
