package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"golang.org/x/text/language"

	"github.com/rcs-software/rcs-crm/internal/clients"
	"github.com/rcs-software/rcs-crm/internal/quotes"
)

// QuoteRenderer renders quotes to PDF via Gotenberg. It implements
// quotes.PDFRenderer.
type QuoteRenderer struct {
	client *Client
}

func NewQuoteRenderer(client *Client) *QuoteRenderer {
	return &QuoteRenderer{client: client}
}

var quoteLabels = map[language.Tag]map[string]string{
	language.French: {
		"title": "Devis",
		"client": "Client",
		"emission": "Date d'émission",
		"validity": "Valable jusqu'au",
		"description": "Désignation",
		"quantity": "Qté",
		"unit": "Unité",
		"unit_price": "PU HT",
		"discount": "Remise",
		"total_ht": "Total HT",
		"global_discount": "Remise globale",
		"total_after": "Total HT après remise",
		"tva": "TVA",
		"total_ttc": "Total TTC",
		"monthly": "Total mensuel HT",
	},
	language.English: {
		"title": "Quote",
		"client": "Client",
		"emission": "Issue date",
		"validity": "Valid until",
		"description": "Description",
		"quantity": "Qty",
		"unit": "Unit",
		"unit_price": "Unit price",
		"discount": "Discount",
		"total_ht": "Subtotal",
		"global_discount": "Global discount",
		"total_after": "Subtotal after discount",
		"tva": "VAT",
		"total_ttc": "Total incl. VAT",
		"monthly": "Monthly recurring total",
	},
}

var quoteTemplate = template.Must(template.New("quote").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.L.title}} {{.Quote.QuoteNumber}}</title></head>
<body>
<h1>{{.L.title}} {{.Quote.QuoteNumber}}</h1>
<p>{{.L.client}}: {{.Client.Name}}</p>
<p>{{.L.emission}}: {{.Quote.EmissionDate.Format "02/01/2006"}} — {{.L.validity}}: {{.Quote.ValidityDate.Format "02/01/2006"}}</p>
<h2>{{.Quote.Subject}}</h2>
{{range .Quote.Sections}}
<h3>{{if $.English}}{{if .TitleEN}}{{.TitleEN}}{{else}}{{.Title}}{{end}}{{else}}{{.Title}}{{end}}</h3>
<table border="1" cellspacing="0" cellpadding="4" width="100%">
<tr>
  <th>{{$.L.description}}</th><th>{{$.L.quantity}}</th><th>{{$.L.unit}}</th>
  <th>{{$.L.unit_price}}</th><th>{{$.L.discount}}</th>
</tr>
{{range .Items}}
<tr>
  <td>{{if $.English}}{{if .DescriptionEN}}{{.DescriptionEN}}{{else}}{{.Description}}{{end}}{{else}}{{.Description}}{{end}}</td>
  <td>{{.Quantity}}</td>
  <td>{{.UnitOfMeasure}}</td>
  <td>{{money .UnitPriceHT}}</td>
  <td>{{.LineDiscountPercent}}%</td>
</tr>
{{end}}
</table>
{{end}}
<table cellspacing="0" cellpadding="4">
<tr><td>{{.L.total_ht}}</td><td>{{money .Quote.TotalHTBeforeDiscount}}</td></tr>
<tr><td>{{.L.global_discount}} ({{.Quote.GlobalDiscountPercent}}%)</td><td>{{money .Quote.DiscountAmount}}</td></tr>
<tr><td>{{.L.total_after}}</td><td>{{money .Quote.TotalHTAfterDiscount}}</td></tr>
<tr><td>{{.L.tva}}</td><td>{{money .Quote.TotalTVA}}</td></tr>
<tr><td><strong>{{.L.total_ttc}}</strong></td><td><strong>{{money .Quote.TotalTTC}}</strong></td></tr>
<tr><td>{{.L.monthly}}</td><td>{{money .Quote.TotalMensuelHT}} / mois</td></tr>
</table>
</body>
</html>`))

// RenderQuote builds the localized HTML document and converts it to PDF.
func (r *QuoteRenderer) RenderQuote(ctx context.Context, q quotes.Quote, client clients.Client, lang language.Tag) ([]byte, error) {
	labels, ok := quoteLabels[lang]
	if !ok {
		labels = quoteLabels[language.French]
	}

	var buf bytes.Buffer
	err := quoteTemplate.Execute(&buf, map[string]any{
		"Quote":   q,
		"Client":  client,
		"L":       labels,
		"English": lang == language.English,
	})
	if err != nil {
		return nil, fmt.Errorf("render quote template: %w", err)
	}
	return r.client.RenderHTML(ctx, buf.String())
}
