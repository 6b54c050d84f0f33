// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/domain/order"
)

// Service renders order receipts as PDF documents
type Service struct {
	cfg      *config.Config
	template *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) (*Service, error) {
	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"amount": func(cents int64) string {
			return fmt.Sprintf("₹%.2f", float64(cents)/100)
		},
	}).Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt template: %w", err)
	}
	return &Service{cfg: cfg, template: tmpl}, nil
}

type receiptData struct {
	CompanyName    string
	CompanyAddress string
	CompanyEmail   string
	CompanyPhone   string
	Order          *order.OrderResponse
	OrderDate      string
	DeliveryDate   string
}

// GenerateReceipt renders the order receipt PDF and returns its bytes
func (s *Service) GenerateReceipt(o *order.OrderResponse) ([]byte, error) {
	data := receiptData{
		CompanyName:    s.cfg.App.CompanyName,
		CompanyAddress: s.cfg.App.CompanyAddress,
		CompanyEmail:   s.cfg.App.CompanyEmail,
		CompanyPhone:   s.cfg.App.CompanyPhone,
		Order:          o,
		OrderDate:      o.OrderDate.Format("02 Jan 2006"),
		DeliveryDate:   o.EstimatedDelivery.Format("02 Jan 2006"),
	}

	var html bytes.Buffer
	if err := s.template.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render receipt template: %w", err)
	}

	generator, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	generator.Dpi.Set(300)
	generator.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	generator.AddPage(page)

	if err := generator.Create(); err != nil {
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}

	return generator.Bytes(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, sans-serif; color: #222; margin: 40px; }
  h1 { text-align: center; letter-spacing: 2px; }
  .company { text-align: center; margin-bottom: 30px; }
  .meta { margin-bottom: 20px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
  th, td { border-bottom: 1px solid #ddd; padding: 8px; text-align: left; }
  th { background: #f5f5f5; }
  .totals td { border: none; padding: 4px 8px; }
  .totals .grand { font-weight: bold; border-top: 2px solid #222; }
  .right { text-align: right; }
</style>
</head>
<body>
  <h1>ORDER RECEIPT</h1>
  <div class="company">
    <strong>{{.CompanyName}}</strong><br>
    {{if .CompanyAddress}}{{.CompanyAddress}}<br>{{end}}
    {{.CompanyEmail}}{{if .CompanyPhone}} | {{.CompanyPhone}}{{end}}
  </div>

  <div class="meta">
    <strong>Order:</strong> {{.Order.DisplayID}}<br>
    <strong>Order Date:</strong> {{.OrderDate}}<br>
    <strong>Status:</strong> {{.Order.Status}}<br>
    <strong>Estimated Delivery:</strong> {{.DeliveryDate}}
  </div>

  <div class="meta">
    <strong>Ship To:</strong><br>
    {{.Order.CustomerName}}<br>
    {{.Order.Address}}<br>
    {{.Order.City}}, {{.Order.State}} {{.Order.Pincode}}<br>
    {{.Order.Phone}}
  </div>

  <table>
    <tr><th>Item</th><th class="right">Qty</th><th class="right">Price</th><th class="right">Total</th></tr>
    {{range .Order.Items}}
    <tr>
      <td>{{.ProductName}}</td>
      <td class="right">{{.Quantity}}</td>
      <td class="right">{{amount .Price}}</td>
      <td class="right">{{amount .LineTotal}}</td>
    </tr>
    {{end}}
  </table>

  <table class="totals">
    <tr><td class="right">Subtotal</td><td class="right">{{amount .Order.Subtotal}}</td></tr>
    <tr><td class="right">Delivery</td><td class="right">{{if gt .Order.DeliveryFee 0}}{{amount .Order.DeliveryFee}}{{else}}FREE{{end}}</td></tr>
    <tr class="grand"><td class="right">Total</td><td class="right">{{amount .Order.TotalAmount}}</td></tr>
  </table>

  <p>Thank you for shopping with {{.CompanyName}}.</p>
</body>
</html>`
