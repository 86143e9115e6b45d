package handler

import (
	"bytes"
	"html/template"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/dustin/go-humanize"
)

// 15000 → "Rp 15.000"
func rupiah(n int64) string {
	return "Rp " + humanize.FormatInteger("#.###,", int(n))
}

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"rupiah": rupiah,
	"clock":  func(t time.Time) string { return t.Format("02/01/2006 15:04") },
}).Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Struk #{{.Order.ID}}</title>
<style>
body { font-family: monospace; width: 58mm; margin: 0 auto; }
h1 { font-size: 14px; text-align: center; }
table { width: 100%; border-collapse: collapse; }
td.r { text-align: right; }
.total { border-top: 1px dashed #000; font-weight: bold; }
</style>
</head>
<body onload="window.print()">
<h1>TwoNCafe</h1>
<p>No. {{.Order.ID}}<br>
{{clock .CreatedAt}}<br>
Nama: {{.Order.Name}}<br>
Meja: {{.Order.TableNumber}}<br>
Status: {{.Order.Status}}<br>
Bayar: {{.Order.PaymentMethod}}</p>
<table>
{{range .Order.Items}}<tr><td>{{.Name}} x{{.Quantity}}</td><td class="r">{{rupiah .Subtotal}}</td></tr>
{{end}}<tr class="total"><td>Total</td><td class="r">{{rupiah .Order.Total}}</td></tr>
</table>
</body>
</html>
`))

type receiptView struct {
	Order     usecase.OrderOutput
	CreatedAt time.Time
}

// 印刷用の簡単な HTML
func renderReceipt(o usecase.OrderOutput, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, receiptView{Order: o, CreatedAt: o.CreatedAt.In(loc)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
