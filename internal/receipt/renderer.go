package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"unicode/utf8"

	"pos_service/internal/domain"
)

const (
	dateLayout = "02/01/2006"
	timeLayout = "15.04.05"
)

// Document is a rendered receipt: a fixed-width text body for thermal
// printers and an HTML body for the document renderer, with the page size
// that fits its line items.
type Document struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Markup string `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (d Document) Lines() []string {
	return strings.Split(d.Text, "\n")
}

type markupItem struct {
	Name     string
	Qty      int
	Price    string
	Subtotal string
}

type markupData struct {
	StoreName    string
	StoreAddress string
	Customer     string
	Date         string
	Time         string
	Items        []markupItem
	Total        string
	Method       string
	Footer       []string
}

var markupTemplate = template.Must(template.New("receipt").Parse(`<html>
<head>
<style>
body { margin: 0; padding: 8px; font-family: 'Courier New', Courier, monospace; font-size: 12px; width: 58mm; }
.center { text-align: center; }
.divider { border-top: 1px dotted #000; margin: 6px 0; }
.row { display: flex; justify-content: space-between; align-items: flex-start; }
.item-name { font-weight: bold; flex: 1; }
.item-price { text-align: right; margin-left: 10px; }
.total { font-size: 14px; font-weight: bold; margin-top: 8px; }
.footer { margin-top: 12px; font-size: 10px; text-align: center; padding-bottom: 5px; }
</style>
</head>
<body>
<div class="center"><strong style="font-size: 14px;">{{.StoreName}}</strong><br><span style="font-size: 10px;">{{.StoreAddress}}</span></div>
<div class="divider"></div>
<div style="font-size: 10px;">
<div class="row"><span>PELANGGAN</span> <span>: {{.Customer}}</span></div>
<div class="row"><span>TANGGAL</span> <span>: {{.Date}}</span></div>
<div class="row"><span>WAKTU</span> <span>: {{.Time}}</span></div>
</div>
<div class="divider"></div>
{{range .Items}}<div class="row"><span class="item-name">{{.Name}}</span></div>
<div class="row" style="margin-bottom: 4px;"><span>{{.Qty}} x {{.Price}}</span><span class="item-price">{{.Subtotal}}</span></div>
{{end}}<div class="divider"></div>
<div class="row total"><span>TOTAL</span><span>{{.Total}}</span></div>
<div class="row" style="font-size: 10px; margin-top: 2px;"><span>METODE</span> <span>: {{.Method}}</span></div>
<div class="divider"></div>
<div class="footer">{{range $i, $line := .Footer}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div>
</body>
</html>
`))

// Render lays out tx as a receipt. It has no side effects and returns the
// same document for the same transaction and profile.
func Render(tx *domain.Transaction, p Profile) (Document, error) {
	if tx == nil {
		return Document{}, fmt.Errorf("cannot render receipt for nil transaction")
	}

	customer := strings.ToUpper(domain.NormalizeCustomerName(tx.CustomerName))
	date := tx.CreatedAt.Format(dateLayout)
	clock := tx.CreatedAt.Format(timeLayout)
	divider := strings.Repeat("-", p.Columns)

	lines := []string{
		center(p.StoreName, p.Columns),
		center(p.StoreAddress, p.Columns),
		divider,
		field("PELANGGAN", customer),
		field("TANGGAL", date),
		field("WAKTU", clock),
		divider,
	}

	data := markupData{
		StoreName:    p.StoreName,
		StoreAddress: p.StoreAddress,
		Customer:     customer,
		Date:         date,
		Time:         clock,
		Total:        amount(tx.TotalAmount),
		Method:       string(tx.PaymentMethod),
		Footer:       p.Footer,
	}

	for _, item := range tx.Items {
		name := strings.ToUpper(item.Name)
		qtyPrice := fmt.Sprintf("%d x %s", item.Quantity, amount(item.Price))
		lines = append(lines, name, row(qtyPrice, amount(item.Subtotal()), p.Columns))
		data.Items = append(data.Items, markupItem{
			Name:     name,
			Qty:      item.Quantity,
			Price:    amount(item.Price),
			Subtotal: amount(item.Subtotal()),
		})
	}

	lines = append(lines,
		divider,
		row("TOTAL", amount(tx.TotalAmount), p.Columns),
		field("METODE", string(tx.PaymentMethod)),
		divider,
	)
	for _, f := range p.Footer {
		lines = append(lines, center(f, p.Columns))
	}

	var markup bytes.Buffer
	if err := markupTemplate.Execute(&markup, data); err != nil {
		return Document{}, fmt.Errorf("failed to build receipt markup for transaction %s: %w", tx.ID, err)
	}

	return Document{
		Name:   "receipt-" + tx.ID,
		Text:   strings.Join(lines, "\n"),
		Markup: markup.String(),
		Width:  p.WidthPx,
		Height: p.Height(len(tx.Items)),
	}, nil
}

func amount(v int64) string {
	return strconv.FormatInt(v, 10)
}

func field(label, value string) string {
	return fmt.Sprintf("%-9s : %s", label, value)
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}

// row puts left and right on one line with right flush to width.
func row(left, right string, width int) string {
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
