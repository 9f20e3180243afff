package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	Name     string
	Size     string
	Quantity int
	Price    decimal.Decimal
}

// OrderConfirmation is everything the confirmation email shows
type OrderConfirmation struct {
	OrderID      string
	CustomerName string
	Items        []OrderItem
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	ShipTo       string
}

// ContactMessage is a storefront contact form submission
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// QuoteLine is one priced line of a bulk order estimate
type QuoteLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote is a bulk order estimate
type Quote struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Notes   string
	Lines   []QuoteLine
	Total   decimal.Decimal
}

const (
	cellStyle  = `padding: 12px; border-bottom: 1px solid #eee;`
	pageHeader = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #b5651d 0%, #7b2d26 100%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">`
	pageBody = `</h1>
	</div>
	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
`
	pageFooter = `
		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
		<p style="font-size: 12px; color: #999; margin-bottom: 0;">This is an automated message. Reply to this email or use the contact form if you need help.</p>
	</div>
</body>
</html>`
)

func page(title, content string) string {
	return pageHeader + html.EscapeString(title) + pageBody + content + pageFooter
}

func row(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for i, c := range cells {
		align := "right"
		switch i {
		case 0:
			align = "left"
		case 1:
			align = "center"
		}
		fmt.Fprintf(&b, `<td style="%s text-align: %s;">%s</td>`, cellStyle, align, c)
	}
	b.WriteString("</tr>")
	return b.String()
}

func table(head []string, rows string) string {
	var b strings.Builder
	b.WriteString(`<table style="width: 100%; border-collapse: collapse; margin: 20px 0;"><thead><tr style="background: #f8f9fa;">`)
	for _, h := range head {
		fmt.Fprintf(&b, `<th style="padding: 12px; font-weight: 600;">%s</th>`, h)
	}
	b.WriteString("</tr></thead><tbody>")
	b.WriteString(rows)
	b.WriteString("</tbody></table>")
	return b.String()
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(c OrderConfirmation) string {
	var rows strings.Builder
	for _, item := range c.Items {
		name := html.EscapeString(item.Name)
		if item.Size != "" {
			name += " (" + html.EscapeString(item.Size) + ")"
		}
		rows.WriteString(row(
			name,
			fmt.Sprintf("%d", item.Quantity),
			FormatRupees(item.Price),
			FormatRupees(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<p style="margin-top: 0;">Hi %s, thank you for your order. We have received your payment and will let you know when it ships.</p>`,
		html.EscapeString(c.CustomerName))
	fmt.Fprintf(&b, `<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;"><p style="margin: 0; font-size: 14px; color: #666;">Order number</p><p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p></div>`,
		html.EscapeString(c.OrderID))
	b.WriteString(table([]string{"Item", "Qty", "Price", "Amount"}, rows.String()))
	fmt.Fprintf(&b, `<p style="text-align: right;">Subtotal: %s</p>`, FormatRupees(c.Subtotal))
	if c.Discount.IsPositive() {
		fmt.Fprintf(&b, `<p style="text-align: right;">Discount: -%s</p>`, FormatRupees(c.Discount))
	}
	fmt.Fprintf(&b, `<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;"><span style="font-size: 14px; color: #666;">Total paid</span><span style="font-size: 24px; font-weight: bold; color: #7b2d26; margin-left: 10px;">%s</span></div>`,
		FormatRupees(c.Total))
	if c.ShipTo != "" {
		fmt.Fprintf(&b, `<p><strong>Shipping to:</strong><br>%s</p>`, html.EscapeString(c.ShipTo))
	}
	return page("Thank you for your order", b.String())
}

// BuildContactBody builds the HTML body forwarded to the shop
func BuildContactBody(m ContactMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p><strong>From:</strong> %s &lt;%s&gt;</p>`, html.EscapeString(m.Name), html.EscapeString(m.Email))
	if m.Phone != "" {
		fmt.Fprintf(&b, `<p><strong>Phone:</strong> %s</p>`, html.EscapeString(m.Phone))
	}
	if m.Subject != "" {
		fmt.Fprintf(&b, `<p><strong>Subject:</strong> %s</p>`, html.EscapeString(m.Subject))
	}
	fmt.Fprintf(&b, `<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; white-space: pre-wrap;">%s</div>`, html.EscapeString(m.Message))
	return page("New contact message", b.String())
}

// BuildQuoteBody builds the HTML estimate for a bulk order
func BuildQuoteBody(q Quote) string {
	var rows strings.Builder
	for _, l := range q.Lines {
		rows.WriteString(row(html.EscapeString(l.Name), fmt.Sprintf("%d", l.Quantity), FormatRupees(l.UnitPrice), FormatRupees(l.LineTotal)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<p style="margin-top: 0;">Bulk order enquiry from <strong>%s</strong> &lt;%s&gt;`, html.EscapeString(q.Name), html.EscapeString(q.Email))
	if q.Company != "" {
		fmt.Fprintf(&b, ` of %s`, html.EscapeString(q.Company))
	}
	b.WriteString(`.</p>`)
	if q.Phone != "" {
		fmt.Fprintf(&b, `<p><strong>Phone:</strong> %s</p>`, html.EscapeString(q.Phone))
	}
	b.WriteString(table([]string{"Item", "Qty", "Unit price", "Amount"}, rows.String()))
	fmt.Fprintf(&b, `<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;"><span style="font-size: 14px; color: #666;">Estimated total</span><span style="font-size: 24px; font-weight: bold; color: #7b2d26; margin-left: 10px;">%s</span></div>`,
		FormatRupees(q.Total))
	if q.Notes != "" {
		fmt.Fprintf(&b, `<p><strong>Notes:</strong> %s</p>`, html.EscapeString(q.Notes))
	}
	b.WriteString(`<p style="font-size: 13px; color: #666;">Prices are based on the current catalogue and may change before the order is confirmed.</p>`)
	return page("Bulk order estimate", b.String())
}

// FormatRupees renders an amount with Indian digit grouping, e.g. ₹12,34,567.50
func FormatRupees(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "₹" + groupIndian(whole) + "." + frac
}

// groupIndian groups the last three digits, then every two
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
