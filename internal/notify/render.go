package notify

import (
	"fmt"
	"strings"

	"github.com/craftkart/checkout/internal/orders"
)

var paymentMethodNames = map[string]string{
	orders.MethodCard:       "Credit/Debit Card",
	orders.MethodUPI:        "UPI",
	orders.MethodNetbanking: "Net Banking",
	orders.MethodCOD:        "Cash on Delivery",
}

var statusMessages = map[string]string{
	orders.StatusConfirmed: "Your order has been confirmed and is being prepared.",
	orders.StatusShipped:   "Great news! Your order has been shipped and is on its way.",
	orders.StatusDelivered: "Your order has been successfully delivered. Thank you for shopping with us!",
	orders.StatusCancelled: "Your order has been cancelled. If you have any questions, please contact our support team.",
}

func paymentMethodName(method string) string {
	if name, ok := paymentMethodNames[method]; ok {
		return name
	}
	return method
}

// ConfirmationHTML renders the order-confirmation email body.
func ConfirmationHTML(order *orders.Order) string {
	var b strings.Builder
	b.WriteString(`<div style="max-width:600px;margin:0 auto;font-family:Arial,sans-serif">`)
	b.WriteString(`<h1>Order Confirmed!</h1>`)
	b.WriteString(`<p>Thank you for your purchase.</p>`)
	fmt.Fprintf(&b, `<p><strong>Order ID:</strong> #%s<br>`, order.OrderID)
	fmt.Fprintf(&b, `<strong>Order Date:</strong> %s<br>`, order.CreatedAt.Format("02 Jan 2006"))
	fmt.Fprintf(&b, `<strong>Payment Method:</strong> %s</p>`, paymentMethodName(order.PaymentMethod))

	switch order.PaymentMethod {
	case orders.MethodCOD:
		fmt.Fprintf(&b, `<p>Please keep &#8377;%.2f ready in cash when our delivery executive arrives.</p>`, order.Total)
	case orders.MethodCard:
		if order.CardSummary != nil {
			fmt.Fprintf(&b, `<p>Payment via %s ending in %s. Payment processing will be completed shortly.</p>`,
				order.CardSummary.CardType, order.CardSummary.LastFourDigits)
		}
	default:
		b.WriteString(`<p>Payment processing will be completed shortly. You will receive a payment confirmation once processed.</p>`)
	}

	b.WriteString(`<h2>Items Ordered</h2><table style="width:100%;border-collapse:collapse">`)
	b.WriteString(`<tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>`)
	for _, it := range order.Items {
		fmt.Fprintf(&b, `<tr><td>%s</td><td align="center">%d</td><td align="right">&#8377;%.2f</td><td align="right">&#8377;%.2f</td></tr>`,
			it.Name, it.Quantity, it.UnitPrice, float64(it.Quantity)*it.UnitPrice)
	}
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<h3>Total: &#8377;%.2f</h3>`, order.Total)

	b.WriteString(`<h2>Delivery Address</h2><p>`)
	fmt.Fprintf(&b, `<strong>%s</strong><br>%s<br>`, order.Address.FullName, order.Address.AddressLine1)
	if order.Address.AddressLine2 != "" {
		fmt.Fprintf(&b, `%s<br>`, order.Address.AddressLine2)
	}
	fmt.Fprintf(&b, `%s, %s %s<br>%s<br>`, order.Address.City, order.Address.State, order.Address.PostalCode, order.Address.Country)
	fmt.Fprintf(&b, `<strong>Phone:</strong> %s</p>`, order.Address.Phone)

	b.WriteString(`<p>We're preparing your order for shipment. You'll receive a tracking number once your order is dispatched.</p>`)
	b.WriteString(`<p><small>This is an automated email. Please do not reply.</small></p>`)
	b.WriteString(`</div>`)
	return b.String()
}

// StatusUpdateHTML renders the status-change email body.
func StatusUpdateHTML(order *orders.Order, status string) string {
	var b strings.Builder
	b.WriteString(`<div style="max-width:600px;margin:0 auto;font-family:Arial,sans-serif">`)
	b.WriteString(`<h1>Order Status Update</h1>`)
	fmt.Fprintf(&b, `<p><strong>Order ID:</strong> #%s</p>`, order.OrderID)
	fmt.Fprintf(&b, `<p><strong>New Status:</strong> %s</p>`, strings.ToUpper(status))
	fmt.Fprintf(&b, `<p>%s</p>`, statusMessages[status])
	b.WriteString(`<p><small>This is an automated email. Please do not reply.</small></p>`)
	b.WriteString(`</div>`)
	return b.String()
}
