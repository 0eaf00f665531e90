package orders

import (
	"strings"
	"time"
)

// Order lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Payment statuses. Nothing advances these automatically until a real
// gateway is integrated; orders are created with PaymentPending.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Accepted payment methods.
const (
	MethodCard       = "card"
	MethodUPI        = "upi"
	MethodNetbanking = "netbanking"
	MethodCOD        = "cod"
)

// allowedTransitions encodes the status machine. Keys absent from the map
// (delivered, cancelled) are terminal.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

// ValidStatus reports whether s is a member of the status enumeration.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCard, MethodUPI, MethodNetbanking, MethodCOD:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from -> to.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Address is the shipping address captured at order time.
type Address struct {
	FullName     string `dynamodbav:"full_name" json:"fullName"`
	Email        string `dynamodbav:"email" json:"email"`
	Phone        string `dynamodbav:"phone" json:"phone"`
	AddressLine1 string `dynamodbav:"address_line1" json:"addressLine1"`
	AddressLine2 string `dynamodbav:"address_line2,omitempty" json:"addressLine2,omitempty"`
	City         string `dynamodbav:"city" json:"city"`
	State        string `dynamodbav:"state" json:"state"`
	PostalCode   string `dynamodbav:"postal_code" json:"postalCode"`
	Country      string `dynamodbav:"country" json:"country"`
}

// CardSummary is all that is ever persisted about a card: the last four
// digits and the detected network. Full number and CVV never reach storage.
type CardSummary struct {
	LastFourDigits string `dynamodbav:"last_four_digits" json:"lastFourDigits"`
	CardType       string `dynamodbav:"card_type" json:"cardType"`
}

// CardSummaryFromNumber derives the persisted summary from a raw card number.
// Network detection keys off the first digit.
func CardSummaryFromNumber(cardNumber string) CardSummary {
	num := strings.ReplaceAll(cardNumber, " ", "")
	summary := CardSummary{CardType: "Unknown"}
	if len(num) >= 4 {
		summary.LastFourDigits = num[len(num)-4:]
	} else {
		summary.LastFourDigits = num
	}
	if num == "" {
		return summary
	}
	switch num[0] {
	case '4':
		summary.CardType = "Visa"
	case '5', '2':
		summary.CardType = "Mastercard"
	case '3':
		summary.CardType = "American Express"
	case '6':
		summary.CardType = "Discover"
	}
	return summary
}

// Item is a frozen order line: the quantity and the unit price captured from
// the product at order time.
type Item struct {
	ProductID string  `dynamodbav:"product_id" json:"productId"`
	Name      string  `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Quantity  int     `dynamodbav:"quantity" json:"quantity"`
	UnitPrice float64 `dynamodbav:"unit_price" json:"unitPrice"`
}

// Order represents the item stored in the orders DynamoDB table. Items and
// Total are immutable after creation; only Status and PaymentStatus change.
type Order struct {
	OrderID       string       `dynamodbav:"order_id" json:"orderId"` // PK
	UserID        string       `dynamodbav:"user_id" json:"userId"`
	Items         []Item       `dynamodbav:"items" json:"items"`
	Total         float64      `dynamodbav:"total" json:"total"`
	Address       Address      `dynamodbav:"address" json:"address"`
	PaymentMethod string       `dynamodbav:"payment_method" json:"paymentMethod"`
	PaymentStatus string       `dynamodbav:"payment_status" json:"paymentStatus"`
	CardSummary   *CardSummary `dynamodbav:"card_summary,omitempty" json:"cardSummary,omitempty"`
	Status        string       `dynamodbav:"status" json:"status"`
	CreatedAt     time.Time    `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt     time.Time    `dynamodbav:"updated_at" json:"updatedAt"`
}
