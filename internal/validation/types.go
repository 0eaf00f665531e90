package validation

// AddressPayload mirrors the shipping address form. addressLine2 is the only
// optional field.
type AddressPayload struct {
	FullName     string `json:"fullName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Country      string `json:"country" validate:"required"`
}

// CardDetailsPayload is only accepted in-flight; none of it is persisted
// beyond the derived last-four/network summary.
type CardDetailsPayload struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	CardName   string `json:"cardName"`
}

// PlaceOrderRequest is the payload for POST /orders.
type PlaceOrderRequest struct {
	Address       AddressPayload      `json:"address" validate:"required"`
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=card upi netbanking cod"`
	CardDetails   *CardDetailsPayload `json:"cardDetails,omitempty"`
}

// UpdateStatusRequest is the payload for status updates. pending is the
// creation default and never a transition target.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed shipped delivered cancelled"`
}
