package validation

import (
	"regexp"

	validatorv10 "github.com/go-playground/validator/v10"
)

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// card payments must carry every card sub-field; other methods must not
	// be validated against card rules at all.
	v.RegisterStructValidation(placeOrderStructValidation, PlaceOrderRequest{})

	return v
}

func placeOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(PlaceOrderRequest)

	if req.PaymentMethod != "card" {
		return
	}
	if req.CardDetails == nil {
		sl.ReportError(req.CardDetails, "cardDetails", "CardDetails", "required_for_card", "")
		return
	}
	if req.CardDetails.CardNumber == "" {
		sl.ReportError(req.CardDetails.CardNumber, "cardDetails.cardNumber", "CardNumber", "required_for_card", "")
	}
	if req.CardDetails.ExpiryDate == "" {
		sl.ReportError(req.CardDetails.ExpiryDate, "cardDetails.expiryDate", "ExpiryDate", "required_for_card", "")
	} else if !expiryPattern.MatchString(req.CardDetails.ExpiryDate) {
		sl.ReportError(req.CardDetails.ExpiryDate, "cardDetails.expiryDate", "ExpiryDate", "expiry_format", "")
	}
	if req.CardDetails.CVV == "" {
		sl.ReportError(req.CardDetails.CVV, "cardDetails.cvv", "CVV", "required_for_card", "")
	}
	if req.CardDetails.CardName == "" {
		sl.ReportError(req.CardDetails.CardName, "cardDetails.cardName", "CardName", "required_for_card", "")
	}
}
