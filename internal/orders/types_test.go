package orders

import "testing"

func TestCardSummaryFromNumber(t *testing.T) {
	cases := []struct {
		number   string
		lastFour string
		cardType string
	}{
		{"4111111111111111", "1111", "Visa"},
		{"4111 1111 1111 1234", "1234", "Visa"},
		{"5500000000000004", "0004", "Mastercard"},
		{"2221000000000009", "0009", "Mastercard"},
		{"340000000000009", "0009", "American Express"},
		{"6011000000000012", "0012", "Discover"},
		{"9999000000000001", "0001", "Unknown"},
	}
	for _, tc := range cases {
		got := CardSummaryFromNumber(tc.number)
		if got.LastFourDigits != tc.lastFour {
			t.Errorf("%s: expected last four %s, got %s", tc.number, tc.lastFour, got.LastFourDigits)
		}
		if got.CardType != tc.cardType {
			t.Errorf("%s: expected type %s, got %s", tc.number, tc.cardType, got.CardType)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusShipped},
		{StatusConfirmed, StatusCancelled},
		{StatusShipped, StatusDelivered},
	}
	for _, tr := range allowed {
		if !CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s allowed", tr[0], tr[1])
		}
	}

	denied := [][2]string{
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusShipped, StatusCancelled},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusCancelled},
	}
	for _, tr := range denied {
		if CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s denied", tr[0], tr[1])
		}
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []string{MethodCard, MethodUPI, MethodNetbanking, MethodCOD} {
		if !ValidPaymentMethod(m) {
			t.Errorf("expected %s valid", m)
		}
	}
	if ValidPaymentMethod("cheque") {
		t.Error("expected cheque invalid")
	}
}
