package service

import (
	"regexp"
	"strings"

	"storefront-service/internal/entity"
)

var (
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3}$`)
)

type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"` // MM/YY
	CVV    string `json:"cvv"`
}

func isCardMethod(method string) bool {
	return method == entity.PaymentMethodCreditCard || method == entity.PaymentMethodDebitCard
}

func isKnownMethod(method string) bool {
	return isCardMethod(method) || method == entity.PaymentMethodCashOnDelivery
}

// ValidLuhn reports whether number passes the Luhn checksum. Spaces are
// ignored; any other non-digit makes the number invalid.
func ValidLuhn(number string) bool {
	number = strings.ReplaceAll(number, " ", "")
	if number == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// validateCard checks number, expiry and CVV in that order and reports the
// first field that fails.
func validateCard(card *CardDetails) error {
	if card == nil {
		return invalid("card", "card details are required")
	}
	if !ValidLuhn(card.Number) {
		return invalid("card_number", "invalid card number")
	}
	if !expiryPattern.MatchString(card.Expiry) {
		return invalid("expiry_date", "invalid expiry date, use MM/YY")
	}
	if !cvvPattern.MatchString(card.CVV) {
		return invalid("cvv", "invalid CVV number")
	}
	return nil
}
