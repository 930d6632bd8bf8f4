package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCreditCard     = "Credit Card"
	PaymentMethodDebitCard      = "Debit Card"
	PaymentMethodCashOnDelivery = "Cash on Delivery"
)

type Payment struct {
	ID          int64           `json:"payment_id"`
	CartID      int64           `json:"cart_id"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Method      string          `json:"payment_method"`
	PaymentDate time.Time       `json:"payment_date"`
	PromoCodes  []string        `json:"promocodes,omitempty"`
}

// CheckoutSession holds the state of one payment flow. It is owned by the
// caller and discarded if the flow is abandoned.
type CheckoutSession struct {
	ID                string          `json:"id"`
	CartID            int64           `json:"cart_id"`
	Total             decimal.Decimal `json:"total"`
	AppliedPromoCodes []string        `json:"applied_promocodes"`
	StartedAt         time.Time       `json:"started_at"`
}

func (s *CheckoutSession) HasPromoCode(code string) bool {
	for _, c := range s.AppliedPromoCodes {
		if c == code {
			return true
		}
	}
	return false
}

/*
MySQL tables:

CREATE TABLE payments (
	payment_id INT AUTO_INCREMENT PRIMARY KEY,
	cart_id INT NOT NULL UNIQUE,
	total_price DECIMAL(10,2) NOT NULL,
	payment_method VARCHAR(50) NOT NULL,
	payment_date DATETIME NOT NULL
);

CREATE TABLE payment_promocode (
	payment_id INT NOT NULL,
	code VARCHAR(50) NOT NULL,
	PRIMARY KEY (payment_id, code)
);
*/
