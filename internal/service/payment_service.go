package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

type CartLocker interface {
	LockCart(ctx context.Context, id int64) error
	GetCart(ctx context.Context, id int64) (*entity.Cart, error)
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *entity.Payment) (*entity.Payment, error)
	GetPaymentByCart(ctx context.Context, cartID int64) (*entity.Payment, error)
}

type PaymentRequest struct {
	Method  string       `json:"method"`
	Card    *CardDetails `json:"card,omitempty"`
	Address string       `json:"address"`
}

type PaymentConfirmedEvent struct {
	PaymentID  int64           `json:"payment_id"`
	CartID     int64           `json:"cart_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Method     string          `json:"payment_method"`
	PromoCodes []string        `json:"promocodes"`
	Address    string          `json:"address"`
	PaidAt     time.Time       `json:"paid_at"`
}

// PaymentService turns a checkout session into a persisted payment, moving
// the cart from open to paid.
type PaymentService struct {
	tx        Transactor
	carts     CartLocker
	payments  PaymentStore
	publisher EventPublisher
	now       func() time.Time
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(tx Transactor, carts CartLocker, payments PaymentStore, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		tx:        tx,
		carts:     carts,
		payments:  payments,
		publisher: publisher,
		now:       time.Now,
	}
}

// ConfirmPayment validates the payment details and persists one payment for
// the session's cart with the session total and its applied promo codes. The
// total is not recomputed.
func (s *PaymentService) ConfirmPayment(ctx context.Context, session *entity.CheckoutSession, req PaymentRequest) (*entity.Payment, error) {
	if session == nil {
		return nil, invalid("session", "no checkout in progress")
	}

	method := strings.TrimSpace(req.Method)
	if isCardMethod(method) {
		if err := validateCard(req.Card); err != nil {
			logger.Warn().Err(err).Msgf("Rejected card details for cart %d", session.CartID)
			return nil, err
		}
	}
	if method == "" || strings.TrimSpace(req.Address) == "" {
		return nil, invalid("", "please fill in all fields")
	}
	if !isKnownMethod(method) {
		return nil, invalid("method", fmt.Sprintf("unsupported payment method %q", method))
	}

	payment := &entity.Payment{
		CartID:      session.CartID,
		TotalPrice:  session.Total.Round(2),
		Method:      method,
		PaymentDate: s.now(),
		PromoCodes:  append([]string(nil), session.AppliedPromoCodes...),
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.carts.LockCart(ctx, session.CartID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundf("cart %d", session.CartID)
			}
			return err
		}

		cart, err := s.carts.GetCart(ctx, session.CartID)
		if err != nil {
			return err
		}
		if !cart.IsOpen() {
			return ErrCartClosed
		}

		payment, err = s.payments.CreatePayment(ctx, payment)
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrCartClosed
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrCartClosed) && !errors.Is(err, ErrNotFound) {
			logger.Error().Err(err).Msgf("Error confirming payment for cart %d", session.CartID)
		}
		return nil, err
	}

	logger.Info().Msgf("Payment %d confirmed for cart %d: %s via %s", payment.ID, payment.CartID, payment.TotalPrice.StringFixed(2), payment.Method)

	s.publishPaymentConfirmed(ctx, payment, req.Address)
	return payment, nil
}

// GetPayment returns the payment recorded for a cart.
func (s *PaymentService) GetPayment(ctx context.Context, cartID int64) (*entity.Payment, error) {
	payment, err := s.payments.GetPaymentByCart(ctx, cartID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundf("payment for cart %d", cartID)
	}
	return payment, err
}

func (s *PaymentService) publishPaymentConfirmed(ctx context.Context, payment *entity.Payment, address string) {
	// if env is set to test, skip publishing
	if os.Getenv("ENV") == "test" || s.publisher == nil {
		return
	}

	event := PaymentConfirmedEvent{
		PaymentID:  payment.ID,
		CartID:     payment.CartID,
		TotalPrice: payment.TotalPrice,
		Method:     payment.Method,
		PromoCodes: payment.PromoCodes,
		Address:    address,
		PaidAt:     payment.PaymentDate,
	}
	key := fmt.Sprintf("payment-confirmed-%d", payment.ID)
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		logger.Error().Err(err).Msgf("Error publishing payment %d", payment.ID)
	}
}
