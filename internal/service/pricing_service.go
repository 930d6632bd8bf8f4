package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

type CartReader interface {
	GetCart(ctx context.Context, id int64) (*entity.Cart, error)
	ListLines(ctx context.Context, cartID int64) ([]entity.CartLine, error)
}

type PricingReader interface {
	GetItemPricing(ctx context.Context, itemID int64, asOf time.Time) (*entity.ItemPricing, error)
}

type PromoCodeStore interface {
	GetPromoCode(ctx context.Context, code string) (*entity.PromoCode, error)
}

// PricingService computes cart totals and applies promo codes to a checkout
// session.
type PricingService struct {
	carts   CartReader
	catalog PricingReader
	promos  PromoCodeStore
	now     func() time.Time
}

// NewPricingService creates a new instance of PricingService.
func NewPricingService(carts CartReader, catalog PricingReader, promos PromoCodeStore) *PricingService {
	return &PricingService{
		carts:   carts,
		catalog: catalog,
		promos:  promos,
		now:     time.Now,
	}
}

// ComputeCartTotal sums effective price times quantity over the cart's lines,
// pricing every line at call time. Empty and unknown carts total zero.
func (s *PricingService) ComputeCartTotal(ctx context.Context, cartID int64) (decimal.Decimal, error) {
	lines, err := s.carts.ListLines(ctx, cartID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing lines of cart %d", cartID)
		return decimal.Zero, err
	}

	asOf := s.now()
	total := decimal.Zero
	for _, line := range lines {
		pricing, err := s.catalog.GetItemPricing(ctx, line.ItemID, asOf)
		if errors.Is(err, ErrNotFound) {
			logger.Warn().Msgf("Cart %d references missing item %d", cartID, line.ItemID)
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(pricing.EffectivePrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return total, nil
}

// StartCheckout opens a checkout session for an open, non-empty cart. The
// session total is fixed here and carried through to payment.
func (s *PricingService) StartCheckout(ctx context.Context, cartID int64) (*entity.CheckoutSession, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("cart %d", cartID)
		}
		return nil, err
	}
	if !cart.IsOpen() {
		return nil, ErrCartClosed
	}

	lines, err := s.carts.ListLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, invalid("cart_id", "your cart is empty, add items before proceeding to payment")
	}

	total, err := s.ComputeCartTotal(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return &entity.CheckoutSession{
		ID:                uuid.New().String(),
		CartID:            cartID,
		Total:             total,
		AppliedPromoCodes: []string{},
		StartedAt:         s.now(),
	}, nil
}

// ApplyPromoCode multiplies the session's running total by the code's
// discount and records the code. Codes stack multiplicatively.
func (s *PricingService) ApplyPromoCode(ctx context.Context, session *entity.CheckoutSession, code string) (decimal.Decimal, error) {
	if session == nil {
		return decimal.Zero, invalid("session", "no checkout in progress")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return session.Total, ErrInvalidPromoCode
	}
	if session.HasPromoCode(code) {
		logger.Warn().Msgf("Promo code %s already applied to cart %d", code, session.CartID)
		return session.Total, ErrInvalidPromoCode
	}

	promo, err := s.promos.GetPromoCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Msgf("Unknown promo code %s", code)
			return session.Total, ErrInvalidPromoCode
		}
		logger.Error().Err(err).Msgf("Error getting promo code %s", code)
		return session.Total, err
	}
	// the store may match codes case-insensitively
	if session.HasPromoCode(promo.Code) {
		logger.Warn().Msgf("Promo code %s already applied to cart %d", promo.Code, session.CartID)
		return session.Total, ErrInvalidPromoCode
	}

	session.Total = ApplyDiscount(session.Total, promo.DiscountAmount)
	session.AppliedPromoCodes = append(session.AppliedPromoCodes, promo.Code)
	return session.Total, nil
}

// ApplyDiscount returns total * (1 - percent/100).
func ApplyDiscount(total decimal.Decimal, percent int) decimal.Decimal {
	return entity.ApplyPercentOff(total, percent)
}
