package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

type ExpiredCartStore interface {
	ListExpiredCarts(ctx context.Context, cutoff time.Time) ([]entity.Cart, error)
	ListLines(ctx context.Context, cartID int64) ([]entity.CartLine, error)
	DeleteLines(ctx context.Context, cartID int64) error
	DeleteCart(ctx context.Context, id int64) error
}

type SweepResult struct {
	Carts int `json:"carts"`
	Units int `json:"units"`
}

type CartExpiredEvent struct {
	CartID        int64     `json:"cart_id"`
	CustomerEmail string    `json:"customer_email"`
	Units         int       `json:"units"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// SweepService returns the stock held by abandoned carts.
type SweepService struct {
	tx        Transactor
	items     StockAdjuster
	carts     ExpiredCartStore
	publisher EventPublisher
	ttl       time.Duration
	now       func() time.Time
}

// NewSweepService creates a new instance of SweepService.
func NewSweepService(tx Transactor, items StockAdjuster, carts ExpiredCartStore, publisher EventPublisher, ttl time.Duration) *SweepService {
	return &SweepService{
		tx:        tx,
		items:     items,
		carts:     carts,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
	}
}

// SweepExpiredCarts deletes every unpaid cart older than the TTL and puts its
// reserved units back into stock.
func (s *SweepService) SweepExpiredCarts(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	cutoff := now.Add(-s.ttl)

	result := &SweepResult{}
	var events []CartExpiredEvent
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		carts, err := s.carts.ListExpiredCarts(ctx, cutoff)
		if err != nil {
			return err
		}

		for _, cart := range carts {
			lines, err := s.carts.ListLines(ctx, cart.ID)
			if err != nil {
				return err
			}

			units := 0
			for _, line := range lines {
				err := releaseStock(ctx, s.items, line.ItemID, line.Quantity)
				if errors.Is(err, repository.ErrInsufficientStock) {
					logger.Warn().Msgf("Item %d of expired cart %d no longer exists", line.ItemID, cart.ID)
					continue
				}
				if err != nil {
					return err
				}
				units += line.Quantity
			}

			if err := s.carts.DeleteLines(ctx, cart.ID); err != nil {
				return err
			}
			if err := s.carts.DeleteCart(ctx, cart.ID); err != nil {
				return err
			}

			result.Carts++
			result.Units += units
			events = append(events, CartExpiredEvent{CartID: cart.ID, CustomerEmail: cart.CustomerEmail, Units: units, ExpiredAt: now})
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error sweeping expired carts")
		return nil, err
	}

	logger.Info().Msgf("Swept %d expired carts, returned %d units to stock", result.Carts, result.Units)

	// if env is set to test, skip publishing
	if os.Getenv("ENV") != "test" && s.publisher != nil {
		for _, event := range events {
			key := fmt.Sprintf("cart-expired-%d", event.CartID)
			if err := s.publisher.Publish(ctx, key, event); err != nil {
				logger.Error().Err(err).Msgf("Error publishing expiry of cart %d", event.CartID)
			}
		}
	}

	return result, nil
}
