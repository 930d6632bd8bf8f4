package service

import (
	"context"
	"math/rand"
	"time"

	"storefront-service/internal/entity"
)

const (
	clearanceWindow      = 7 * 24 * time.Hour
	clearanceMinDiscount = 5
	clearanceMaxDiscount = 25
)

type ExpiringItemReader interface {
	ListItemsExpiringBetween(ctx context.Context, from, to time.Time) ([]entity.Item, error)
}

type DiscountStore interface {
	DiscountReader
	CreateDiscount(ctx context.Context, discount *entity.Discount) (*entity.Discount, error)
}

// ClearanceService discounts stock that is about to expire.
type ClearanceService struct {
	items     ExpiringItemReader
	discounts DiscountStore
	rnd       *rand.Rand
	now       func() time.Time
}

// NewClearanceService creates a new instance of ClearanceService.
func NewClearanceService(items ExpiringItemReader, discounts DiscountStore, rnd *rand.Rand) *ClearanceService {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ClearanceService{
		items:     items,
		discounts: discounts,
		rnd:       rnd,
		now:       time.Now,
	}
}

// ScheduleClearanceDiscounts gives every item expiring within the next week,
// and not already discounted, a random 5-25% discount for the next week. It
// returns the number of discounts created.
func (s *ClearanceService) ScheduleClearanceDiscounts(ctx context.Context) (int, error) {
	now := s.now()
	until := now.Add(clearanceWindow)

	items, err := s.items.ListItemsExpiringBetween(ctx, now, until)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing expiring items")
		return 0, err
	}

	created := 0
	for _, item := range items {
		active, err := s.discounts.ActiveDiscounts(ctx, item.ID, now)
		if err != nil {
			return created, err
		}
		if len(active) > 0 {
			continue
		}

		discount := &entity.Discount{
			ItemID:    item.ID,
			Amount:    clearanceMinDiscount + s.rnd.Intn(clearanceMaxDiscount-clearanceMinDiscount+1),
			StartDate: now,
			EndDate:   until,
		}
		if _, err := s.discounts.CreateDiscount(ctx, discount); err != nil {
			logger.Error().Err(err).Msgf("Error creating clearance discount for item %d", item.ID)
			return created, err
		}
		created++
	}

	if created > 0 {
		logger.Info().Msgf("Scheduled %d clearance discounts", created)
	}
	return created, nil
}
