package service

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ItemReader interface {
	GetItem(ctx context.Context, id int64) (*entity.Item, error)
	ListItems(ctx context.Context, filter entity.ItemFilter, asOf time.Time) ([]entity.ItemListing, error)
}

type DiscountReader interface {
	ActiveDiscounts(ctx context.Context, itemID int64, asOf time.Time) ([]entity.Discount, error)
}

// CatalogService reads item prices, stock and active discounts.
type CatalogService struct {
	items     ItemReader
	discounts DiscountReader
	now       func() time.Time
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(items ItemReader, discounts DiscountReader) *CatalogService {
	return &CatalogService{
		items:     items,
		discounts: discounts,
		now:       time.Now,
	}
}

// GetItemPricing returns the unit price, stock and the discount active at asOf.
func (s *CatalogService) GetItemPricing(ctx context.Context, itemID int64, asOf time.Time) (*entity.ItemPricing, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("item %d", itemID)
		}
		logger.Error().Err(err).Msgf("Error getting item %d", itemID)
		return nil, err
	}

	pricing := &entity.ItemPricing{
		ItemID:        item.ID,
		Name:          item.Name,
		UnitPrice:     item.Price,
		StockQuantity: item.Quantity,
	}

	discounts, err := s.discounts.ActiveDiscounts(ctx, itemID, asOf)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting discounts for item %d", itemID)
		return nil, err
	}

	if len(discounts) > 0 {
		// newest discount wins when windows overlap
		if len(discounts) > 1 {
			logger.Warn().Msgf("Item %d has %d overlapping discounts, using discount %d", itemID, len(discounts), discounts[0].ID)
		}
		pct := discounts[0].Amount
		pricing.DiscountPercent = &pct
	}

	return pricing, nil
}

// ListItems returns in-stock items matching filter with their effective price
// as of now.
func (s *CatalogService) ListItems(ctx context.Context, filter entity.ItemFilter) ([]entity.ItemListing, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, invalid("min_price", "must not exceed max_price")
	}

	listings, err := s.items.ListItems(ctx, filter, s.now())
	if err != nil {
		logger.Error().Err(err).Msg("Error listing items")
		return nil, err
	}

	for i := range listings {
		pricing := entity.ItemPricing{UnitPrice: listings[i].UnitPrice, DiscountPercent: listings[i].DiscountPercent}
		listings[i].EffectivePrice = pricing.EffectivePrice()
	}

	return listings, nil
}
