package service

import (
	"context"
	"errors"

	"storefront-service/internal/repository"
)

type StockAdjuster interface {
	AdjustStock(ctx context.Context, id int64, delta int) error
}

// reserveStock takes quantity units out of store stock for a cart line.
// Stock never goes below zero.
func reserveStock(ctx context.Context, items StockAdjuster, itemID int64, quantity int) error {
	err := items.AdjustStock(ctx, itemID, -quantity)
	if errors.Is(err, repository.ErrInsufficientStock) {
		logger.Warn().Msgf("Item %d out of stock", itemID)
		return ErrOutOfStock
	}
	return err
}

// releaseStock returns quantity units from a cart line to store stock.
func releaseStock(ctx context.Context, items StockAdjuster, itemID int64, quantity int) error {
	return items.AdjustStock(ctx, itemID, quantity)
}
