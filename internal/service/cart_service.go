package service

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

type StockStore interface {
	StockAdjuster
	GetItemForUpdate(ctx context.Context, id int64) (*entity.Item, error)
}

type CartStore interface {
	CreateCart(ctx context.Context, customerEmail string, at time.Time) (*entity.Cart, error)
	GetCart(ctx context.Context, id int64) (*entity.Cart, error)
	LockCart(ctx context.Context, id int64) error
	DeleteCart(ctx context.Context, id int64) error
	GetLine(ctx context.Context, cartID, itemID int64) (*entity.CartLine, error)
	InsertLine(ctx context.Context, cartID, itemID int64, quantity int) error
	UpdateLineQuantity(ctx context.Context, cartID, itemID int64, quantity int) error
	DeleteLine(ctx context.Context, cartID, itemID int64) error
	ListLines(ctx context.Context, cartID int64) ([]entity.CartLine, error)
}

// RemovalConfirmer decides whether a line whose quantity dropped to zero is
// removed. Declining rolls the decrement back. It runs inside the transaction
// while the cart and item rows are locked, so it must answer without waiting
// on the user.
type RemovalConfirmer func(line entity.CartLine) bool

type AddLineRequest struct {
	CartID        int64  `json:"cart_id"` // 0 creates a new cart
	CustomerEmail string `json:"-"`
	ItemID        int64  `json:"item_id"`
	Quantity      int    `json:"quantity"`
}

type QuantityChange struct {
	CartID          int64 `json:"cart_id"`
	ItemID          int64 `json:"item_id"`
	Quantity        int   `json:"quantity"`
	LineRemoved     bool  `json:"line_removed"`
	CartRemoved     bool  `json:"cart_removed"`
	RemovalDeclined bool  `json:"removal_declined"`
}

var errRemovalDeclined = errors.New("removal declined")

// CartService keeps cart lines and store stock in lockstep: a unit leaves
// stock when it enters a line and returns when it leaves one.
type CartService struct {
	tx    Transactor
	items StockStore
	carts CartStore
	now   func() time.Time
}

// NewCartService creates a new instance of CartService.
func NewCartService(tx Transactor, items StockStore, carts CartStore) *CartService {
	return &CartService{
		tx:    tx,
		items: items,
		carts: carts,
		now:   time.Now,
	}
}

// AddLine puts quantity units of an item into the cart, creating the cart when
// req.CartID is zero, and reserves the units from stock.
func (s *CartService) AddLine(ctx context.Context, req AddLineRequest) (*entity.Cart, error) {
	if req.Quantity < 1 {
		return nil, invalid("quantity", "no quantity selected")
	}
	if req.CartID == 0 && req.CustomerEmail == "" {
		return nil, invalid("customer_email", "is required to create a cart")
	}

	var cart *entity.Cart
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if req.CartID != 0 {
			var err error
			cart, err = s.openCart(ctx, req.CartID)
			if err != nil {
				return err
			}
		}

		item, err := s.lockItem(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if req.Quantity > item.Quantity {
			logger.Warn().Msgf("Requested %d of item %d, only %d in stock", req.Quantity, item.ID, item.Quantity)
			return ErrOutOfStock
		}

		if cart == nil {
			cart, err = s.carts.CreateCart(ctx, req.CustomerEmail, s.now())
			if err != nil {
				return err
			}
			logger.Info().Msgf("Created cart %d for %s", cart.ID, req.CustomerEmail)
		}

		err = s.carts.InsertLine(ctx, cart.ID, item.ID, req.Quantity)
		if errors.Is(err, repository.ErrDuplicate) {
			return invalid("item_id", "item is already in the cart")
		}
		if err != nil {
			return err
		}

		return reserveStock(ctx, s.items, item.ID, req.Quantity)
	})
	if err != nil {
		return nil, err
	}

	return cart, nil
}

// ChangeQuantity moves one unit between the cart line and store stock. delta
// must be +1 or -1. When a decrement empties the line, confirm decides whether
// the line (and the cart, if it was the last line) is removed; a nil confirm
// declines.
func (s *CartService) ChangeQuantity(ctx context.Context, cartID, itemID int64, delta int, confirm RemovalConfirmer) (*QuantityChange, error) {
	if delta != 1 && delta != -1 {
		return nil, invalid("delta", "must be +1 or -1")
	}

	change := &QuantityChange{CartID: cartID, ItemID: itemID}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.openCart(ctx, cartID); err != nil {
			return err
		}

		line, err := s.carts.GetLine(ctx, cartID, itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundf("item %d in cart %d", itemID, cartID)
			}
			return err
		}

		item, err := s.lockItem(ctx, itemID)
		if err != nil {
			return err
		}

		if delta == 1 {
			if item.Quantity <= 0 {
				logger.Warn().Msgf("Item %d out of stock", itemID)
				return ErrOutOfStock
			}
			if err := reserveStock(ctx, s.items, itemID, 1); err != nil {
				return err
			}
			change.Quantity = line.Quantity + 1
			return s.carts.UpdateLineQuantity(ctx, cartID, itemID, change.Quantity)
		}

		err = releaseStock(ctx, s.items, itemID, 1)
		if errors.Is(err, repository.ErrInsufficientStock) {
			return notFoundf("item %d", itemID)
		}
		if err != nil {
			return err
		}
		change.Quantity = line.Quantity - 1
		if err := s.carts.UpdateLineQuantity(ctx, cartID, itemID, change.Quantity); err != nil {
			return err
		}
		if change.Quantity > 0 {
			return nil
		}

		if confirm == nil || !confirm(*line) {
			return errRemovalDeclined
		}

		if err := s.carts.DeleteLine(ctx, cartID, itemID); err != nil {
			return err
		}
		change.LineRemoved = true

		remaining, err := s.carts.ListLines(ctx, cartID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := s.carts.DeleteCart(ctx, cartID); err != nil {
				return err
			}
			change.CartRemoved = true
		}
		return nil
	})

	if errors.Is(err, errRemovalDeclined) {
		line, err := s.carts.GetLine(ctx, cartID, itemID)
		if err != nil {
			return nil, err
		}
		return &QuantityChange{CartID: cartID, ItemID: itemID, Quantity: line.Quantity, RemovalDeclined: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if change.CartRemoved {
		logger.Info().Msgf("Cart %d removed after its last line was removed", cartID)
	}
	return change, nil
}

// ListLines returns the cart's lines ordered by item id. A missing cart has
// no lines.
func (s *CartService) ListLines(ctx context.Context, cartID int64) ([]entity.CartLine, error) {
	lines, err := s.carts.ListLines(ctx, cartID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing lines of cart %d", cartID)
		return nil, err
	}
	return lines, nil
}

func (s *CartService) GetCart(ctx context.Context, cartID int64) (*entity.Cart, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundf("cart %d", cartID)
	}
	return cart, err
}

func (s *CartService) openCart(ctx context.Context, cartID int64) (*entity.Cart, error) {
	if err := s.carts.LockCart(ctx, cartID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("cart %d", cartID)
		}
		return nil, err
	}

	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.IsOpen() {
		return nil, ErrCartClosed
	}
	return cart, nil
}

func (s *CartService) lockItem(ctx context.Context, itemID int64) (*entity.Item, error) {
	item, err := s.items.GetItemForUpdate(ctx, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundf("item %d", itemID)
	}
	return item, err
}
