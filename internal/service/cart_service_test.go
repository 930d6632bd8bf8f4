package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

type CartServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *fakeStore
	svc   *CartService
	milk  entity.Item
	bread entity.Item
}

func (s *CartServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newFakeStore()
	s.milk = s.store.addItem(entity.Item{Name: "Milk", Price: decimal.NewFromInt(20), Quantity: 10})
	s.bread = s.store.addItem(entity.Item{Name: "Bread", Price: decimal.NewFromInt(5), Quantity: 1})
	s.svc = NewCartService(s.store, s.store, s.store)
	s.svc.now = fixedClock(day)
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceSuite))
}

// newCart creates a cart holding qty units of item.
func (s *CartServiceSuite) newCart(item entity.Item, qty int) *entity.Cart {
	cart, err := s.svc.AddLine(s.ctx, AddLineRequest{CustomerEmail: "a@b.com", ItemID: item.ID, Quantity: qty})
	s.Require().NoError(err)
	return cart
}

func (s *CartServiceSuite) TestAddLineCreatesCartAndReservesStock() {
	cart := s.newCart(s.milk, 3)

	s.Equal("a@b.com", cart.CustomerEmail)
	s.Equal(day, cart.CreationTime)
	s.Equal(entity.CartStatusOpen, cart.Status)
	s.Equal(7, s.store.stock(s.milk.ID))

	qty, ok := s.store.lineQty(cart.ID, s.milk.ID)
	s.True(ok)
	s.Equal(3, qty)
}

func (s *CartServiceSuite) TestAddLineToExistingCart() {
	cart := s.newCart(s.milk, 1)

	again, err := s.svc.AddLine(s.ctx, AddLineRequest{CartID: cart.ID, ItemID: s.bread.ID, Quantity: 1})
	s.Require().NoError(err)
	s.Equal(cart.ID, again.ID)

	lines, err := s.svc.ListLines(s.ctx, cart.ID)
	s.Require().NoError(err)
	s.Require().Len(lines, 2)
	s.Equal(s.milk.ID, lines[0].ItemID)
	s.Equal(s.bread.ID, lines[1].ItemID)
	s.Equal(0, s.store.stock(s.bread.ID))
}

func (s *CartServiceSuite) TestAddLineRejectsBadQuantity() {
	_, err := s.svc.AddLine(s.ctx, AddLineRequest{CustomerEmail: "a@b.com", ItemID: s.milk.ID, Quantity: 0})
	s.ErrorIs(err, ErrValidation)
	s.Empty(s.store.carts)
}

func (s *CartServiceSuite) TestAddLineMoreThanStock() {
	_, err := s.svc.AddLine(s.ctx, AddLineRequest{CustomerEmail: "a@b.com", ItemID: s.milk.ID, Quantity: 11})
	s.ErrorIs(err, ErrOutOfStock)
	s.Equal(10, s.store.stock(s.milk.ID))
	s.Empty(s.store.carts)
}

func (s *CartServiceSuite) TestAddLineUnknownItem() {
	_, err := s.svc.AddLine(s.ctx, AddLineRequest{CustomerEmail: "a@b.com", ItemID: 12345, Quantity: 1})
	s.ErrorIs(err, ErrNotFound)
}

func (s *CartServiceSuite) TestAddLineDuplicateItemRollsBack() {
	cart := s.newCart(s.milk, 2)

	_, err := s.svc.AddLine(s.ctx, AddLineRequest{CartID: cart.ID, ItemID: s.milk.ID, Quantity: 1})
	s.ErrorIs(err, ErrValidation)
	s.Equal(8, s.store.stock(s.milk.ID))
}

func (s *CartServiceSuite) TestAddLineToPaidCart() {
	cart := s.newCart(s.milk, 1)
	s.store.payments[cart.ID] = entity.Payment{ID: 1, CartID: cart.ID}

	_, err := s.svc.AddLine(s.ctx, AddLineRequest{CartID: cart.ID, ItemID: s.bread.ID, Quantity: 1})
	s.ErrorIs(err, ErrCartClosed)
	s.Equal(1, s.store.stock(s.bread.ID))
}

func (s *CartServiceSuite) TestIncrementMovesOneUnit() {
	cart := s.newCart(s.milk, 2)

	change, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, 1, nil)
	s.Require().NoError(err)
	s.Equal(3, change.Quantity)
	s.Equal(7, s.store.stock(s.milk.ID))
}

func (s *CartServiceSuite) TestIncrementWithoutStock() {
	cart := s.newCart(s.bread, 1)

	_, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.bread.ID, 1, nil)
	s.ErrorIs(err, ErrOutOfStock)

	qty, _ := s.store.lineQty(cart.ID, s.bread.ID)
	s.Equal(1, qty)
	s.Equal(0, s.store.stock(s.bread.ID))
}

func (s *CartServiceSuite) TestDecrementReturnsStock() {
	cart := s.newCart(s.milk, 3)

	change, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, -1, nil)
	s.Require().NoError(err)
	s.Equal(2, change.Quantity)
	s.False(change.LineRemoved)
	s.Equal(8, s.store.stock(s.milk.ID))
}

func (s *CartServiceSuite) TestDecrementToZeroConfirmedRemovesLineAndCart() {
	cart := s.newCart(s.milk, 1)

	var asked entity.CartLine
	change, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, -1, func(line entity.CartLine) bool {
		asked = line
		return true
	})
	s.Require().NoError(err)

	s.Equal("Milk", asked.Name)
	s.True(change.LineRemoved)
	s.True(change.CartRemoved)
	s.Equal(10, s.store.stock(s.milk.ID))
	s.NotContains(s.store.carts, cart.ID)
}

func (s *CartServiceSuite) TestDecrementToZeroKeepsCartWithOtherLines() {
	cart := s.newCart(s.milk, 1)
	_, err := s.svc.AddLine(s.ctx, AddLineRequest{CartID: cart.ID, ItemID: s.bread.ID, Quantity: 1})
	s.Require().NoError(err)

	change, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, -1, func(entity.CartLine) bool { return true })
	s.Require().NoError(err)

	s.True(change.LineRemoved)
	s.False(change.CartRemoved)
	s.Contains(s.store.carts, cart.ID)
}

func (s *CartServiceSuite) TestDecrementToZeroDeclinedRollsBack() {
	cart := s.newCart(s.milk, 1)

	change, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, -1, func(entity.CartLine) bool { return false })
	s.Require().NoError(err)

	s.True(change.RemovalDeclined)
	s.Equal(1, change.Quantity)
	s.Equal(9, s.store.stock(s.milk.ID))
	qty, ok := s.store.lineQty(cart.ID, s.milk.ID)
	s.True(ok)
	s.Equal(1, qty)
}

func (s *CartServiceSuite) TestChangeQuantityRejectsBadDelta() {
	cart := s.newCart(s.milk, 1)

	_, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, 2, nil)
	s.ErrorIs(err, ErrValidation)
}

func (s *CartServiceSuite) TestChangeQuantityMissingLine() {
	cart := s.newCart(s.milk, 1)

	_, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.bread.ID, 1, nil)
	s.ErrorIs(err, ErrNotFound)
}

func (s *CartServiceSuite) TestStockIsConserved() {
	cart := s.newCart(s.milk, 4)
	_, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, 1, nil)
	s.Require().NoError(err)
	_, err = s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, -1, nil)
	s.Require().NoError(err)
	_, err = s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, -1, nil)
	s.Require().NoError(err)

	qty, _ := s.store.lineQty(cart.ID, s.milk.ID)
	s.Equal(10, s.store.stock(s.milk.ID)+qty)
}

func (s *CartServiceSuite) TestDecrementOfVanishedItemIsNotFound() {
	cart := s.newCart(s.milk, 2)
	s.store.failOn["AdjustStock"] = repository.ErrInsufficientStock

	_, err := s.svc.ChangeQuantity(s.ctx, cart.ID, s.milk.ID, -1, nil)
	s.ErrorIs(err, ErrNotFound)

	qty, _ := s.store.lineQty(cart.ID, s.milk.ID)
	s.Equal(2, qty)
}

func (s *CartServiceSuite) TestListLinesOfUnknownCart() {
	lines, err := s.svc.ListLines(s.ctx, 404)
	s.NoError(err)
	s.Empty(lines)
}
