package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/entity"
	"storefront-service/internal/service"
)

// ownedCart loads a cart and hides it from anyone but its customer.
func (h *Handler) ownedCart(c echo.Context, cartID int64) (*entity.Cart, error) {
	cart, err := h.carts.GetCart(c.Request().Context(), cartID)
	if err != nil {
		return nil, err
	}
	if claims := claimsOf(c); claims == nil || claims.Email != cart.CustomerEmail {
		return nil, fmt.Errorf("%w: cart %d", service.ErrNotFound, cartID)
	}
	return cart, nil
}

// AddLine adds an item to a cart, creating the cart when cart_id is 0 --> /cart/items
func (h *Handler) AddLine(c echo.Context) error {
	var req service.AddLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	req.CustomerEmail = claimsOf(c).Email

	if req.CartID != 0 {
		if _, err := h.ownedCart(c, req.CartID); err != nil {
			return respondError(c, err)
		}
	}

	cart, err := h.carts.AddLine(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return h.renderCart(c, http.StatusCreated, cart)
}

// GetCart returns the cart with its lines and current total --> /carts/:id
func (h *Handler) GetCart(c echo.Context) error {
	cartID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid cart ID"})
	}

	cart, err := h.ownedCart(c, cartID)
	if err != nil {
		return respondError(c, err)
	}

	return h.renderCart(c, http.StatusOK, cart)
}

// ChangeQuantity moves one unit in or out of a cart line --> /carts/:id/items/:item_id
func (h *Handler) ChangeQuantity(c echo.Context) error {
	cartID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid cart ID"})
	}
	itemID, err := paramID(c, "item_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item ID"})
	}

	req := struct {
		Delta         int  `json:"delta"`
		ConfirmRemove bool `json:"confirm_remove"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if _, err := h.ownedCart(c, cartID); err != nil {
		return respondError(c, err)
	}

	change, err := h.carts.ChangeQuantity(c.Request().Context(), cartID, itemID, req.Delta, func(entity.CartLine) bool {
		return req.ConfirmRemove
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, change)
}

func (h *Handler) renderCart(c echo.Context, code int, cart *entity.Cart) error {
	ctx := c.Request().Context()
	lines, err := h.carts.ListLines(ctx, cart.ID)
	if err != nil {
		return respondError(c, err)
	}
	total, err := h.pricing.ComputeCartTotal(ctx, cart.ID)
	if err != nil {
		return respondError(c, err)
	}
	if lines == nil {
		lines = []entity.CartLine{}
	}

	return c.JSON(code, map[string]interface{}{
		"cart":  cart,
		"lines": lines,
		"total": total.StringFixed(2),
	})
}
