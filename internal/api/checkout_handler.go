package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/entity"
	"storefront-service/internal/service"
)

// StartCheckout opens a checkout session for a cart --> /checkout
func (h *Handler) StartCheckout(c echo.Context) error {
	req := struct {
		CartID int64 `json:"cart_id"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if _, err := h.ownedCart(c, req.CartID); err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	checkout, err := h.pricing.StartCheckout(ctx, req.CartID)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.checkouts.SaveCheckout(ctx, checkout); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, renderCheckout(checkout))
}

// ApplyPromoCode applies a promo code to a checkout session --> /checkout/:session/promocodes
func (h *Handler) ApplyPromoCode(c echo.Context) error {
	req := struct {
		Code string `json:"code"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	checkout, err := h.ownedCheckout(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	if _, err := h.pricing.ApplyPromoCode(ctx, checkout, req.Code); err != nil {
		return respondError(c, err)
	}
	if err := h.checkouts.SaveCheckout(ctx, checkout); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, renderCheckout(checkout))
}

// ConfirmPayment pays for the session's cart --> /checkout/:session/confirm
func (h *Handler) ConfirmPayment(c echo.Context) error {
	var req service.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	checkout, err := h.ownedCheckout(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	key := c.Request().Header.Get("Idempotent-Key")
	if key != "" {
		if err := h.checkouts.ClaimIdempotencyKey(ctx, key); err != nil {
			return respondError(c, err)
		}
	}

	payment, err := h.payments.ConfirmPayment(ctx, checkout, req)
	if err != nil {
		// nothing was paid, the corrected request may reuse the key
		if key != "" {
			if relErr := h.checkouts.ReleaseIdempotencyKey(ctx, key); relErr != nil {
				logger.Warn().Err(relErr).Msgf("Error releasing idempotent key %s", key)
			}
		}
		return respondError(c, err)
	}

	if err := h.checkouts.DeleteCheckout(ctx, checkout.ID); err != nil {
		logger.Warn().Err(err).Msgf("Error deleting checkout session %s", checkout.ID)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"payment_id":     payment.ID,
		"cart_id":        payment.CartID,
		"total_price":    payment.TotalPrice.StringFixed(2),
		"payment_method": payment.Method,
		"payment_date":   payment.PaymentDate,
		"promocodes":     payment.PromoCodes,
	})
}

func (h *Handler) ownedCheckout(c echo.Context) (*entity.CheckoutSession, error) {
	checkout, err := h.checkouts.LoadCheckout(c.Request().Context(), c.Param("session"))
	if err != nil {
		return nil, err
	}
	if _, err := h.ownedCart(c, checkout.CartID); err != nil {
		return nil, err
	}
	return checkout, nil
}

func renderCheckout(checkout *entity.CheckoutSession) map[string]interface{} {
	return map[string]interface{}{
		"session_id":         checkout.ID,
		"cart_id":            checkout.CartID,
		"total":              checkout.Total.StringFixed(2),
		"applied_promocodes": checkout.AppliedPromoCodes,
	}
}
