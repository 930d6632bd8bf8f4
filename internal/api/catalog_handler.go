package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"storefront-service/internal/entity"
)

// ListItems lists in-stock items --> /items?brand=&nationality=&min_price=&max_price=&on_discount=&q=&page=&limit=
func (h *Handler) ListItems(c echo.Context) error {
	filter := entity.ItemFilter{
		BrandName:        c.QueryParam("brand"),
		BrandNationality: c.QueryParam("nationality"),
		Search:           c.QueryParam("q"),
		OnDiscount:       c.QueryParam("on_discount") == "true",
	}

	for name, dst := range map[string]**decimal.Decimal{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		if v := c.QueryParam(name); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid " + name})
			}
			*dst = &d
		}
	}
	for name, dst := range map[string]*int{"page": &filter.Page, "limit": &filter.Limit} {
		if v := c.QueryParam(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid " + name})
			}
			*dst = n
		}
	}

	items, err := h.catalog.ListItems(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []entity.ItemListing{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"items": items, "page": filter.Page})
}

// GetItemPricing returns price, stock and active discount --> /items/:id/pricing?as_of=YYYY-MM-DD
func (h *Handler) GetItemPricing(c echo.Context) error {
	itemID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item ID"})
	}

	asOf := time.Now()
	if v := c.QueryParam("as_of"); v != "" {
		asOf, err = time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid as_of date"})
		}
	}

	pricing, err := h.catalog.GetItemPricing(c.Request().Context(), itemID, asOf)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item_id":          pricing.ItemID,
		"name":             pricing.Name,
		"unit_price":       pricing.UnitPrice.StringFixed(2),
		"discount_percent": pricing.DiscountPercent,
		"effective_price":  pricing.EffectivePrice().StringFixed(2),
		"stock_quantity":   pricing.StockQuantity,
	})
}
