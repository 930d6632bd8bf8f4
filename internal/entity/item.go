package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID         int64           `json:"item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"` // units currently in store stock
	Price      decimal.Decimal `json:"price"`
	BrandID    int64           `json:"brand_id"`
	ExpiryDate time.Time       `json:"expiry_date"`
}

type Brand struct {
	ID          int64  `json:"brand_id"`
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
}

// ItemPricing is the catalog view of an item at a point in time.
type ItemPricing struct {
	ItemID          int64           `json:"item_id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent *int            `json:"discount_percent,omitempty"`
	StockQuantity   int             `json:"stock_quantity"`
}

// EffectivePrice is the unit price after the active discount, if any.
func (p ItemPricing) EffectivePrice() decimal.Decimal {
	if p.DiscountPercent == nil {
		return p.UnitPrice
	}
	return ApplyPercentOff(p.UnitPrice, *p.DiscountPercent)
}

// ApplyPercentOff returns amount * (1 - percent/100).
func ApplyPercentOff(amount decimal.Decimal, percent int) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(percent)).Div(decimal.NewFromInt(100)))
	return amount.Mul(factor)
}

type ItemFilter struct {
	BrandName        string
	BrandNationality string
	MinPrice         *decimal.Decimal
	MaxPrice         *decimal.Decimal
	OnDiscount       bool
	Search           string
	Page             int
	Limit            int
}

type ItemListing struct {
	ItemID           int64           `json:"item_id"`
	Name             string          `json:"name"`
	BrandName        string          `json:"brand_name"`
	BrandNationality string          `json:"brand_nationality"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPercent  *int            `json:"discount_percent,omitempty"`
	EffectivePrice   decimal.Decimal `json:"effective_price"`
	StockQuantity    int             `json:"stock_quantity"`
}

/*
MySQL tables:

CREATE TABLE brands (
	brand_id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	nationality VARCHAR(100) NOT NULL
);

CREATE TABLE items (
	item_id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	quantity INT NOT NULL CHECK (quantity >= 0),
	price DECIMAL(10,2) NOT NULL,
	brand_id INT NOT NULL REFERENCES brands(brand_id),
	expiry_date DATE NOT NULL
);
*/
