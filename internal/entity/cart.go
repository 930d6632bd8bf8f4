package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartStatusOpen CartStatus = "open"
	CartStatusPaid CartStatus = "paid"
)

type Cart struct {
	ID            int64      `json:"cart_id"`
	CustomerEmail string     `json:"customer_email"`
	CreationTime  time.Time  `json:"creation_time"`
	Status        CartStatus `json:"status"`
}

func (c *Cart) IsOpen() bool {
	return c.Status == CartStatusOpen
}

type CartLine struct {
	CartID    int64           `json:"cart_id"`
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

/*
MySQL tables:

CREATE TABLE shopping_carts (
	cart_id INT AUTO_INCREMENT PRIMARY KEY,
	customer_email VARCHAR(255) NOT NULL,
	creation_time DATETIME NOT NULL
);

CREATE TABLE cart_item (
	cart_id INT NOT NULL,
	item_id INT NOT NULL,
	quantity INT NOT NULL,
	PRIMARY KEY (cart_id, item_id)
);
*/
