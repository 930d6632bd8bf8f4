package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

var tables = []struct {
	name  string
	query string
}{
	{"brands", `
		CREATE TABLE IF NOT EXISTS brands (
			brand_id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			nationality VARCHAR(100) NOT NULL
		);
	`},
	{"items", `
		CREATE TABLE IF NOT EXISTS items (
			item_id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 0),
			price DECIMAL(10,2) NOT NULL,
			brand_id INT NOT NULL,
			expiry_date DATE NOT NULL,
			FOREIGN KEY (brand_id) REFERENCES brands(brand_id)
		);
	`},
	{"discounts", `
		CREATE TABLE IF NOT EXISTS discounts (
			discount_id INT AUTO_INCREMENT PRIMARY KEY,
			item_id INT NOT NULL,
			discount_amount INT NOT NULL CHECK (discount_amount BETWEEN 0 AND 100),
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			FOREIGN KEY (item_id) REFERENCES items(item_id) ON DELETE CASCADE
		);
	`},
	{"promocodes", `
		CREATE TABLE IF NOT EXISTS promocodes (
			code VARCHAR(50) PRIMARY KEY,
			discount_amount INT NOT NULL CHECK (discount_amount BETWEEN 0 AND 100),
			start_date DATE NOT NULL,
			end_date DATE NOT NULL
		);
	`},
	{"customers", `
		CREATE TABLE IF NOT EXISTS customers (
			email VARCHAR(255) PRIMARY KEY,
			password_hash VARCHAR(255) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			phone_number VARCHAR(20) NOT NULL,
			admin BOOLEAN NOT NULL DEFAULT FALSE
		);
	`},
	{"shopping_carts", `
		CREATE TABLE IF NOT EXISTS shopping_carts (
			cart_id INT AUTO_INCREMENT PRIMARY KEY,
			customer_email VARCHAR(255) NOT NULL,
			creation_time DATETIME NOT NULL,
			INDEX idx_creation_time (creation_time)
		);
	`},
	{"cart_item", `
		CREATE TABLE IF NOT EXISTS cart_item (
			cart_id INT NOT NULL,
			item_id INT NOT NULL,
			quantity INT NOT NULL,
			PRIMARY KEY (cart_id, item_id),
			FOREIGN KEY (cart_id) REFERENCES shopping_carts(cart_id) ON DELETE CASCADE,
			FOREIGN KEY (item_id) REFERENCES items(item_id)
		);
	`},
	{"payments", `
		CREATE TABLE IF NOT EXISTS payments (
			payment_id INT AUTO_INCREMENT PRIMARY KEY,
			cart_id INT NOT NULL UNIQUE,
			total_price DECIMAL(10,2) NOT NULL,
			payment_method VARCHAR(50) NOT NULL,
			payment_date DATETIME NOT NULL,
			FOREIGN KEY (cart_id) REFERENCES shopping_carts(cart_id)
		);
	`},
	{"payment_promocode", `
		CREATE TABLE IF NOT EXISTS payment_promocode (
			payment_id INT NOT NULL,
			code VARCHAR(50) NOT NULL,
			PRIMARY KEY (payment_id, code),
			FOREIGN KEY (payment_id) REFERENCES payments(payment_id) ON DELETE CASCADE,
			FOREIGN KEY (code) REFERENCES promocodes(code)
		);
	`},
}

// AutoMigrate creates every storefront table that does not exist yet, in
// foreign key order.
func AutoMigrate(db *sql.DB, retries int) error {
	for _, table := range tables {
		if err := createTable(db, table.query, retries); err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", table.name, err)
		}
	}
	return nil
}

func createTable(db *sql.DB, query string, retries int) error {
	_, err := db.Exec(query)
	if err != nil {
		// Retry creating the table
		for i := 0; i < retries; i++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(query)
			if err == nil {
				break
			}
		}
	}
	return err
}
