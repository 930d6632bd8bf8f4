package repository

import (
	"context"
	"database/sql"
	"time"

	"storefront-service/internal/entity"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db}
}

func (r *CartRepository) CreateCart(ctx context.Context, customerEmail string, at time.Time) (*entity.Cart, error) {
	query := `INSERT INTO shopping_carts (customer_email, creation_time) VALUES (?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, customerEmail, at)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &entity.Cart{ID: id, CustomerEmail: customerEmail, CreationTime: at, Status: entity.CartStatusOpen}, nil
}

// GetCart returns the cart with its status derived from the presence of a
// payment.
func (r *CartRepository) GetCart(ctx context.Context, id int64) (*entity.Cart, error) {
	query := `SELECT sc.cart_id, sc.customer_email, sc.creation_time, p.payment_id IS NOT NULL
		FROM shopping_carts sc
		LEFT JOIN payments p ON p.cart_id = sc.cart_id
		WHERE sc.cart_id = ?`
	cart := &entity.Cart{}
	var paid bool
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&cart.ID, &cart.CustomerEmail, &cart.CreationTime, &paid)
	if err != nil {
		return nil, notFound(err)
	}

	cart.Status = entity.CartStatusOpen
	if paid {
		cart.Status = entity.CartStatusPaid
	}
	return cart, nil
}

// LockCart takes a row lock on the cart for the rest of the transaction.
func (r *CartRepository) LockCart(ctx context.Context, id int64) error {
	query := `SELECT cart_id FROM shopping_carts WHERE cart_id = ? FOR UPDATE`
	var cartID int64
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&cartID); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *CartRepository) DeleteCart(ctx context.Context, id int64) error {
	query := `DELETE FROM shopping_carts WHERE cart_id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	return err
}

func (r *CartRepository) GetLine(ctx context.Context, cartID, itemID int64) (*entity.CartLine, error) {
	query := `SELECT ci.cart_id, ci.item_id, i.name, i.price, ci.quantity
		FROM cart_item ci
		JOIN items i ON i.item_id = ci.item_id
		WHERE ci.cart_id = ? AND ci.item_id = ?`
	line := &entity.CartLine{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, cartID, itemID).Scan(&line.CartID, &line.ItemID, &line.Name, &line.UnitPrice, &line.Quantity)
	if err != nil {
		return nil, notFound(err)
	}
	return line, nil
}

func (r *CartRepository) InsertLine(ctx context.Context, cartID, itemID int64, quantity int) error {
	query := `INSERT INTO cart_item (cart_id, item_id, quantity) VALUES (?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, cartID, itemID, quantity)
	return duplicate(err)
}

func (r *CartRepository) UpdateLineQuantity(ctx context.Context, cartID, itemID int64, quantity int) error {
	query := `UPDATE cart_item SET quantity = ? WHERE cart_id = ? AND item_id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, quantity, cartID, itemID)
	return err
}

func (r *CartRepository) DeleteLine(ctx context.Context, cartID, itemID int64) error {
	query := `DELETE FROM cart_item WHERE cart_id = ? AND item_id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, cartID, itemID)
	return err
}

func (r *CartRepository) DeleteLines(ctx context.Context, cartID int64) error {
	query := `DELETE FROM cart_item WHERE cart_id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, cartID)
	return err
}

func (r *CartRepository) ListLines(ctx context.Context, cartID int64) ([]entity.CartLine, error) {
	query := `SELECT ci.cart_id, ci.item_id, i.name, i.price, ci.quantity
		FROM cart_item ci
		JOIN items i ON i.item_id = ci.item_id
		WHERE ci.cart_id = ?
		ORDER BY ci.item_id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []entity.CartLine
	for rows.Next() {
		var line entity.CartLine
		if err := rows.Scan(&line.CartID, &line.ItemID, &line.Name, &line.UnitPrice, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// ListExpiredCarts returns unpaid carts created at or before cutoff.
func (r *CartRepository) ListExpiredCarts(ctx context.Context, cutoff time.Time) ([]entity.Cart, error) {
	query := `SELECT sc.cart_id, sc.customer_email, sc.creation_time
		FROM shopping_carts sc
		LEFT JOIN payments p ON sc.cart_id = p.cart_id
		WHERE p.payment_id IS NULL AND sc.creation_time <= ?
		ORDER BY sc.cart_id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []entity.Cart
	for rows.Next() {
		cart := entity.Cart{Status: entity.CartStatusOpen}
		if err := rows.Scan(&cart.ID, &cart.CustomerEmail, &cart.CreationTime); err != nil {
			return nil, err
		}
		carts = append(carts, cart)
	}
	return carts, rows.Err()
}
