package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"storefront-service/internal/entity"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db}
}

func (r *ItemRepository) GetItem(ctx context.Context, id int64) (*entity.Item, error) {
	query := `SELECT item_id, name, quantity, price, brand_id, expiry_date FROM items WHERE item_id = ?`
	return r.scanItem(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetItemForUpdate reads the item and locks its row until the surrounding
// transaction ends.
func (r *ItemRepository) GetItemForUpdate(ctx context.Context, id int64) (*entity.Item, error) {
	query := `SELECT item_id, name, quantity, price, brand_id, expiry_date FROM items WHERE item_id = ? FOR UPDATE`
	return r.scanItem(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *ItemRepository) scanItem(row *sql.Row) (*entity.Item, error) {
	item := &entity.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Quantity, &item.Price, &item.BrandID, &item.ExpiryDate)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// AdjustStock adds delta to the item's stock. A change that would leave the
// stock negative is rejected with ErrInsufficientStock.
func (r *ItemRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	query := `UPDATE items SET quantity = quantity + ? WHERE item_id = ? AND quantity + ? >= 0`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, delta, id, delta)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *ItemRepository) FindItemByNameAndBrand(ctx context.Context, name string, brandID int64) (*entity.Item, error) {
	query := `SELECT item_id, name, quantity, price, brand_id, expiry_date FROM items WHERE name = ? AND brand_id = ?`
	return r.scanItem(conn(ctx, r.db).QueryRowContext(ctx, query, name, brandID))
}

func (r *ItemRepository) CreateItem(ctx context.Context, item *entity.Item) (*entity.Item, error) {
	query := `INSERT INTO items (name, quantity, price, brand_id, expiry_date) VALUES (?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, item.Name, item.Quantity, item.Price, item.BrandID, item.ExpiryDate)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	item.ID = id
	return item, nil
}

func (r *ItemRepository) UpdateItem(ctx context.Context, item *entity.Item) error {
	query := `UPDATE items SET price = ?, quantity = ?, expiry_date = ? WHERE item_id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, item.Price, item.Quantity, item.ExpiryDate, item.ID)
	return err
}

// ListItemsExpiringBetween returns items whose expiry date lies in [from, to].
func (r *ItemRepository) ListItemsExpiringBetween(ctx context.Context, from, to time.Time) ([]entity.Item, error) {
	query := `SELECT item_id, name, quantity, price, brand_id, expiry_date FROM items
		WHERE expiry_date >= DATE(?) AND expiry_date <= DATE(?) ORDER BY item_id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.Item
	for rows.Next() {
		var item entity.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Price, &item.BrandID, &item.ExpiryDate); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListItems returns in-stock items matching the filter together with the
// discount active on asOf. Effective prices are left to the caller.
func (r *ItemRepository) ListItems(ctx context.Context, filter entity.ItemFilter, asOf time.Time) ([]entity.ItemListing, error) {
	query := `
		SELECT i.item_id, i.name, i.quantity, i.price, b.name, b.nationality,
			(SELECT d.discount_amount FROM discounts d
				WHERE d.item_id = i.item_id AND d.start_date <= DATE(?) AND d.end_date >= DATE(?)
				ORDER BY d.discount_id DESC LIMIT 1) AS discount
		FROM items i
		JOIN brands b ON i.brand_id = b.brand_id`
	args := []interface{}{asOf, asOf}

	filters := []string{"i.quantity > 0"}
	if filter.BrandName != "" {
		filters = append(filters, "b.name = ?")
		args = append(args, filter.BrandName)
	}
	if filter.BrandNationality != "" {
		filters = append(filters, "b.nationality = ?")
		args = append(args, filter.BrandNationality)
	}
	if filter.MinPrice != nil {
		filters = append(filters, "i.price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		filters = append(filters, "i.price <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.OnDiscount {
		filters = append(filters, "EXISTS (SELECT 1 FROM discounts d2 WHERE d2.item_id = i.item_id AND d2.start_date <= DATE(?) AND d2.end_date >= DATE(?))")
		args = append(args, asOf, asOf)
	}
	if filter.Search != "" {
		filters = append(filters, "(i.name LIKE ? OR b.name LIKE ?)")
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}

	query += " WHERE " + strings.Join(filters, " AND ") + " ORDER BY i.item_id LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []entity.ItemListing
	for rows.Next() {
		var listing entity.ItemListing
		var discount sql.NullInt64
		err := rows.Scan(&listing.ItemID, &listing.Name, &listing.StockQuantity, &listing.UnitPrice,
			&listing.BrandName, &listing.BrandNationality, &discount)
		if err != nil {
			return nil, err
		}
		if discount.Valid {
			pct := int(discount.Int64)
			listing.DiscountPercent = &pct
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}
