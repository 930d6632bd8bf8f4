package repository

import (
	"context"
	"database/sql"
	"time"

	"storefront-service/internal/entity"
)

type DiscountRepository struct {
	db *sql.DB
}

func NewDiscountRepository(db *sql.DB) *DiscountRepository {
	return &DiscountRepository{db}
}

// ActiveDiscounts returns the discounts of an item whose window contains the
// day of asOf, newest first.
func (r *DiscountRepository) ActiveDiscounts(ctx context.Context, itemID int64, asOf time.Time) ([]entity.Discount, error) {
	query := `SELECT discount_id, item_id, discount_amount, start_date, end_date FROM discounts
		WHERE item_id = ? AND start_date <= DATE(?) AND end_date >= DATE(?)
		ORDER BY discount_id DESC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, itemID, asOf, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discounts []entity.Discount
	for rows.Next() {
		var d entity.Discount
		if err := rows.Scan(&d.ID, &d.ItemID, &d.Amount, &d.StartDate, &d.EndDate); err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

func (r *DiscountRepository) CreateDiscount(ctx context.Context, discount *entity.Discount) (*entity.Discount, error) {
	query := `INSERT INTO discounts (item_id, discount_amount, start_date, end_date) VALUES (?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, discount.ItemID, discount.Amount, discount.StartDate, discount.EndDate)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	discount.ID = id
	return discount, nil
}

type PromoCodeRepository struct {
	db *sql.DB
}

func NewPromoCodeRepository(db *sql.DB) *PromoCodeRepository {
	return &PromoCodeRepository{db}
}

func (r *PromoCodeRepository) GetPromoCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	query := `SELECT code, discount_amount, start_date, end_date FROM promocodes WHERE code = ?`
	promo := &entity.PromoCode{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, code).Scan(&promo.Code, &promo.DiscountAmount, &promo.StartDate, &promo.EndDate)
	if err != nil {
		return nil, notFound(err)
	}
	return promo, nil
}
