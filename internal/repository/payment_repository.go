package repository

import (
	"context"
	"database/sql"

	"storefront-service/internal/entity"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db}
}

// CreatePayment inserts the payment and one payment_promocode row per applied
// code. Call it inside Store.WithinTx so both inserts commit together.
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *entity.Payment) (*entity.Payment, error) {
	db := conn(ctx, r.db)

	paymentQuery := `INSERT INTO payments (cart_id, total_price, payment_method, payment_date) VALUES (?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, paymentQuery, payment.CartID, payment.TotalPrice, payment.Method, payment.PaymentDate)
	if err != nil {
		return nil, duplicate(err)
	}

	paymentID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if len(payment.PromoCodes) > 0 {
		promoQuery := `INSERT INTO payment_promocode (payment_id, code) VALUES `
		var values []interface{}
		for _, code := range payment.PromoCodes {
			promoQuery += "(?, ?),"
			values = append(values, paymentID, code)
		}
		promoQuery = promoQuery[:len(promoQuery)-1]

		if _, err := db.ExecContext(ctx, promoQuery, values...); err != nil {
			return nil, err
		}
	}

	payment.ID = paymentID
	return payment, nil
}

func (r *PaymentRepository) GetPaymentByCart(ctx context.Context, cartID int64) (*entity.Payment, error) {
	query := `SELECT payment_id, cart_id, total_price, payment_method, payment_date FROM payments WHERE cart_id = ?`
	payment := &entity.Payment{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, cartID).Scan(&payment.ID, &payment.CartID, &payment.TotalPrice, &payment.Method, &payment.PaymentDate)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT code FROM payment_promocode WHERE payment_id = ? ORDER BY code`, payment.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		payment.PromoCodes = append(payment.PromoCodes, code)
	}
	return payment, rows.Err()
}
