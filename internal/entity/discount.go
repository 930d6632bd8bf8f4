package entity

import "time"

// Discount is a per-item percentage discount valid on [StartDate, EndDate].
type Discount struct {
	ID        int64     `json:"discount_id"`
	ItemID    int64     `json:"item_id"`
	Amount    int       `json:"discount_amount"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type PromoCode struct {
	Code           string    `json:"code"`
	DiscountAmount int       `json:"discount_amount"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}
