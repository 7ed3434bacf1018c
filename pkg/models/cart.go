package models

import "time"

// CartItem is a persisted cart row. Product data is joined in when the
// cart is read back (the stored row never carries a price).
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	// Joined from products for display.
	Title     string  `json:"title,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

type AddToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// Quantity is a pointer so an explicit zero (remove the line) survives
// required-field validation.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// PricedLine is a cart line after the pricing engine has attached
// authoritative catalog prices. Transient; never persisted as-is.
type PricedLine struct {
	ProductID       int64   `json:"product_id"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	EffectivePrice  float64 `json:"effective_price"`
	Title           string  `json:"title"`
	Thumbnail       string  `json:"thumbnail"`
}

// PricedCart is the full financial breakdown of a checkout attempt.
// Immutable once computed; recomputed from the database on every attempt.
type PricedCart struct {
	Lines          []PricedLine `json:"lines"`
	Subtotal       float64      `json:"subtotal"`
	ShippingCost   float64      `json:"shipping_cost"`
	CouponDiscount float64      `json:"coupon_discount"`
	CouponID       *int64       `json:"coupon_id,omitempty"`
	TaxAmount      float64      `json:"tax_amount"`
	TotalAmount    float64      `json:"total_amount"`
}
