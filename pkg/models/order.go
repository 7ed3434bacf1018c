package models

import "time"

// OrderStatus is a closed enum. Status strings are kept exactly as stored
// by the web client ("paid" is lowercase for historical reasons); all
// writes must go through CanTransitionTo.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusDelivered},
	OrderStatusShipped: {OrderStatusDelivered},
}

// CanTransitionTo reports whether moving from s to next is a legal
// status-machine step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled,
		OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order is created once per checkout attempt. PaymentID is unique when
// present and serves as the idempotency key for payment-driven creation.
type Order struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"user_id"`
	Subtotal       float64     `json:"subtotal"`
	TaxAmount      float64     `json:"tax_amount"`
	ShippingFee    float64     `json:"shipping_fee"`
	DiscountAmount float64     `json:"discount_amount"`
	TotalAmount    float64     `json:"total_amount"`
	CouponID       *int64      `json:"coupon_id,omitempty"`
	ShippingID     *int64      `json:"shipping_id,omitempty"`
	AddressID      *int64      `json:"address_id,omitempty"`
	Status         OrderStatus `json:"status"`
	PaymentID      *string     `json:"payment_id,omitempty"`
	Items          []OrderItem `json:"items,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OrderItem is immutable after creation. Title and Thumbnail snapshot the
// product at order time so later catalog edits don't rewrite history.
type OrderItem struct {
	ID              int64   `json:"id"`
	OrderID         int64   `json:"order_id"`
	ProductID       int64   `json:"product_id"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	DiscountPercent float64 `json:"discount_percent"`
	EffectivePrice  float64 `json:"effective_price"`
	Title           string  `json:"title"`
	Thumbnail       string  `json:"thumbnail"`
}
