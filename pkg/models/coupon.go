package models

import (
	"time"
)

type CouponType string

const (
	CouponCartFixed   CouponType = "cart_fixed"
	CouponCartPercent CouponType = "cart_percent"
	CouponItemFixed   CouponType = "item_fixed"
	CouponItemPercent CouponType = "item_percent"
)

// Coupon represents a discount code. Item-scoped types (item_fixed,
// item_percent) require TargetProductID to be set.
type Coupon struct {
	ID              int64      `json:"id"`
	Code            string     `json:"code"`
	Type            CouponType `json:"type"`
	Value           float64    `json:"value"`
	MinCartValue    float64    `json:"min_cart_value"`
	ExpiryDate      time.Time  `json:"expiry_date"`
	UsageLimit      *int       `json:"usage_limit,omitempty"`
	UsedCount       int        `json:"used_count"`
	TargetProductID *int64     `json:"target_product_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreateCouponRequest struct {
	Code            string     `json:"code" binding:"required,min=3,max=32"`
	Type            CouponType `json:"type" binding:"required,oneof=cart_fixed cart_percent item_fixed item_percent"`
	Value           float64    `json:"value" binding:"required,gt=0"`
	MinCartValue    float64    `json:"min_cart_value" binding:"gte=0"`
	ExpiryDate      time.Time  `json:"expiry_date" binding:"required"`
	UsageLimit      *int       `json:"usage_limit"`
	TargetProductID *int64     `json:"target_product_id"`
}

// CouponResult is the outcome of evaluating a coupon against a cart.
type CouponResult struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Reason   string  `json:"reason,omitempty"`
}

func invalid(reason string) CouponResult {
	return CouponResult{Valid: false, Reason: reason}
}

// Evaluate computes the discount this coupon yields for the given cart.
// It is pure: no I/O, deterministic for a given now. The returned discount
// is NOT clamped to the cart total; the pricing engine owns clamping.
func (c *Coupon) Evaluate(cartTotal float64, lines []PricedLine, now time.Time) CouponResult {
	if c.ExpiryDate.Before(now) {
		return invalid("Coupon expired")
	}
	if cartTotal < c.MinCartValue {
		return invalid("Cart total below coupon minimum")
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return invalid("Coupon usage limit reached")
	}

	switch c.Type {
	case CouponCartFixed:
		return CouponResult{Valid: true, Discount: c.Value}
	case CouponCartPercent:
		return CouponResult{Valid: true, Discount: cartTotal * c.Value / 100}
	case CouponItemFixed, CouponItemPercent:
		if c.TargetProductID == nil {
			return invalid("Coupon has no target product")
		}
		line := matchLine(lines, *c.TargetProductID)
		if line == nil {
			return invalid("Coupon does not apply to any cart item")
		}
		if c.Type == CouponItemFixed {
			return CouponResult{Valid: true, Discount: c.Value * float64(line.Quantity)}
		}
		// item_percent applies to the already-discounted unit price.
		return CouponResult{Valid: true, Discount: line.EffectivePrice * float64(line.Quantity) * c.Value / 100}
	default:
		return invalid("Unknown coupon type")
	}
}

func matchLine(lines []PricedLine, productID int64) *PricedLine {
	for i := range lines {
		if lines[i].ProductID == productID {
			return &lines[i]
		}
	}
	return nil
}
