package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validCoupon(couponType CouponType, value float64) *Coupon {
	return &Coupon{
		ID:         1,
		Code:       "SAVE",
		Type:       couponType,
		Value:      value,
		ExpiryDate: time.Now().Add(24 * time.Hour),
	}
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestEvaluate_Expired(t *testing.T) {
	coupon := validCoupon(CouponCartFixed, 10)
	coupon.ExpiryDate = time.Now().Add(-time.Hour)

	result := coupon.Evaluate(100, nil, time.Now())

	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon expired", result.Reason)
	assert.Zero(t, result.Discount)
}

func TestEvaluate_BelowMinimum(t *testing.T) {
	coupon := validCoupon(CouponCartFixed, 10)
	coupon.MinCartValue = 50

	result := coupon.Evaluate(49.99, nil, time.Now())

	assert.False(t, result.Valid)
	assert.Equal(t, "Cart total below coupon minimum", result.Reason)
}

func TestEvaluate_AtMinimumIsValid(t *testing.T) {
	coupon := validCoupon(CouponCartFixed, 10)
	coupon.MinCartValue = 50

	result := coupon.Evaluate(50, nil, time.Now())

	assert.True(t, result.Valid)
	assert.Equal(t, 10.0, result.Discount)
}

func TestEvaluate_UsageLimitReached(t *testing.T) {
	coupon := validCoupon(CouponCartFixed, 10)
	coupon.UsageLimit = intPtr(5)
	coupon.UsedCount = 5

	result := coupon.Evaluate(100, nil, time.Now())

	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon usage limit reached", result.Reason)
}

func TestEvaluate_UsageLimitRemaining(t *testing.T) {
	coupon := validCoupon(CouponCartFixed, 10)
	coupon.UsageLimit = intPtr(5)
	coupon.UsedCount = 4

	result := coupon.Evaluate(100, nil, time.Now())

	assert.True(t, result.Valid)
}

func TestEvaluate_CartFixed(t *testing.T) {
	result := validCoupon(CouponCartFixed, 15).Evaluate(100, nil, time.Now())

	assert.True(t, result.Valid)
	assert.Equal(t, 15.0, result.Discount)
}

func TestEvaluate_CartPercent(t *testing.T) {
	result := validCoupon(CouponCartPercent, 20).Evaluate(250, nil, time.Now())

	assert.True(t, result.Valid)
	assert.Equal(t, 50.0, result.Discount)
}

func TestEvaluate_ItemFixed(t *testing.T) {
	coupon := validCoupon(CouponItemFixed, 5)
	coupon.TargetProductID = int64Ptr(7)
	lines := []PricedLine{
		{ProductID: 7, Quantity: 3, EffectivePrice: 20},
		{ProductID: 8, Quantity: 1, EffectivePrice: 10},
	}

	result := coupon.Evaluate(70, lines, time.Now())

	assert.True(t, result.Valid)
	assert.Equal(t, 15.0, result.Discount)
}

func TestEvaluate_ItemPercentUsesEffectivePrice(t *testing.T) {
	coupon := validCoupon(CouponItemPercent, 10)
	coupon.TargetProductID = int64Ptr(7)
	// Already-discounted unit price 80, not the list price 100.
	lines := []PricedLine{
		{ProductID: 7, Quantity: 2, UnitPrice: 100, DiscountPercent: 20, EffectivePrice: 80},
	}

	result := coupon.Evaluate(160, lines, time.Now())

	assert.True(t, result.Valid)
	assert.InDelta(t, 16.0, result.Discount, 1e-9)
}

func TestEvaluate_ItemTargetNotInCart(t *testing.T) {
	coupon := validCoupon(CouponItemFixed, 5)
	coupon.TargetProductID = int64Ptr(99)
	lines := []PricedLine{{ProductID: 7, Quantity: 1, EffectivePrice: 20}}

	result := coupon.Evaluate(20, lines, time.Now())

	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon does not apply to any cart item", result.Reason)
}

func TestEvaluate_ItemCouponWithoutTarget(t *testing.T) {
	coupon := validCoupon(CouponItemPercent, 10)

	result := coupon.Evaluate(100, nil, time.Now())

	assert.False(t, result.Valid)
}

func TestEvaluate_DiscountNotClamped(t *testing.T) {
	// Clamping to the cart total is the pricing engine's job.
	result := validCoupon(CouponCartFixed, 500).Evaluate(100, nil, time.Now())

	assert.True(t, result.Valid)
	assert.Equal(t, 500.0, result.Discount)
}
