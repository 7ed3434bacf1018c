package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenshop/api/pkg/models"
	"github.com/lumenshop/api/pkg/postgres"
)

func int64Ptr(v int64) *int64 { return &v }

func storeWithCatalog() *MockStore {
	store := newMockStore()
	store.Products[1] = models.Product{
		ID: 1, Title: "Walnut Desk Lamp", Price: 50, Stock: 10, IsActive: true,
	}
	store.Products[2] = models.Product{
		ID: 2, Title: "Brass Bookend", Price: 25, Stock: 5, IsActive: true,
	}
	store.ShippingOptions[1] = models.ShippingOption{ID: 1, Name: "Standard", Cost: 5}
	return store
}

func TestPrice_HappyPath(t *testing.T) {
	store := storeWithCatalog()
	svc := NewService(store, newMockProvider())

	priced, err := svc.Price(context.Background(), CheckoutRequest{
		Items:      []ItemRequest{{ProductID: 1, Quantity: 2}},
		ShippingID: int64Ptr(1),
	})

	require.NoError(t, err)
	assert.InDelta(t, 100.0, priced.Subtotal, 1e-9)
	assert.InDelta(t, 18.0, priced.TaxAmount, 1e-9)
	assert.InDelta(t, 5.0, priced.ShippingCost, 1e-9)
	assert.Zero(t, priced.CouponDiscount)
	assert.InDelta(t, 123.0, priced.TotalAmount, 1e-9)
}

func TestPrice_EmptyCart(t *testing.T) {
	svc := NewService(storeWithCatalog(), newMockProvider())

	_, err := svc.Price(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPrice_ProductNotFound(t *testing.T) {
	svc := NewService(storeWithCatalog(), newMockProvider())

	_, err := svc.Price(context.Background(), CheckoutRequest{
		Items: []ItemRequest{
			{ProductID: 1, Quantity: 1},
			{ProductID: 999, Quantity: 1},
		},
	})

	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(999), notFound.ProductID)
}

func TestPrice_InsufficientStock(t *testing.T) {
	svc := NewService(storeWithCatalog(), newMockProvider())

	_, err := svc.Price(context.Background(), CheckoutRequest{
		Items: []ItemRequest{{ProductID: 2, Quantity: 6}},
	})

	var noStock *postgres.InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, "Brass Bookend", noStock.ProductTitle)
}

func TestPrice_UsesCatalogPrice(t *testing.T) {
	store := storeWithCatalog()
	svc := NewService(store, newMockProvider())

	// The request shape carries no prices at all; whatever the client
	// believed the price was, the catalog row wins.
	priced, err := svc.Price(context.Background(), CheckoutRequest{
		Items: []ItemRequest{{ProductID: 2, Quantity: 1}},
	})

	require.NoError(t, err)
	require.Len(t, priced.Lines, 1)
	assert.Equal(t, 25.0, priced.Lines[0].UnitPrice)
	assert.Equal(t, 25.0, priced.Subtotal)
}

func TestPrice_SaleDiscountFeedsSubtotal(t *testing.T) {
	store := storeWithCatalog()
	store.Products[3] = models.Product{
		ID: 3, Title: "Clearance Rug", Price: 200, DiscountPercent: 25, Stock: 4, IsActive: true,
	}
	svc := NewService(store, newMockProvider())

	priced, err := svc.Price(context.Background(), CheckoutRequest{
		Items: []ItemRequest{{ProductID: 3, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.InDelta(t, 150.0, priced.Lines[0].EffectivePrice, 1e-9)
	assert.InDelta(t, 300.0, priced.Subtotal, 1e-9)
}

func TestPrice_CouponApplied(t *testing.T) {
	store := storeWithCatalog()
	store.Coupons["TEN"] = models.Coupon{
		ID: 7, Code: "TEN", Type: models.CouponCartFixed, Value: 10,
		ExpiryDate: time.Now().Add(time.Hour),
	}
	svc := NewService(store, newMockProvider())

	priced, err := svc.Price(context.Background(), CheckoutRequest{
		Items:      []ItemRequest{{ProductID: 1, Quantity: 2}},
		CouponCode: "TEN",
	})

	require.NoError(t, err)
	assert.Equal(t, 10.0, priced.CouponDiscount)
	require.NotNil(t, priced.CouponID)
	assert.Equal(t, int64(7), *priced.CouponID)
	// Tax applies to the discounted base.
	assert.InDelta(t, 16.2, priced.TaxAmount, 1e-9)
	assert.InDelta(t, 106.2, priced.TotalAmount, 1e-9)
}

func TestPrice_UnknownCouponContributesZero(t *testing.T) {
	svc := NewService(storeWithCatalog(), newMockProvider())

	priced, err := svc.Price(context.Background(), CheckoutRequest{
		Items:      []ItemRequest{{ProductID: 1, Quantity: 1}},
		CouponCode: "NOPE",
	})

	require.NoError(t, err)
	assert.Zero(t, priced.CouponDiscount)
	assert.Nil(t, priced.CouponID)
}

func TestPrice_ExpiredCouponContributesZero(t *testing.T) {
	store := storeWithCatalog()
	store.Coupons["OLD"] = models.Coupon{
		ID: 8, Code: "OLD", Type: models.CouponCartFixed, Value: 10,
		ExpiryDate: time.Now().Add(-time.Hour),
	}
	svc := NewService(store, newMockProvider())

	priced, err := svc.Price(context.Background(), CheckoutRequest{
		Items:      []ItemRequest{{ProductID: 1, Quantity: 1}},
		CouponCode: "OLD",
	})

	require.NoError(t, err)
	assert.Zero(t, priced.CouponDiscount)
}

func TestPrice_DiscountClampedToSubtotal(t *testing.T) {
	store := storeWithCatalog()
	store.Coupons["HUGE"] = models.Coupon{
		ID: 9, Code: "HUGE", Type: models.CouponCartFixed, Value: 10000,
		ExpiryDate: time.Now().Add(time.Hour),
	}
	svc := NewService(store, newMockProvider())

	priced, err := svc.Price(context.Background(), CheckoutRequest{
		Items:      []ItemRequest{{ProductID: 1, Quantity: 1}},
		ShippingID: int64Ptr(1),
		CouponCode: "HUGE",
	})

	require.NoError(t, err)
	assert.Equal(t, priced.Subtotal, priced.CouponDiscount)
	assert.Zero(t, priced.TaxAmount)
	// Shipping survives the clamp; the total never goes negative.
	assert.Equal(t, 5.0, priced.TotalAmount)
}

func TestPrice_TaxLookupFailureFallsBack(t *testing.T) {
	store := storeWithCatalog()
	store.TaxRateErr = assert.AnError
	svc := NewService(store, newMockProvider())

	priced, err := svc.Price(context.Background(), CheckoutRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.InDelta(t, 100*postgres.DefaultTaxRatePercent/100, priced.TaxAmount, 1e-9)
}

func TestPreviewCoupon_ReturnsEvaluation(t *testing.T) {
	store := storeWithCatalog()
	store.Coupons["TEN"] = models.Coupon{
		ID: 7, Code: "TEN", Type: models.CouponCartPercent, Value: 10,
		ExpiryDate: time.Now().Add(time.Hour),
	}
	svc := NewService(store, newMockProvider())

	result, err := svc.PreviewCoupon(context.Background(), "TEN", CheckoutRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.InDelta(t, 10.0, result.Discount, 1e-9)
}

func TestPreviewCoupon_InvalidCarriesReason(t *testing.T) {
	store := storeWithCatalog()
	store.Coupons["MIN"] = models.Coupon{
		ID: 10, Code: "MIN", Type: models.CouponCartFixed, Value: 5,
		MinCartValue: 500, ExpiryDate: time.Now().Add(time.Hour),
	}
	svc := NewService(store, newMockProvider())

	result, err := svc.PreviewCoupon(context.Background(), "MIN", CheckoutRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Cart total below coupon minimum", result.Reason)
}

func TestPreviewCoupon_UnknownCodeIsInvalid(t *testing.T) {
	store := storeWithCatalog()
	svc := NewService(store, newMockProvider())

	result, err := svc.PreviewCoupon(context.Background(), "NOPE", CheckoutRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon not found", result.Reason)
	assert.Zero(t, result.Discount)
}
