package checkout

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lumenshop/api/pkg/models"
	"github.com/lumenshop/api/pkg/postgres"
)

// Price derives the full financial breakdown of a checkout attempt from
// authoritative catalog rows. Client-supplied prices do not exist in the
// request shape, which eliminates price tampering structurally.
//
// The stock comparison here is a soft pre-check against a snapshot; the
// binding check happens under a row lock at finalization.
func (s *Service) Price(ctx context.Context, req CheckoutRequest) (*models.PricedCart, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}

	products, err := s.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	priced := &models.PricedCart{}
	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			// One missing product blocks the whole cart; no partial fulfillment.
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		if item.Quantity > product.Stock {
			return nil, &postgres.InsufficientStockError{ProductTitle: product.Title}
		}

		line := models.PricedLine{
			ProductID:       product.ID,
			Quantity:        item.Quantity,
			UnitPrice:       product.Price,
			DiscountPercent: product.DiscountPercent,
			EffectivePrice:  product.EffectivePrice(),
			Title:           product.Title,
			Thumbnail:       product.Thumbnail,
		}
		priced.Lines = append(priced.Lines, line)
		priced.Subtotal += line.EffectivePrice * float64(line.Quantity)
	}

	if req.ShippingID != nil {
		option, err := s.store.ShippingOptionByID(ctx, *req.ShippingID)
		if err != nil {
			return nil, err
		}
		priced.ShippingCost = option.Cost
	}

	if req.CouponCode != "" {
		discount, couponID := s.evaluateCoupon(ctx, req.CouponCode, priced)
		// Discount can never exceed what the cart is worth.
		if discount > priced.Subtotal {
			discount = priced.Subtotal
		}
		priced.CouponDiscount = discount
		priced.CouponID = couponID
	}

	taxRate, err := s.store.TaxRatePercent(ctx)
	if err != nil {
		log.Printf("tax rate lookup failed, using default: %v", err)
		taxRate = postgres.DefaultTaxRatePercent
	}
	priced.TaxAmount = (priced.Subtotal - priced.CouponDiscount) * taxRate / 100
	priced.TotalAmount = priced.Subtotal - priced.CouponDiscount + priced.TaxAmount + priced.ShippingCost

	return priced, nil
}

// evaluateCoupon resolves a code and runs the evaluator. A missing or
// invalid coupon contributes zero discount rather than failing checkout.
func (s *Service) evaluateCoupon(ctx context.Context, code string, priced *models.PricedCart) (float64, *int64) {
	coupon, err := s.store.CouponByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, postgres.ErrCouponNotFound) {
			log.Printf("coupon lookup failed for %q: %v", code, err)
		}
		return 0, nil
	}

	result := coupon.Evaluate(priced.Subtotal, priced.Lines, time.Now())
	if !result.Valid {
		return 0, nil
	}
	return result.Discount, &coupon.ID
}

// PreviewCoupon runs the evaluator against a priced cart without touching
// state, for the storefront's "apply code" dry run.
func (s *Service) PreviewCoupon(ctx context.Context, code string, req CheckoutRequest) (*models.CouponResult, error) {
	req.CouponCode = ""
	priced, err := s.Price(ctx, req)
	if err != nil {
		return nil, err
	}

	coupon, err := s.store.CouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, postgres.ErrCouponNotFound) {
			// An unknown code is a normal dry-run answer, not a failure.
			return &models.CouponResult{Valid: false, Reason: "Coupon not found"}, nil
		}
		return nil, err
	}

	result := coupon.Evaluate(priced.Subtotal, priced.Lines, time.Now())
	if result.Discount > priced.Subtotal {
		result.Discount = priced.Subtotal
	}
	return &result, nil
}
