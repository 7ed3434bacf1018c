// Package checkout implements the order-finalization and
// payment-reconciliation pipeline: pricing a cart from authoritative
// catalog rows, creating payment sessions, and converging webhook- and
// client-triggered confirmations onto one idempotent finalization.
package checkout

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/lumenshop/api/pkg/models"
	"github.com/lumenshop/api/pkg/payments"
	"github.com/lumenshop/api/pkg/postgres"
)

// Store is the database surface the pipeline needs. *postgres.Store
// satisfies it; tests substitute mocks.
type Store interface {
	ProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	ShippingOptionByID(ctx context.Context, id int64) (*models.ShippingOption, error)
	CouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	TaxRatePercent(ctx context.Context) (float64, error)
	CartItems(ctx context.Context, userID int64) ([]models.CartItem, error)
	CreatePendingOrder(ctx context.Context, order *models.Order, lines []models.OrderItem) (int64, error)
	FinalizePaidOrder(ctx context.Context, f postgres.FinalizeOrder) (int64, bool, error)
}

// Provider is the payment-provider surface: create a session, fetch one
// back for verification.
type Provider interface {
	CreateSession(ctx context.Context, p payments.CreateSessionParams) (*payments.Session, error)
	FetchSession(ctx context.Context, sessionID string) (*payments.Session, error)
}

type Service struct {
	store    Store
	provider Provider
}

func NewService(store Store, provider Provider) *Service {
	return &Service{store: store, provider: provider}
}

// CheckoutRequest is the client's view of a checkout: product ids and
// quantities only. Any price a client sends is not even representable.
type CheckoutRequest struct {
	Items      []ItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingID *int64        `json:"shipping_id"`
	AddressID  *int64        `json:"address_id"`
	CouponCode string        `json:"coupon_code"`
}

type ItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// PlacePendingOrder is the synchronous checkout path: price the cart and
// insert a Pending order awaiting offline payment. Stock is not reserved;
// only payment confirmation commits inventory.
func (s *Service) PlacePendingOrder(ctx context.Context, userID int64, req CheckoutRequest) (int64, error) {
	priced, err := s.Price(ctx, req)
	if err != nil {
		return 0, err
	}

	order := &models.Order{
		UserID:         userID,
		Subtotal:       priced.Subtotal,
		TaxAmount:      priced.TaxAmount,
		ShippingFee:    priced.ShippingCost,
		DiscountAmount: priced.CouponDiscount,
		TotalAmount:    priced.TotalAmount,
		CouponID:       priced.CouponID,
		ShippingID:     req.ShippingID,
		AddressID:      req.AddressID,
	}
	return s.store.CreatePendingOrder(ctx, order, linesToItems(priced.Lines))
}

// CreatePaymentSession prices the user's persisted cart and opens a
// provider session carrying the totals plus the item manifest. The session
// metadata is the sole channel carrying order intent between this request
// and the later confirmation.
func (s *Service) CreatePaymentSession(ctx context.Context, userID int64, req CheckoutRequest) (string, error) {
	if len(req.Items) == 0 {
		cartItems, err := s.store.CartItems(ctx, userID)
		if err != nil {
			return "", err
		}
		for _, item := range cartItems {
			req.Items = append(req.Items, ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}

	priced, err := s.Price(ctx, req)
	if err != nil {
		return "", err
	}

	encoded, err := payments.BuildManifest(priced.Lines).Encode()
	if err != nil {
		return "", err
	}

	itemCount := 0
	for _, line := range priced.Lines {
		itemCount += line.Quantity
	}

	session, err := s.provider.CreateSession(ctx, payments.CreateSessionParams{
		UserID:          userID,
		AddressID:       req.AddressID,
		ShippingID:      req.ShippingID,
		CouponID:        priced.CouponID,
		Subtotal:        priced.Subtotal,
		TaxAmount:       priced.TaxAmount,
		ShippingCost:    priced.ShippingCost,
		DiscountAmount:  priced.CouponDiscount,
		TotalAmount:     priced.TotalAmount,
		EncodedManifest: encoded,
		ItemCount:       itemCount,
	})
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// VerifyPayment is the client-pulled reconciliation trigger. It refuses to
// finalize unless the provider reports the session paid, then funnels into
// the same idempotent routine the webhook uses.
func (s *Service) VerifyPayment(ctx context.Context, sessionID string) (int64, error) {
	session, err := s.provider.FetchSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if !session.IsPaid() {
		return 0, ErrPaymentNotCompleted
	}
	return s.ProcessSuccessfulPayment(ctx, session)
}

// ProcessSuccessfulPayment converts a paid session into a finalized order.
// Callers MUST have confirmed the session is paid. Safe under duplicate
// and concurrent invocation: the payment id makes the second caller
// observe the first's order with zero additional writes.
func (s *Service) ProcessSuccessfulPayment(ctx context.Context, session *payments.Session) (int64, error) {
	finalize, err := finalizeFromSession(session)
	if err != nil {
		return 0, err
	}

	orderID, created, err := s.store.FinalizePaidOrder(ctx, *finalize)
	if err != nil {
		return 0, err
	}
	if !created {
		log.Printf("payment %s already finalized as order %d, skipping", finalize.PaymentID, orderID)
	}
	return orderID, nil
}

// finalizeFromSession reconstructs order intent from session metadata.
// Everything here was written by CreatePaymentSession and round-tripped
// through the provider unchanged.
func finalizeFromSession(session *payments.Session) (*postgres.FinalizeOrder, error) {
	meta := session.Metadata
	userID, err := strconv.ParseInt(meta["userId"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad userId", ErrBadSessionMetadata)
	}

	manifest, err := payments.DecodeManifest(meta["items"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSessionMetadata, err)
	}

	lines := make([]models.OrderItem, len(manifest))
	for i, item := range manifest {
		lines[i] = models.OrderItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			Price:           item.Price,
			DiscountPercent: item.Discount,
			EffectivePrice:  item.EffectivePrice(),
		}
	}

	return &postgres.FinalizeOrder{
		UserID:         userID,
		PaymentID:      session.PaymentID(),
		AddressID:      optionalID(meta, "addressId"),
		ShippingID:     optionalID(meta, "shippingId"),
		CouponID:       optionalID(meta, "couponId"),
		Subtotal:       metaAmount(meta, "subtotal"),
		TaxAmount:      metaAmount(meta, "taxAmount"),
		ShippingFee:    metaAmount(meta, "shippingCost"),
		DiscountAmount: metaAmount(meta, "discountAmount"),
		TotalAmount:    metaAmount(meta, "totalAmount"),
		Lines:          lines,
	}, nil
}

func optionalID(meta map[string]string, key string) *int64 {
	if v, ok := meta[key]; ok && v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &id
		}
	}
	return nil
}

func metaAmount(meta map[string]string, key string) float64 {
	f, _ := strconv.ParseFloat(meta[key], 64)
	return f
}

func linesToItems(lines []models.PricedLine) []models.OrderItem {
	items := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = models.OrderItem{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			Price:           line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			EffectivePrice:  line.EffectivePrice,
		}
	}
	return items
}
