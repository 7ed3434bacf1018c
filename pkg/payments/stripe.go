package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v78"
	checkoutsession "github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/lumenshop/api/pkg/global"
)

// Session is the provider-neutral view of a checkout session that the
// finalization pipeline consumes. Both the webhook payload and the verify
// fetch are adapted into this shape so the two triggers converge on
// identical processing.
type Session struct {
	ID              string
	PaymentIntentID string
	PaymentStatus   string
	Metadata        map[string]string
	URL             string
}

const PaymentStatusPaid = "paid"

func (s *Session) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// PaymentID is the idempotency key for order creation: the payment intent
// when present, else the session id.
func (s *Session) PaymentID() string {
	if s.PaymentIntentID != "" {
		return s.PaymentIntentID
	}
	return s.ID
}

// CreateSessionParams carries everything the provider session must
// round-trip back through the webhook/verify call.
type CreateSessionParams struct {
	UserID          int64
	AddressID       *int64
	ShippingID      *int64
	CouponID        *int64
	Subtotal        float64
	TaxAmount       float64
	ShippingCost    float64
	DiscountAmount  float64
	TotalAmount     float64
	EncodedManifest string
	ItemCount       int
}

// Client wraps the Stripe API. The webhook secret is used only by
// VerifyWebhook; all other calls authenticate with the secret key set on
// the stripe package.
type Client struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

func NewClient() *Client {
	stripe.Key = global.GetEnvOrDefault("STRIPE_SECRET_KEY", "")
	clientOrigin := global.GetEnvOrDefault("CLIENT_ORIGIN", "http://localhost:5173")
	return &Client{
		webhookSecret: global.GetEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		successURL:    clientOrigin + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:     clientOrigin + "/checkout/cancel",
		currency:      global.GetEnvOrDefault("STORE_CURRENCY", "usd"),
	}
}

// CreateSession opens a provider checkout session. The amount charged is
// the grand total rounded to minor units; the line-item detail travels in
// the metadata manifest, not in provider line items.
func (c *Client) CreateSession(ctx context.Context, p CreateSessionParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(c.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Order (%d items)", p.ItemCount)),
					},
					UnitAmount: stripe.Int64(ToMinorUnits(p.TotalAmount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	params.AddMetadata("userId", strconv.FormatInt(p.UserID, 10))
	if p.AddressID != nil {
		params.AddMetadata("addressId", strconv.FormatInt(*p.AddressID, 10))
	}
	if p.ShippingID != nil {
		params.AddMetadata("shippingId", strconv.FormatInt(*p.ShippingID, 10))
	}
	if p.CouponID != nil {
		params.AddMetadata("couponId", strconv.FormatInt(*p.CouponID, 10))
	}
	params.AddMetadata("subtotal", formatAmount(p.Subtotal))
	params.AddMetadata("taxAmount", formatAmount(p.TaxAmount))
	params.AddMetadata("shippingCost", formatAmount(p.ShippingCost))
	params.AddMetadata("discountAmount", formatAmount(p.DiscountAmount))
	params.AddMetadata("totalAmount", formatAmount(p.TotalAmount))
	params.AddMetadata("items", p.EncodedManifest)

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return adaptSession(s), nil
}

// FetchSession retrieves a session for the client-pulled verify path.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	return adaptSession(s), nil
}

// VerifyWebhook checks the provider signature and returns the parsed
// event. The raw body is never JSON-decoded for business logic before this
// verification succeeds.
func (c *Client) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, c.webhookSecret)
}

// AdaptCheckoutSession converts a provider session object (from a webhook
// event payload) into the neutral Session shape.
func AdaptCheckoutSession(s *stripe.CheckoutSession) *Session {
	return adaptSession(s)
}

func adaptSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
		URL:           s.URL,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
