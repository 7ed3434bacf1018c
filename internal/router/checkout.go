package router

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"

	"github.com/lumenshop/api/pkg/checkout"
	"github.com/lumenshop/api/pkg/global"
	"github.com/lumenshop/api/pkg/payments"
	"github.com/lumenshop/api/pkg/postgres"
)

// PlaceOrder creates a Pending order from the submitted cart. Totals come
// from the catalog; the request carries ids and quantities only.
func (a *API) PlaceOrder(c *gin.Context) {
	var req checkout.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	orderID, err := a.Checkout.PlacePendingOrder(c.Request.Context(), a.principal(c).CustomerID, req)
	if err != nil {
		status, payload := checkoutErrorResponse(err)
		c.JSON(status, payload)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(map[string]int64{"order_id": orderID}))
}

func (a *API) CreatePaymentSession(c *gin.Context) {
	var req checkout.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	url, err := a.Checkout.CreatePaymentSession(c.Request.Context(), a.principal(c).CustomerID, req)
	if err != nil {
		status, payload := checkoutErrorResponse(err)
		c.JSON(status, payload)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"url": url}))
}

// VerifyPayment is the client-side confirmation pull. A non-success status
// from the client is acknowledged without touching the provider; the
// webhook remains the authoritative path either way.
func (a *API) VerifyPayment(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
		Status    string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "session_id", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	if req.Status != "success" {
		c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Payment not completed"}))
		return
	}

	orderID, err := a.Checkout.VerifyPayment(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, checkout.ErrPaymentNotCompleted) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Payment has not been completed", nil))
			return
		}
		log.Printf("error verifying payment for session %s: %v", req.SessionID, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to verify payment", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]int64{"order_id": orderID}))
}

// PaymentWebhook receives provider events. The signature gate is the only
// rejection path; once the payload is authentic the endpoint always
// acknowledges, and processing failures are left for the verify path or a
// provider retry to repair.
func (a *API) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Failed to read payload", nil))
		return
	}

	event, err := a.Payments.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid signature", nil))
		return
	}

	if event.Type == "checkout.session.completed" {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			log.Printf("webhook: failed to parse session payload: %v", err)
		} else if adapted := payments.AdaptCheckoutSession(&session); adapted.IsPaid() {
			if _, err := a.Checkout.ProcessSuccessfulPayment(c.Request.Context(), adapted); err != nil {
				log.Printf("webhook: failed to finalize session %s: %v", session.ID, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (a *API) PreviewCoupon(c *gin.Context) {
	var req struct {
		Code string                   `json:"code" binding:"required"`
		Cart checkout.CheckoutRequest `json:"cart" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	result, err := a.Checkout.PreviewCoupon(c.Request.Context(), req.Code, req.Cart)
	if err != nil {
		status, payload := checkoutErrorResponse(err)
		c.JSON(status, payload)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(result))
}

// checkoutErrorResponse maps pipeline errors onto client responses. Any
// failure to price the submitted cart is the client's problem; everything
// else is ours.
func checkoutErrorResponse(err error) (int, global.APIResponse) {
	var notFound *checkout.ProductNotFoundError
	var noStock *postgres.InsufficientStockError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, global.ErrorResponse("Cart is empty", nil)
	case errors.As(err, &notFound):
		return http.StatusBadRequest, global.ErrorResponse(err.Error(), []global.ValidationError{
			{Field: "items", Message: err.Error(), Code: "product_unavailable"},
		})
	case errors.As(err, &noStock):
		return http.StatusBadRequest, global.ErrorResponse(err.Error(), []global.ValidationError{
			{Field: "items", Message: err.Error(), Code: "insufficient_stock"},
		})
	case errors.Is(err, payments.ErrManifestTooLarge):
		return http.StatusBadRequest, global.ErrorResponse(err.Error(), nil)
	default:
		log.Printf("checkout error: %v", err)
		return http.StatusInternalServerError, global.ErrorResponse("Checkout failed", nil)
	}
}
