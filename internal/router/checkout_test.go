package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lumenshop/api/pkg/checkout"
	"github.com/lumenshop/api/pkg/payments"
)

// stubProvider counts session fetches so tests can assert the verify
// handler never reaches the provider on a non-success status.
type stubProvider struct {
	fetchCalls int
}

func (p *stubProvider) CreateSession(_ context.Context, _ payments.CreateSessionParams) (*payments.Session, error) {
	return nil, errors.New("not implemented")
}

func (p *stubProvider) FetchSession(_ context.Context, _ string) (*payments.Session, error) {
	p.fetchCalls++
	return nil, errors.New("session lookup failed")
}

func verifyRequest(t *testing.T, api *API, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/checkout/verify", api.VerifyPayment)

	req := httptest.NewRequest(http.MethodPost, "/checkout/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestVerifyPayment_FailedStatusSkipsProvider(t *testing.T) {
	provider := &stubProvider{}
	api := &API{Checkout: checkout.NewService(nil, provider)}

	w := verifyRequest(t, api, `{"session_id": "cs_1", "status": "failed"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment not completed")
	assert.Zero(t, provider.fetchCalls)
}

func TestVerifyPayment_MissingStatusSkipsProvider(t *testing.T) {
	provider := &stubProvider{}
	api := &API{Checkout: checkout.NewService(nil, provider)}

	w := verifyRequest(t, api, `{"session_id": "cs_1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment not completed")
	assert.Zero(t, provider.fetchCalls)
}

func TestVerifyPayment_SuccessStatusReachesProvider(t *testing.T) {
	provider := &stubProvider{}
	api := &API{Checkout: checkout.NewService(nil, provider)}

	w := verifyRequest(t, api, `{"session_id": "cs_1", "status": "success"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, provider.fetchCalls)
}
