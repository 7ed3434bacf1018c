package checkout

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/lumenshop/api/pkg/models"
	"github.com/lumenshop/api/pkg/payments"
	"github.com/lumenshop/api/pkg/postgres"
)

// MockStore implements the Store interface for testing. FinalizePaidOrder
// is guarded by a mutex so concurrency tests can exercise duplicate
// delivery safely.
type MockStore struct {
	Products        map[int64]models.Product
	ProductsErr     error
	ShippingOptions map[int64]models.ShippingOption
	Coupons         map[string]models.Coupon
	CouponsErr      error
	TaxRate         float64
	TaxRateErr      error
	Cart            []models.CartItem
	CartErr         error

	PendingOrderID  int64
	PendingErr      error
	CreatedPending  *models.Order
	PendingLines    []models.OrderItem

	mu              sync.Mutex
	NextOrderID     int64
	FinalizeErr     error
	FinalizedOrders map[string]int64 // payment id -> order id
	FinalizeCalls   []postgres.FinalizeOrder
}

func newMockStore() *MockStore {
	return &MockStore{
		Products:        map[int64]models.Product{},
		ShippingOptions: map[int64]models.ShippingOption{},
		Coupons:         map[string]models.Coupon{},
		TaxRate:         18,
		NextOrderID:     100,
		FinalizedOrders: map[string]int64{},
	}
}

func (m *MockStore) ProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	if m.ProductsErr != nil {
		return nil, m.ProductsErr
	}
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.Products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockStore) ShippingOptionByID(_ context.Context, id int64) (*models.ShippingOption, error) {
	if opt, ok := m.ShippingOptions[id]; ok {
		return &opt, nil
	}
	return nil, postgres.ErrProductNotFound
}

func (m *MockStore) CouponByCode(_ context.Context, code string) (*models.Coupon, error) {
	if m.CouponsErr != nil {
		return nil, m.CouponsErr
	}
	if c, ok := m.Coupons[code]; ok {
		return &c, nil
	}
	return nil, postgres.ErrCouponNotFound
}

func (m *MockStore) TaxRatePercent(_ context.Context) (float64, error) {
	return m.TaxRate, m.TaxRateErr
}

func (m *MockStore) CartItems(_ context.Context, _ int64) ([]models.CartItem, error) {
	return m.Cart, m.CartErr
}

func (m *MockStore) CreatePendingOrder(_ context.Context, order *models.Order, lines []models.OrderItem) (int64, error) {
	if m.PendingErr != nil {
		return 0, m.PendingErr
	}
	m.CreatedPending = order
	m.PendingLines = lines
	if m.PendingOrderID == 0 {
		m.PendingOrderID = 1
	}
	return m.PendingOrderID, nil
}

func (m *MockStore) FinalizePaidOrder(_ context.Context, f postgres.FinalizeOrder) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FinalizeErr != nil {
		return 0, false, m.FinalizeErr
	}
	m.FinalizeCalls = append(m.FinalizeCalls, f)

	if id, ok := m.FinalizedOrders[f.PaymentID]; ok {
		return id, false, nil
	}
	m.NextOrderID++
	m.FinalizedOrders[f.PaymentID] = m.NextOrderID
	return m.NextOrderID, true, nil
}

// MockProvider implements the Provider interface. Sessions created through
// it are retrievable by FetchSession, with metadata populated the way the
// real client populates it.
type MockProvider struct {
	Sessions      map[string]*payments.Session
	CreateErr     error
	FetchErr      error
	PaymentStatus string
	nextID        int
}

func newMockProvider() *MockProvider {
	return &MockProvider{
		Sessions:      map[string]*payments.Session{},
		PaymentStatus: payments.PaymentStatusPaid,
	}
}

func (m *MockProvider) CreateSession(_ context.Context, p payments.CreateSessionParams) (*payments.Session, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	m.nextID++
	id := "cs_test_" + strconv.Itoa(m.nextID)
	meta := map[string]string{
		"userId":         strconv.FormatInt(p.UserID, 10),
		"subtotal":       strconv.FormatFloat(p.Subtotal, 'f', -1, 64),
		"taxAmount":      strconv.FormatFloat(p.TaxAmount, 'f', -1, 64),
		"shippingCost":   strconv.FormatFloat(p.ShippingCost, 'f', -1, 64),
		"discountAmount": strconv.FormatFloat(p.DiscountAmount, 'f', -1, 64),
		"totalAmount":    strconv.FormatFloat(p.TotalAmount, 'f', -1, 64),
		"items":          p.EncodedManifest,
	}
	if p.AddressID != nil {
		meta["addressId"] = strconv.FormatInt(*p.AddressID, 10)
	}
	if p.ShippingID != nil {
		meta["shippingId"] = strconv.FormatInt(*p.ShippingID, 10)
	}
	if p.CouponID != nil {
		meta["couponId"] = strconv.FormatInt(*p.CouponID, 10)
	}

	session := &payments.Session{
		ID:              id,
		PaymentIntentID: "pi_" + id,
		PaymentStatus:   m.PaymentStatus,
		Metadata:        meta,
		URL:             "https://pay.example.test/" + id,
	}
	m.Sessions[id] = session
	return session, nil
}

func (m *MockProvider) FetchSession(_ context.Context, sessionID string) (*payments.Session, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if s, ok := m.Sessions[sessionID]; ok {
		return s, nil
	}
	return nil, errors.New("no such session")
}
