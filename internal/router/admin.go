package router

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenshop/api/pkg/global"
	"github.com/lumenshop/api/pkg/models"
	"github.com/lumenshop/api/pkg/postgres"
)

// --- Products ---

func (a *API) AdminListProducts(c *gin.Context) {
	products, err := a.Store.ListAllProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get products", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func (a *API) AdminCreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	created, err := a.Store.CreateProduct(c.Request.Context(), req.ToProduct())
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create product", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(created))
}

func (a *API) AdminUpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: "Expected a non-empty update object", Code: "validation_error"},
		}))
		return
	}
	ctx := c.Request.Context()

	product, err := a.Store.UpdateProduct(ctx, id, updates)
	if err != nil {
		if errors.Is(err, postgres.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		c.JSON(http.StatusBadRequest, global.ErrorResponse(err.Error(), nil))
		return
	}

	if err := a.Cache.Invalidate(ctx, id); err != nil {
		log.Printf("warning: failed to invalidate product %d cache: %v", id, err)
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (a *API) AdminDeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := a.Store.SoftDeleteProduct(ctx, id); err != nil {
		if errors.Is(err, postgres.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete product", nil))
		return
	}

	if err := a.Cache.Invalidate(ctx, id); err != nil {
		log.Printf("warning: failed to invalidate product %d cache: %v", id, err)
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Product deleted"}))
}

func (a *API) AdminRestockProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Delta int `json:"delta" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "delta", Message: "Must be a positive integer", Code: "validation_error"},
		}))
		return
	}

	product, err := a.Store.RestockProduct(c.Request.Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, postgres.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to restock product", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

// --- Orders ---

func (a *API) AdminListOrders(c *gin.Context) {
	orders, err := a.Store.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get orders", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (a *API) AdminGetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := a.Store.OrderByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get order", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

// AdminUpdateOrderStatus moves an order through fulfillment. Transitions
// outside the status machine are rejected, including any admin attempt to
// hand-mark an order paid.
func (a *API) AdminUpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "status", Message: "Status is required", Code: "validation_error"},
		}))
		return
	}

	next := models.OrderStatus(req.Status)
	if !next.IsValid() {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Unknown order status", []global.ValidationError{
			{Field: "status", Message: "Unknown order status", Code: "invalid_value"},
		}))
		return
	}

	order, err := a.Store.UpdateOrderStatus(c.Request.Context(), id, next)
	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
		case errors.Is(err, postgres.ErrIllegalTransition):
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Illegal status transition", nil))
		default:
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update order", nil))
		}
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

// --- Customers ---

func (a *API) AdminListCustomers(c *gin.Context) {
	customers, err := a.Store.ListCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get customers", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(customers))
}

func (a *API) AdminBlockCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Blocked *bool `json:"blocked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "blocked", Message: "Blocked flag is required", Code: "validation_error"},
		}))
		return
	}

	if err := a.Store.SetCustomerBlocked(c.Request.Context(), id, *req.Blocked); err != nil {
		if errors.Is(err, postgres.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Customer not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update customer", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Customer updated"}))
}

// --- Coupons ---

func (a *API) AdminListCoupons(c *gin.Context) {
	coupons, err := a.Store.ListCoupons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get coupons", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(coupons))
}

func (a *API) AdminCreateCoupon(c *gin.Context) {
	var req models.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	coupon, err := a.Store.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, postgres.ErrDuplicateCoupon) {
			c.JSON(http.StatusConflict, global.ErrorResponse("Coupon code already exists", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create coupon", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(coupon))
}

func (a *API) AdminDeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := a.Store.DeleteCoupon(c.Request.Context(), id); err != nil {
		if errors.Is(err, postgres.ErrCouponNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Coupon not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete coupon", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Coupon deleted"}))
}

// --- Banners ---

func (a *API) AdminListBanners(c *gin.Context) {
	banners, err := a.Store.ListBanners(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get banners", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(banners))
}

func (a *API) AdminCreateBanner(c *gin.Context) {
	var req models.CreateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	banner, err := a.Store.CreateBanner(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create banner", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(banner))
}

func (a *API) AdminDeleteBanner(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := a.Store.DeleteBanner(c.Request.Context(), id); err != nil {
		if errors.Is(err, postgres.ErrBannerNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Banner not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete banner", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Banner deleted"}))
}

// --- Tickets ---

func (a *API) AdminListTickets(c *gin.Context) {
	tickets, err := a.Store.ListTickets(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get tickets", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(tickets))
}

func (a *API) AdminSetTicketStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=open pending resolved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "status", Message: "Must be one of open, pending, resolved", Code: "invalid_value"},
		}))
		return
	}

	if err := a.Store.SetTicketStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, postgres.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Ticket not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update ticket", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Ticket updated"}))
}

// --- Analytics ---

// analyticsWindow parses from/to query dates, defaulting to the trailing
// 30 days.
func analyticsWindow(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from, to := now.AddDate(0, 0, -30), now

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, err
		}
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func (a *API) AdminSalesAnalytics(c *gin.Context) {
	from, to, err := analyticsWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid date range", []global.ValidationError{
			{Field: "from", Message: "Dates must be in YYYY-MM-DD format", Code: "invalid_format"},
		}))
		return
	}

	summary, err := a.Store.SalesAnalytics(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get analytics", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(summary))
}

func (a *API) AdminTopProducts(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	top, err := a.Store.TopProducts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get top products", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(top))
}

func (a *API) AdminAISalesReport(c *gin.Context) {
	from, to, err := analyticsWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid date range", nil))
		return
	}
	ctx := c.Request.Context()

	summary, err := a.Store.SalesAnalytics(ctx, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get analytics", nil))
		return
	}
	top, err := a.Store.TopProducts(ctx, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get top products", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(a.Reports.SalesReport(ctx, summary, top)))
}

func (a *API) AdminSetTaxRate(c *gin.Context) {
	var req struct {
		RatePercent *float64 `json:"rate_percent" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || *req.RatePercent < 0 || *req.RatePercent > 100 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "rate_percent", Message: "Must be between 0 and 100", Code: "validation_error"},
		}))
		return
	}

	value := strconv.FormatFloat(*req.RatePercent, 'f', -1, 64)
	if err := a.Store.SetSetting(c.Request.Context(), "tax_rate_percent", value); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update tax rate", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"tax_rate_percent": value}))
}

// --- Audit ---

func (a *API) AdminListAuditLogs(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	logs, err := a.Store.ListAuditLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get audit logs", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(logs))
}
