package router

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenshop/api/pkg/global"
	"github.com/lumenshop/api/pkg/models"
	"github.com/lumenshop/api/pkg/postgres"
)

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid id", []global.ValidationError{
			{Field: name, Message: "Must be a positive integer", Code: "invalid_format"},
		}))
		return 0, false
	}
	return id, true
}

func (a *API) ListProducts(c *gin.Context) {
	products, err := a.Store.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get products", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

// GetProduct serves a product detail with redis caching in front of the
// catalog read. The cache never serves checkout; pricing always re-reads.
func (a *API) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	product, err := a.Cache.Get(ctx, id)
	if err == nil {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, global.SuccessResponse(product))
		return
	}

	product, err = a.Store.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		log.Printf("error fetching product %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch product", nil))
		return
	}

	if cacheErr := a.Cache.Set(ctx, product); cacheErr != nil {
		log.Printf("warning: failed to cache product %d: %v", id, cacheErr)
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.Store.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get categories", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(categories))
}

func (a *API) ListBanners(c *gin.Context) {
	banners, err := a.Store.ListBanners(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get banners", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(banners))
}

func (a *API) ListShippingOptions(c *gin.Context) {
	options, err := a.Store.ListShippingOptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get shipping options", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(options))
}

// --- Cart ---

func (a *API) GetCart(c *gin.Context) {
	items, err := a.Store.CartItems(c.Request.Context(), a.principal(c).CustomerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(items))
}

func (a *API) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}
	ctx := c.Request.Context()

	product, err := a.Store.ProductByID(ctx, req.ProductID)
	if err != nil || !product.IsPurchasable() {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Product is not available", nil))
		return
	}

	if err := a.Store.UpsertCartItem(ctx, a.principal(c).CustomerID, req.ProductID, req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add to cart", nil))
		return
	}
	a.GetCart(c)
}

func (a *API) UpdateCartItem(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	err := a.Store.SetCartItemQuantity(c.Request.Context(), a.principal(c).CustomerID, productID, *req.Quantity)
	if err != nil {
		if errors.Is(err, postgres.ErrCartItemNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Item not in cart", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update cart", nil))
		return
	}
	a.GetCart(c)
}

func (a *API) RemoveFromCart(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	err := a.Store.RemoveCartItem(c.Request.Context(), a.principal(c).CustomerID, productID)
	if err != nil {
		if errors.Is(err, postgres.ErrCartItemNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Item not in cart", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to remove from cart", nil))
		return
	}
	a.GetCart(c)
}

func (a *API) ClearCart(c *gin.Context) {
	if err := a.Store.ClearCart(c.Request.Context(), a.principal(c).CustomerID); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to clear cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Cart cleared"}))
}

// --- Orders ---

func (a *API) ListMyOrders(c *gin.Context) {
	orders, err := a.Store.OrdersByUser(c.Request.Context(), a.principal(c).CustomerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get orders", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (a *API) GetMyOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := a.Store.OrderByID(c.Request.Context(), id)
	if err != nil || order.UserID != a.principal(c).CustomerID {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

// CancelMyOrder lets a customer cancel their own order while it is still
// Pending. Coupon usage is not given back and no stock is released; a
// Pending order never held either.
func (a *API) CancelMyOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	order, err := a.Store.OrderByID(ctx, id)
	if err != nil || order.UserID != a.principal(c).CustomerID {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
		return
	}

	updated, err := a.Store.UpdateOrderStatus(ctx, id, models.OrderStatusCancelled)
	if err != nil {
		if errors.Is(err, postgres.ErrIllegalTransition) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Order can no longer be cancelled", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to cancel order", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(updated))
}

// --- Reviews ---

func (a *API) ListReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	reviews, err := a.Store.ReviewsByProduct(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get reviews", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(reviews))
}

func (a *API) CreateReview(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}
	ctx := c.Request.Context()
	userID := a.principal(c).CustomerID

	purchased, err := a.Store.HasPurchased(ctx, userID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create review", nil))
		return
	}
	if !purchased {
		c.JSON(http.StatusForbidden, global.ErrorResponse("Only verified purchasers can review", nil))
		return
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	}
	created, err := a.Store.CreateReview(ctx, review)
	if err != nil {
		if errors.Is(err, postgres.ErrDuplicateReview) {
			c.JSON(http.StatusConflict, global.ErrorResponse("You already reviewed this product", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create review", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(created))
}

func (a *API) DeleteReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	principal := a.principal(c)
	ownerID := principal.CustomerID
	if principal.IsAdmin() {
		ownerID = 0
	}

	if err := a.Store.DeleteReview(c.Request.Context(), reviewID, ownerID); err != nil {
		if errors.Is(err, postgres.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Review not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete review", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Review deleted"}))
}

// --- Wishlist ---

func (a *API) GetWishlist(c *gin.Context) {
	items, err := a.Store.WishlistByUser(c.Request.Context(), a.principal(c).CustomerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get wishlist", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(items))
}

func (a *API) AddToWishlist(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "product_id", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	if err := a.Store.AddToWishlist(c.Request.Context(), a.principal(c).CustomerID, req.ProductID); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add to wishlist", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(map[string]string{"message": "Added to wishlist"}))
}

func (a *API) RemoveFromWishlist(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	err := a.Store.RemoveFromWishlist(c.Request.Context(), a.principal(c).CustomerID, productID)
	if err != nil {
		if errors.Is(err, postgres.ErrWishlistItemNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Item not in wishlist", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to remove from wishlist", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Removed from wishlist"}))
}

// --- Addresses ---

func (a *API) ListMyAddresses(c *gin.Context) {
	addresses, err := a.Store.AddressesByCustomer(c.Request.Context(), a.principal(c).CustomerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get addresses", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(addresses))
}

func (a *API) CreateAddress(c *gin.Context) {
	var req models.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}
	req.CustomerID = a.principal(c).CustomerID

	created, err := a.Store.CreateAddress(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create address", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(created))
}

// --- Support tickets ---

func (a *API) ListMyTickets(c *gin.Context) {
	tickets, err := a.Store.TicketsByUser(c.Request.Context(), a.principal(c).CustomerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get tickets", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(tickets))
}

func (a *API) CreateTicket(c *gin.Context) {
	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	reference := "TKT-" + uuid.NewString()[:8]
	ticket, err := a.Store.CreateTicket(c.Request.Context(), a.principal(c).CustomerID,
		reference, req.Subject, req.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create ticket", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(ticket))
}

func (a *API) GetTicket(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ticket, messages, err := a.Store.TicketByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Ticket not found", nil))
		return
	}

	principal := a.principal(c)
	if ticket.UserID != principal.CustomerID && !principal.IsAdmin() {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Ticket not found", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"ticket":   ticket,
		"messages": messages,
	}))
}

func (a *API) AddTicketMessage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required,min=1,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}
	ctx := c.Request.Context()
	principal := a.principal(c)

	ticket, _, err := a.Store.TicketByID(ctx, id)
	if err != nil || (ticket.UserID != principal.CustomerID && !principal.IsAdmin()) {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Ticket not found", nil))
		return
	}

	message, err := a.Store.AddTicketMessage(ctx, id, principal.CustomerID, req.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add message", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(message))
}
