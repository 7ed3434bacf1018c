package router

import "github.com/gin-gonic/gin"

func (a *API) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api")
	{
		api.GET("/health", a.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", a.Register)
			auth.POST("/login", a.Login)
			auth.POST("/logout", a.AuthRequired(), a.Logout)
			auth.GET("/me", a.AuthRequired(), a.Me)
		}

		products := api.Group("/products")
		{
			products.GET("/", a.ListProducts)
			products.GET("/:id", a.GetProduct)
			products.GET("/:id/reviews", a.ListReviews)
			products.POST("/:id/reviews", a.AuthRequired(), a.CreateReview)
		}

		api.GET("/categories", a.ListCategories)
		api.GET("/banners", a.ListBanners)
		api.GET("/shipping-options", a.ListShippingOptions)
		api.DELETE("/reviews/:id", a.AuthRequired(), a.DeleteReview)

		cart := api.Group("/cart", a.AuthRequired())
		{
			cart.GET("/", a.GetCart)
			cart.POST("/items", a.AddToCart)
			cart.PUT("/items/:productId", a.UpdateCartItem)
			cart.DELETE("/items/:productId", a.RemoveFromCart)
			cart.DELETE("/", a.ClearCart)
		}

		co := api.Group("/checkout")
		{
			co.POST("/", a.AuthRequired(), a.PlaceOrder)
			co.POST("/session", a.AuthRequired(), a.CreatePaymentSession)
			co.POST("/verify", a.AuthRequired(), a.VerifyPayment)
			// Webhook carries its own authentication (provider signature).
			co.POST("/webhook", a.PaymentWebhook)
		}

		api.POST("/coupons/preview", a.AuthRequired(), a.PreviewCoupon)

		addresses := api.Group("/addresses", a.AuthRequired())
		{
			addresses.GET("/", a.ListMyAddresses)
			addresses.POST("/", a.CreateAddress)
		}

		orders := api.Group("/orders", a.AuthRequired())
		{
			orders.GET("/", a.ListMyOrders)
			orders.GET("/:id", a.GetMyOrder)
			orders.POST("/:id/cancel", a.CancelMyOrder)
		}

		wishlist := api.Group("/wishlist", a.AuthRequired())
		{
			wishlist.GET("/", a.GetWishlist)
			wishlist.POST("/", a.AddToWishlist)
			wishlist.DELETE("/:productId", a.RemoveFromWishlist)
		}

		tickets := api.Group("/tickets", a.AuthRequired())
		{
			tickets.GET("/", a.ListMyTickets)
			tickets.POST("/", a.CreateTicket)
			tickets.GET("/:id", a.GetTicket)
			tickets.POST("/:id/messages", a.AddTicketMessage)
		}

		admin := api.Group("/admin", a.AuthRequired(), a.AdminRequired(), a.AuditTrail())
		{
			admin.GET("/products", a.AdminListProducts)
			admin.POST("/products", a.AdminCreateProduct)
			admin.PUT("/products/:id", a.AdminUpdateProduct)
			admin.DELETE("/products/:id", a.AdminDeleteProduct)
			admin.POST("/products/:id/restock", a.AdminRestockProduct)

			admin.GET("/orders", a.AdminListOrders)
			admin.GET("/orders/:id", a.AdminGetOrder)
			admin.PUT("/orders/:id/status", a.AdminUpdateOrderStatus)

			admin.GET("/customers", a.AdminListCustomers)
			admin.PUT("/customers/:id/block", a.AdminBlockCustomer)

			admin.GET("/coupons", a.AdminListCoupons)
			admin.POST("/coupons", a.AdminCreateCoupon)
			admin.DELETE("/coupons/:id", a.AdminDeleteCoupon)

			admin.GET("/banners", a.AdminListBanners)
			admin.POST("/banners", a.AdminCreateBanner)
			admin.DELETE("/banners/:id", a.AdminDeleteBanner)

			admin.GET("/tickets", a.AdminListTickets)
			admin.PUT("/tickets/:id/status", a.AdminSetTicketStatus)

			admin.GET("/analytics/sales", a.AdminSalesAnalytics)
			admin.GET("/analytics/top-products", a.AdminTopProducts)
			admin.GET("/analytics/ai/sales-report", a.AdminAISalesReport)

			admin.PUT("/settings/tax-rate", a.AdminSetTaxRate)

			admin.GET("/audit", a.AdminListAuditLogs)
		}
	}
}
