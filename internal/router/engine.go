package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lumenshop/api/pkg/ai"
	"github.com/lumenshop/api/pkg/checkout"
	"github.com/lumenshop/api/pkg/global"
	"github.com/lumenshop/api/pkg/payments"
	"github.com/lumenshop/api/pkg/postgres"
	"github.com/lumenshop/api/pkg/redis"
)

// API bundles every resource handle the handlers need. Constructed once in
// main; no package-level mutable state.
type API struct {
	Store    *postgres.Store
	Sessions *redis.Sessions
	Cache    *redis.ProductCache
	Checkout *checkout.Service
	Payments *payments.Client
	Reports  *ai.Reporter
}

func NewEngine() *gin.Engine {
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()

	origins := strings.Split(global.GetEnvOrDefault(
		"CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return engine
}
