package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/lumenshop/api/internal/router"
	"github.com/lumenshop/api/pkg/ai"
	"github.com/lumenshop/api/pkg/checkout"
	"github.com/lumenshop/api/pkg/global"
	"github.com/lumenshop/api/pkg/payments"
	"github.com/lumenshop/api/pkg/postgres"
	"github.com/lumenshop/api/pkg/redis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: no .env file found, using environment variables")
	}

	store, err := postgres.NewStore(global.GetPostgresDSN())
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer store.Close()

	if err := store.RunMigrations(global.GetMigrationsDir()); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient()
	paymentClient := payments.NewClient()

	api := &router.API{
		Store:    store,
		Sessions: redis.NewSessions(redisClient),
		Cache:    redis.NewProductCache(redisClient),
		Checkout: checkout.NewService(store, paymentClient),
		Payments: paymentClient,
		Reports:  ai.NewReporter(),
	}

	engine := router.NewEngine()
	api.RegisterRoutes(engine)

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("starting server on port %s", port)
	if err := engine.Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
