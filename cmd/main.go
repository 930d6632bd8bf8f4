package main

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storefront-service/internal/api"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
	"storefront-service/internal/session"
	"storefront-service/migrations"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	if err := migrations.AutoMigrate(db, 3); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	paymentEvents := events.NewKafkaPublisher(config.NewKafkaWriter(config.PaymentsTopic))
	cartEvents := events.NewKafkaPublisher(config.NewKafkaWriter(config.CartsTopic))

	store := repository.NewStore(db)
	itemRepo := repository.NewItemRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	promoRepo := repository.NewPromoCodeRepository(db)
	cartRepo := repository.NewCartRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	sessions := session.NewStore(rdb, cfg.CheckoutSessionTTL)

	catalogService := service.NewCatalogService(itemRepo, discountRepo)
	cartService := service.NewCartService(store, itemRepo, cartRepo)
	pricingService := service.NewPricingService(cartRepo, catalogService, promoRepo)
	paymentService := service.NewPaymentService(store, cartRepo, paymentRepo, paymentEvents)
	sweepService := service.NewSweepService(store, itemRepo, cartRepo, cartEvents, cfg.CartTTL)
	clearanceService := service.NewClearanceService(itemRepo, discountRepo, nil)
	userService := service.NewUserService(customerRepo, sessions, cfg.JWTSecret)
	adminService := service.NewAdminService(store, itemRepo, brandRepo)

	// startup jobs
	if _, err := sweepService.SweepExpiredCarts(ctx); err != nil {
		log.Printf("Failed to sweep expired carts: %v", err)
	}
	if _, err := clearanceService.ScheduleClearanceDiscounts(ctx); err != nil {
		log.Printf("Failed to schedule clearance discounts: %v", err)
	}

	handler := api.NewHandler(catalogService, cartService, pricingService, paymentService, userService, adminService, sessions)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(api.RateLimiter(cfg.RateLimit, cfg.RateBurst))

	handler.Register(e, cfg.JWTSecret)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "storefront-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
