// Package routes wires repositories, services and handlers onto the
// fiber app and applies the role gates per endpoint.
package routes

import (
	"campuspay/internal/config"
	"campuspay/internal/handlers"
	"campuspay/internal/middleware"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/auth"
	"campuspay/internal/services/catalog"
	"campuspay/internal/services/ledger"
	"campuspay/internal/services/payment"
	"campuspay/internal/services/settlement"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)
	catalogRepo := repositories.NewCatalogRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)

	jwtSecret := config.GetEnv("JWT_SECRET", "campuspay")
	refreshSecret := config.GetEnv("REFRESH_JWT_SECRET", "campuspay-refresh")

	authService := auth.NewService(userRepo, jwtSecret, refreshSecret)
	catalogService := catalog.NewService(catalogRepo, userRepo)

	provider := payment.NewStripeProvider(
		config.GetEnv("STRIPE_SECRET_KEY", ""),
		config.GetEnv("PAYMENT_CURRENCY", "eur"),
	)
	engine := ledger.NewEngine(ledgerRepo)
	settlementService := settlement.NewService(engine, provider, repositories.CacheService)

	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(settlementService)
	shopHandler := handlers.NewShopHandler(catalogService)
	productHandler := handlers.NewProductHandler(catalogService, settlementService)

	authMw := middleware.NewAuthMiddleware(jwtSecret)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/refresh", authHandler.Refresh)
	api.Post("/auth/logout", authHandler.Logout)

	// Everything below requires a valid token
	api.Use(authMw.Handler)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", middleware.RequireRole(models.RoleAdmin), authHandler.Register)
	authRoutes.Post("/import", middleware.RequireRole(models.RoleAdmin), authHandler.BatchImport)
	authRoutes.Post("/password", authHandler.ChangePassword)
	authRoutes.Post("/password/reset", middleware.RequireRole(models.RoleAdmin), authHandler.ResetPassword)

	// Every wallet route requires at least the USER rank; a token whose
	// role maps to no known rank is denied here, not deeper in.
	wallet := api.Group("/wallet", middleware.RequireRole(models.RoleUser))
	wallet.Get("/balance", walletHandler.GetBalance)
	wallet.Get("/history", walletHandler.History)
	wallet.Get("/purchases", walletHandler.Purchases)
	wallet.Post("/topup", walletHandler.TopUp)
	wallet.Post("/topup/verify", walletHandler.VerifyTopUp)
	wallet.Post("/transfer", walletHandler.Transfer)
	wallet.Post("/manual-topup", middleware.RequireRole(models.RoleTreasurer), walletHandler.ManualTopUp)
	wallet.Post("/user-balance", middleware.RequireRole(models.RoleTreasurer), walletHandler.GetUserBalance)

	shop := api.Group("/shop")
	shop.Get("/", shopHandler.GetAllShops)
	shop.Post("/", middleware.RequireRole(models.RoleTreasurer), shopHandler.CreateShop)
	shop.Put("/", middleware.RequireRole(models.RoleTreasurer), shopHandler.UpdateShop)
	shop.Delete("/", middleware.RequireRole(models.RoleTreasurer), shopHandler.DeleteShop)
	shop.Post("/export", middleware.RequireRole(models.RoleTreasurer), shopHandler.ExportOperations)
	shop.Post("/category", middleware.RequireRole(models.RoleOwner), shopHandler.CreateCategory)
	shop.Post("/categories", shopHandler.GetCategories)
	shop.Put("/category", middleware.RequireRole(models.RoleOwner), shopHandler.UpdateCategory)
	shop.Delete("/category", middleware.RequireRole(models.RoleOwner), shopHandler.DeleteCategory)

	product := api.Group("/product")
	product.Post("/", middleware.RequireRole(models.RoleOwner), productHandler.CreateProduct)
	product.Post("/list", productHandler.GetProductsByShop)
	product.Put("/", middleware.RequireRole(models.RoleOwner), productHandler.UpdateProduct)
	product.Delete("/", middleware.RequireRole(models.RoleOwner), productHandler.DeleteProduct)
	product.Post("/buy", middleware.RequireRole(models.RoleUser), productHandler.Buy)
	product.Post("/manual-buy", middleware.RequireRole(models.RoleTreasurer), productHandler.ManualBuy)
}
