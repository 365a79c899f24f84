package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/handlers"
	"github.com/pawme/pawme-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	referralHandler *handlers.ReferralHandler,
	rewardHandler *handlers.RewardHandler,
	vipHandler *handlers.VipHandler,
	socialHandler *handlers.SocialHandler,
	adminHandler *handlers.AdminHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes. JWT middleware is applied per-route so it never
	// touches the public group above.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Post("/auth/verify-email", middleware.JWTProtected(cfg), authHandler.VerifyEmail)
	api.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Patch("/me", middleware.JWTProtected(cfg), authHandler.UpdateProfile)

	// Referrals and rewards (protected)
	api.Get("/referrals/stats", middleware.JWTProtected(cfg), referralHandler.Stats)
	api.Get("/rewards/catalog", rewardHandler.Catalog)
	api.Post("/rewards/redeem", middleware.JWTProtected(cfg), rewardHandler.Redeem)
	api.Get("/rewards/mine", middleware.JWTProtected(cfg), rewardHandler.MyRewards)

	// VIP deposit flow (protected)
	api.Get("/vip/status", middleware.JWTProtected(cfg), vipHandler.Status)
	api.Post("/vip/deposit-intent", middleware.JWTProtected(cfg), vipHandler.CreateDepositIntent)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/broadcast", adminHandler.Broadcast)
	admin.Get("/templates", adminHandler.ListTemplates)
	admin.Get("/templates/:id", adminHandler.GetTemplate)
	admin.Put("/templates/:id", adminHandler.UpsertTemplate)
	admin.Delete("/templates/:id", adminHandler.DeleteTemplate)
	admin.Post("/templates/preview", adminHandler.PreviewTemplate)
	admin.Get("/rewards/pending", adminHandler.PendingRewards)
	admin.Post("/rewards/ship", adminHandler.MarkShipped)
	admin.Post("/points/adjust", adminHandler.AdjustPoints)
	admin.Get("/settings", adminHandler.GetSettings)
	admin.Put("/settings", adminHandler.UpdateSettings)
	admin.Post("/tiers/image", adminHandler.UploadTierImage)
	admin.Get("/metrics", adminHandler.Metrics)

	// Social connectors live on the admin dashboard too
	admin.Get("/social", socialHandler.Connections)
	admin.Get("/social/:platform/auth-url", socialHandler.AuthURL)
	admin.Post("/social/:platform/refresh", socialHandler.RefreshStats)
	admin.Delete("/social/:platform", socialHandler.Disconnect)

	// OAuth callback is hit by the provider redirect, so no JWT; the state
	// token issued at auth-url time gates it instead.
	api.Get("/social/:platform/callback", socialHandler.Callback)

	// Webhooks — signature-verified, no JWT
	webhooks := api.Group("/webhooks")
	webhooks.Post("/stripe", webhookHandler.Stripe)
}
