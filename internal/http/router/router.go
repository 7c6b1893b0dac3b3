package router

import (
	"github.com/gin-gonic/gin"

	"github.com/haki-platform/haki-backend/internal/config"
	"github.com/haki-platform/haki-backend/internal/http/handlers"
	"github.com/haki-platform/haki-backend/internal/http/middleware"
	"github.com/haki-platform/haki-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	bountyHandler *handlers.BountyHandler,
	escrowHandler *handlers.EscrowHandler,
	walletHandler *handlers.WalletHandler,
	reputationHandler *handlers.ReputationHandler,
	aiHandler *handlers.AIHandler,
	documentHandler *handlers.DocumentHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Login and registration carry a tighter rate limit than the rest of the
	// API.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.GET("/me", authHandler.Me)
		protectedAuth.PUT("/me", authHandler.UpdateProfile)
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
	}

	// Public reads.
	api.GET("/bounties", bountyHandler.List)
	api.GET("/bounties/:id", middleware.UUIDValidator("id"), bountyHandler.Get)
	api.GET("/ws", wsHandler.Handle)
	api.GET("/tokens/reputation", walletHandler.TokenInfo)
	api.GET("/explorer/accounts/:account", walletHandler.ExplorerAccount)
	api.GET("/explorer/transactions/:txId", walletHandler.ExplorerTransaction)
	api.GET("/reputation/:lawyerId", middleware.UUIDValidator("lawyerId"), reputationHandler.TotalPoints)
	api.GET("/reputation/:lawyerId/awards", middleware.UUIDValidator("lawyerId"), reputationHandler.ListAwards)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/bounties", middleware.RequireRole("ngo"), bountyHandler.Create)
		protected.PUT("/bounties/:id", middleware.UUIDValidator("id"), bountyHandler.Update)
		protected.POST("/bounties/:id/assign", middleware.UUIDValidator("id"), bountyHandler.Assign)
		protected.DELETE("/bounties/:id", middleware.UUIDValidator("id"), bountyHandler.Delete)

		protected.POST("/escrows", middleware.RequireRole("ngo"), escrowHandler.Create)
		protected.GET("/escrows", escrowHandler.ListMine)
		protected.GET("/escrows/:id", middleware.UUIDValidator("id"), escrowHandler.Get)
		protected.PATCH("/escrows/:id/milestones/:milestoneId",
			middleware.UUIDValidator("id"), middleware.UUIDValidator("milestoneId"),
			escrowHandler.AdvanceMilestone)
		protected.POST("/escrows/:id/milestones/:milestoneId/release",
			middleware.UUIDValidator("id"), middleware.UUIDValidator("milestoneId"),
			escrowHandler.ReleaseMilestone)
		protected.POST("/escrows/:id/refund", middleware.UUIDValidator("id"), escrowHandler.Refund)

		protected.GET("/wallet/balance", walletHandler.Balance)
		protected.GET("/wallet/transactions", walletHandler.Transactions)

		protected.POST("/bounties/:id/documents", middleware.UUIDValidator("id"), documentHandler.Upload)
		protected.GET("/bounties/:id/documents", middleware.UUIDValidator("id"), documentHandler.List)
		protected.GET("/documents/:id", middleware.UUIDValidator("id"), documentHandler.Get)
		protected.GET("/documents/:id/content", middleware.UUIDValidator("id"), documentHandler.Download)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread", notificationHandler.CountUnread)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	// Model calls are expensive, so AI routes get their own limiter.
	aiGroup := api.Group("/ai")
	aiGroup.Use(middleware.AuthMiddleware(tokenManager))
	aiGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		aiGroup.POST("/match", middleware.RequireRole("ngo"), aiHandler.MatchLawyers)
		aiGroup.POST("/documents/:id/analyze", middleware.UUIDValidator("id"), aiHandler.AnalyzeDocument)
		aiGroup.GET("/documents/:id/analysis", middleware.UUIDValidator("id"), aiHandler.LatestAnalysis)
	}

	return r
}
