// internal/app/router.go
package app

import (
	agentHandler "agentmarket-service/internal/handlers/agent"
	authHandler "agentmarket-service/internal/handlers/auth"
	marketplaceHandler "agentmarket-service/internal/handlers/marketplace"
	notifyHandler "agentmarket-service/internal/handlers/notification"
	purchaseHandler "agentmarket-service/internal/handlers/purchase"
	reviewHandler "agentmarket-service/internal/handlers/review"
	sellerHandler "agentmarket-service/internal/handlers/seller"
	subscriptionHandler "agentmarket-service/internal/handlers/subscription"
	webhookHandler "agentmarket-service/internal/handlers/webhook"
	"agentmarket-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	MarketplaceHandler  *marketplaceHandler.MarketplaceHandler
	AgentHandler        *agentHandler.AgentHandler
	PurchaseHandler     *purchaseHandler.PurchaseHandler
	ReviewHandler       *reviewHandler.ReviewHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	SellerHandler       *sellerHandler.SellerHandler
	NotifHandler        *notifyHandler.NotificationHandler
	WebhookHandler      *webhookHandler.PaymentWebhookHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/me", h.AuthHandler.GetMe)
		authProtected.GET("/role", h.AuthHandler.GetRole)
	}

	// ==================== Public Marketplace ====================
	agentsPublic := api.Group("/agents")
	{
		agentsPublic.GET("", h.MarketplaceHandler.ListAgents)
		agentsPublic.GET("/:id", h.MarketplaceHandler.GetAgent)
		agentsPublic.GET("/:id/reviews", h.MarketplaceHandler.ListAgentReviews)
	}
	api.GET("/categories", h.MarketplaceHandler.ListCategories)

	// ==================== Purchases & Reviews ====================
	agentsProtected := api.Group("/agents")
	agentsProtected.Use(h.AuthMiddleware.Auth())
	{
		agentsProtected.POST("/:id/purchase", h.PurchaseHandler.Purchase)
		agentsProtected.POST("/:id/reviews", h.ReviewHandler.Submit)
	}

	reviews := api.Group("/reviews")
	reviews.Use(h.AuthMiddleware.Auth())
	{
		reviews.GET("/eligibility", h.ReviewHandler.Eligibility)
	}

	purchases := api.Group("/purchases")
	purchases.Use(h.AuthMiddleware.Auth())
	{
		purchases.GET("", h.PurchaseHandler.ListMine)
	}

	// ==================== Subscription ====================
	subscription := api.Group("/subscription")
	subscription.Use(h.AuthMiddleware.Auth())
	{
		subscription.GET("", h.SubscriptionHandler.Get)
		subscription.GET("/access", h.SubscriptionHandler.Access)
	}

	// ==================== Seller Applications ====================
	sellerApplications := api.Group("/seller/applications")
	sellerApplications.Use(h.AuthMiddleware.Auth())
	{
		sellerApplications.POST("", h.SellerHandler.Apply)
		sellerApplications.GET("", h.SellerHandler.ListOwn)
	}

	// ==================== Seller Agent Management ====================
	sellerAgents := api.Group("/seller/agents")
	sellerAgents.Use(h.AuthMiddleware.SellerOnly()...)
	{
		sellerAgents.POST("", h.AgentHandler.CreateDraft)
		sellerAgents.GET("", h.AgentHandler.ListMine)
		sellerAgents.GET("/:id", h.AgentHandler.GetMine)
		sellerAgents.PUT("/:id", h.AgentHandler.UpdateDraft)
		sellerAgents.POST("/:id/submit", h.AgentHandler.SubmitForReview)
		sellerAgents.POST("/:id/versions", h.AgentHandler.NewVersion)
		sellerAgents.POST("/:id/archive", h.AgentHandler.Archive)
	}

	// ==================== Notifications ====================
	notifications := api.Group("/notifications")
	notifications.Use(h.AuthMiddleware.Auth())
	{
		notifications.GET("", h.NotifHandler.List)
		notifications.GET("/count/unread", h.NotifHandler.UnreadCount)
		notifications.PUT("/:id/read", h.NotifHandler.MarkRead)
	}

	// ==================== Webhooks ====================
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/payments", h.WebhookHandler.HandleEvent)
	}

	// ==================== ADMIN ROUTES ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		// Agent moderation
		adminAgents := admin.Group("/agents")
		{
			adminAgents.GET("/review-queue", h.AgentHandler.ReviewQueue)
			adminAgents.POST("/:id/approve", h.AgentHandler.Approve)
			adminAgents.POST("/:id/reject", h.AgentHandler.Reject)
		}

		// Seller application review
		adminApplications := admin.Group("/seller-applications")
		{
			adminApplications.GET("", h.SellerHandler.ListPending)
			adminApplications.POST("/:id/approve", h.SellerHandler.Approve)
			adminApplications.POST("/:id/reject", h.SellerHandler.Reject)
		}

		// Subscription administration
		admin.POST("/subscriptions/legacy-grace", h.SubscriptionHandler.GrantLegacyGrace)
	}
}
