// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"agentmarket-service/internal/config"
	"agentmarket-service/internal/db"
	agentHandler "agentmarket-service/internal/handlers/agent"
	authHandler "agentmarket-service/internal/handlers/auth"
	marketplaceHandler "agentmarket-service/internal/handlers/marketplace"
	notifyH "agentmarket-service/internal/handlers/notification"
	purchaseHandler "agentmarket-service/internal/handlers/purchase"
	reviewHandler "agentmarket-service/internal/handlers/review"
	sellerHandler "agentmarket-service/internal/handlers/seller"
	subscriptionHandler "agentmarket-service/internal/handlers/subscription"
	webhookHandler "agentmarket-service/internal/handlers/webhook"
	"agentmarket-service/internal/middleware"
	"agentmarket-service/internal/migrate"
	"agentmarket-service/internal/pkg/jwt"
	"agentmarket-service/internal/pkg/rolecache"
	"agentmarket-service/internal/repository/postgres"
	agentUsecase "agentmarket-service/internal/service/agent"
	authUsecase "agentmarket-service/internal/service/auth"
	notifyUsecase "agentmarket-service/internal/service/notification"
	purchaseUsecase "agentmarket-service/internal/service/purchase"
	reviewUsecase "agentmarket-service/internal/service/review"
	sellerUsecase "agentmarket-service/internal/service/seller"
	subscriptionUsecase "agentmarket-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg        config.AppConfig
	engine     *gin.Engine
	logger     *zap.Logger
	httpServer *http.Server
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Migrations -----
	if err := migrate.Up(ctx, s.cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Role cache -----
	roleCache := rolecache.New(redisClient)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(dbWrapper)
	categoryRepo := postgres.NewCategoryRepository(dbWrapper)
	agentRepo := postgres.NewAgentRepository(dbWrapper)
	purchaseRepo := postgres.NewPurchaseRepository(dbWrapper)
	reviewRepo := postgres.NewReviewRepository(dbWrapper)
	subscriptionRepo := postgres.NewSubscriptionRepository(dbWrapper)
	applicationRepo := postgres.NewSellerApplicationRepository(dbWrapper)
	notifRepo := postgres.NewNotificationRepository(dbWrapper)

	// ----- Services -----
	notifService := notifyUsecase.NewNotificationService(notifRepo, logger)
	authService := authUsecase.NewAuthService(userRepo, jwtManager, roleCache, logger)
	agentService := agentUsecase.NewAgentService(agentRepo, categoryRepo, notifService, dbWrapper, logger)
	purchaseService := purchaseUsecase.NewPurchaseService(purchaseRepo, agentRepo, notifService, dbWrapper, logger)
	reviewService := reviewUsecase.NewReviewService(reviewRepo, purchaseRepo, agentRepo, logger)
	subscriptionService := subscriptionUsecase.NewSubscriptionService(subscriptionRepo, logger)
	sellerService := sellerUsecase.NewSellerService(applicationRepo, userRepo, notifService, roleCache, dbWrapper, logger)

	// ----- Bootstrap admin -----
	if s.cfg.AdminEmail != "" && s.cfg.AdminPassword != "" {
		if err := authService.EnsureAdminExists(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword, s.cfg.AdminName); err != nil {
			logger.Error("failed to ensure admin exists", zap.Error(err))
		}
	} else {
		logger.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	marketplaceHandlerInst := marketplaceHandler.NewMarketplaceHandler(agentService, reviewService, categoryRepo)
	agentHandlerInst := agentHandler.NewAgentHandler(agentService, logger)
	purchaseHandlerInst := purchaseHandler.NewPurchaseHandler(purchaseService, logger)
	reviewHandlerInst := reviewHandler.NewReviewHandler(reviewService, logger)
	subscriptionHandlerInst := subscriptionHandler.NewSubscriptionHandler(subscriptionService, logger)
	sellerHandlerInst := sellerHandler.NewSellerHandler(sellerService, logger)
	notifHandlerInst := notifyH.NewNotificationHandler(notifService, logger)
	webhookHandlerInst := webhookHandler.NewPaymentWebhookHandler(purchaseService, subscriptionService, s.cfg.WebhookSecret, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:         authHandlerInst,
		MarketplaceHandler:  marketplaceHandlerInst,
		AgentHandler:        agentHandlerInst,
		PurchaseHandler:     purchaseHandlerInst,
		ReviewHandler:       reviewHandlerInst,
		SubscriptionHandler: subscriptionHandlerInst,
		SellerHandler:       sellerHandlerInst,
		NotifHandler:        notifHandlerInst,
		WebhookHandler:      webhookHandlerInst,
		AuthMiddleware:      authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	s.httpServer = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting new connections and drains in-flight requests
// until the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
