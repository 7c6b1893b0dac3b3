package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/haki-platform/haki-backend/internal/ai"
	"github.com/haki-platform/haki-backend/internal/config"
	"github.com/haki-platform/haki-backend/internal/db"
	httpHandlers "github.com/haki-platform/haki-backend/internal/http/handlers"
	httpRouter "github.com/haki-platform/haki-backend/internal/http/router"
	"github.com/haki-platform/haki-backend/internal/ledger"
	"github.com/haki-platform/haki-backend/internal/logger"
	"github.com/haki-platform/haki-backend/internal/repository"
	"github.com/haki-platform/haki-backend/internal/service"
	"github.com/haki-platform/haki-backend/internal/storage"
	"github.com/haki-platform/haki-backend/internal/ws"
)

// completionAwardPoints is the reputation grant for finishing a bounty.
const completionAwardPoints = 10

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: failed to load configuration: %v", err)
	}

	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: failed to connect to database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	documentStorage, err := storage.NewDocumentStorage(cfg.DocumentsPath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: failed to prepare document storage: %v", err)
	}

	// Repositories.
	userRepo := repository.NewUserRepository(dbConn)
	bountyRepo := repository.NewBountyRepository(dbConn)
	escrowRepo := repository.NewEscrowRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	documentRepo := repository.NewDocumentRepository(dbConn)

	// The ledger backend is chosen once here. Everything downstream holds the
	// interfaces and never asks which implementation it got.
	var escrowLedger service.EscrowLedger
	var tokenLedger service.TokenLedger
	var auditLedger service.AuditLedger
	if cfg.EnableBlockchain {
		hederaClient, err := ledger.NewClient(cfg)
		if err != nil {
			log.Fatalf("main: failed to initialize hedera client: %v", err)
		}
		defer hederaClient.Close()
		escrowLedger = hederaClient
		tokenLedger = hederaClient
		auditLedger = hederaClient
	} else {
		noop := ledger.NewNoop()
		escrowLedger = noop
		tokenLedger = noop
		auditLedger = noop
		log.Printf("main: blockchain disabled, using local transaction ids")
	}

	mirror := ledger.NewMirrorClient(cfg.MirrorBaseURL, cfg.HederaTokenID)

	// Websockets.
	hub := ws.NewHub()
	go hub.Run()

	// Services.
	cache := service.NewCacheService()
	notificationService := service.NewNotificationService(notificationRepo, hub)
	authService := service.NewAuthService(userRepo, tokenManager)
	bountyService := service.NewBountyService(bountyRepo, userRepo, notificationService)
	reputationService := service.NewReputationService(walletRepo, userRepo, tokenLedger, walletRepo, notificationService)
	escrowService := service.NewEscrowService(escrowRepo, bountyRepo, userRepo, escrowLedger, walletRepo, notificationService, reputationService, completionAwardPoints)
	walletService := service.NewWalletService(walletRepo, userRepo, mirror, cache)
	documentService := service.NewDocumentService(documentRepo, bountyRepo, documentStorage)

	var aiService *service.AIService
	if cfg.EnableAI {
		generator, err := ai.NewGeminiGenerator(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.AITimeout)
		if err != nil {
			log.Fatalf("main: failed to initialize gemini client: %v", err)
		}
		aiService = service.NewAIService(ai.NewClient(generator), bountyRepo, userRepo, documentRepo, documentStorage, auditLedger, cache, notificationService)
	} else {
		log.Printf("main: AI features disabled")
	}

	// HTTP handlers.
	authHandler := httpHandlers.NewAuthHandler(authService)
	bountyHandler := httpHandlers.NewBountyHandler(bountyService, escrowService)
	escrowHandler := httpHandlers.NewEscrowHandler(escrowService)
	walletHandler := httpHandlers.NewWalletHandler(walletService)
	reputationHandler := httpHandlers.NewReputationHandler(reputationService)
	aiHandler := httpHandlers.NewAIHandler(aiService)
	documentHandler := httpHandlers.NewDocumentHandler(documentService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, cfg.EnableBlockchain, cfg.EnableAI)

	engine := httpRouter.SetupRouter(cfg,
		authHandler, bountyHandler, escrowHandler, walletHandler,
		reputationHandler, aiHandler, documentHandler, notificationHandler,
		wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: failed to close database: %v", err)
	}
}
