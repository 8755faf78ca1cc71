package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/advisor"
	httptransport "github.com/spec-kit/maintenance-service/internal/api/http"
	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/observability"
	"github.com/spec-kit/maintenance-service/internal/persistence"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/service"
	"github.com/spec-kit/maintenance-service/internal/worker"
	"github.com/spec-kit/maintenance-service/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	assetRepo := repository.NewAssetRepository(pool)
	partRepo := repository.NewPartRepository(pool)
	txRepo := repository.NewInventoryTransactionRepository(pool)
	schemaRepo := repository.NewFormSchemaRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)
	configRepo := repository.NewSystemConfigRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	sites := persistence.NewSiteSessionStore(redis, cfg.Redis.SiteCheckTTL())

	permissionService := service.NewPermissionService(permissionRepo, dispatcher)
	if err := permissionService.Reload(ctx); err != nil {
		logger.Fatal("failed to load permission matrix", zap.Error(err))
	}

	configService := service.NewConfigService(configRepo, redis, cfg.Redis.ConfigCacheTTL(), permissionService, dispatcher, logger)
	schemaService := service.NewSchemaService(schemaRepo, permissionService, dispatcher)
	inventoryService := service.NewInventoryService(partRepo, txRepo, permissionService, dispatcher, logger)
	assetService := service.NewAssetService(assetRepo, ticketRepo)

	engine := workflow.NewEngine(workflow.Dependencies{
		Gate:    permissionService,
		Schemas: schemaService,
		Parts:   inventoryService,
		Sites:   sites,
	})

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		AssetRepo:  assetRepo,
		Schemas:    schemaService,
		Configs:    configService,
		Engine:     engine,
		Sites:      sites,
		Parts:      inventoryService,
		Gate:       permissionService,
		Suggester:  advisor.Keyword{},
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	userService := service.NewUserService(userRepo, tokens, permissionService, cfg.Auth.BcryptCost)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Inventory:      handlers.NewInventoryHandler(inventoryService),
		Assets:         handlers.NewAssetsHandler(assetService),
		Admin:          handlers.NewAdminHandler(schemaService, permissionService, configService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
