package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/repair-sla-service/internal/api/http"
	"github.com/spec-kit/repair-sla-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-sla-service/internal/auth"
	"github.com/spec-kit/repair-sla-service/internal/config"
	"github.com/spec-kit/repair-sla-service/internal/events"
	"github.com/spec-kit/repair-sla-service/internal/observability"
	"github.com/spec-kit/repair-sla-service/internal/persistence"
	"github.com/spec-kit/repair-sla-service/internal/repository"
	"github.com/spec-kit/repair-sla-service/internal/service"
	"github.com/spec-kit/repair-sla-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	shopRepo := repository.NewShopRepository(pool)
	policyRepo := repository.NewSLAPolicyRepository(pool)
	statusRepo := repository.NewCaseStatusRepository(pool)
	caseRepo := repository.NewRepairCaseRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	var claimRepo repository.AlertClaimRepository
	if redis.Enabled() {
		claimRepo = repository.NewRedisAlertClaimRepository(redis.Client)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	registry := service.NewRegistryService(policyRepo, statusRepo, cfg.Alert.ActiveLegacyStatuses())
	scheduler := service.NewAlertScheduler(cfg.Alert, service.AlertSchedulerDependencies{
		Shops:         shopRepo,
		Cases:         caseRepo,
		Registry:      registry,
		Notifications: notificationRepo,
		Claims:        claimRepo,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})
	caseSLAService := service.NewCaseSLAService(caseRepo, registry, nil)
	inboxService := service.NewAlertInboxService(notificationRepo)

	alertCron, err := worker.StartAlertWorker(ctx, cfg.Alert, scheduler, logger)
	if err != nil {
		logger.Fatal("failed to start alert worker", zap.Error(err))
	}

	tokens := auth.NewTokenVerifier(cfg.Auth.JWTSecret)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dependencies := map[string]handlers.Pinger{"postgres": pg}
	if redis.Enabled() {
		dependencies["redis"] = redis
	}
	routes := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Alerts:         handlers.NewAlertsHandler(scheduler),
		CaseSLA:        handlers.NewCaseSLAHandler(caseSLAService),
		Notifications:  handlers.NewNotificationsHandler(inboxService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		JobKeyHash:     cfg.Auth.JobKeyHash,
	}
	if cfg.Metrics.Enabled {
		routes.Metrics = metrics
		routes.MetricsPath = cfg.Metrics.Path
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if alertCron != nil {
		stopCtx := alertCron.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(cfg.Alert.RunTimeout() + 5*time.Second):
			logger.Warn("alert run still in progress at shutdown")
		}
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
