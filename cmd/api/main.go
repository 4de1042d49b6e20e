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

	httptransport "github.com/spec-kit/volunteer-hub/internal/api/http"
	"github.com/spec-kit/volunteer-hub/internal/api/http/handlers"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/notify"
	"github.com/spec-kit/volunteer-hub/internal/observability"
	"github.com/spec-kit/volunteer-hub/internal/persistence"
	"github.com/spec-kit/volunteer-hub/internal/queue"
	"github.com/spec-kit/volunteer-hub/internal/service"
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

	store, pg, err := persistence.OpenStore(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		sink   notify.Sink = notify.NewLogSink(logger)
		emails *queue.Queue
	)
	if cfg.Notification.QueueEnabled && redis.Available() {
		emails = redis.EmailQueue(cfg.Notification.WorkerMaxRetries, logger)
		sink = notify.NewQueueSink(emails)
		logger.Info("notifications routed through redis queue")
	} else {
		logger.Info("notifications written to log")
	}

	dispatcher := events.NewAsyncDispatcher(cfg.Dispatcher.Workers, cfg.Dispatcher.Buffer, logger)
	defer dispatcher.Close()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	organizationService := service.NewOrganizationService(*cfg, service.OrganizationDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	opportunityService := service.NewOpportunityService(service.OpportunityDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	signUpService := service.NewSignUpService(cfg.SignUp, service.SignUpDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Recorder:   metrics,
		Logger:     logger,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		Store:   store,
		SignUps: signUpService,
		Logger:  logger,
	})
	service.NewNotificationService(dispatcher, sink, logger, cfg.Notification).RegisterHandlers()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dependencies := map[string]handlers.Pinger{"store": store}
	if cfg.Notification.QueueEnabled {
		dependencies["redis"] = redis
	}
	health := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, dependencies)
	if emails != nil {
		health.WithEmailQueue(emails)
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         health,
		Auth:           handlers.NewAuthHandler(authService),
		Opportunities:  handlers.NewOpportunitiesHandler(opportunityService),
		SignUps:        handlers.NewSignUpsHandler(signUpService),
		Organizations:  handlers.NewOrganizationsHandler(organizationService),
		Dashboards:     handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.Tokens(), authService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
