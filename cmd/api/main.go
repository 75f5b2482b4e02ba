package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campus-hub/support-service/internal/activity"
	httptransport "github.com/campus-hub/support-service/internal/api/http"
	"github.com/campus-hub/support-service/internal/api/http/handlers"
	"github.com/campus-hub/support-service/internal/auth"
	"github.com/campus-hub/support-service/internal/config"
	"github.com/campus-hub/support-service/internal/events"
	"github.com/campus-hub/support-service/internal/observability"
	"github.com/campus-hub/support-service/internal/persistence"
	"github.com/campus-hub/support-service/internal/repository"
	"github.com/campus-hub/support-service/internal/service"
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	recorder := activity.NewRecorder(activityRepo, logger, cfg.Activity.QueueSize)
	recorder.Start(dispatcher)
	defer recorder.Stop()

	validate := validator.New()
	ticketService := service.NewTicketService(ticketRepo, dispatcher, validate)
	chatService := service.NewChatService(messageRepo, ticketRepo, dispatcher)
	directoryService := service.NewDirectoryService(userRepo, rdb.Client, cfg.Redis.StaffTTL(), logger)
	authService := service.NewAuthService(cfg.Auth, userRepo, studentRepo)
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo, studentRepo)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Chat:           handlers.NewChatHandler(chatService),
		Users:          handlers.NewUsersHandler(directoryService),
		Auth:           handlers.NewAuthHandler(authService),
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
