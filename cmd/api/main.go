package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/fixtrack/fixtrack/internal/api/http"
	"github.com/fixtrack/fixtrack/internal/api/http/handlers"
	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/config"
	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/events"
	"github.com/fixtrack/fixtrack/internal/observability"
	"github.com/fixtrack/fixtrack/internal/persistence"
	"github.com/fixtrack/fixtrack/internal/repository"
	"github.com/fixtrack/fixtrack/internal/service"
	"github.com/fixtrack/fixtrack/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	supportRepo := repository.NewSupportRepository(pool)
	extraTimeRepo := repository.NewExtraTimeRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)

	if err := bootstrapAdmin(ctx, cfg.Auth, userRepo, logger); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()

	experienceService := service.NewExperienceService(userRepo, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		UserRepo:    userRepo,
		SupportRepo: supportRepo,
		Experience:  experienceService,
		Tx:          pg,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	supportService := service.NewSupportService(service.SupportDependencies{
		SupportRepo: supportRepo,
		Experience:  experienceService,
		Tx:          pg,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	extraTimeService := service.NewExtraTimeService(extraTimeRepo, dispatcher)
	announcementService := service.NewAnnouncementService(announcementRepo)
	statsService := service.NewStatsService(ticketRepo, userRepo, rdb.Client, logger)

	notificationService := service.NewNotificationService(cfg.Notification, userRepo, logger)
	notificationService.RegisterHandlers(dispatcher)

	sweeper := worker.NewLevelSweeper(cfg.Worker, experienceService, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("failed to start level sweep", zap.Error(err))
	}
	defer sweeper.Stop()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo, cfg.Auth.CookieName)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Auth:           handlers.NewAuthHandler(cfg.Auth, tokens, userRepo),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Stats:          handlers.NewStatsHandler(statsService),
		Support:        handlers.NewSupportHandler(supportService),
		ExtraTime:      handlers.NewExtraTimeHandler(extraTimeService),
		Announcements:  handlers.NewAnnouncementsHandler(announcementService),
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

// bootstrapAdmin seeds the initial admin account when configured and absent.
// Remaining accounts are provisioned by an admin against the running service.
func bootstrapAdmin(ctx context.Context, cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Email:        cfg.AdminEmail,
		Name:         cfg.AdminName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Level:        1,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("seeded admin account", zap.String("email", admin.Email))
	return nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
