package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/caltman24/zaptrack/internal/api/http"
	"github.com/caltman24/zaptrack/internal/api/http/handlers"
	"github.com/caltman24/zaptrack/internal/auth"
	"github.com/caltman24/zaptrack/internal/cache"
	"github.com/caltman24/zaptrack/internal/config"
	"github.com/caltman24/zaptrack/internal/events"
	"github.com/caltman24/zaptrack/internal/history"
	"github.com/caltman24/zaptrack/internal/observability"
	"github.com/caltman24/zaptrack/internal/persistence"
	"github.com/caltman24/zaptrack/internal/repository"
	"github.com/caltman24/zaptrack/internal/service"
	"github.com/caltman24/zaptrack/internal/worker"
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
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	memberNames := cache.NewMemberNames(redis, memberRepo, cfg.Cache.MemberNameTTL(), logger)
	formatter := history.NewRegistry()

	authService := service.NewAuthService(*cfg, memberRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		ProjectRepo: projectRepo,
		MemberRepo:  memberRepo,
		Dispatcher:  dispatcher,
	})
	queryService := service.NewQueryService(service.QueryDependencies{
		TicketRepo:  ticketRepo,
		ProjectRepo: projectRepo,
		HistoryRepo: historyRepo,
		Formatter:   formatter,
		MemberNames: memberNames,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		TicketRepo:  ticketRepo,
		ProjectRepo: projectRepo,
		Dispatcher:  dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), memberRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Members:        handlers.NewMembersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, queryService),
		Comments:       handlers.NewCommentsHandler(commentService),
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
