package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-gin-pd-registration/config"
	"go-gin-pd-registration/internal/cache"
	"go-gin-pd-registration/internal/calendar"
	"go-gin-pd-registration/internal/database"
	"go-gin-pd-registration/internal/domain"
	"go-gin-pd-registration/internal/handler"
	"go-gin-pd-registration/internal/queue"
	"go-gin-pd-registration/internal/repository"
	"go-gin-pd-registration/internal/service"
	"go-gin-pd-registration/internal/tracing"
	"go-gin-pd-registration/internal/worker"
	"go-gin-pd-registration/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, sync worker and reconciler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Log.Level)
	defer logger.Sync()
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(&cfg.Database); err != nil {
		return err
	}

	// Redis 只在 cache 或 queue 使用時連線
	var rdb *redis.Client
	if cfg.Cache.Backend == "redis" || cfg.Queue.Backend == "redis" {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("initialize redis: %w", err)
		}
		defer rdb.Close()
	}

	seatCache := cache.NewMemorySeatCache(cfg.Cache.TTL)
	if cfg.Cache.Backend == "redis" {
		seatCache = cache.NewRedisSeatCache(rdb, cfg.Cache.TTL)
	}

	syncQueue, closeQueue, err := newSyncQueue(cfg, rdb)
	if err != nil {
		return err
	}
	defer closeQueue()

	gateway, err := calendar.NewWebhookGateway(cfg.Calendar, &http.Client{}, tp.Tracer())
	if err != nil {
		return err
	}

	// Repositories
	eventRepo := repository.NewEventRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	presenterRepo := repository.NewPresenterRepository(pool)
	accommodationRepo := repository.NewAccommodationRepository(pool)
	linkRepo := repository.NewLinkRepository(pool)
	eventTypeRepo := repository.NewEventTypeRepository(pool)
	syncRepo := repository.NewSyncOperationRepository(pool)

	// Services
	bus := domain.NewBus()
	service.NewRolePromotionService(userRepo, bus)

	syncService := service.NewSyncService(syncRepo, gateway, syncQueue, cfg.Outbox, cfg.Calendar.Timeout, tp.Tracer())
	ledger := service.NewCapacityLedger(eventRepo, registrationRepo, seatCache)
	accommodationService := service.NewAccommodationService(accommodationRepo, eventRepo)
	presenterService := service.NewPresenterService(pool, presenterRepo, eventRepo, userRepo, syncService, bus)
	registrationService := service.NewRegistrationService(pool, registrationRepo, eventRepo, userRepo,
		accommodationRepo, ledger, accommodationService, syncService, cfg.Registration)
	eventService := service.NewEventService(pool, eventRepo, registrationRepo, eventTypeRepo, userRepo,
		linkRepo, presenterService, syncService, ledger, gateway, cfg.Calendar, tp.Tracer())

	// Background delivery
	if err := worker.NewSyncWorker(syncService, syncQueue).Start(ctx); err != nil {
		return fmt.Errorf("start sync worker: %w", err)
	}
	go worker.NewReconciler(syncService, cfg.Outbox.PollInterval).Run(ctx)

	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(userRepo,
		handler.NewEventHandler(eventService),
		handler.NewRegistrationHandler(registrationService),
		handler.NewPresenterHandler(presenterService),
		handler.NewAccommodationHandler(accommodationService),
		handler.NewSyncHandler(syncService),
		handler.NewUserHandler(registrationService, presenterService),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("queue", cfg.Queue.Backend),
			zap.String("cache", cfg.Cache.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newSyncQueue(cfg *config.Config, rdb *redis.Client) (queue.SyncQueue, func(), error) {
	switch cfg.Queue.Backend {
	case "redis":
		q, err := queue.NewRedisStreamSyncQueue(rdb, cfg.Queue.ConsumerID, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize redis stream queue: %w", err)
		}
		return q, func() {}, nil
	case "rabbitmq":
		q, err := queue.NewRabbitMQSyncQueue(cfg.Queue.RabbitURL)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize rabbitmq queue: %w", err)
		}
		return q, q.Close, nil
	default:
		return queue.NewMemorySyncQueue(cfg.Queue.BufferSize), func() {}, nil
	}
}
