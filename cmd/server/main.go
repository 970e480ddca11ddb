package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/config"
	"github.com/iliyamo/venue-reservation/internal/database"
	"github.com/iliyamo/venue-reservation/internal/handler"
	"github.com/iliyamo/venue-reservation/internal/notify"
	"github.com/iliyamo/venue-reservation/internal/queue"
	"github.com/iliyamo/venue-reservation/internal/repository"
	"github.com/iliyamo/venue-reservation/internal/router"
	"github.com/iliyamo/venue-reservation/internal/service"
)

const (
	shutdownTimeout = 15 * time.Second
	notifyTimeout   = 10 * time.Second
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	cfg := config.Load()

	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.IsDev() {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l.With(zap.String("env", cfg.Env))
}

func run(cfg config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("closing database", zap.Error(err))
		}
	}()
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			return err
		}
		log.Info("schema ensured")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable: report cache disabled, rate limiting in process")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	venueRepo := repository.NewVenueRepo(db)
	slotRepo := repository.NewTimeSlotRepo(db)
	addOnRepo := repository.NewAddOnRepo(db)
	userRepo := repository.NewUserRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	reportRepo := repository.NewReportRepo(db)

	notifier := notify.NewNotifier(reservationRepo, userRepo, notificationRepo)

	// Without a broker the queue workers write notification rows directly.
	// With one they publish, and a consumer on the other side writes them.
	deliver := notify.DeliverFunc(notifier.Handle)
	var publisher *queue.Publisher
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	consumerDone := make(chan struct{})
	if cfg.AMQPURL != "" {
		publisher = queue.NewPublisher(cfg.AMQPURL, log)
		deliver = publisher.Publish
		consumer := queue.NewConsumer(cfg.AMQPURL, notifier.Handle, notifyTimeout, log)
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notification consumer stopped", zap.Error(err))
			}
		}()
		log.Info("notifications via rabbitmq", zap.String("queue", queue.NotificationQueue))
	} else {
		close(consumerDone)
		log.Info("notifications in process")
	}

	events := notify.NewQueue(deliver, notify.Options{
		Workers: cfg.NotifyWorkers,
		Buffer:  cfg.NotifyBuffer,
		Timeout: notifyTimeout,
	}, log)
	events.Start()

	users := service.NewUserService(userRepo, cfg.BcryptCost, log)
	reports := service.NewReportService(reportRepo, reservationRepo, log)
	reservations := service.NewReservationService(reservationRepo, venueRepo, slotRepo, addOnRepo, userRepo, events, log)

	e := router.New(router.Handlers{
		Health:        handler.NewHealthHandler(db, events.Stats),
		Auth:          handler.NewAuthHandler(service.NewAuthService(userRepo, users, cfg.JWTSecret, cfg.AccessTTLMin, log)),
		Venues:        handler.NewVenueHandler(service.NewVenueService(venueRepo, slotRepo, log)),
		AddOns:        handler.NewAddOnHandler(service.NewAddOnService(addOnRepo, log)),
		TimeSlots:     handler.NewTimeSlotHandler(service.NewTimeSlotService(slotRepo, log)),
		Users:         handler.NewUserHandler(users),
		Reservations:  handler.NewReservationHandler(reservations, reports),
		Reports:       handler.NewReportHandler(reports),
		Notifications: handler.NewNotificationHandler(service.NewNotificationService(notificationRepo, log)),
	}, router.Options{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   config.LoadRateLimitConfig(),
		Cache:       config.LoadCacheConfig(),
		Redis:       rdb,
		Log:         log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// HTTP first so no new events arrive, then drain the queue, then the
	// broker side.  The database closes last via defer.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := events.Shutdown(shutdownCtx); err != nil {
		st := events.Stats()
		log.Warn("notification queue not drained", zap.Error(err), zap.Int("pending", st.Pending))
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Warn("closing publisher", zap.Error(err))
		}
	}
	stopConsumer()
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
	}
	log.Info("bye")
	return nil
}
