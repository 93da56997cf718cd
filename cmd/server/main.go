package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/library-seat-booking/internal/absence"
	"github.com/iliyamo/library-seat-booking/internal/config"
	"github.com/iliyamo/library-seat-booking/internal/database"
	"github.com/iliyamo/library-seat-booking/internal/handler"
	"github.com/iliyamo/library-seat-booking/internal/logger"
	"github.com/iliyamo/library-seat-booking/internal/metrics"
	"github.com/iliyamo/library-seat-booking/internal/queue"
	"github.com/iliyamo/library-seat-booking/internal/repository"
	"github.com/iliyamo/library-seat-booking/internal/router"
	"github.com/iliyamo/library-seat-booking/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	loc := cfg.Location()

	db := database.New(database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err := db.Connect(ctx); err != nil {
		return err
	}
	defer db.Close()
	if cfg.MigrationsEnabled {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting, caching and the sweep lease are off")
	} else {
		defer rdb.Close()
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	qcfg := config.LoadQueueConfig()
	publisher := queue.NewPublisher(qcfg.URL, qcfg.Queue, log)
	if qcfg.URL != "" {
		consumer := queue.NewConsumer(qcfg.URL, qcfg.Queue, qcfg.EventLog, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", "error", err)
			}
		}()
	}

	sqlDB := db.DB()
	deps := service.Deps{
		Users:         repository.NewUserRepo(sqlDB),
		Tokens:        repository.NewTokenRepo(sqlDB),
		Admissions:    repository.NewAdmissionRepo(sqlDB),
		Bookings:      repository.NewBookingRepo(sqlDB),
		Attendance:    repository.NewAttendanceRepo(sqlDB),
		Payments:      repository.NewPaymentRepo(sqlDB),
		Notifications: repository.NewNotificationRepo(sqlDB),
		AdminLogs:     repository.NewAdminLogRepo(sqlDB),
		Events:        publisher,
		Metrics:       m,
		Clock:         service.Clock{Loc: loc},
		Log:           log,
	}
	absences := service.NewAbsenceService(deps)

	scfg := config.LoadSweepConfig()
	if scfg.Enabled {
		var locker absence.Locker
		if rdb != nil {
			locker = absence.NewRedisLocker(rdb)
		}
		sched, err := absence.NewScheduler(scfg.Schedule, loc, absences.Job(), locker, scfg.LockTTL, log)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(sctx)
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			log.Info("request", attrs...)
			return nil
		},
	}))

	router.Register(e, router.Handlers{
		Auth: handler.NewAuthHandler(service.NewAuthService(deps, service.AuthConfig{
			Secret:     cfg.JWTSecret,
			AccessTTL:  cfg.AccessTTL(),
			RefreshTTL: cfg.RefreshTTL(),
			BcryptCost: cfg.BcryptCost,
		})),
		Absence:       handler.NewAbsenceHandler(absences),
		Bookings:      handler.NewBookingHandler(service.NewBookingService(deps)),
		Attendance:    handler.NewAttendanceHandler(service.NewAttendanceService(deps)),
		Admissions:    handler.NewAdmissionHandler(service.NewAdmissionService(deps)),
		Payments:      handler.NewPaymentHandler(service.NewPaymentService(deps)),
		Notifications: handler.NewNotificationHandler(service.NewNotificationService(deps)),
		Admin:         handler.NewAdminHandler(service.NewAdminService(deps)),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		Metrics:   m,
		Log:       log,
	})

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env, "timezone", cfg.Timezone)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}
