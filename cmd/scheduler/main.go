package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"meetingscheduler/config"
	"meetingscheduler/internal/adapters/auth"
	"meetingscheduler/internal/adapters/cache"
	"meetingscheduler/internal/adapters/email"
	httpdelivery "meetingscheduler/internal/delivery/http"
	"meetingscheduler/internal/delivery/http/controllers"
	"meetingscheduler/internal/delivery/http/middleware"
	"meetingscheduler/internal/domain"
	"meetingscheduler/internal/repository/postgres"
	"meetingscheduler/internal/services"
	"meetingscheduler/migrations"
)

const serviceTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := postgres.Migrate(ctx, db, migrations.FS); err != nil {
			cancel()
			logger.Error("run migrations", "err", err)
			os.Exit(1)
		}
		cancel()
		logger.Info("migrations applied")
	}

	meetingRepo := postgres.NewMeetingRepository(db)
	userRepo := postgres.NewUserRepository(db)

	var departmentRepo domain.DepartmentRepository = postgres.NewDepartmentRepository(db)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		departmentRepo = cache.NewDepartmentCache(departmentRepo, rdb, cfg.DeptCacheTTL, logger)
		logger.Info("department cache enabled", "addr", cfg.RedisAddr)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	notifier := services.NewNotificationDispatcher(mailer, email.NewTemplateRenderer(), logger, cfg.NotifyTimeout)

	tokens := auth.NewJWTManager(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.TokenExpiry, serviceTimeout)
	schedulingService := services.NewSchedulingService(meetingRepo, userRepo, departmentRepo, notifier, serviceTimeout)

	mux := httpdelivery.NewRouter(
		controllers.NewMeetingController(logger, schedulingService),
		controllers.NewAuthController(logger, authService),
		controllers.NewDirectoryController(logger, userRepo, departmentRepo),
		tokens,
		logger,
	)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeLoop(rootCtx, schedulingService, logger)

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

// purgeLoop removes meetings dated before the current day, once at startup
// and again every midnight.
func purgeLoop(ctx context.Context, svc domain.SchedulingService, logger *slog.Logger) {
	purge := func() {
		now := time.Now()
		cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		n, err := svc.PurgePastMeetings(ctx, cutoff)
		if err != nil {
			logger.Error("purge past meetings", "err", err)
			return
		}
		if n > 0 {
			logger.Info("purged past meetings", "count", n)
		}
	}

	purge()
	for {
		now := time.Now()
		nextMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(nextMidnight)):
			purge()
		}
	}
}
