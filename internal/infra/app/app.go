package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/account-otp-service/internal/core/port"
	"github.com/arklim/account-otp-service/internal/infra/config"
	"github.com/arklim/account-otp-service/internal/infra/database"
	kafkainfra "github.com/arklim/account-otp-service/internal/infra/kafka"
	"github.com/arklim/account-otp-service/internal/infra/logger"
	"github.com/arklim/account-otp-service/internal/infra/mailer"
	redisinfra "github.com/arklim/account-otp-service/internal/infra/redis"
	"github.com/arklim/account-otp-service/internal/infra/security"
	"github.com/arklim/account-otp-service/internal/infra/telemetry"
	postgresrepo "github.com/arklim/account-otp-service/internal/repository/postgres"
	redisrepo "github.com/arklim/account-otp-service/internal/repository/redis"
	"github.com/arklim/account-otp-service/internal/transport/http/middleware"
	"github.com/arklim/account-otp-service/internal/transport/http/routes"
	"github.com/arklim/account-otp-service/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	hasher   *security.BcryptHasher
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	hasher := security.NewBcryptHasher(cfg.Hashing.BcryptCost, cfg.Hashing.Workers)

	generator, err := security.NewTOTPGenerator(cfg.App.Name, cfg.OTP.TTL, cfg.OTP.Digits)
	if err != nil {
		return nil, fmt.Errorf("init code generator: %w", err)
	}

	tokenIssuer, err := security.NewTokenIssuer(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	otpStore := redisrepo.NewOTPStore(redisClient.Client(), cfg.Redis.OTPPrefix, cfg.OTP.TTL)
	userRepo := postgresrepo.NewUserRepository(pool)

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
			producer = nil
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var otpMailer port.Mailer
	if cfg.SMTP.Host != "" && cfg.App.Env != "development" {
		otpMailer = mailer.NewSMTPMailer(cfg.SMTP, log)
	} else {
		otpMailer = mailer.NewLoggingMailer(log)
	}

	lifecycle := usecase.NewOTPLifecycle(otpStore, hasher, cfg.OTP.MaxVerifyAttempts, log)
	otpService := usecase.NewOTPService(lifecycle, generator, hasher, otpMailer, cfg.OTP.TTL, log)
	accountService := usecase.NewAccountService(userRepo, otpService, hasher, eventPublisher, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: "account"})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Tokens:    tokenIssuer,
		Telemetry: provider,
		Metrics:   metrics,
		Database:  pool,
		Cache:     redisClient,
		Services: routes.ServiceSet{
			Accounts: accountService,
			OTP:      otpService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		hasher:   hasher,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.hasher != nil {
			a.hasher.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("failed to close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting account API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
