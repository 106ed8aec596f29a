package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/account-otp-service/internal/infra/config"
	"github.com/arklim/account-otp-service/internal/infra/security"
	"github.com/arklim/account-otp-service/internal/infra/telemetry"
	"github.com/arklim/account-otp-service/internal/transport/http/handlers"
	"github.com/arklim/account-otp-service/internal/transport/http/middleware"
	"github.com/arklim/account-otp-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Accounts *usecase.AccountService
	OTP      *usecase.OTPService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Services  ServiceSet
	Tokens    *security.TokenIssuer
	Telemetry *telemetry.Provider
	Metrics   *middleware.HTTPMetrics
	Database  DatabaseChecker
	Cache     CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		isDev := deps.Config.App.Env == "development"

		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Accounts, deps.Tokens, deps.Telemetry, isDev)
		authHandler.RegisterRoutes(authGroup)

		otpGroup := api.Group("/otp")
		otpHandler := handlers.NewOTPHandler(deps.Services.OTP, deps.Telemetry, isDev)
		otpHandler.RegisterRoutes(otpGroup)
	}

	return r
}
