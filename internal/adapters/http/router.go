// Package http - route wiring for the ops API.
//
// The builder collects handlers and middleware into a single Gin engine.
// Handlers receive only the use cases they call.
package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dcastillo/commispipe/internal/adapters/http/common"
	"github.com/dcastillo/commispipe/internal/adapters/http/handlers"
	"github.com/dcastillo/commispipe/internal/adapters/http/middleware"
)

// RouterConfig configures the router.
type RouterConfig struct {
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	Version        string
	BuildTime      string
	Environment    string
	ServiceName    string
	AllowedOrigins []string
	TracingEnabled bool

	// ReadinessChecks are extra dependency probes (queue, cache).
	ReadinessChecks map[string]func(context.Context) error
}

// DefaultRouterConfig is the development configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:         slog.Default(),
		Version:        "dev",
		BuildTime:      "unknown",
		Environment:    "development",
		ServiceName:    "commispipe",
		AllowedOrigins: []string{"*"},
	}
}

// PipelineUseCases groups the payment pipeline use cases.
type PipelineUseCases struct {
	RegisterPayment handlers.RegisterPaymentUseCase
	GetLedgerEntry  handlers.GetLedgerEntryUseCase
	ListLedger      handlers.ListLedgerUseCase
}

// SchemeUseCases groups the commission scheme use cases.
type SchemeUseCases struct {
	CreateScheme handlers.CreateSchemeUseCase
	UpdateScheme handlers.UpdateSchemeUseCase
	GetScheme    handlers.GetSchemeUseCase
	ListSchemes  handlers.ListSchemesUseCase
}

// RouterBuilder assembles the Gin engine step by step.
type RouterBuilder struct {
	config   *RouterConfig
	pipeline *PipelineUseCases
	schemes  *SchemeUseCases
}

func NewRouterBuilder(config *RouterConfig) *RouterBuilder {
	if config == nil {
		config = DefaultRouterConfig()
	}
	return &RouterBuilder{config: config}
}

// WithPipelineUseCases adds the payment pipeline endpoints.
func (b *RouterBuilder) WithPipelineUseCases(useCases *PipelineUseCases) *RouterBuilder {
	b.pipeline = useCases
	return b
}

// WithSchemeUseCases adds the commission scheme endpoints.
func (b *RouterBuilder) WithSchemeUseCases(useCases *SchemeUseCases) *RouterBuilder {
	b.schemes = useCases
	return b
}

// Build creates the configured Gin engine.
func (b *RouterBuilder) Build() *gin.Engine {
	if b.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupValidator()

	// Recovery first so nothing above it can crash the process.
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           b.config.Logger,
		EnableStackTrace: b.config.Environment != "production",
	}))
	router.Use(middleware.RequestID())

	if b.config.TracingEnabled {
		router.Use(otelgin.Middleware(b.config.ServiceName))
	}

	if b.config.Environment == "production" {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(b.config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    b.config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := handlers.NewHealthHandler(
		b.config.Pool,
		b.config.Version,
		b.config.BuildTime,
	)
	for name, check := range b.config.ReadinessChecks {
		healthHandler.WithCheck(name, check)
	}
	healthHandler.RegisterRoutes(router)

	v1 := router.Group("/api/v1")

	if b.pipeline != nil {
		paymentHandler := handlers.NewPaymentHandler(b.pipeline.RegisterPayment)
		v1.POST("/payments", paymentHandler.RegisterPayment)

		ledgerHandler := handlers.NewLedgerHandler(b.pipeline.GetLedgerEntry, b.pipeline.ListLedger)
		ledgerHandler.RegisterRoutes(v1)
	}

	if b.schemes != nil {
		schemeHandler := handlers.NewSchemeHandler(
			b.schemes.CreateScheme,
			b.schemes.UpdateScheme,
			b.schemes.GetScheme,
			b.schemes.ListSchemes,
		)
		schemeHandler.RegisterRoutes(v1)
	}

	router.NoRoute(func(c *gin.Context) {
		common.Error(c, 404, &common.APIError{
			Code:    common.ErrCodeNotFound,
			Message: "Endpoint not found",
			Details: map[string]interface{}{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			},
		})
	})

	return router
}

// NewRouter creates a router with the given configuration.
func NewRouter(config *RouterConfig) *gin.Engine {
	return NewRouterBuilder(config).Build()
}
