// Package container wires the application together.
//
// Composition root: every dependency is constructed here, in order, and torn
// down in reverse on shutdown. Both processes (API and worker) share this
// container; which surfaces run is decided by the caller.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	redis "github.com/redis/go-redis/v9"

	"github.com/dcastillo/commispipe/internal/adapters/http"
	"github.com/dcastillo/commispipe/internal/adapters/http/middleware"
	"github.com/dcastillo/commispipe/internal/application/ports"
	"github.com/dcastillo/commispipe/internal/application/usecases/pipeline"
	"github.com/dcastillo/commispipe/internal/application/usecases/scheme"
	"github.com/dcastillo/commispipe/internal/config"
	"github.com/dcastillo/commispipe/internal/domain/events"
	"github.com/dcastillo/commispipe/internal/domain/services"
	"github.com/dcastillo/commispipe/internal/infrastructure/cache"
	"github.com/dcastillo/commispipe/internal/infrastructure/persistence/postgres"
	natsqueue "github.com/dcastillo/commispipe/internal/infrastructure/queue/nats"
	"github.com/dcastillo/commispipe/internal/infrastructure/verification"
	"github.com/dcastillo/commispipe/internal/observability"
	"github.com/dcastillo/commispipe/internal/pkg/logger"
)

// Container holds the application's dependency graph.
type Container struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure
	pool        *pgxpool.Pool
	natsConn    *natsgo.Conn
	stream      jetstream.Stream
	redisClient *redis.Client

	// Repositories
	receivableRepo ports.ReceivableRepository
	commissionRepo ports.CommissionRepository
	schemeRepo     ports.SchemeRepository
	ledgerRepo     ports.LedgerRepository

	// Units of Work. Scheme writes run serializable so concurrent
	// truncations around the same boundary date cannot race.
	uow       ports.UnitOfWork
	schemeUow ports.UnitOfWork

	// Pipeline plumbing
	publisher *natsqueue.Publisher
	consumer  *natsqueue.Consumer
	dedup     ports.DedupCache
	verifier  ports.VerificationService

	// Use Cases
	emitEventUC    *pipeline.EmitEventUseCase
	processEventUC *pipeline.ProcessEventUseCase
	ledgerQueryUC  *pipeline.LedgerQueryUseCase
	createSchemeUC *scheme.CreateSchemeUseCase
	updateSchemeUC *scheme.UpdateSchemeUseCase
	schemeQueryUC  *scheme.SchemeQueryUseCase

	// HTTP and tracing
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// New creates an uninitialized container.
func New(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Initialize builds the dependency graph in order.
func (c *Container) Initialize(ctx context.Context) error {
	c.logger = c.initLogger()
	c.logger.Info("Initializing application container...")

	if err := c.initTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database connected")

	c.initRepositories()
	c.logger.Info("Repositories initialized")

	if err := c.initQueue(ctx); err != nil {
		return fmt.Errorf("failed to initialize queue: %w", err)
	}
	c.logger.Info("Event queue ready",
		slog.String("stream", c.config.Queue.Stream),
		slog.String("subject", c.config.Queue.Subject))

	c.initCache()
	c.initVerifier()
	c.initUseCases()
	c.logger.Info("Use cases initialized")

	c.initConsumer()
	c.initHTTPServer()
	c.logger.Info("Container initialization complete")
	return nil
}

func (c *Container) initLogger() *slog.Logger {
	output := os.Stdout
	if c.config.Log.Output == "stderr" {
		output = os.Stderr
	}

	logger.Setup(&logger.Config{
		Level:     c.config.Log.Level,
		Format:    c.config.Log.Format,
		Output:    output,
		AddSource: c.config.App.Debug,
	})
	return slog.Default()
}

func (c *Container) initTracing(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Enabled:     c.config.Telemetry.Enabled,
		Endpoint:    c.config.Telemetry.Endpoint,
		ServiceName: c.config.App.Name,
		Version:     c.config.App.Version,
		Environment: c.config.App.Environment,
		SampleRatio: c.config.Telemetry.SampleRatio,
	})
	if err != nil {
		return err
	}
	c.tracerShutdown = shutdown
	return nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	pool, err := postgres.NewConnectionPool(ctx, postgres.Config{
		Host:            c.config.Database.Host,
		Port:            c.config.Database.Port,
		Database:        c.config.Database.Database,
		User:            c.config.Database.User,
		Password:        c.config.Database.Password,
		SSLMode:         c.config.Database.SSLMode,
		MaxConns:        c.config.Database.MaxConnections,
		MinConns:        c.config.Database.MinConnections,
		MaxConnLifetime: c.config.Database.MaxConnLifetime,
		MaxConnIdleTime: c.config.Database.MaxConnIdleTime,
		ConnectTimeout:  5 * time.Second,
	})
	if err != nil {
		return err
	}
	c.pool = pool
	return nil
}

func (c *Container) initRepositories() {
	c.receivableRepo = postgres.NewReceivableRepository(c.pool)
	c.commissionRepo = postgres.NewCommissionRepository(c.pool)
	c.schemeRepo = postgres.NewSchemeRepository(c.pool)
	c.ledgerRepo = postgres.NewLedgerRepository(c.pool)

	c.uow = postgres.NewUnitOfWork(c.pool)
	c.schemeUow = postgres.NewSerializableUnitOfWork(c.pool)
}

func (c *Container) initQueue(ctx context.Context) error {
	nc, err := natsqueue.Connect(c.config.Queue.URL,
		natsgo.Name(c.config.App.Name),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				c.logger.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			c.logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return err
	}
	c.natsConn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("creating JetStream context: %w", err)
	}

	queueCfg := c.queueConfig()
	stream, err := natsqueue.EnsureStream(ctx, js, queueCfg)
	if err != nil {
		return err
	}
	c.stream = stream

	publisher, err := natsqueue.NewPublisher(nc, queueCfg)
	if err != nil {
		return err
	}
	c.publisher = publisher
	return nil
}

func (c *Container) queueConfig() natsqueue.Config {
	return natsqueue.Config{
		URL:            c.config.Queue.URL,
		Stream:         c.config.Queue.Stream,
		Subject:        c.config.Queue.Subject,
		Durable:        c.config.Queue.Durable,
		MaxDeliver:     c.config.Worker.MaxAttempts,
		BackOff:        c.config.Worker.Backoff,
		AttemptTimeout: c.config.Worker.AttemptTimeout,
	}
}

// initCache wires the dedup cache. No Redis address means the cache is
// skipped entirely; the ledger alone answers redelivery questions.
func (c *Container) initCache() {
	if c.config.Redis.Addr == "" {
		c.dedup = cache.NoopDedupCache{}
		c.logger.Info("Dedup cache disabled, ledger-only idempotency")
		return
	}

	c.redisClient = redis.NewClient(&redis.Options{
		Addr:     c.config.Redis.Addr,
		Password: c.config.Redis.Password,
		DB:       c.config.Redis.DB,
	})
	c.dedup = cache.NewDedupCache(c.redisClient, c.config.Redis.DedupTTL)
	c.logger.Info("Dedup cache enabled", slog.String("addr", c.config.Redis.Addr))
}

func (c *Container) initVerifier() {
	if c.config.Verifier.URL == "" {
		c.verifier = verification.NewPassthroughVerifier(c.logger)
		c.logger.Warn("No verifier URL configured, using pass-through verifier")
		return
	}
	c.verifier = verification.NewHTTPVerifier(c.config.Verifier.URL, c.config.Verifier.Timeout)
}

func (c *Container) initUseCases() {
	c.emitEventUC = pipeline.NewEmitEventUseCase(
		c.receivableRepo,
		services.NewInstallmentClassifier(),
		c.publisher,
	)
	c.processEventUC = pipeline.NewProcessEventUseCase(
		c.ledgerRepo,
		c.commissionRepo,
		c.verifier,
		c.uow,
		c.dedup,
		c.logger,
	)
	c.ledgerQueryUC = pipeline.NewLedgerQueryUseCase(c.ledgerRepo)

	c.createSchemeUC = scheme.NewCreateSchemeUseCase(c.schemeRepo, c.schemeUow)
	c.updateSchemeUC = scheme.NewUpdateSchemeUseCase(c.schemeRepo, c.schemeUow)
	c.schemeQueryUC = scheme.NewSchemeQueryUseCase(c.schemeRepo)
}

func (c *Container) initConsumer() {
	processor := &meteredProcessor{next: c.processEventUC}
	c.consumer = natsqueue.NewConsumer(c.stream, c.queueConfig(), processor, c.logger)
}

func (c *Container) initHTTPServer() {
	checks := map[string]func(context.Context) error{
		"queue": func(_ context.Context) error {
			if status := c.natsConn.Status(); status != natsgo.CONNECTED {
				return fmt.Errorf("nats connection is %s", status)
			}
			return nil
		},
	}
	if c.redisClient != nil {
		checks["cache"] = func(ctx context.Context) error {
			return c.redisClient.Ping(ctx).Err()
		}
	}

	routerConfig := &http.RouterConfig{
		Logger:          c.logger,
		Pool:            c.pool,
		Version:         c.config.App.Version,
		BuildTime:       c.config.App.BuildTime,
		Environment:     c.config.App.Environment,
		ServiceName:     c.config.App.Name,
		AllowedOrigins:  c.config.CORS.AllowedOrigins,
		TracingEnabled:  c.config.Telemetry.Enabled,
		ReadinessChecks: checks,
	}

	router := http.NewRouterBuilder(routerConfig).
		WithPipelineUseCases(&http.PipelineUseCases{
			RegisterPayment: c.emitEventUC,
			GetLedgerEntry:  c.ledgerQueryUC,
			ListLedger:      c.ledgerQueryUC,
		}).
		WithSchemeUseCases(&http.SchemeUseCases{
			CreateScheme: c.createSchemeUC,
			UpdateScheme: c.updateSchemeUC,
			GetScheme:    c.schemeQueryUC,
			ListSchemes:  c.schemeQueryUC,
		}).
		Build()

	serverConfig := &http.ServerConfig{
		Host:            c.config.Server.Host,
		Port:            fmt.Sprintf("%d", c.config.Server.Port),
		ReadTimeout:     c.config.Server.ReadTimeout,
		WriteTimeout:    c.config.Server.WriteTimeout,
		IdleTimeout:     c.config.Server.IdleTimeout,
		ShutdownTimeout: c.config.Server.ShutdownTimeout,
		Logger:          c.logger,
	}

	c.httpServer = http.NewServer(serverConfig, router)
}

// meteredProcessor wraps the verification use case with attempt metrics.
type meteredProcessor struct {
	next ports.EventProcessor
}

func (p *meteredProcessor) Process(ctx context.Context, event *events.CommissionAffectingPayment, attempt ports.Attempt) error {
	start := time.Now()
	err := p.next.Process(ctx, event, attempt)
	middleware.RecordAttempt(attemptResult(err, attempt), time.Since(start))
	return err
}

func attemptResult(err error, attempt ports.Attempt) string {
	switch {
	case err == nil:
		return "processed"
	case attempt.Final:
		return "failed"
	default:
		return "retried"
	}
}

// Getters

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}

func (c *Container) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Container) HTTPServer() *http.Server {
	return c.httpServer
}

func (c *Container) EmitEventUseCase() *pipeline.EmitEventUseCase {
	return c.emitEventUC
}

func (c *Container) ProcessEventUseCase() *pipeline.ProcessEventUseCase {
	return c.processEventUC
}

func (c *Container) UnitOfWork() ports.UnitOfWork {
	return c.uow
}

// Run starts the consumer and the HTTP server, then blocks until a
// termination signal arrives.
func (c *Container) Run(ctx context.Context) error {
	c.logger.Info("Starting commission pipeline",
		slog.String("version", c.config.App.Version),
		slog.String("environment", c.config.App.Environment),
		slog.String("address", c.config.Server.Address()),
	)

	if err := c.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	return c.httpServer.Run()
}

// Shutdown tears the graph down in reverse order of construction. The
// consumer stops first so no delivery is in flight when the pool closes.
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	var errs []error

	if c.consumer != nil {
		c.consumer.Stop()
	}

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	if c.natsConn != nil {
		if err := c.natsConn.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("NATS drain: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.tracerShutdown != nil {
		if err := c.tracerShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}

	if c.pool != nil {
		done := make(chan struct{})
		go func() {
			c.pool.Close()
			close(done)
		}()

		select {
		case <-done:
			c.logger.Info("Database connection closed")
		case <-ctx.Done():
			c.logger.Warn("Database close timeout")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	c.logger.Info("Container shutdown complete")
	return nil
}
