package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/marketplace/api/handler"
	"github.com/fastygo/marketplace/internal/config"
	kafkaInfra "github.com/fastygo/marketplace/internal/infrastructure/kafka"
	"github.com/fastygo/marketplace/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/marketplace/internal/infrastructure/postgres"
	"github.com/fastygo/marketplace/internal/infrastructure/qrcode"
	redisInfra "github.com/fastygo/marketplace/internal/infrastructure/redis"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
	"github.com/fastygo/marketplace/internal/middleware"
	"github.com/fastygo/marketplace/internal/router"
	"github.com/fastygo/marketplace/internal/seed"
	"github.com/fastygo/marketplace/internal/services"
	"github.com/fastygo/marketplace/internal/services/lifecycle"
	"github.com/fastygo/marketplace/pkg/httpcontext"
	"github.com/fastygo/marketplace/pkg/logger"
	"github.com/fastygo/marketplace/pkg/password"
	"github.com/fastygo/marketplace/pkg/token"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/repository/document"
	redisRepo "github.com/fastygo/marketplace/repository/redis"
	"github.com/fastygo/marketplace/usecase"
	authUC "github.com/fastygo/marketplace/usecase/auth"
	cartUC "github.com/fastygo/marketplace/usecase/cart"
	catalogUC "github.com/fastygo/marketplace/usecase/catalog"
	orderUC "github.com/fastygo/marketplace/usecase/order"
	statsUC "github.com/fastygo/marketplace/usecase/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Output:   cfg.Logger.Output,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	backend, err := openStore(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("store unavailable", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	manager.RegisterCloser("store", backend)
	repos := document.NewStore(backend)

	var redisClient *goRedis.Client
	if cfg.Session.Backend == config.SessionsInRedis {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.RegisterCloser("redis", redisClient)
	}
	sessions := openSessions(cfg, backend, redisClient)

	clock := usecase.SystemClock{}
	hasher := password.NewHasher(cfg.Security.BcryptCost)

	authUseCase := authUC.New(repos, sessions, hasher, zapLogger, authUC.WithClock(clock), authUC.WithSessionTTL(cfg.Session.TTL))
	catalogUseCase := catalogUC.New(repos, clock, zapLogger)
	cartUseCase := cartUC.New(repos, clock, zapLogger)
	orderUseCase := orderUC.New(repos, qrcode.NewGenerator(cfg.Pickup.BaseURL), clock, zapLogger)
	statsUseCase := statsUC.New(repos, clock, zapLogger)

	bootstrap(appCtx, cfg, repos, hasher, clock, authUseCase, zapLogger)

	scheduler := services.NewScheduler(zapLogger)
	mustSchedule(zapLogger, scheduler.Every("expiry_sweep", cfg.Schedule.ExpirySweep, func(ctx context.Context) error {
		_, err := catalogUseCase.ReconcileExpired(ctx)
		return err
	}))
	if purger, ok := sessions.(repository.SessionPurger); ok {
		mustSchedule(zapLogger, scheduler.Every("session_purge", cfg.Schedule.SessionPurge, func(ctx context.Context) error {
			n, err := purger.PurgeExpired(ctx, clock.Now())
			if n > 0 {
				zapLogger.Info("expired sessions purged", zap.Int("count", n))
			}
			return err
		}))
	}

	var relay *services.ActivityRelay
	if cfg.Kafka.Enabled() {
		publisher := kafkaInfra.NewPublisher(cfg.Kafka, zapLogger)
		manager.RegisterCloser("kafka", publisher)
		relay = services.NewActivityRelay(repos, publisher, services.RelayConfig{
			BatchSize:  cfg.Kafka.BatchSize,
			MaxRetries: cfg.Schedule.MaxRetry,
		}, zapLogger)
		mustSchedule(zapLogger, scheduler.Every("activity_relay", cfg.Schedule.RelayInterval, relay.Drain))
	} else {
		zapLogger.Info("activity relay disabled (no KAFKA_BROKERS)")
	}

	scheduler.RunNow(appCtx, "expiry_sweep", func(ctx context.Context) error {
		_, err := catalogUseCase.ReconcileExpired(ctx)
		return err
	})
	scheduler.Start()
	manager.Register("scheduler", scheduler.Stop)

	var backlog monitor.BacklogReporter
	if relay != nil {
		backlog = relay
	}
	mon := monitor.New(backend, cfg.Store.Driver, redisClient, backlog, cfg.Schedule.HealthCheck, zapLogger)
	mon.Start()
	manager.Register("monitor", func(context.Context) error {
		mon.Stop()
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	tokens := token.NewIssuer(jwtSecret(cfg, zapLogger), cfg.JWT.Issuer)
	auth := middleware.NewAuth(tokens, authUseCase, ctxAdapter, zapLogger)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, tokens, ctxAdapter, zapLogger),
		Listing: apiHandler.NewListingHandler(catalogUseCase, ctxAdapter, zapLogger),
		Cart:    apiHandler.NewCartHandler(cartUseCase, ctxAdapter, zapLogger),
		Order:   apiHandler.NewOrderHandler(orderUseCase, ctxAdapter, zapLogger),
		User:    apiHandler.NewUserHandler(authUseCase, ctxAdapter, zapLogger),
		Stats:   apiHandler.NewStatsHandler(statsUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	r := router.New(handlers, auth.Require, auth.Optional)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("store", cfg.Store.Driver), zap.String("sessions", cfg.Session.Backend))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()
	zapLogger.Info("shutting down", zap.Strings("components", manager.Components()))

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		zapLogger.Warn("using in-memory store; data is lost on restart")
		return store.NewMemory(), nil
	case config.StorePostgres:
		if cfg.Migrations.Enabled {
			if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
				return nil, err
			}
		}
		pool, err := pgInfra.NewPool(ctx, cfg.AppName, cfg.Database, zapLogger)
		if err != nil {
			return nil, err
		}
		return pgInfra.NewDocuments(pool), nil
	default:
		if dir := filepath.Dir(cfg.Store.BoltPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return store.OpenBolt(cfg.Store.BoltPath)
	}
}

func openSessions(cfg *config.Config, backend store.Store, client *goRedis.Client) repository.SessionRepository {
	if client != nil {
		return redisRepo.NewSessionRepository(client, cfg.Session.TTL)
	}
	return document.NewSessionRepository(backend, cfg.Session.TTL)
}

func bootstrap(ctx context.Context, cfg *config.Config, repos repository.Store, hasher usecase.PasswordHasher, clock usecase.Clock, authUseCase *authUC.UseCase, zapLogger *zap.Logger) {
	if cfg.Seed.Path != "" {
		fixture, err := seed.LoadFile(cfg.Seed.Path)
		if err != nil {
			zapLogger.Fatal("seed load failed", zap.String("path", cfg.Seed.Path), zap.Error(err))
		}
		if _, err := seed.Apply(ctx, repos, hasher, clock, fixture, zapLogger); err != nil {
			zapLogger.Fatal("seed apply failed", zap.Error(err))
		}
	}
	if _, err := authUseCase.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		zapLogger.Fatal("admin bootstrap failed", zap.Error(err))
	}
}

// jwtSecret falls back to a per-process random secret outside production, so
// tokens stop verifying after a restart.
func jwtSecret(cfg *config.Config, zapLogger *zap.Logger) string {
	if cfg.JWT.Secret != "" {
		return cfg.JWT.Secret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		zapLogger.Fatal("generate jwt secret", zap.Error(err))
	}
	zapLogger.Warn("JWT_SECRET not set; using an ephemeral secret")
	return hex.EncodeToString(buf)
}

func mustSchedule(zapLogger *zap.Logger, err error) {
	if err != nil {
		zapLogger.Fatal("scheduler setup failed", zap.Error(err))
	}
}
