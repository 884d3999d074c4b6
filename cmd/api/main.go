package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"eagle-bank-api/config"
	"eagle-bank-api/docs"
	httpHandler "eagle-bank-api/internal/adapter/http/handler"
	memStorage "eagle-bank-api/internal/adapter/storage/memory"
	pgStorage "eagle-bank-api/internal/adapter/storage/postgres"
	redisStorage "eagle-bank-api/internal/adapter/storage/redis"
	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/internal/service"
	"eagle-bank-api/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// storage bundles the repositories of one backend.
type storage struct {
	accounts   ports.AccountRepository
	txRepo     ports.TransactionRepository
	idempRepo  ports.IdempotencyRepository
	transactor ports.DBTransactor
	health     []ports.HealthChecker
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		store := memStorage.NewStore(cfg.Banking.LockTimeout)
		return &storage{
			accounts:   memStorage.NewAccountRepo(store),
			txRepo:     memStorage.NewTransactionRepo(store),
			idempRepo:  memStorage.NewIdempotencyRepo(store),
			transactor: memStorage.NewTransactor(store),
			close:      func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Migrate {
		if err := pgStorage.Migrate(pool, cfg.Database.DBName, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &storage{
		accounts:   pgStorage.NewAccountRepo(pool),
		txRepo:     pgStorage.NewTransactionRepo(pool),
		idempRepo:  pgStorage.NewIdempotencyRepo(pool),
		transactor: pgStorage.NewTransactor(pool, cfg.Banking.LockTimeout),
		health:     []ports.HealthChecker{pgStorage.NewHealthCheck(pool)},
		close:      pool.Close,
	}, nil
}

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("EBA_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting Eagle Bank API")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret is required (EBA_JWT_SECRET)")
	}
	maxAmount, err := cfg.Banking.MaxAmount()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid banking configuration")
	}

	ctx := context.Background()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.close()

	// Redis is optional: without it idempotency falls back to the durable log
	// and rate limiting is off.
	var (
		idempCache     ports.IdempotencyCache
		idempLock      ports.IdempotencyLocker
		rateLimitStore *redisStorage.RateLimitStore
		healthCheckers = store.health
	)
	if cfg.Redis.Enabled {
		var rdb *goredis.Client
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		idempCache = redisStorage.NewIdempotencyCache(rdb)
		idempLock = redisStorage.NewIdempotencyLocker(rdb, logger.Component(log, "idempotency"))
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled, rate limiting is off and Idempotency-Key uses the database only")
	}

	// Core services
	txIDs, err := service.NewSnowflakeIDGenerator(cfg.Banking.NodeID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize transaction id generator")
	}
	an := cfg.Banking.AccountNumber
	generator := service.NewAccountNumberGenerator(store.accounts, service.CryptoRandom{}, an.Prefix, an.Digits, an.MaxAttempts,
		logger.Component(log, "account_number"))
	guard := service.NewOwnershipGuard(store.accounts, cfg.Banking.ConcealAccountExistence)
	engine := service.NewBalanceEngine(store.accounts, store.txRepo, store.idempRepo, store.transactor, txIDs, maxAmount,
		logger.Component(log, "balance_engine"))

	accountSvc := service.NewAccountService(store.accounts, generator, guard, store.transactor,
		logger.Component(log, "accounts"))
	txSvc := service.NewTransactionService(guard, engine, store.txRepo, store.idempRepo, idempCache, idempLock,
		cfg.Banking.IdempotencyTTL, logger.Component(log, "transactions"))
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc:          accountSvc,
		TransactionSvc:      txSvc,
		TokenSvc:            tokenSvc,
		RateLimitStore:      rateLimitStore,
		HealthCheckers:      healthCheckers,
		Logger:              logger.Component(log, "http"),
		OpenAPI:             docs.OpenAPI,
		AccountNumberPrefix: an.Prefix,
		AccountNumberDigits: an.Digits,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
