package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greenstock-service/internal/cache"
	"greenstock-service/internal/config"
	"greenstock-service/internal/database"
	"greenstock-service/internal/handlers"
	"greenstock-service/internal/middleware"
	"greenstock-service/internal/routes"
	"greenstock-service/internal/services"
	"greenstock-service/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.GinMode)

	// Backend de persistência e conexões externas conforme configuração.
	var (
		st         store.Store
		postgresDB *database.PostgresDB
		redisDB    *database.RedisDB
	)
	switch cfg.Store.Backend {
	case "postgres":
		postgresDB, err = database.NewPostgresDB(cfg.Database.URL,
			cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime, logger)
		if err != nil {
			logger.Fatal("Falha conectando ao Postgres", zap.Error(err))
		}
		st, err = store.NewPostgresStore(postgresDB.DB, logger)
		if err != nil {
			logger.Fatal("Falha inicializando store Postgres", zap.Error(err))
		}
	case "redis":
		redisDB, err = database.NewRedisDB(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("Falha conectando ao Redis", zap.Error(err))
		}
		st = store.NewRedisStore(redisDB.Client, logger)
	default:
		st, err = store.NewFileStore(cfg.Store.DataDir, logger)
		if err != nil {
			logger.Fatal("Falha inicializando store de arquivo", zap.Error(err))
		}
	}
	defer st.Close()

	// O Redis serve de segundo nível do caché de snapshot quando presente.
	snapshotCache := newSnapshotCache(redisDB, cfg.Cache.SnapshotTTL, logger)

	// Estado completo em memória, carregado uma vez na subida.
	dataset := store.LoadDataset(context.Background(), st, logger)
	logger.Info("Dataset carregado",
		zap.Int("movements", len(dataset.Movements)),
		zap.Int("analyses", len(dataset.Analyses)),
		zap.Int("orders", len(dataset.ProductionOrders)),
	)

	inventoryService := services.NewInventoryService(st, dataset, snapshotCache, logger)

	inventoryHandler := handlers.NewInventoryHandler(inventoryService, logger)
	registryHandler := handlers.NewRegistryHandler(inventoryService, logger)
	interchangeHandler := handlers.NewInterchangeHandler(inventoryService, logger)
	streamHandler := handlers.NewStreamHandler(inventoryService, logger)
	healthChecker := middleware.NewHealthChecker(st, postgresDB, redisDB,
		inventoryService.CacheStats, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.RequestIDMiddleware())

	routes.SetupRoutes(router, inventoryHandler, registryHandler,
		interchangeHandler, streamHandler, healthChecker)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		middleware.ServerInfo(cfg.Server.Port, cfg.Store.Backend, logger)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Falha no servidor HTTP", zap.Error(err))
		}
	}()

	// Encerramento gracioso
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Encerrando servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Encerramento forçado", zap.Error(err))
	}
	logger.Info("Servidor encerrado")
}

func newSnapshotCache(redisDB *database.RedisDB, ttl time.Duration, logger *zap.Logger) *cache.SnapshotCache {
	if redisDB != nil {
		return cache.NewSnapshotCache(redisDB.Client, ttl, logger)
	}
	return cache.NewSnapshotCache(nil, ttl, logger)
}

func newLogger(level string) (*zap.Logger, error) {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
