package middleware

import (
	"context"
	"net/http"
	"time"

	"greenstock-service/internal/cache"
	"greenstock-service/internal/database"
	"greenstock-service/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker verifica a saúde do armazenamento e dos serviços externos
// opcionais. postgresDB e redisDB são nil quando o backend configurado não
// os usa.
type HealthChecker struct {
	store      store.Store
	postgresDB *database.PostgresDB
	redisDB    *database.RedisDB
	cacheStats func() cache.CacheStats
	logger     *zap.Logger
}

func NewHealthChecker(s store.Store, postgresDB *database.PostgresDB, redisDB *database.RedisDB, cacheStats func() cache.CacheStats, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		store:      s,
		postgresDB: postgresDB,
		redisDB:    redisDB,
		cacheStats: cacheStats,
		logger:     logger,
	}
}

func (h *HealthChecker) HealthCheck(c *gin.Context) {
	status := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  make(map[string]interface{}),
	}
	services := status["services"].(map[string]interface{})

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Sonda do armazenamento: uma leitura qualquer basta.
	storeStatus := "healthy"
	if _, err := h.store.Load(ctx, store.KeyMovements); err != nil {
		storeStatus = "unhealthy"
		status["status"] = "unhealthy"
		h.logger.Error("Store health check failed", zap.Error(err))
	}
	services["store"] = gin.H{"status": storeStatus}

	// PostgreSQL (apenas quando é o backend ativo)
	if h.postgresDB != nil {
		postgresStatus := "healthy"
		if err := h.postgresDB.Ping(); err != nil {
			postgresStatus = "unhealthy"
			status["status"] = "unhealthy"
			h.logger.Error("PostgreSQL health check failed", zap.Error(err))
		}
		stats := h.postgresDB.GetStats()
		services["postgresql"] = gin.H{
			"status": postgresStatus,
			"stats": gin.H{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
			},
		}
	}

	// Redis (backend ou caché L2)
	if h.redisDB != nil {
		redisStatus := "healthy"
		if err := h.redisDB.Ping(ctx); err != nil {
			redisStatus = "unhealthy"
			status["status"] = "unhealthy"
			h.logger.Error("Redis health check failed", zap.Error(err))
		}
		services["redis"] = gin.H{"status": redisStatus}
	}

	if h.cacheStats != nil {
		stats := h.cacheStats()
		services["snapshot_cache"] = gin.H{
			"hits":           stats.Hits,
			"misses":         stats.Misses,
			"total_requests": stats.TotalRequests,
		}
	}

	httpStatus := http.StatusOK
	if status["status"] == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, status)
}
