package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"greenstock-service/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const snapshotKey = "greenstock:snapshot:stock"

// CacheStats estatísticas do caché de snapshot
type CacheStats struct {
	Hits          int64
	Misses        int64
	TotalRequests int64
}

// SnapshotCache caché multi-nível da visão agregada de estoque. A visão é
// derivada, então invalidar a cada mutação é sempre seguro: no pior caso o
// agregador recalcula tudo na próxima leitura.
type SnapshotCache struct {
	// L1: memória local (mais rápido)
	l1Mutex   sync.RWMutex
	l1        []models.BatchBalance
	l1Valid   bool
	l1Expires time.Time

	// L2: Redis (opcional; nil quando o Redis não está configurado)
	redisClient *redis.Client

	ttl    time.Duration
	logger *zap.Logger

	// Estatísticas
	statsMutex sync.RWMutex
	hits       int64
	misses     int64
}

// NewSnapshotCache cria o caché. redisClient pode ser nil: o caché opera
// só com o nível de memória.
func NewSnapshotCache(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

// Get retorna o snapshot cacheado ou (nil, false) num miss.
func (sc *SnapshotCache) Get(ctx context.Context) ([]models.BatchBalance, bool) {
	// 1. L1 (memória local)
	sc.l1Mutex.RLock()
	if sc.l1Valid && time.Now().Before(sc.l1Expires) {
		snapshot := sc.l1
		sc.l1Mutex.RUnlock()
		sc.recordHit()
		return snapshot, true
	}
	sc.l1Mutex.RUnlock()

	// 2. L2 (Redis)
	if sc.redisClient != nil {
		if data, err := sc.redisClient.Get(ctx, snapshotKey).Bytes(); err == nil {
			var snapshot []models.BatchBalance
			if err := json.Unmarshal(data, &snapshot); err == nil {
				sc.setL1(snapshot)
				sc.recordHit()
				sc.logger.Debug("L2 cache hit", zap.Int("batches", len(snapshot)))
				return snapshot, true
			}
		}
	}

	sc.recordMiss()
	return nil, false
}

// Set armazena o snapshot nos dois níveis.
func (sc *SnapshotCache) Set(ctx context.Context, snapshot []models.BatchBalance) {
	sc.setL1(snapshot)

	if sc.redisClient != nil {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return
		}
		if err := sc.redisClient.Set(ctx, snapshotKey, data, sc.ttl).Err(); err != nil {
			sc.logger.Debug("Falha gravando snapshot no Redis", zap.Error(err))
		}
	}
}

// Invalidate descarta o snapshot nos dois níveis. Chamado após qualquer
// mutação do livro.
func (sc *SnapshotCache) Invalidate(ctx context.Context) {
	sc.l1Mutex.Lock()
	sc.l1 = nil
	sc.l1Valid = false
	sc.l1Mutex.Unlock()

	if sc.redisClient != nil {
		if err := sc.redisClient.Del(ctx, snapshotKey).Err(); err != nil {
			sc.logger.Debug("Falha invalidando snapshot no Redis", zap.Error(err))
		}
	}
}

// GetStats retorna estatísticas do caché
func (sc *SnapshotCache) GetStats() CacheStats {
	sc.statsMutex.RLock()
	defer sc.statsMutex.RUnlock()
	return CacheStats{
		Hits:          sc.hits,
		Misses:        sc.misses,
		TotalRequests: sc.hits + sc.misses,
	}
}

func (sc *SnapshotCache) setL1(snapshot []models.BatchBalance) {
	sc.l1Mutex.Lock()
	sc.l1 = snapshot
	sc.l1Valid = true
	sc.l1Expires = time.Now().Add(sc.ttl)
	sc.l1Mutex.Unlock()
}

func (sc *SnapshotCache) recordHit() {
	sc.statsMutex.Lock()
	sc.hits++
	sc.statsMutex.Unlock()
}

func (sc *SnapshotCache) recordMiss() {
	sc.statsMutex.Lock()
	sc.misses++
	sc.statsMutex.Unlock()
}
