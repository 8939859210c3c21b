package store

import (
	"context"
	"encoding/json"

	"greenstock-service/internal/models"

	"go.uber.org/zap"
)

// Chaves de persistência: uma coleção por chave, cada valor é um array JSON.
const (
	KeyMovements        = "movements"
	KeyAnalyses         = "analyses"
	KeySuppliers        = "suppliers"
	KeyClients          = "clients"
	KeyProducts         = "products"
	KeyServices         = "services"
	KeyProductionOrders = "production-orders"
)

// Keys todas as chaves de coleção, na ordem de carga.
var Keys = []string{
	KeyMovements, KeyAnalyses, KeySuppliers, KeyClients,
	KeyProducts, KeyServices, KeyProductionOrders,
}

// Store camada de persistência chave -> array JSON. Os backends (arquivo,
// Redis, Postgres, memória) são intercambiáveis; o service trabalha sempre
// em cima da cópia em memória e persiste a coleção inteira a cada mutação.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Dataset estado completo do livro em memória. Carregado uma vez na
// subida e mantido pelo service; cada coleção é persistida integralmente
// após cada mutação (modelo de escritor único).
type Dataset struct {
	Movements        []models.Movement
	Analyses         []models.ProductAnalysis
	Suppliers        []models.RegistryEntity
	Clients          []models.RegistryEntity
	Products         []models.ProductEntity
	Services         []models.ServiceEntity
	ProductionOrders []models.ProductionOrder
}

// LoadDataset carrega todas as coleções com guarda individual: valor
// corrompido em uma chave vira coleção vazia com aviso no log, sem
// derrubar as demais nem a subida do serviço.
func LoadDataset(ctx context.Context, s Store, logger *zap.Logger) *Dataset {
	d := &Dataset{}
	loadCollection(ctx, s, logger, KeyMovements, &d.Movements)
	loadCollection(ctx, s, logger, KeyAnalyses, &d.Analyses)
	loadCollection(ctx, s, logger, KeySuppliers, &d.Suppliers)
	loadCollection(ctx, s, logger, KeyClients, &d.Clients)
	loadCollection(ctx, s, logger, KeyProducts, &d.Products)
	loadCollection(ctx, s, logger, KeyServices, &d.Services)
	loadCollection(ctx, s, logger, KeyProductionOrders, &d.ProductionOrders)
	return d
}

func loadCollection[T any](ctx context.Context, s Store, logger *zap.Logger, key string, dst *[]T) {
	data, err := s.Load(ctx, key)
	if err != nil {
		logger.Warn("Falha lendo coleção persistida, iniciando vazia",
			zap.String("key", key), zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("Coleção persistida corrompida, iniciando vazia",
			zap.String("key", key), zap.Error(err))
		*dst = nil
	}
}

// SaveCollection serializa e grava uma coleção do dataset pela chave.
func (d *Dataset) SaveCollection(ctx context.Context, s Store, key string) error {
	var v any
	switch key {
	case KeyMovements:
		v = emptyIfNil(d.Movements)
	case KeyAnalyses:
		v = emptyIfNil(d.Analyses)
	case KeySuppliers:
		v = emptyIfNil(d.Suppliers)
	case KeyClients:
		v = emptyIfNil(d.Clients)
	case KeyProducts:
		v = emptyIfNil(d.Products)
	case KeyServices:
		v = emptyIfNil(d.Services)
	case KeyProductionOrders:
		v = emptyIfNil(d.ProductionOrders)
	default:
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Save(ctx, key, data)
}

// SaveAll persiste todas as coleções (usado pela importação, que substitui
// o estado inteiro).
func (d *Dataset) SaveAll(ctx context.Context, s Store) error {
	for _, key := range Keys {
		if err := d.SaveCollection(ctx, s, key); err != nil {
			return err
		}
	}
	return nil
}

// emptyIfNil garante que coleções vazias persistam como [] e não null.
func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
