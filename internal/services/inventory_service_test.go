package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenstock-service/internal/cache"
	"greenstock-service/internal/models"
	"greenstock-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*MemoryFixture, InventoryService) {
	t.Helper()
	mem := store.NewMemoryStore()
	data := &store.Dataset{}
	snapshot := cache.NewSnapshotCache(nil, time.Minute, zap.NewNop())
	svc := NewInventoryService(mem, data, snapshot, zap.NewNop())
	return &MemoryFixture{Store: mem, Data: data}, svc
}

// MemoryFixture expõe o estado interno aos testes.
type MemoryFixture struct {
	Store *store.MemoryStore
	Data  *store.Dataset
}

func entryReq(supplierCode, productCode string, qty, cost float64) models.AddMovementRequest {
	return models.AddMovementRequest{
		EntryDate:    "2024-01-10",
		Supplier:     "Mineradora Sul",
		SupplierCode: supplierCode,
		ProductName:  "Óxido de Zinco",
		ProductCode:  productCode,
		Quantity:     qty,
		UnitCost:     cost,
	}
}

func TestAddMovementAllocatesBatchID(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)
	assert.Equal(t, "013/001/004", m.BatchID)
	assert.NotEmpty(t, m.ID)

	// Segunda entrada do mesmo fornecedor ganha a sequência seguinte.
	m2, err := svc.AddMovement(ctx, entryReq("013", "007", 50, 3.0))
	require.NoError(t, err)
	assert.Equal(t, "013/002/007", m2.BatchID)

	// Fornecedor diferente tem sequência própria.
	m3, err := svc.AddMovement(ctx, entryReq("020", "004", 10, 1.0))
	require.NoError(t, err)
	assert.Equal(t, "020/001/004", m3.BatchID)
}

func TestAddMovementNormalizesCodes(t *testing.T) {
	_, svc := newTestService(t)

	m, err := svc.AddMovement(context.Background(), entryReq("13", "4", 100, 5.0))
	require.NoError(t, err)
	assert.Equal(t, "013", m.SupplierCode)
	assert.Equal(t, "004", m.ProductCode)
	assert.Equal(t, "013/001/004", m.BatchID)
}

func TestAddMovementRequiresExactlyOneDate(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	req := entryReq("013", "004", 100, 5.0)
	req.EntryDate = ""
	_, err := svc.AddMovement(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = entryReq("013", "004", 100, 5.0)
	req.ExitDate = "2024-02-01"
	_, err = svc.AddMovement(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddMovementRejectsKindMismatch(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	req := models.AddMovementRequest{
		BatchID:      m.BatchID,
		ExitDate:     "2024-02-01",
		Supplier:     "Cliente X",
		SupplierCode: "013",
		ProductName:  "Óxido de Zinco",
		ProductCode:  "004",
		Quantity:     10,
		IsService:    true,
	}
	_, err = svc.AddMovement(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddMovementExitChecksAvailability(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	exit := models.AddMovementRequest{
		BatchID:      m.BatchID,
		ExitDate:     "2024-02-01",
		Supplier:     "Cliente X",
		SupplierCode: "013",
		ProductName:  "Óxido de Zinco",
		ProductCode:  "004",
		Quantity:     120,
	}
	_, err = svc.AddMovement(ctx, exit)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Saída do saldo exato é permitida.
	exit.Quantity = 100
	_, err = svc.AddMovement(ctx, exit)
	require.NoError(t, err)

	// Lote zerado some da visão agregada.
	assert.Empty(t, svc.CurrentStock(ctx, nil))
}

func TestAddMovementExitRequiresBatch(t *testing.T) {
	_, svc := newTestService(t)

	exit := models.AddMovementRequest{
		ExitDate:     "2024-02-01",
		Supplier:     "Cliente X",
		SupplierCode: "013",
		ProductName:  "Óxido de Zinco",
		ProductCode:  "004",
		Quantity:     10,
	}
	_, err := svc.AddMovement(context.Background(), exit)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddMovementRollsBackOnPersistFailure(t *testing.T) {
	fx, svc := newTestService(t)
	ctx := context.Background()

	fx.Store.FailOnSave = map[string]error{store.KeyMovements: errors.New("disco cheio")}
	_, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.Error(t, err)
	assert.Empty(t, fx.Data.Movements)

	fx.Store.FailOnSave = nil
	m, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)
	// A falha anterior não consumiu sequência.
	assert.Equal(t, "013/001/004", m.BatchID)
}

func TestDeleteMovement(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMovement(ctx, m.ID))
	assert.Empty(t, svc.Movements(ctx, models.MovementFilter{}))

	assert.ErrorIs(t, svc.DeleteMovement(ctx, "inexistente"), ErrNotFound)
}

func TestMovementsFilter(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	labor := entryReq("020", "101", 50, 2.0)
	labor.IsService = true
	labor.ProductName = "Ensacamento"
	labor.EntryDate = "2024-03-01"
	_, err = svc.AddMovement(ctx, labor)
	require.NoError(t, err)

	kind := models.KindService
	onlyLabor := svc.Movements(ctx, models.MovementFilter{Kind: &kind})
	require.Len(t, onlyLabor, 1)
	assert.Equal(t, "Ensacamento", onlyLabor[0].ProductName)

	from := "2024-02-01"
	late := svc.Movements(ctx, models.MovementFilter{DateFrom: &from})
	require.Len(t, late, 1)
	assert.Equal(t, "2024-03-01", late[0].EntryDate)

	supplier := "013"
	bySupplier := svc.Movements(ctx, models.MovementFilter{SupplierCode: &supplier})
	assert.Len(t, bySupplier, 1)
}

func TestCurrentStockUsesSnapshotAndInvalidation(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	stock := svc.CurrentStock(ctx, nil)
	require.Len(t, stock, 1)
	assert.InDelta(t, 100.0, stock[0].RemainingQuantity, models.Epsilon)

	// Segunda leitura vem do caché.
	svc.CurrentStock(ctx, nil)
	stats := svc.CacheStats()
	assert.GreaterOrEqual(t, stats.Hits, int64(1))

	// Mutação invalida: a próxima leitura reflete a saída.
	exit := models.AddMovementRequest{
		BatchID: stock[0].BatchID, ExitDate: "2024-02-01",
		Supplier: "Cliente X", SupplierCode: "013",
		ProductName: "Óxido de Zinco", ProductCode: "004", Quantity: 30,
	}
	_, err = svc.AddMovement(ctx, exit)
	require.NoError(t, err)

	stock = svc.CurrentStock(ctx, nil)
	require.Len(t, stock, 1)
	assert.InDelta(t, 70.0, stock[0].RemainingQuantity, models.Epsilon)
}

func TestSaveAnalysisAttachesToStock(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	require.NoError(t, svc.SaveAnalysis(ctx, models.ProductAnalysis{
		BatchID: m.BatchID, ProductCode: "004", ZnAR: 72.3,
	}))

	stock := svc.CurrentStock(ctx, nil)
	require.Len(t, stock, 1)
	assert.InDelta(t, 72.3, stock[0].Analysis.ZnAR, models.Epsilon)

	// Regravar substitui, não duplica.
	require.NoError(t, svc.SaveAnalysis(ctx, models.ProductAnalysis{
		BatchID: m.BatchID, ProductCode: "004", ZnAR: 70.0,
	}))
	a := svc.AnalysisFor(ctx, m.BatchID, "004")
	assert.InDelta(t, 70.0, a.ZnAR, models.Epsilon)

	err = svc.SaveAnalysis(ctx, models.ProductAnalysis{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProcessOrderFullFlow(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	src, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	order, movements, err := svc.ProcessOrder(ctx, models.ProcessOrderRequest{
		SourceBatchID:     src.BatchID,
		SourceProduct:     "Óxido de Zinco",
		ProcessedQuantity: 80,
		Supplier:          "Mineradora Sul",
		SupplierCode:      "013",
		Date:              "2024-02-10",
		Outputs: []models.ProcessOutputRequest{
			{ProductName: "Zinco Fino", ProductCode: "020", Quantity: 50, UnitCost: 8.0},
			{ProductName: "Borra", ProductCode: "030", Quantity: 25, UnitCost: 1.0},
		},
		Loss: 5,
	})
	require.NoError(t, err)
	require.Len(t, movements, 3) // saída da origem + duas entradas

	require.Len(t, order.Outputs, 2)
	assert.Equal(t, "013/002/020", order.Outputs[0].NewBatchID)
	assert.Equal(t, "013/003/030", order.Outputs[1].NewBatchID)
	assert.Equal(t, 5.0, order.Loss)

	orders := svc.ProductionOrders(ctx)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	stock := svc.CurrentStock(ctx, nil)
	require.Len(t, stock, 3)
	byBatch := map[string]float64{}
	for _, b := range stock {
		byBatch[b.BatchID] = b.RemainingQuantity
	}
	assert.InDelta(t, 20.0, byBatch[src.BatchID], models.Epsilon)
	assert.InDelta(t, 50.0, byBatch["013/002/020"], models.Epsilon)
	assert.InDelta(t, 25.0, byBatch["013/003/030"], models.Epsilon)
}

func TestProcessOrderInsufficientStock(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	src, err := svc.AddMovement(ctx, entryReq("013", "004", 50, 5.0))
	require.NoError(t, err)

	_, _, err = svc.ProcessOrder(ctx, models.ProcessOrderRequest{
		SourceBatchID:     src.BatchID,
		SourceProduct:     "Óxido de Zinco",
		ProcessedQuantity: 60,
		Supplier:          "Mineradora Sul",
		SupplierCode:      "013",
		Date:              "2024-02-10",
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestProcessOrderAtomicRollback(t *testing.T) {
	fx, svc := newTestService(t)
	ctx := context.Background()

	src, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	fx.Store.FailOnSave = map[string]error{store.KeyProductionOrders: errors.New("falha")}
	_, _, err = svc.ProcessOrder(ctx, models.ProcessOrderRequest{
		SourceBatchID:     src.BatchID,
		SourceProduct:     "Óxido de Zinco",
		ProcessedQuantity: 80,
		Supplier:          "Mineradora Sul",
		SupplierCode:      "013",
		Date:              "2024-02-10",
		Outputs: []models.ProcessOutputRequest{
			{ProductName: "Zinco Fino", ProductCode: "020", Quantity: 80, UnitCost: 8.0},
		},
	})
	require.Error(t, err)

	// Nem os movimentos nem a ordem sobraram: ou tudo, ou nada.
	assert.Len(t, fx.Data.Movements, 1)
	assert.Empty(t, fx.Data.ProductionOrders)
}

func TestProcessOrderScrapWriteOff(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	src, err := svc.AddMovement(ctx, entryReq("013", "004", 40, 5.0))
	require.NoError(t, err)

	order, movements, err := svc.ProcessOrder(ctx, models.ProcessOrderRequest{
		SourceBatchID:     src.BatchID,
		SourceProduct:     "Óxido de Zinco",
		ProcessedQuantity: 40,
		Supplier:          "Mineradora Sul",
		SupplierCode:      "013",
		Date:              "2024-02-10",
		Loss:              40,
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Empty(t, order.Outputs)
	assert.Empty(t, svc.CurrentStock(ctx, nil))
}

func TestDashboardStats(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	src, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)

	exit := models.AddMovementRequest{
		BatchID: src.BatchID, ExitDate: "2024-02-01",
		Supplier: "Cliente X", SupplierCode: "013",
		ProductName: "Óxido de Zinco", ProductCode: "004",
		Quantity: 30, UnitCost: 8.0,
	}
	_, err = svc.AddMovement(ctx, exit)
	require.NoError(t, err)

	stats := svc.DashboardStats(ctx)
	assert.InDelta(t, 70.0, stats.TotalStock, models.Epsilon)
	assert.InDelta(t, 350.0, stats.TotalCost, models.Epsilon)
	assert.InDelta(t, 240.0, stats.Revenue, models.Epsilon) // 30 x 8
	assert.InDelta(t, 90.0, stats.Profit, models.Epsilon)   // 30 x (8 - 5)
}

func TestLaborBilling(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	labor := entryReq("020", "101", 50, 2.0)
	labor.IsService = true
	labor.ProductName = "Ensacamento"
	src, err := svc.AddMovement(ctx, labor)
	require.NoError(t, err)

	exit := models.AddMovementRequest{
		BatchID: src.BatchID, ExitDate: "2024-02-01",
		Supplier: "Cliente X", SupplierCode: "020",
		ProductName: "Ensacamento", ProductCode: "101",
		Quantity: 20, IsService: true,
	}
	_, err = svc.AddMovement(ctx, exit)
	require.NoError(t, err)

	rows := svc.LaborBilling(ctx)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cliente X", rows[0].Client)
	// Saída sem custo próprio herda o da entrada do lote.
	assert.InDelta(t, 2.0, rows[0].UnitCost, models.Epsilon)
	assert.InDelta(t, 40.0, rows[0].Total, models.Epsilon)
}

func TestRegistryCodeConflict(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.SaveSupplier(ctx, models.SaveRegistryRequest{
		RegistryEntity: models.RegistryEntity{Code: "13", Name: "Mineradora Sul"},
	})
	require.NoError(t, err)
	assert.Equal(t, "013", first.Code)

	// Mesmo código em outro registro: conflito sem overwrite.
	_, err = svc.SaveSupplier(ctx, models.SaveRegistryRequest{
		RegistryEntity: models.RegistryEntity{Code: "013", Name: "Outra Mineradora"},
	})
	assert.ErrorIs(t, err, ErrCodeConflict)

	// Com overwrite, o conflitante sai e o novo assume o código.
	second, err := svc.SaveSupplier(ctx, models.SaveRegistryRequest{
		RegistryEntity: models.RegistryEntity{Code: "013", Name: "Outra Mineradora"},
		Overwrite:      true,
	})
	require.NoError(t, err)

	suppliers := svc.Suppliers(ctx)
	require.Len(t, suppliers, 1)
	assert.Equal(t, second.ID, suppliers[0].ID)
	assert.Equal(t, "Outra Mineradora", suppliers[0].Name)

	// Editar o próprio registro pelo id não conflita consigo mesmo.
	second.Name = "Outra Mineradora Ltda"
	_, err = svc.SaveSupplier(ctx, models.SaveRegistryRequest{RegistryEntity: *second})
	require.NoError(t, err)
}

func TestReplicateSupplierToClients(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	supplier, err := svc.SaveSupplier(ctx, models.SaveRegistryRequest{
		RegistryEntity: models.RegistryEntity{Code: "013", Name: "Mineradora Sul", CNPJ: "11.222.333/0001-44"},
	})
	require.NoError(t, err)

	client, err := svc.ReplicateSupplierToClients(ctx, supplier.ID)
	require.NoError(t, err)
	assert.NotEqual(t, supplier.ID, client.ID)
	assert.Equal(t, supplier.Code, client.Code)

	clients := svc.Clients(ctx)
	require.Len(t, clients, 1)
	assert.Equal(t, "Mineradora Sul", clients[0].Name)

	// Replicar de novo atualiza o cliente existente, sem duplicar.
	supplier.Name = "Mineradora Sul Ltda"
	_, err = svc.SaveSupplier(ctx, models.SaveRegistryRequest{RegistryEntity: *supplier, Overwrite: true})
	require.NoError(t, err)
	_, err = svc.ReplicateSupplierToClients(ctx, supplier.ID)
	require.NoError(t, err)
	clients = svc.Clients(ctx)
	require.Len(t, clients, 1)
	assert.Equal(t, "Mineradora Sul Ltda", clients[0].Name)

	_, err = svc.ReplicateSupplierToClients(ctx, "inexistente")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRegistryEntities(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.SaveProduct(ctx, models.ProductEntity{Code: "004", Name: "Óxido de Zinco"}, false)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.Empty(t, svc.Products(ctx))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrNotFound)

	sv, err := svc.SaveService(ctx, models.ServiceEntity{Code: "101", Name: "Ensacamento", DefaultPrice: 2.5}, false)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteService(ctx, sv.ID))
	assert.Empty(t, svc.Services(ctx))
}

func TestImportRequiresConfirmation(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.ImportWorkbook(context.Background(), []byte("qualquer"), false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
}

func TestExportImportReplacesState(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)
	_, err = svc.SaveSupplier(ctx, models.SaveRegistryRequest{
		RegistryEntity: models.RegistryEntity{Code: "013", Name: "Mineradora Sul"},
	})
	require.NoError(t, err)

	data, err := svc.ExportWorkbook(ctx)
	require.NoError(t, err)

	// Um segundo serviço, com estado divergente, importa o arquivo.
	_, other := newTestService(t)
	_, err = other.AddMovement(ctx, entryReq("099", "111", 7, 1.0))
	require.NoError(t, err)

	result, err := other.ImportWorkbook(ctx, data, true)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 1, result.Collections[store.KeyMovements])

	// Substituição, não mesclagem: o movimento antigo sumiu.
	movements := other.Movements(ctx, models.MovementFilter{})
	require.Len(t, movements, 1)
	assert.Equal(t, "013/001/004", movements[0].BatchID)

	suppliers := other.Suppliers(ctx)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "Mineradora Sul", suppliers[0].Name)
}

func TestImportRollsBackOnPersistFailure(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddMovement(ctx, entryReq("013", "004", 100, 5.0))
	require.NoError(t, err)
	data, err := svc.ExportWorkbook(ctx)
	require.NoError(t, err)

	fx2, svc2 := newTestService(t)
	_, err = svc2.AddMovement(ctx, entryReq("099", "111", 7, 1.0))
	require.NoError(t, err)

	fx2.Store.FailOnSave = map[string]error{store.KeyAnalyses: errors.New("falha")}
	_, err = svc2.ImportWorkbook(ctx, data, true)
	require.Error(t, err)

	// Estado em memória restaurado ao anterior à importação.
	require.Len(t, fx2.Data.Movements, 1)
	assert.Equal(t, "099/001/111", fx2.Data.Movements[0].BatchID)
}
