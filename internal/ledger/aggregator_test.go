package ledger

import (
	"testing"

	"greenstock-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exit(batchID string, qty float64) models.Movement {
	return models.Movement{
		ID:       batchID + "-s",
		BatchID:  batchID,
		ExitDate: "2024-02-01",
		Quantity: qty,
	}
}

func TestAggregateBalanceConservation(t *testing.T) {
	movements := []models.Movement{
		{ID: "1", BatchID: "001/001/002", EntryDate: "2024-01-02", ProductName: "Sulfato", ProductCode: "002",
			Supplier: "Fornecedor A", SupplierCode: "001", Quantity: 100, UnitCost: 5.0},
		exit("001/001/002", 30),
		exit("001/001/002", 15.5),
	}

	balances := Aggregate(movements, nil)
	require.Len(t, balances, 1)
	assert.InDelta(t, 54.5, balances[0].RemainingQuantity, models.Epsilon)
	assert.InDelta(t, 54.5*5.0, balances[0].EstimatedValue, models.Epsilon)
	assert.Equal(t, "Fornecedor A", balances[0].Supplier)
	assert.Equal(t, 5.0, balances[0].UnitCost)
}

func TestAggregateBatchDisappearsAtZero(t *testing.T) {
	movements := []models.Movement{
		{ID: "1", BatchID: "001/001/002", EntryDate: "2024-01-02", Quantity: 50, ProductName: "Sulfato"},
		exit("001/001/002", 50),
	}
	assert.Empty(t, Aggregate(movements, nil))

	// Saldo negativo também some da visão: o erro só aparece no histórico cru.
	movements = append(movements, exit("001/001/002", 10))
	assert.Empty(t, Aggregate(movements, nil))
}

func TestAggregateUnknownBatchFallbackKey(t *testing.T) {
	movements := []models.Movement{
		{ID: "1", BatchID: "", ProductCode: "002", ProductName: "Sulfato", EntryDate: "2024-01-02", Quantity: 10},
		{ID: "2", BatchID: "", ProductCode: "003", ProductName: "Óxido", EntryDate: "2024-01-03", Quantity: 20},
	}
	balances := Aggregate(movements, nil)
	// Linhas legadas sem lote não se fundem entre produtos distintos.
	require.Len(t, balances, 2)
}

func TestAggregateLastEntryWinsCost(t *testing.T) {
	movements := []models.Movement{
		{ID: "1", BatchID: "001/001/002", EntryDate: "2024-01-02", Quantity: 10, UnitCost: 5.0, ProductName: "Sulfato"},
		{ID: "2", BatchID: "001/001/002", EntryDate: "2024-01-09", Quantity: 10, UnitCost: 7.0, ProductName: "Sulfato"},
	}
	balances := Aggregate(movements, nil)
	require.Len(t, balances, 1)
	assert.Equal(t, 7.0, balances[0].UnitCost)
	assert.InDelta(t, 20.0, balances[0].RemainingQuantity, models.Epsilon)
}

func TestAggregateServicePhysicalNeverMerge(t *testing.T) {
	movements := []models.Movement{
		{ID: "1", BatchID: "001/001/002", EntryDate: "2024-01-02", Quantity: 10, ProductName: "Sulfato", IsService: false},
		{ID: "2", BatchID: "001/001/002", EntryDate: "2024-01-02", Quantity: 4, ProductName: "Moagem", IsService: true},
	}
	balances := Aggregate(movements, nil)
	require.Len(t, balances, 2)

	physical := FilterKind(balances, models.KindPhysical)
	service := FilterKind(balances, models.KindService)
	require.Len(t, physical, 1)
	require.Len(t, service, 1)
	assert.InDelta(t, 10.0, physical[0].RemainingQuantity, models.Epsilon)
	assert.InDelta(t, 4.0, service[0].RemainingQuantity, models.Epsilon)
}

func TestAggregateAttachesAnalysis(t *testing.T) {
	movements := []models.Movement{
		{ID: "1", BatchID: "001/001/002", ProductCode: "002", EntryDate: "2024-01-02", Quantity: 10, ProductName: "Sulfato"},
		{ID: "2", BatchID: "001/002/003", ProductCode: "003", EntryDate: "2024-01-03", Quantity: 10, ProductName: "Óxido"},
	}
	analyses := []models.ProductAnalysis{
		{BatchID: "001/001/002", ProductCode: "002", Cu: 22.5},
		{ProductCode: "003", Zn: 11.0}, // registro legado por produto
	}

	balances := Aggregate(movements, analyses)
	require.Len(t, balances, 2)

	byBatch := map[string]models.BatchBalance{}
	for _, b := range balances {
		byBatch[b.BatchID] = b
	}
	assert.Equal(t, 22.5, byBatch["001/001/002"].Analysis.Cu)
	assert.Equal(t, 11.0, byBatch["001/002/003"].Analysis.Zn)
}

func TestAggregateSortedByProductName(t *testing.T) {
	movements := []models.Movement{
		{ID: "1", BatchID: "001/001/002", EntryDate: "2024-01-02", Quantity: 10, ProductName: "Zinco"},
		{ID: "2", BatchID: "001/002/003", EntryDate: "2024-01-02", Quantity: 10, ProductName: "Borra"},
	}
	balances := Aggregate(movements, nil)
	require.Len(t, balances, 2)
	assert.Equal(t, "Borra", balances[0].ProductName)
	assert.Equal(t, "Zinco", balances[1].ProductName)
}

func TestRemaining(t *testing.T) {
	movements := []models.Movement{
		{ID: "1", BatchID: "001/001/002", EntryDate: "2024-01-02", Quantity: 10, ProductName: "Sulfato"},
	}
	balances := Aggregate(movements, nil)
	assert.InDelta(t, 10.0, Remaining(balances, "001/001/002"), models.Epsilon)
	assert.Zero(t, Remaining(balances, "999/001/002"))
}
