package interchange

import (
	"bytes"
	"testing"

	"greenstock-service/internal/ledger"
	"greenstock-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNormalizeDate(t *testing.T) {
	t.Run("ISO passa direto", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", NormalizeDate("2024-03-15"))
	})

	t.Run("ISO com hora perde o sufixo", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", NormalizeDate("2024-03-15T10:30:00"))
		assert.Equal(t, "2024-03-15", NormalizeDate("2024-03-15 10:30"))
	})

	t.Run("DD/MM/YYYY vira ISO", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", NormalizeDate("15/03/2024"))
		assert.Equal(t, "2024-01-05", NormalizeDate("5/1/2024"))
	})

	t.Run("ano de dois dígitos assume 2000+", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", NormalizeDate("15/03/24"))
	})

	t.Run("serial do Excel", func(t *testing.T) {
		// 45366 = 15/03/2024 no sistema 1900
		assert.Equal(t, "2024-03-15", NormalizeDate("45366"))
	})

	t.Run("vazio e lixo viram vazio", func(t *testing.T) {
		assert.Equal(t, "", NormalizeDate(""))
		assert.Equal(t, "", NormalizeDate("não é data"))
		assert.Equal(t, "", NormalizeDate("99/99/2024"))
	})
}

func TestPadCode(t *testing.T) {
	assert.Equal(t, "001", padCode("1"))
	assert.Equal(t, "012", padCode("12"))
	assert.Equal(t, "123", padCode("123"))
	assert.Equal(t, "1234", padCode("1234"))
	assert.Equal(t, "", padCode("  "))
}

func TestFindSheet(t *testing.T) {
	sheets := []string{"entrada_saida", "Fornecedores", "Resumo"}

	name, ok := findSheet(sheets, SheetMovements)
	require.True(t, ok)
	assert.Equal(t, "entrada_saida", name)

	name, ok = findSheet(sheets, SheetSuppliers)
	require.True(t, ok)
	assert.Equal(t, "Fornecedores", name)

	_, ok = findSheet(sheets, SheetProducts)
	assert.False(t, ok)
}

func TestRowValueAliasOrder(t *testing.T) {
	header := []string{"Cod. Produto", "Produto", "Qtd"}
	idx := headerIndex(header)
	row := []string{"7", "Óxido de Zinco", "100"}

	assert.Equal(t, "7", rowValue(row, idx, movementColumns["productCode"]))
	assert.Equal(t, "Óxido de Zinco", rowValue(row, idx, movementColumns["productName"]))
	assert.Equal(t, "100", rowValue(row, idx, movementColumns["quantity"]))
	assert.Equal(t, "", rowValue(row, idx, movementColumns["observations"]))
}

// Ciclo completo exportar -> importar: os movimentos sobrevivem intactos e
// o saldo recalculado bate com o original.
func TestExportImportRoundTrip(t *testing.T) {
	movements := []models.Movement{
		{
			ID: "m1", BatchID: "013/001/004", EntryDate: "2024-01-10",
			Supplier: "Mineradora Sul", SupplierCode: "013",
			ProductName: "Óxido de Zinco", ProductCode: "004",
			Quantity: 100, UnitCost: 5.0,
		},
		{
			ID: "m2", BatchID: "013/001/004", ExitDate: "2024-02-01",
			Supplier: "Cliente X", SupplierCode: "013",
			ProductName: "Óxido de Zinco", ProductCode: "004",
			Quantity: 30,
		},
		{
			ID: "m3", BatchID: "020/001/101", EntryDate: "2024-01-12",
			Supplier: "Oficina Norte", SupplierCode: "020",
			ProductName: "Ensacamento", ProductCode: "101",
			Quantity: 50, UnitCost: 2.0, IsService: true,
		},
	}
	analyses := []models.ProductAnalysis{
		{BatchID: "013/001/004", ProductCode: "004", CuAR: 1.5, ZnAR: 72.3, H2O: 0.8},
	}
	suppliers := []models.RegistryEntity{
		{ID: "s1", Code: "013", Name: "Mineradora Sul", CNPJ: "11.222.333/0001-44",
			Address: models.Address{State: "MG", City: "Uberaba"}},
	}
	products := []models.ProductEntity{{ID: "p1", Code: "004", Name: "Óxido de Zinco"}}
	services := []models.ServiceEntity{{ID: "sv1", Code: "101", Name: "Ensacamento", DefaultPrice: 2.5}}

	balances := ledger.Aggregate(movements, analyses)

	data, err := Export(ExportData{
		PhysicalStock: ledger.FilterKind(balances, models.KindPhysical),
		ServiceStock:  ledger.FilterKind(balances, models.KindService),
		Movements:     movements,
		Suppliers:     suppliers,
		Products:      products,
		Services:      services,
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	parsed, err := Parse(data)
	require.NoError(t, err)

	require.NotNil(t, parsed.Movements)
	require.Len(t, *parsed.Movements, 3)
	assert.Empty(t, parsed.SkippedSheets)

	byID := map[string]models.Movement{}
	for _, m := range *parsed.Movements {
		byID[m.ID] = m
	}
	entry := byID["m1"]
	assert.Equal(t, "013/001/004", entry.BatchID)
	assert.Equal(t, "2024-01-10", entry.EntryDate)
	assert.Equal(t, "004", entry.ProductCode)
	assert.Equal(t, 100.0, entry.Quantity)
	assert.Equal(t, 5.0, entry.UnitCost)
	assert.False(t, entry.IsService)

	exit := byID["m2"]
	assert.True(t, exit.IsExit())
	assert.Equal(t, 30.0, exit.Quantity)

	labor := byID["m3"]
	assert.True(t, labor.IsService)

	// Saldo recalculado sobre os movimentos importados: 100 - 30 = 70
	reaggregated := ledger.Aggregate(*parsed.Movements, nil)
	physical := ledger.FilterKind(reaggregated, models.KindPhysical)
	require.Len(t, physical, 1)
	assert.Equal(t, "013/001/004", physical[0].BatchID)
	assert.InDelta(t, 70.0, physical[0].RemainingQuantity, models.Epsilon)
	assert.InDelta(t, 350.0, physical[0].EstimatedValue, models.Epsilon)

	// A análise sai da aba de estoque e volta associada ao lote
	require.NotNil(t, parsed.Analyses)
	require.Len(t, *parsed.Analyses, 1)
	a := (*parsed.Analyses)[0]
	assert.Equal(t, "013/001/004", a.BatchID)
	assert.InDelta(t, 72.3, a.ZnAR, models.Epsilon)

	// Cadastros fecham o ciclo
	require.NotNil(t, parsed.Suppliers)
	require.Len(t, *parsed.Suppliers, 1)
	assert.Equal(t, "Mineradora Sul", (*parsed.Suppliers)[0].Name)
	assert.Equal(t, "MG", (*parsed.Suppliers)[0].Address.State)

	require.NotNil(t, parsed.Products)
	assert.Equal(t, "004", (*parsed.Products)[0].Code)

	require.NotNil(t, parsed.Services)
	assert.Equal(t, 2.5, (*parsed.Services)[0].DefaultPrice)
}

func TestParseToleratesHandEditedSheet(t *testing.T) {
	// Planilha mínima feita à mão: cabeçalhos com apelidos, códigos sem
	// zeros, datas em DD/MM/YYYY e vírgula decimal.
	data := buildHandEditedWorkbook(t)

	parsed, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, parsed.Movements)
	require.Len(t, *parsed.Movements, 1)

	m := (*parsed.Movements)[0]
	assert.NotEmpty(t, m.ID) // id gerado quando a planilha não traz
	assert.Equal(t, "2024-03-15", m.EntryDate)
	assert.Equal(t, "004", m.ProductCode)
	assert.Equal(t, "013", m.SupplierCode)
	assert.InDelta(t, 12.5, m.UnitCost, models.Epsilon)
	assert.False(t, m.IsService)

	assert.Contains(t, parsed.SkippedSheets, "Rascunho")
}

func TestParseRejectsUnrecognizedWorkbook(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Planilha1": {{"A", "B"}, {"1", "2"}},
	})
	_, err := Parse(data)
	assert.Error(t, err)
}

func TestParseMissingDatesRowSkippedWithWarning(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Entrada_Saida": {
			{"Lote", "Tipo", "Produto", "Quantidade", "Data Entrada"},
			{"013/001/004", "Produto", "Óxido", "10", "2024-01-10"},
			{"013/002/004", "Produto", "Óxido", "5", ""},
		},
	})
	parsed, err := Parse(data)
	require.NoError(t, err)
	require.NotNil(t, parsed.Movements)
	assert.Len(t, *parsed.Movements, 1)
	assert.NotEmpty(t, parsed.Warnings)
}

func buildHandEditedWorkbook(t *testing.T) []byte {
	t.Helper()
	return buildWorkbook(t, map[string][][]interface{}{
		"Movimentacoes": {
			{"Lote", "Tipo", "Produto", "Cod. Produto", "Fornecedor", "Cod. Fornecedor",
				"Entrada", "Saida", "Qtd", "Valor Unitario"},
			{"013/001/004", "Produto", "Óxido de Zinco", "4", "Mineradora Sul", "13",
				"15/03/2024", "", "100", "12,5"},
		},
		"Rascunho": {{"anotações"}},
	})
}

func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			for col, value := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, value))
			}
		}
	}
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
