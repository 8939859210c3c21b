package ledger

import (
	"testing"

	"greenstock-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func entry(batchID, supplierCode string, qty float64) models.Movement {
	return models.Movement{
		ID:           batchID + "-e",
		BatchID:      batchID,
		SupplierCode: supplierCode,
		EntryDate:    "2024-01-10",
		Quantity:     qty,
	}
}

func TestNextSequenceEmptyHistory(t *testing.T) {
	assert.Equal(t, "001", NextSequence("001", nil))
}

func TestNextSequenceScansOnlySupplierEntries(t *testing.T) {
	movements := []models.Movement{
		entry("001/001/010", "001", 100),
		entry("001/007/010", "001", 50),
		entry("002/040/010", "002", 30), // outro fornecedor
		{ID: "x", BatchID: "001/099/010", SupplierCode: "001", ExitDate: "2024-02-01", Quantity: 10}, // saída não conta
	}
	assert.Equal(t, "008", NextSequence("001", movements))
}

func TestNextSequenceIgnoresMalformedBatchIDs(t *testing.T) {
	movements := []models.Movement{
		entry("001/abc/010", "001", 1),
		entry("sem-barras", "001", 1),
		entry("001/002/010/extra", "001", 1),
		entry("", "001", 1),
		entry("001/003/010", "001", 1),
	}
	assert.Equal(t, "004", NextSequence("001", movements))
}

func TestNextSequenceGrowsPast999(t *testing.T) {
	movements := []models.Movement{entry("001/999/010", "001", 1)}
	assert.Equal(t, "1000", NextSequence("001", movements))
}

// Sequências sucessivas são estritamente crescentes, e exclusões de lotes
// que não eram o máximo não causam reaproveitamento.
func TestSequenceMonotonicity(t *testing.T) {
	var movements []models.Movement
	var seen []string
	for i := 0; i < 5; i++ {
		seq := NextSequence("007", movements)
		for _, prev := range seen {
			assert.Greater(t, seq, prev)
		}
		seen = append(seen, seq)
		movements = append(movements, entry("007/"+seq+"/010", "007", 10))
	}

	// Excluir um lote intermediário não libera a sequência.
	movements = append(movements[:1], movements[2:]...)
	assert.Equal(t, "006", NextSequence("007", movements))
}

func TestBatchIDComposition(t *testing.T) {
	assert.Equal(t, "001/004/010", BatchID("001", 4, "010"))
	assert.Equal(t, "001/1000/010", BatchID("001", 1000, "010"))
}
