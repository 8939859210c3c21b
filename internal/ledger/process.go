package ledger

import (
	"fmt"
	"strings"

	"greenstock-service/internal/models"

	"github.com/google/uuid"
)

// ProcessInput dados validados de uma ordem de processamento. O chamador
// é responsável por garantir que o lote de origem tem ao menos
// ProcessedQuantity disponível; o motor não reverifica.
type ProcessInput struct {
	SourceBatchID     string
	SourceProduct     string
	SourceIsService   bool
	ProcessedQuantity float64
	Supplier          string
	SupplierCode      string
	Date              string
	Outputs           []models.ProcessOutput
	Loss              float64
}

// BuildProcessing monta os movimentos e a ordem de produção de um
// processamento: uma saída do lote de origem mais uma entrada por saída
// declarada, cada entrada com um lote recém alocado. As sequências são
// semeadas com o máximo atual do fornecedor e incrementadas a cada saída,
// então saídas da mesma ordem nunca colidem entre si.
//
// Nada é persistido aqui: o chamador anexa os movimentos e a ordem de
// forma atômica (ou tudo, ou nada).
func BuildProcessing(in ProcessInput, movements []models.Movement) ([]models.Movement, models.ProductionOrder) {
	// Saída do material de origem. O custo não é rederivado na saída: a
	// valoração do lote ficou fixada na entrada que o criou.
	sourceExit := models.Movement{
		ID:           uuid.NewString(),
		BatchID:      in.SourceBatchID,
		ProductName:  in.SourceProduct,
		ProductCode:  sourceProductCode(in.SourceBatchID),
		Supplier:     in.Supplier,
		SupplierCode: in.SupplierCode,
		EntryDate:    "",
		ExitDate:     in.Date,
		Quantity:     in.ProcessedQuantity,
		UnitCost:     0,
		Observations: "Processamento - Gerou O.P.",
		IsService:    in.SourceIsService,
	}

	newMovements := []models.Movement{sourceExit}
	stamped := make([]models.ProcessOutput, 0, len(in.Outputs))

	seq := NextSequenceNumber(in.SupplierCode, movements)
	for _, out := range in.Outputs {
		newBatchID := BatchID(in.SupplierCode, seq, out.ProductCode)
		newMovements = append(newMovements, models.Movement{
			ID:           uuid.NewString(),
			BatchID:      newBatchID,
			ProductName:  out.ProductName,
			ProductCode:  out.ProductCode,
			Supplier:     in.Supplier,
			SupplierCode: in.SupplierCode,
			EntryDate:    in.Date,
			ExitDate:     "",
			Quantity:     out.Quantity,
			UnitCost:     out.UnitCost,
			Observations: fmt.Sprintf("Oriundo do Processamento do Lote %s", in.SourceBatchID),
			IsService:    out.DestinationIsService,
		})
		out.NewBatchID = newBatchID
		stamped = append(stamped, out)
		seq++
	}

	order := models.ProductionOrder{
		ID:                uuid.NewString(),
		Date:              in.Date,
		SourceBatchID:     in.SourceBatchID,
		SourceProduct:     in.SourceProduct,
		SourceIsService:   in.SourceIsService,
		ProcessedQuantity: in.ProcessedQuantity,
		Supplier:          in.Supplier,
		SupplierCode:      in.SupplierCode,
		Outputs:           stamped,
		Loss:              in.Loss,
	}

	return newMovements, order
}

// OutputsTotal soma as quantidades declaradas das saídas.
func OutputsTotal(outputs []models.ProcessOutput) float64 {
	total := 0.0
	for _, o := range outputs {
		total += o.Quantity
	}
	return total
}

// sourceProductCode extrai o código de produto do lote de origem. Lotes
// malformados caem no código neutro 000.
func sourceProductCode(batchID string) string {
	parts := strings.Split(batchID, "/")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return "000"
	}
	return parts[len(parts)-1]
}
