package models

// ProcessOutput uma saída declarada de uma ordem de produção. O campo
// NewBatchID é carimbado pelo motor de processamento com o lote recém
// alocado para a entrada derivada.
type ProcessOutput struct {
	ProductName          string  `json:"productName"`
	ProductCode          string  `json:"productCode"`
	Quantity             float64 `json:"quantity"`
	NewBatchID           string  `json:"newBatchId"`
	DestinationIsService bool    `json:"destinationIsService"`
	UnitCost             float64 `json:"unitCost"`
}

// ProductionOrder registro imutável de auditoria de um processamento:
// consumo de um lote de origem e emissão de zero ou mais lotes derivados.
// Criado exclusivamente pelo motor de processamento e nunca alterado.
type ProductionOrder struct {
	ID                string          `json:"id"`
	Date              string          `json:"date"`
	SourceBatchID     string          `json:"sourceBatchId"`
	SourceProduct     string          `json:"sourceProduct"`
	SourceIsService   bool            `json:"sourceIsService"`
	ProcessedQuantity float64         `json:"processedQuantity"`
	Supplier          string          `json:"supplier"`
	SupplierCode      string          `json:"supplierCode"`
	Outputs           []ProcessOutput `json:"outputs"`
	Loss              float64         `json:"loss"`
}
