package models

// ===== REQUEST DTOs =====

// AddMovementRequest DTO para lançamento de movimento. Exatamente uma das
// datas deve vir preenchida; a validação cruzada acontece no service.
type AddMovementRequest struct {
	BatchID      string  `json:"batchId"`
	EntryDate    string  `json:"entryDate"`
	ExitDate     string  `json:"exitDate"`
	Supplier     string  `json:"supplier" validate:"required"`
	SupplierCode string  `json:"supplierCode" validate:"required"`
	ProductName  string  `json:"productName" validate:"required"`
	ProductCode  string  `json:"productCode" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"required,gt=0"`
	UnitCost     float64 `json:"unitCost" validate:"gte=0"`
	Observations string  `json:"observations"`
	IsService    bool    `json:"isService"`
}

// ProcessOutputRequest uma saída declarada no pedido de processamento.
type ProcessOutputRequest struct {
	ProductName          string  `json:"productName" validate:"required"`
	ProductCode          string  `json:"productCode" validate:"required"`
	Quantity             float64 `json:"quantity" validate:"required,gt=0"`
	UnitCost             float64 `json:"unitCost" validate:"gte=0"`
	DestinationIsService bool    `json:"destinationIsService"`
}

// ProcessOrderRequest DTO para processamento de um lote de origem.
// Outputs pode ser vazio: ordem de baixa pura (sucata), sem derivados.
type ProcessOrderRequest struct {
	SourceBatchID     string                 `json:"sourceBatchId" validate:"required"`
	SourceProduct     string                 `json:"sourceProduct" validate:"required"`
	SourceIsService   bool                   `json:"sourceIsService"`
	ProcessedQuantity float64                `json:"processedQuantity" validate:"required,gt=0"`
	Supplier          string                 `json:"supplier" validate:"required"`
	SupplierCode      string                 `json:"supplierCode" validate:"required"`
	Date              string                 `json:"date" validate:"required"`
	Outputs           []ProcessOutputRequest `json:"outputs" validate:"dive"`
	Loss              float64                `json:"loss"`
}

// SaveRegistryRequest DTO para criação/edição de fornecedor ou cliente.
// Overwrite autoriza sobrescrever um cadastro existente com o mesmo código.
type SaveRegistryRequest struct {
	RegistryEntity
	Overwrite bool `json:"overwrite"`
}

// ImportRequest flag de confirmação da importação destrutiva. A planilha
// em si chega como arquivo multipart.
type ImportRequest struct {
	Confirm bool `json:"confirm" form:"confirm"`
}

// ===== RESPONSE DTOs =====

// MovementResponse resposta do lançamento de movimento.
type MovementResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Movement *Movement `json:"movement,omitempty"`
}

// ProcessOrderResponse resposta do processamento.
type ProcessOrderResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Order     *ProductionOrder `json:"order,omitempty"`
	Movements []Movement       `json:"movements,omitempty"`
}

// ImportResult resumo de uma importação de planilha: quais coleções foram
// substituídas e quais abas foram puladas por não serem reconhecidas.
type ImportResult struct {
	Applied       bool           `json:"applied"`
	Collections   map[string]int `json:"collections"`
	SkippedSheets []string       `json:"skippedSheets,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}
