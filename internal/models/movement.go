package models

// Tolerância usada para absorver deriva de ponto flutuante nos saldos.
const Epsilon = 0.0001

// Movement representa um movimento do livro de estoque (entrada ou saída).
// É o único fato persistido sobre variação de inventário; o saldo atual
// é sempre recalculado a partir da lista completa de movimentos.
type Movement struct {
	ID           string  `json:"id"`
	BatchID      string  `json:"batchId"`
	EntryDate    string  `json:"entryDate"`
	ExitDate     string  `json:"exitDate"`
	Supplier     string  `json:"supplier"`
	SupplierCode string  `json:"supplierCode"`
	ProductName  string  `json:"productName"`
	ProductCode  string  `json:"productCode"`
	Quantity     float64 `json:"quantity"`
	UnitCost     float64 `json:"unitCost"`
	UnitPrice    float64 `json:"unitPrice"`
	Observations string  `json:"observations"`
	IsService    bool    `json:"isService"`
}

// IsEntry indica se o movimento é uma entrada (data de entrada preenchida).
func (m *Movement) IsEntry() bool {
	return m.EntryDate != ""
}

// IsExit indica se o movimento é uma saída (data de saída preenchida e
// data de entrada vazia).
func (m *Movement) IsExit() bool {
	return m.ExitDate != "" && m.EntryDate == ""
}

// Kind retorna o tipo do lote ao qual o movimento pertence.
func (m *Movement) Kind() BatchKind {
	if m.IsService {
		return KindService
	}
	return KindPhysical
}

// BatchKind separa os dois universos do livro: mercadoria física e
// mão de obra (serviço). Um lote nunca mistura os dois tipos.
type BatchKind string

const (
	KindPhysical BatchKind = "physical"
	KindService  BatchKind = "service"
)

// BatchBalance é a visão derivada de saldo por lote. Nunca é persistida:
// o agregador a recalcula a cada leitura a partir dos movimentos.
type BatchBalance struct {
	BatchID           string          `json:"batchId"`
	ProductName       string          `json:"productName"`
	ProductCode       string          `json:"productCode"`
	Supplier          string          `json:"supplier"`
	SupplierCode      string          `json:"supplierCode"`
	UnitCost          float64         `json:"unitCost"`
	RemainingQuantity float64         `json:"remainingQuantity"`
	EstimatedValue    float64         `json:"estimatedValue"`
	IsService         bool            `json:"isService"`
	Observations      string          `json:"observations"`
	Analysis          ProductAnalysis `json:"analysis"`
}

// MovementFilter filtros para consulta do histórico de movimentos.
type MovementFilter struct {
	BatchID      *string    `json:"batchId,omitempty"`
	ProductCode  *string    `json:"productCode,omitempty"`
	SupplierCode *string    `json:"supplierCode,omitempty"`
	Kind         *BatchKind `json:"kind,omitempty"`
	DateFrom     *string    `json:"dateFrom,omitempty"`
	DateTo       *string    `json:"dateTo,omitempty"`
	OnlyEntries  bool       `json:"onlyEntries,omitempty"`
	OnlyExits    bool       `json:"onlyExits,omitempty"`
}

// DashboardStats totais exibidos no painel (somente estoque físico).
type DashboardStats struct {
	TotalStock float64 `json:"totalStock"`
	TotalCost  float64 `json:"totalCost"`
	Revenue    float64 `json:"revenue"`
	Profit     float64 `json:"profit"`
}

// LaborBillingRow linha de cobrança de mão de obra (saídas de serviço).
type LaborBillingRow struct {
	ExitDate    string  `json:"exitDate"`
	BatchID     string  `json:"batchId"`
	ServiceName string  `json:"serviceName"`
	Client      string  `json:"client"`
	Quantity    float64 `json:"quantity"`
	UnitCost    float64 `json:"unitCost"`
	Total       float64 `json:"total"`
}
