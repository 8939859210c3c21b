package models

// ProductAnalysis resultado de análise química de um lote. A chave
// preferencial é o lote (batchId); registros antigos sem lote valem para
// todo o produto (productCode). Existe no máximo um registro vivo por chave.
type ProductAnalysis struct {
	BatchID     string `json:"batchId,omitempty"`
	ProductCode string `json:"productCode"`

	// Água régia
	CuAR float64 `json:"cu_ar"`
	ZnAR float64 `json:"zn_ar"`

	// HCl
	CuHCL float64 `json:"cu_hcl"`
	ZnHCL float64 `json:"zn_hcl"`
	Mn    float64 `json:"mn"`
	B     float64 `json:"b"`

	// 2º extrator
	Cu2 float64 `json:"cu_2"`
	Zn2 float64 `json:"zn_2"`
	Mn2 float64 `json:"mn_2"`
	B2  float64 `json:"b_2"`

	// Contaminantes
	Pb float64 `json:"pb"`
	Fe float64 `json:"fe"`
	Cd float64 `json:"cd"` // ppm

	// Outros
	H2O    float64 `json:"h2o"`
	Mesh35 float64 `json:"mesh35"`
	Ret    float64 `json:"ret"`

	// Campos legados (planilhas antigas traziam só Cu/Zn totais)
	Cu float64 `json:"cu,omitempty"`
	Zn float64 `json:"zn,omitempty"`
}

// Key retorna a chave de identidade do registro: lote quando presente,
// senão código do produto.
func (a *ProductAnalysis) Key() string {
	if a.BatchID != "" {
		return a.BatchID
	}
	return a.ProductCode
}
