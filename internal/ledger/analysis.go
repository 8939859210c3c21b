package ledger

import "greenstock-service/internal/models"

// Upsert substitui qualquer análise existente com a mesma chave (lote se
// presente, senão código do produto) e anexa a nova no fim. A semântica é
// filtrar-e-anexar, não atualização posicional: a última gravação vence.
func Upsert(analyses []models.ProductAnalysis, a models.ProductAnalysis) []models.ProductAnalysis {
	out := make([]models.ProductAnalysis, 0, len(analyses)+1)
	for _, existing := range analyses {
		if a.BatchID != "" {
			if existing.BatchID == a.BatchID {
				continue
			}
		} else if existing.BatchID == "" && existing.ProductCode == a.ProductCode {
			continue
		}
		out = append(out, existing)
	}
	return append(out, a)
}

// Resolve localiza a análise de um lote. Prioridade: casamento exato por
// lote; depois registro legado sem lote com o mesmo código de produto;
// por fim um registro zerado, para que a camada de exibição nunca precise
// tratar ausência.
func Resolve(batchID, productCode string, analyses []models.ProductAnalysis) models.ProductAnalysis {
	if batchID != "" {
		for _, a := range analyses {
			if a.BatchID == batchID {
				return a
			}
		}
	}
	for _, a := range analyses {
		if a.BatchID == "" && a.ProductCode == productCode {
			return a
		}
	}
	return models.ProductAnalysis{ProductCode: productCode}
}
