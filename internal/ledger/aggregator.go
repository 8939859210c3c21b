package ledger

import (
	"sort"
	"strings"

	"greenstock-service/internal/models"
)

// Aggregate dobra a lista plana de movimentos na visão materializada de
// saldo por lote. Função pura das entradas: segura de recalcular a cada
// leitura, sem estado incremental para corromper.
//
// Regras:
//   - agrupamento por lote; movimentos sem lote caem na chave
//     UNKNOWN-<codigo do produto> para não fundir linhas legadas distintas;
//   - a chave de agrupamento carrega o tipo (físico vs serviço), então um
//     movimento de mercadoria nunca se funde com um de mão de obra mesmo
//     que compartilhem o lote;
//   - entradas somam quantidade e fixam custo/fornecedor/observação (se
//     houver mais de uma entrada no lote, a última vence);
//   - saídas subtraem;
//   - grupos com saldo final <= Epsilon desaparecem da visão (inclusive
//     saldos negativos: erro de lançamento que só aparece no histórico cru);
//   - cada saldo recebe a análise do lote (ou a do produto, legada) e o
//     valor estimado = saldo x custo unitário.
//
// A ordenação por nome de produto é escolha de apresentação, estável.
func Aggregate(movements []models.Movement, analyses []models.ProductAnalysis) []models.BatchBalance {
	type group struct {
		balance models.BatchBalance
		order   int
	}
	groups := make(map[string]*group)

	key := func(m *models.Movement) string {
		id := m.BatchID
		if id == "" {
			id = "UNKNOWN-" + m.ProductCode
		}
		return string(m.Kind()) + "|" + id
	}

	ensure := func(m *models.Movement) *group {
		k := key(m)
		g, ok := groups[k]
		if !ok {
			g = &group{
				balance: models.BatchBalance{
					BatchID:      m.BatchID,
					ProductName:  m.ProductName,
					ProductCode:  m.ProductCode,
					Supplier:     m.Supplier,
					SupplierCode: m.SupplierCode,
					IsService:    m.IsService,
				},
				order: len(groups),
			}
			groups[k] = g
		}
		return g
	}

	// Entradas primeiro: fixam custo e proveniência do lote.
	for i := range movements {
		m := &movements[i]
		if !m.IsEntry() {
			continue
		}
		g := ensure(m)
		g.balance.RemainingQuantity += m.Quantity
		g.balance.UnitCost = m.UnitCost
		g.balance.Supplier = m.Supplier
		g.balance.SupplierCode = m.SupplierCode
		if m.Observations != "" {
			g.balance.Observations = m.Observations
		}
	}

	// Saídas abatem do saldo do lote correspondente.
	for i := range movements {
		m := &movements[i]
		if !m.IsExit() {
			continue
		}
		g := ensure(m)
		g.balance.RemainingQuantity -= m.Quantity
	}

	balances := make([]models.BatchBalance, 0, len(groups))
	for _, g := range groups {
		if g.balance.RemainingQuantity <= models.Epsilon {
			continue
		}
		b := g.balance
		b.Analysis = Resolve(b.BatchID, b.ProductCode, analyses)
		b.EstimatedValue = b.RemainingQuantity * b.UnitCost
		balances = append(balances, b)
	}

	sort.SliceStable(balances, func(i, j int) bool {
		a, b := balances[i], balances[j]
		if !strings.EqualFold(a.ProductName, b.ProductName) {
			return strings.ToLower(a.ProductName) < strings.ToLower(b.ProductName)
		}
		return a.BatchID < b.BatchID
	})

	return balances
}

// FilterKind devolve apenas os saldos do tipo pedido.
func FilterKind(balances []models.BatchBalance, kind models.BatchKind) []models.BatchBalance {
	out := make([]models.BatchBalance, 0, len(balances))
	for _, b := range balances {
		if b.IsService == (kind == models.KindService) {
			out = append(out, b)
		}
	}
	return out
}

// FilterMovementsKind devolve apenas os movimentos do tipo pedido.
func FilterMovementsKind(movements []models.Movement, kind models.BatchKind) []models.Movement {
	out := make([]models.Movement, 0, len(movements))
	for _, m := range movements {
		if m.Kind() == kind {
			out = append(out, m)
		}
	}
	return out
}

// Remaining procura o saldo de um lote específico na visão agregada.
// Retorna 0 quando o lote não aparece (zerado, negativo ou inexistente).
func Remaining(balances []models.BatchBalance, batchID string) float64 {
	for _, b := range balances {
		if b.BatchID == batchID {
			return b.RemainingQuantity
		}
	}
	return 0
}
