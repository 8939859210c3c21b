package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"greenstock-service/internal/models"
)

// NextSequence calcula o próximo número de sequência de lote para um
// fornecedor varrendo o histórico de entradas. Não existe contador
// persistido: o máximo sobrevivente + 1 garante que o próximo lote é
// sempre maior que qualquer entrada ainda registrada, o que torna a
// alocação resiliente a exclusões (uma sequência excluída só é
// reaproveitada se era o máximo).
//
// Lotes malformados ou não numéricos são ignorados. O retorno vem com
// zero à esquerda em largura 3 e cresce em dígitos além de 999.
func NextSequence(supplierCode string, movements []models.Movement) string {
	return FormatSequence(maxSequence(supplierCode, movements) + 1)
}

// NextSequenceNumber versão numérica de NextSequence, usada pelo motor de
// processamento para alocar várias sequências consecutivas numa só ordem.
func NextSequenceNumber(supplierCode string, movements []models.Movement) int {
	return maxSequence(supplierCode, movements) + 1
}

func maxSequence(supplierCode string, movements []models.Movement) int {
	maxSeq := 0
	for i := range movements {
		m := &movements[i]
		if m.SupplierCode != supplierCode || !m.IsEntry() {
			continue
		}
		parts := strings.Split(m.BatchID, "/")
		if len(parts) != 3 {
			continue
		}
		seq, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq
}

// FormatSequence formata um número de sequência com zero à esquerda em
// largura 3. Acima de 999 a largura simplesmente cresce, nunca há wrap.
func FormatSequence(seq int) string {
	return fmt.Sprintf("%03d", seq)
}

// BatchID compõe o identificador completo de lote:
// CODIGO_FORNECEDOR/SEQ/CODIGO_PRODUTO.
func BatchID(supplierCode string, seq int, productCode string) string {
	return fmt.Sprintf("%s/%s/%s", supplierCode, FormatSequence(seq), productCode)
}
