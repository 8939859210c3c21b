package interchange

import (
	"strconv"
	"strings"
	"time"
)

// Época das datas seriais do Excel (sistema 1900, com o ajuste do bug do
// ano bissexto de 1900 embutido no dia 30/12/1899).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// NormalizeDate converte o valor de uma célula de data para a forma
// canônica YYYY-MM-DD. Aceita:
//   - serial numérico nativo do Excel;
//   - ISO (com ou sem hora);
//   - DD/MM/YYYY (ordem dia/mês, como as planilhas locais usam).
//
// Valor vazio ou irreconhecível vira string vazia: a importação nunca
// aborta por uma data ruim.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// Serial do Excel (célula de data lida como número)
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && !strings.Contains(raw, "-") {
		return excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour))).Format("2006-01-02")
	}

	// DD/MM/YYYY (ou D/M/YYYY)
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		if len(parts) == 3 {
			day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
			month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
			year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
			if errD == nil && errM == nil && errY == nil && month >= 1 && month <= 12 {
				if year < 100 {
					year += 2000
				}
				return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
			}
		}
		return ""
	}

	// ISO, possivelmente com sufixo de hora
	if idx := strings.IndexAny(raw, "T "); idx > 0 {
		raw = raw[:idx]
	}
	if _, err := time.Parse("2006-01-02", raw); err == nil {
		return raw
	}

	return ""
}

// parseFloat converte célula numérica tolerando vírgula decimal e valor
// vazio (vira zero, nunca erro).
func parseFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
