package interchange

import "strings"

// Nomes canônicos das abas do arquivo de intercâmbio. O texto dos
// cabeçalhos e os apelidos aceitos são um contrato versionado: planilhas
// editadas à mão circulam há anos com variações de nome, então a busca é
// sempre por lista de apelidos, sem diferenciar maiúsculas.
const (
	SheetCurrentStock = "Estoque_Atual"
	SheetMovements    = "Entrada_Saida"
	SheetServiceStock = "Estoque_MO"
	SheetLaborBilling = "Cobranca_MO"
	SheetServices     = "Cad_Servico"
	SheetSuppliers    = "Cad_Fornecedores"
	SheetClients      = "Cad_Clientes"
	SheetProducts     = "Cad_Produtos"
	SheetOperations   = "Cad_Operacoes"
	SheetOrders       = "OP"
)

// sheetAliases nomes históricos aceitos por aba na importação.
var sheetAliases = map[string][]string{
	SheetMovements:    {"Entrada_Saida", "Entrada/Saida", "Movimentacoes", "Movimentações"},
	SheetCurrentStock: {"Estoque_Atual", "Estoque Atual"},
	SheetSuppliers:    {"Cad_Fornecedores", "Fornecedores"},
	SheetClients:      {"Cad_Clientes", "Clientes"},
	SheetProducts:     {"Cad_Produtos", "Produtos"},
	SheetServices:     {"Cad_Servico", "Cad_Servicos", "Servicos", "Serviços"},
	SheetOrders:       {"OP", "OPs", "Ordens de Produção"},
}

// Tabela declarativa campo canônico -> variantes de cabeçalho aceitas, em
// ordem de preferência. Acomoda renomeações, erros de digitação e deriva
// de localização entre versões do arquivo; é consumida por um único
// resolvedor genérico (headerIndex/rowValue) e auditável num lugar só.
var (
	movementColumns = map[string][]string{
		"id":           {"ID"},
		"batchId":      {"Lote"},
		"type":         {"Tipo"},
		"productName":  {"Nome do Produto", "Produto"},
		"productCode":  {"Cód. Produto", "Cod. Produto", "Código Produto", "Codigo Produto"},
		"supplier":     {"Fornecedor", "Cliente"},
		"supplierCode": {"Cód. Fornecedor", "Cod. Fornecedor", "Código Fornecedor"},
		"entryDate":    {"Data Entrada", "Entrada"},
		"exitDate":     {"Data Saída", "Data Saida", "Saída", "Saida"},
		"quantity":     {"Quantidade", "Qtd"},
		"unitCost":     {"Valor Unitário", "Valor Unitario", "Valor Unit.", "Custo Unitário"},
		"observations": {"Observações", "Observacoes", "Obs"},
	}

	analysisColumns = map[string][]string{
		"batchId":     {"Lote"},
		"productCode": {"Código", "Codigo", "Cód. Produto"},
		"cu":          {"Cu (%)", "Cu"},
		"zn":          {"Zn (%)", "Zn"},
		"mn":          {"Mn (%)", "Mn"},
		"b":           {"B (%)", "B"},
		"pb":          {"Pb (%)", "Pb"},
		"fe":          {"Fe (%)", "Fe"},
		"cd":          {"Cd (ppm)", "Cd"},
		"h2o":         {"H2O (%)", "H2O"},
		"mesh35":      {"#35 (%)", "#35"},
		"ret":         {"Ret. (%)", "Ret"},
	}

	registryColumns = map[string][]string{
		"id":           {"ID"},
		"code":         {"Código", "Codigo", "code"},
		"name":         {"Nome", "name"},
		"contact":      {"Contato", "contact"},
		"cnpj":         {"CNPJ", "cnpj"},
		"ie":           {"IE", "Inscrição Estadual", "ie"},
		"state":        {"Estado", "UF"},
		"city":         {"Cidade"},
		"neighborhood": {"Bairro"},
		"street":       {"Rua", "Logradouro"},
		"number":       {"Número", "Numero"},
		"zip":          {"CEP"},
		"phone":        {"Telefone", "Fone", "phone"},
		"email":        {"Email", "E-mail", "email"},
	}

	productColumns = map[string][]string{
		"id":   {"ID"},
		"code": {"Código", "Codigo", "code"},
		"name": {"Nome", "Produto", "name"},
	}

	serviceColumns = map[string][]string{
		"id":           {"ID"},
		"code":         {"Código", "Codigo", "code"},
		"name":         {"Nome", "Serviço", "Servico", "name"},
		"defaultPrice": {"Preço Padrão", "Preco Padrao", "defaultPrice"},
	}
)

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// headerIndex monta o índice cabeçalho normalizado -> coluna da primeira
// linha da aba.
func headerIndex(headerRow []string) map[string]int {
	idx := make(map[string]int, len(headerRow))
	for i, h := range headerRow {
		n := normalizeHeader(h)
		if n == "" {
			continue
		}
		if _, exists := idx[n]; !exists {
			idx[n] = i
		}
	}
	return idx
}

// rowValue resolve um campo lógico numa linha tentando cada variante de
// cabeçalho na ordem declarada. Sem casamento, retorna vazio.
func rowValue(row []string, idx map[string]int, aliases []string) string {
	for _, alias := range aliases {
		if col, ok := idx[normalizeHeader(alias)]; ok && col < len(row) {
			return strings.TrimSpace(row[col])
		}
	}
	return ""
}

// findSheet localiza uma aba por nome canônico, sem diferenciar
// maiúsculas, aceitando os apelidos históricos.
func findSheet(sheetNames []string, canonical string) (string, bool) {
	aliases, ok := sheetAliases[canonical]
	if !ok {
		aliases = []string{canonical}
	}
	for _, name := range sheetNames {
		for _, alias := range aliases {
			if strings.EqualFold(strings.TrimSpace(name), alias) {
				return name, true
			}
		}
	}
	return "", false
}

// padCode preenche códigos de cadastro com zero à esquerda na largura 3.
// Planilhas editadas fora costumam perder os zeros ("1" em vez de "001").
func padCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < 3 {
		code = "0" + code
	}
	return code
}
