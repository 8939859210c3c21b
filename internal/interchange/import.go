package interchange

import (
	"bytes"
	"fmt"
	"strings"

	"greenstock-service/internal/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ParsedWorkbook resultado do parse de um arquivo de importação. Cada
// coleção é um ponteiro: nil significa "aba ausente, não mexer"; um slice
// vazio significa "aba presente e vazia, a coleção será zerada".
type ParsedWorkbook struct {
	Movements *[]models.Movement
	Analyses  *[]models.ProductAnalysis
	Suppliers *[]models.RegistryEntity
	Clients   *[]models.RegistryEntity
	Products  *[]models.ProductEntity
	Services  *[]models.ServiceEntity

	SkippedSheets []string
	Warnings      []string
}

// Abas derivadas ou descritivas: reconhecidas, mas nunca importadas.
var derivedSheets = map[string][]string{
	SheetServiceStock: {"Estoque_MO"},
	SheetLaborBilling: {"Cobranca_MO"},
	SheetOperations:   {"Cad_Operacoes"},
}

// Parse lê o arquivo xlsx e extrai as coleções importáveis. Linhas ruins
// são toleradas (viram avisos ou campos vazios); só erros estruturais do
// arquivo abortam o parse.
func Parse(data []byte) (*ParsedWorkbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	result := &ParsedWorkbook{}
	recognized := make(map[string]bool)

	if name, ok := findSheet(sheets, SheetMovements); ok {
		recognized[name] = true
		movements, warnings, err := parseMovements(f, name)
		if err != nil {
			return nil, err
		}
		result.Movements = &movements
		result.Warnings = append(result.Warnings, warnings...)
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("aba %s não encontrada; movimentos preservados", SheetMovements))
	}

	if name, ok := findSheet(sheets, SheetCurrentStock); ok {
		recognized[name] = true
		analyses, err := parseAnalyses(f, name)
		if err != nil {
			return nil, err
		}
		result.Analyses = &analyses
	}

	if name, ok := findSheet(sheets, SheetSuppliers); ok {
		recognized[name] = true
		entities, err := parseRegistry(f, name)
		if err != nil {
			return nil, err
		}
		result.Suppliers = &entities
	}

	if name, ok := findSheet(sheets, SheetClients); ok {
		recognized[name] = true
		entities, err := parseRegistry(f, name)
		if err != nil {
			return nil, err
		}
		result.Clients = &entities
	}

	if name, ok := findSheet(sheets, SheetProducts); ok {
		recognized[name] = true
		products, err := parseProducts(f, name)
		if err != nil {
			return nil, err
		}
		result.Products = &products
	}

	if name, ok := findSheet(sheets, SheetServices); ok {
		recognized[name] = true
		services, err := parseServices(f, name)
		if err != nil {
			return nil, err
		}
		result.Services = &services
	}

	// A aba OP do arquivo exportado é descritiva (saídas achatadas em
	// texto); as ordens de produção não são reconstruídas daqui.
	if name, ok := findSheet(sheets, SheetOrders); ok {
		recognized[name] = true
		result.Warnings = append(result.Warnings,
			"aba OP é descritiva; ordens de produção não são importadas")
	}
	for canonical := range derivedSheets {
		if name, ok := findSheet(sheets, canonical); ok {
			recognized[name] = true
		}
	}

	for _, name := range sheets {
		if !recognized[name] {
			result.SkippedSheets = append(result.SkippedSheets, name)
		}
	}

	if result.Movements == nil && result.Suppliers == nil && result.Clients == nil &&
		result.Products == nil && result.Services == nil {
		return nil, fmt.Errorf("nenhuma aba reconhecida no arquivo")
	}

	return result, nil
}

func parseMovements(f *excelize.File, sheet string) ([]models.Movement, []string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	movements := []models.Movement{}
	var warnings []string
	if len(rows) == 0 {
		return movements, nil, nil
	}

	idx := headerIndex(rows[0])
	for i, row := range rows[1:] {
		batchID := rowValue(row, idx, movementColumns["batchId"])
		productName := rowValue(row, idx, movementColumns["productName"])
		if batchID == "" && productName == "" {
			continue
		}

		id := rowValue(row, idx, movementColumns["id"])
		if id == "" {
			id = uuid.NewString()
		}

		entryDate := NormalizeDate(rowValue(row, idx, movementColumns["entryDate"]))
		exitDate := NormalizeDate(rowValue(row, idx, movementColumns["exitDate"]))
		if entryDate == "" && exitDate == "" {
			warnings = append(warnings,
				fmt.Sprintf("%s linha %d: sem data de entrada nem de saída, ignorada", sheet, i+2))
			continue
		}

		kind := rowValue(row, idx, movementColumns["type"])
		movements = append(movements, models.Movement{
			ID:           id,
			BatchID:      batchID,
			EntryDate:    entryDate,
			ExitDate:     exitDate,
			Supplier:     rowValue(row, idx, movementColumns["supplier"]),
			SupplierCode: padCode(rowValue(row, idx, movementColumns["supplierCode"])),
			ProductName:  productName,
			ProductCode:  padCode(rowValue(row, idx, movementColumns["productCode"])),
			Quantity:     parseFloat(rowValue(row, idx, movementColumns["quantity"])),
			UnitCost:     parseFloat(rowValue(row, idx, movementColumns["unitCost"])),
			Observations: rowValue(row, idx, movementColumns["observations"]),
			IsService:    isServiceKind(kind),
		})
	}
	return movements, warnings, nil
}

// isServiceKind interpreta a coluna Tipo do arquivo.
func isServiceKind(kind string) bool {
	kind = strings.TrimSpace(kind)
	return strings.EqualFold(kind, "M.O.") || strings.EqualFold(kind, "MO") ||
		strings.EqualFold(kind, "Service") || strings.EqualFold(kind, "Serviço") ||
		strings.EqualFold(kind, "Servico")
}

func parseAnalyses(f *excelize.File, sheet string) ([]models.ProductAnalysis, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	analyses := []models.ProductAnalysis{}
	if len(rows) == 0 {
		return analyses, nil
	}

	idx := headerIndex(rows[0])
	for _, row := range rows[1:] {
		batchID := rowValue(row, idx, analysisColumns["batchId"])
		productCode := padCode(rowValue(row, idx, analysisColumns["productCode"]))
		if batchID == "" && productCode == "" {
			continue
		}

		a := models.ProductAnalysis{
			BatchID:     batchID,
			ProductCode: productCode,
			CuAR:        parseFloat(rowValue(row, idx, analysisColumns["cu"])),
			ZnAR:        parseFloat(rowValue(row, idx, analysisColumns["zn"])),
			Mn:          parseFloat(rowValue(row, idx, analysisColumns["mn"])),
			B:           parseFloat(rowValue(row, idx, analysisColumns["b"])),
			Pb:          parseFloat(rowValue(row, idx, analysisColumns["pb"])),
			Fe:          parseFloat(rowValue(row, idx, analysisColumns["fe"])),
			Cd:          parseFloat(rowValue(row, idx, analysisColumns["cd"])),
			H2O:         parseFloat(rowValue(row, idx, analysisColumns["h2o"])),
			Mesh35:      parseFloat(rowValue(row, idx, analysisColumns["mesh35"])),
			Ret:         parseFloat(rowValue(row, idx, analysisColumns["ret"])),
		}
		// Linha de estoque sem nenhum teor preenchido não vira análise.
		if a.CuAR == 0 && a.ZnAR == 0 && a.Mn == 0 && a.B == 0 && a.Pb == 0 &&
			a.Fe == 0 && a.Cd == 0 && a.H2O == 0 && a.Mesh35 == 0 && a.Ret == 0 {
			continue
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}

func parseRegistry(f *excelize.File, sheet string) ([]models.RegistryEntity, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	entities := []models.RegistryEntity{}
	if len(rows) == 0 {
		return entities, nil
	}

	idx := headerIndex(rows[0])
	for _, row := range rows[1:] {
		name := rowValue(row, idx, registryColumns["name"])
		if name == "" {
			continue
		}
		id := rowValue(row, idx, registryColumns["id"])
		if id == "" {
			id = uuid.NewString()
		}
		entities = append(entities, models.RegistryEntity{
			ID:      id,
			Code:    padCode(rowValue(row, idx, registryColumns["code"])),
			Name:    name,
			Contact: rowValue(row, idx, registryColumns["contact"]),
			CNPJ:    rowValue(row, idx, registryColumns["cnpj"]),
			IE:      rowValue(row, idx, registryColumns["ie"]),
			Address: models.Address{
				State:        rowValue(row, idx, registryColumns["state"]),
				City:         rowValue(row, idx, registryColumns["city"]),
				Neighborhood: rowValue(row, idx, registryColumns["neighborhood"]),
				Street:       rowValue(row, idx, registryColumns["street"]),
				Number:       rowValue(row, idx, registryColumns["number"]),
				Zip:          rowValue(row, idx, registryColumns["zip"]),
			},
			Phone: rowValue(row, idx, registryColumns["phone"]),
			Email: rowValue(row, idx, registryColumns["email"]),
		})
	}
	return entities, nil
}

func parseProducts(f *excelize.File, sheet string) ([]models.ProductEntity, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	products := []models.ProductEntity{}
	if len(rows) == 0 {
		return products, nil
	}

	idx := headerIndex(rows[0])
	for _, row := range rows[1:] {
		name := rowValue(row, idx, productColumns["name"])
		if name == "" {
			continue
		}
		id := rowValue(row, idx, productColumns["id"])
		if id == "" {
			id = uuid.NewString()
		}
		products = append(products, models.ProductEntity{
			ID:   id,
			Name: name,
			Code: padCode(rowValue(row, idx, productColumns["code"])),
		})
	}
	return products, nil
}

func parseServices(f *excelize.File, sheet string) ([]models.ServiceEntity, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	services := []models.ServiceEntity{}
	if len(rows) == 0 {
		return services, nil
	}

	idx := headerIndex(rows[0])
	for _, row := range rows[1:] {
		name := rowValue(row, idx, serviceColumns["name"])
		if name == "" {
			continue
		}
		id := rowValue(row, idx, serviceColumns["id"])
		if id == "" {
			id = uuid.NewString()
		}
		services = append(services, models.ServiceEntity{
			ID:           id,
			Name:         name,
			Code:         padCode(rowValue(row, idx, serviceColumns["code"])),
			DefaultPrice: parseFloat(rowValue(row, idx, serviceColumns["defaultPrice"])),
		})
	}
	return services, nil
}
