package interchange

import (
	"bytes"
	"fmt"
	"strings"

	"greenstock-service/internal/models"

	"github.com/xuri/excelize/v2"
)

// ExportData tudo que entra no arquivo de intercâmbio. As visões de
// estoque chegam já derivadas pelo agregador: a aba de estoque é um
// retrato, não um despejo cru do livro.
type ExportData struct {
	PhysicalStock []models.BatchBalance
	ServiceStock  []models.BatchBalance
	Movements     []models.Movement
	LaborBilling  []models.LaborBillingRow
	Services      []models.ServiceEntity
	Suppliers     []models.RegistryEntity
	Clients       []models.RegistryEntity
	Products      []models.ProductEntity
	Orders        []models.ProductionOrder
}

// Export monta o arquivo xlsx completo, uma aba por coleção, cabeçalhos
// em português conforme o contrato histórico do arquivo.
func Export(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// 1. Estoque_Atual (estoque físico derivado, com colunas de análise)
	if err := writeSheet(f, SheetCurrentStock,
		[]string{"Lote", "Produto", "Código", "Fornecedor", "Saldo (Kg)", "V. Estimado",
			"Cu (%)", "Zn (%)", "Mn (%)", "B (%)", "Pb (%)", "Fe (%)", "Cd (ppm)",
			"H2O (%)", "#35 (%)", "Ret. (%)", "Observações"},
		stockRows(data.PhysicalStock)); err != nil {
		return nil, err
	}

	// 2. Entrada_Saida (histórico completo, a aba principal do arquivo)
	movementRows := make([][]interface{}, 0, len(data.Movements))
	for _, m := range data.Movements {
		kind := "Produto"
		if m.IsService {
			kind = "M.O."
		}
		movementRows = append(movementRows, []interface{}{
			m.BatchID, kind, m.ProductName, m.ProductCode, m.Supplier, m.SupplierCode,
			m.EntryDate, m.ExitDate, m.Quantity, m.UnitCost, m.Observations, m.ID,
		})
	}
	if err := writeSheet(f, SheetMovements,
		[]string{"Lote", "Tipo", "Nome do Produto", "Cód. Produto", "Fornecedor",
			"Cód. Fornecedor", "Data Entrada", "Data Saída", "Quantidade",
			"Valor Unitário", "Observações", "ID"},
		movementRows); err != nil {
		return nil, err
	}

	// 3. Estoque_MO (estoque de mão de obra derivado)
	moRows := make([][]interface{}, 0, len(data.ServiceStock))
	for _, b := range data.ServiceStock {
		moRows = append(moRows, []interface{}{
			b.BatchID, b.ProductName, b.ProductCode, b.Supplier,
			b.RemainingQuantity, b.EstimatedValue, b.Observations,
		})
	}
	if err := writeSheet(f, SheetServiceStock,
		[]string{"Lote", "Serviço", "Código", "Fornecedor", "Saldo", "V. Estimado", "Observações"},
		moRows); err != nil {
		return nil, err
	}

	// 4. Cobranca_MO (saídas de serviço com total)
	billingRows := make([][]interface{}, 0, len(data.LaborBilling))
	for _, r := range data.LaborBilling {
		billingRows = append(billingRows, []interface{}{
			r.ExitDate, r.BatchID, r.ServiceName, r.Client, r.Quantity, r.UnitCost, r.Total,
		})
	}
	if err := writeSheet(f, SheetLaborBilling,
		[]string{"Data Saída", "Lote", "Serviço", "Cliente", "Qtd", "Valor Unit.", "Total"},
		billingRows); err != nil {
		return nil, err
	}

	// 5. Cad_Servico
	serviceRows := make([][]interface{}, 0, len(data.Services))
	for _, s := range data.Services {
		serviceRows = append(serviceRows, []interface{}{s.ID, s.Code, s.Name, s.DefaultPrice})
	}
	if err := writeSheet(f, SheetServices,
		[]string{"ID", "Código", "Nome", "Preço Padrão"}, serviceRows); err != nil {
		return nil, err
	}

	// 6 e 7. Cad_Fornecedores / Cad_Clientes
	if err := writeSheet(f, SheetSuppliers, registryHeaders(), registryRows(data.Suppliers)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetClients, registryHeaders(), registryRows(data.Clients)); err != nil {
		return nil, err
	}

	// 8. Cad_Produtos
	productRows := make([][]interface{}, 0, len(data.Products))
	for _, p := range data.Products {
		productRows = append(productRows, []interface{}{p.ID, p.Code, p.Name})
	}
	if err := writeSheet(f, SheetProducts, []string{"ID", "Código", "Nome"}, productRows); err != nil {
		return nil, err
	}

	// 9. Cad_Operacoes (aba vazia mantida por compatibilidade de arquivo)
	if err := writeSheet(f, SheetOperations, []string{}, nil); err != nil {
		return nil, err
	}

	// 10. OP (saídas achatadas num texto descritivo; a restauração fiel
	// das ordens vem do armazenamento primário, não deste arquivo)
	orderRows := make([][]interface{}, 0, len(data.Orders))
	for _, op := range data.Orders {
		kind := "Produto"
		if op.SourceIsService {
			kind = "M.O."
		}
		orderRows = append(orderRows, []interface{}{
			op.Date, op.SourceBatchID, kind, op.SourceProduct, op.ProcessedQuantity,
			op.Supplier, describeOutputs(op.Outputs), op.Loss,
		})
	}
	if err := writeSheet(f, SheetOrders,
		[]string{"Data", "Lote Origem", "Origem Tipo", "Produto Origem", "Qtd Processada",
			"Fornecedor", "Saídas", "Perda (Kg)"},
		orderRows); err != nil {
		return nil, err
	}

	// A aba padrão criada pelo excelize sai do arquivo final.
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func stockRows(balances []models.BatchBalance) [][]interface{} {
	rows := make([][]interface{}, 0, len(balances))
	for _, b := range balances {
		a := b.Analysis
		cu, zn := a.Cu, a.Zn
		// Planilhas antigas só conhecem Cu/Zn totais; sem os campos
		// legados, saem os valores de água régia.
		if cu == 0 {
			cu = a.CuAR
		}
		if zn == 0 {
			zn = a.ZnAR
		}
		rows = append(rows, []interface{}{
			b.BatchID, b.ProductName, b.ProductCode, b.Supplier,
			b.RemainingQuantity, b.EstimatedValue,
			cu, zn, a.Mn, a.B, a.Pb, a.Fe, a.Cd, a.H2O, a.Mesh35, a.Ret,
			b.Observations,
		})
	}
	return rows
}

func registryHeaders() []string {
	return []string{"ID", "Código", "Nome", "Contato", "CNPJ", "IE",
		"Estado", "Cidade", "Bairro", "Rua", "Número", "CEP", "Telefone", "Email"}
}

func registryRows(entities []models.RegistryEntity) [][]interface{} {
	rows := make([][]interface{}, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []interface{}{
			e.ID, e.Code, e.Name, e.Contact, e.CNPJ, e.IE,
			e.Address.State, e.Address.City, e.Address.Neighborhood,
			e.Address.Street, e.Address.Number, e.Address.Zip,
			e.Phone, e.Email,
		})
	}
	return rows
}

func describeOutputs(outputs []models.ProcessOutput) string {
	parts := make([]string, 0, len(outputs))
	for _, o := range outputs {
		kind := "Prod"
		if o.DestinationIsService {
			kind = "M.O."
		}
		parts = append(parts, fmt.Sprintf("%gkg %s [%s] (%s) R$%g",
			o.Quantity, o.ProductName, kind, o.NewBatchID, o.UnitCost))
	}
	return strings.Join(parts, "; ")
}

// writeSheet cria a aba e grava cabeçalho + linhas.
func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
