package services

import (
	"context"
	"fmt"

	"greenstock-service/internal/interchange"
	"greenstock-service/internal/ledger"
	"greenstock-service/internal/models"
	"greenstock-service/internal/store"

	"go.uber.org/zap"
)

// ExportWorkbook serializa o estado completo no arquivo xlsx de
// intercâmbio, com as visões derivadas já calculadas.
func (s *inventoryService) ExportWorkbook(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.currentSnapshot(ctx)
	data, err := interchange.Export(interchange.ExportData{
		PhysicalStock: ledger.FilterKind(snapshot, models.KindPhysical),
		ServiceStock:  ledger.FilterKind(snapshot, models.KindService),
		Movements:     s.data.Movements,
		LaborBilling:  s.laborBillingLocked(),
		Services:      s.data.Services,
		Suppliers:     s.data.Suppliers,
		Clients:       s.data.Clients,
		Products:      s.data.Products,
		Orders:        s.data.ProductionOrders,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exportação gerada",
		zap.Int("movements", len(s.data.Movements)),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

// ImportWorkbook substitui as coleções presentes no arquivo pelas listas
// importadas. Substituição, não mesclagem: por isso a confirmação
// explícita é obrigatória.
func (s *inventoryService) ImportWorkbook(ctx context.Context, data []byte, confirm bool) (*models.ImportResult, error) {
	if !confirm {
		return nil, ErrConfirmationRequired
	}

	parsed, err := interchange.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := *s.data
	result := &models.ImportResult{
		Collections:   map[string]int{},
		SkippedSheets: parsed.SkippedSheets,
		Warnings:      parsed.Warnings,
	}

	if parsed.Movements != nil {
		s.data.Movements = *parsed.Movements
		result.Collections[store.KeyMovements] = len(*parsed.Movements)
	}
	if parsed.Analyses != nil {
		s.data.Analyses = *parsed.Analyses
		result.Collections[store.KeyAnalyses] = len(*parsed.Analyses)
	}
	if parsed.Suppliers != nil {
		s.data.Suppliers = *parsed.Suppliers
		result.Collections[store.KeySuppliers] = len(*parsed.Suppliers)
	}
	if parsed.Clients != nil {
		s.data.Clients = *parsed.Clients
		result.Collections[store.KeyClients] = len(*parsed.Clients)
	}
	if parsed.Products != nil {
		s.data.Products = *parsed.Products
		result.Collections[store.KeyProducts] = len(*parsed.Products)
	}
	if parsed.Services != nil {
		s.data.Services = *parsed.Services
		result.Collections[store.KeyServices] = len(*parsed.Services)
	}

	if err := s.data.SaveAll(ctx, s.store); err != nil {
		*s.data = backup
		if rerr := s.data.SaveAll(ctx, s.store); rerr != nil {
			s.logger.Error("Falha restaurando estado após erro de importação", zap.Error(rerr))
		}
		return nil, fmt.Errorf("failed to persist imported data: %w", err)
	}
	s.snapshot.Invalidate(ctx)
	result.Applied = true

	s.logger.Info("Importação aplicada",
		zap.Any("collections", result.Collections),
		zap.Strings("skippedSheets", result.SkippedSheets),
	)
	return result, nil
}

// laborBillingLocked versão interna de LaborBilling para uso com o mutex
// já em mãos.
func (s *inventoryService) laborBillingLocked() []models.LaborBillingRow {
	entryCost := map[string]float64{}
	for _, m := range s.data.Movements {
		if m.IsEntry() && m.IsService && m.BatchID != "" {
			entryCost[m.BatchID] = m.UnitCost
		}
	}

	rows := []models.LaborBillingRow{}
	for _, m := range s.data.Movements {
		if !m.IsExit() || !m.IsService {
			continue
		}
		unitCost := m.UnitCost
		if unitCost == 0 {
			unitCost = entryCost[m.BatchID]
		}
		rows = append(rows, models.LaborBillingRow{
			ExitDate:    m.ExitDate,
			BatchID:     m.BatchID,
			ServiceName: m.ProductName,
			Client:      m.Supplier,
			Quantity:    m.Quantity,
			UnitCost:    unitCost,
			Total:       m.Quantity * unitCost,
		})
	}
	return rows
}
