package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"greenstock-service/internal/cache"
	"greenstock-service/internal/ledger"
	"greenstock-service/internal/models"
	"greenstock-service/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Erros sentinela da camada de serviço. Os handlers os traduzem em status
// HTTP; o texto final para o usuário vive lá.
var (
	ErrValidation           = errors.New("dados inválidos")
	ErrInsufficientStock    = errors.New("saldo insuficiente no lote")
	ErrCodeConflict         = errors.New("código já cadastrado")
	ErrConfirmationRequired = errors.New("operação destrutiva requer confirmação")
	ErrNotFound             = errors.New("registro não encontrado")
)

// InventoryService operações do livro de estoque. Todas as mutações são
// serializadas internamente (modelo de escritor único).
type InventoryService interface {
	AddMovement(ctx context.Context, req models.AddMovementRequest) (*models.Movement, error)
	DeleteMovement(ctx context.Context, id string) error
	Movements(ctx context.Context, filter models.MovementFilter) []models.Movement

	CurrentStock(ctx context.Context, kind *models.BatchKind) []models.BatchBalance
	AvailableBatches(ctx context.Context) []models.BatchBalance
	DashboardStats(ctx context.Context) models.DashboardStats
	LaborBilling(ctx context.Context) []models.LaborBillingRow

	SaveAnalysis(ctx context.Context, a models.ProductAnalysis) error
	AnalysisFor(ctx context.Context, batchID, productCode string) models.ProductAnalysis

	ProcessOrder(ctx context.Context, req models.ProcessOrderRequest) (*models.ProductionOrder, []models.Movement, error)
	ProductionOrders(ctx context.Context) []models.ProductionOrder

	Suppliers(ctx context.Context) []models.RegistryEntity
	Clients(ctx context.Context) []models.RegistryEntity
	Products(ctx context.Context) []models.ProductEntity
	Services(ctx context.Context) []models.ServiceEntity
	SaveSupplier(ctx context.Context, req models.SaveRegistryRequest) (*models.RegistryEntity, error)
	SaveClient(ctx context.Context, req models.SaveRegistryRequest) (*models.RegistryEntity, error)
	SaveProduct(ctx context.Context, p models.ProductEntity, overwrite bool) (*models.ProductEntity, error)
	SaveService(ctx context.Context, s models.ServiceEntity, overwrite bool) (*models.ServiceEntity, error)
	DeleteSupplier(ctx context.Context, id string) error
	DeleteClient(ctx context.Context, id string) error
	DeleteProduct(ctx context.Context, id string) error
	DeleteService(ctx context.Context, id string) error
	ReplicateSupplierToClients(ctx context.Context, supplierID string) (*models.RegistryEntity, error)

	ExportWorkbook(ctx context.Context) ([]byte, error)
	ImportWorkbook(ctx context.Context, data []byte, confirm bool) (*models.ImportResult, error)

	CacheStats() cache.CacheStats
}

type inventoryService struct {
	mu sync.Mutex

	store    store.Store
	data     *store.Dataset
	snapshot *cache.SnapshotCache
	logger   *zap.Logger
}

// NewInventoryService cria o serviço sobre um dataset já carregado.
func NewInventoryService(s store.Store, data *store.Dataset, snapshot *cache.SnapshotCache, logger *zap.Logger) InventoryService {
	return &inventoryService{
		store:    s,
		data:     data,
		snapshot: snapshot,
		logger:   logger,
	}
}

// ===== MOVIMENTOS =====

func (s *inventoryService) AddMovement(ctx context.Context, req models.AddMovementRequest) (*models.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	isEntry := req.EntryDate != ""
	isExit := req.ExitDate != ""
	if isEntry == isExit {
		return nil, fmt.Errorf("%w: informe data de entrada ou de saída, nunca ambas", ErrValidation)
	}

	req.SupplierCode = normalizeCode(req.SupplierCode)
	req.ProductCode = normalizeCode(req.ProductCode)

	// Um lote nunca mistura mercadoria e mão de obra.
	if req.BatchID != "" {
		for i := range s.data.Movements {
			m := &s.data.Movements[i]
			if m.BatchID == req.BatchID && m.IsService != req.IsService {
				return nil, fmt.Errorf("%w: lote %s pertence a outro tipo de estoque", ErrValidation, req.BatchID)
			}
		}
	}

	batchID := req.BatchID
	if isEntry && batchID == "" {
		seq := ledger.NextSequenceNumber(req.SupplierCode, s.data.Movements)
		batchID = ledger.BatchID(req.SupplierCode, seq, req.ProductCode)
	}

	if isExit {
		if batchID == "" {
			return nil, fmt.Errorf("%w: saída exige o lote de origem", ErrValidation)
		}
		balances := ledger.Aggregate(s.data.Movements, s.data.Analyses)
		remaining := ledger.Remaining(balances, batchID)
		if remaining+models.Epsilon < req.Quantity {
			return nil, fmt.Errorf("%w: lote %s tem %.4f disponível, pedido %.4f",
				ErrInsufficientStock, batchID, remaining, req.Quantity)
		}
	}

	movement := models.Movement{
		ID:           uuid.NewString(),
		BatchID:      batchID,
		EntryDate:    req.EntryDate,
		ExitDate:     req.ExitDate,
		Supplier:     req.Supplier,
		SupplierCode: req.SupplierCode,
		ProductName:  req.ProductName,
		ProductCode:  req.ProductCode,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		Observations: req.Observations,
		IsService:    req.IsService,
	}

	previous := s.data.Movements
	s.data.Movements = append(s.data.Movements, movement)
	if err := s.data.SaveCollection(ctx, s.store, store.KeyMovements); err != nil {
		s.data.Movements = previous
		return nil, fmt.Errorf("failed to persist movement: %w", err)
	}
	s.snapshot.Invalidate(ctx)

	s.logger.Info("Movimento lançado",
		zap.String("batch", batchID),
		zap.Bool("entry", isEntry),
		zap.Float64("quantity", req.Quantity),
	)
	return &movement, nil
}

func (s *inventoryService) DeleteMovement(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.data.Movements {
		if s.data.Movements[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	previous := s.data.Movements
	filtered := make([]models.Movement, 0, len(previous)-1)
	filtered = append(filtered, previous[:idx]...)
	filtered = append(filtered, previous[idx+1:]...)
	s.data.Movements = filtered

	if err := s.data.SaveCollection(ctx, s.store, store.KeyMovements); err != nil {
		s.data.Movements = previous
		return fmt.Errorf("failed to persist movements: %w", err)
	}
	s.snapshot.Invalidate(ctx)
	return nil
}

func (s *inventoryService) Movements(_ context.Context, filter models.MovementFilter) []models.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Movement, 0, len(s.data.Movements))
	for _, m := range s.data.Movements {
		if !matchesFilter(&m, &filter) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesFilter(m *models.Movement, f *models.MovementFilter) bool {
	if f.BatchID != nil && m.BatchID != *f.BatchID {
		return false
	}
	if f.ProductCode != nil && m.ProductCode != *f.ProductCode {
		return false
	}
	if f.SupplierCode != nil && m.SupplierCode != *f.SupplierCode {
		return false
	}
	if f.Kind != nil && m.Kind() != *f.Kind {
		return false
	}
	if f.OnlyEntries && !m.IsEntry() {
		return false
	}
	if f.OnlyExits && !m.IsExit() {
		return false
	}
	// Datas ISO comparam lexicograficamente. A data efetiva do movimento é
	// a de entrada quando presente, senão a de saída.
	date := m.EntryDate
	if date == "" {
		date = m.ExitDate
	}
	if f.DateFrom != nil && date < *f.DateFrom {
		return false
	}
	if f.DateTo != nil && date > *f.DateTo {
		return false
	}
	return true
}

// ===== VISÕES DERIVADAS =====

// currentSnapshot retorna a visão agregada, do caché quando válida.
// Chamar com o mutex em mãos.
func (s *inventoryService) currentSnapshot(ctx context.Context) []models.BatchBalance {
	if snapshot, ok := s.snapshot.Get(ctx); ok {
		return snapshot
	}
	snapshot := ledger.Aggregate(s.data.Movements, s.data.Analyses)
	s.snapshot.Set(ctx, snapshot)
	return snapshot
}

func (s *inventoryService) CurrentStock(ctx context.Context, kind *models.BatchKind) []models.BatchBalance {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.currentSnapshot(ctx)
	if kind == nil {
		return snapshot
	}
	return ledger.FilterKind(snapshot, *kind)
}

func (s *inventoryService) AvailableBatches(ctx context.Context) []models.BatchBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSnapshot(ctx)
}

func (s *inventoryService) DashboardStats(ctx context.Context) models.DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.DashboardStats{}
	for _, b := range ledger.FilterKind(s.currentSnapshot(ctx), models.KindPhysical) {
		stats.TotalStock += b.RemainingQuantity
		stats.TotalCost += b.EstimatedValue
	}

	// Receita e lucro saem das saídas físicas: receita pelo valor da
	// saída, lucro contra o custo de entrada do lote.
	entryCost := map[string]float64{}
	for _, m := range s.data.Movements {
		if m.IsEntry() && !m.IsService && m.BatchID != "" {
			entryCost[m.BatchID] = m.UnitCost
		}
	}
	for _, m := range s.data.Movements {
		if !m.IsExit() || m.IsService || m.UnitCost <= 0 {
			continue
		}
		revenue := m.Quantity * m.UnitCost
		stats.Revenue += revenue
		stats.Profit += revenue - m.Quantity*entryCost[m.BatchID]
	}
	return stats
}

// LaborBilling monta as linhas de cobrança de mão de obra: uma por saída
// de serviço, com o custo unitário da saída (ou, na falta, o da entrada
// que criou o lote).
func (s *inventoryService) LaborBilling(_ context.Context) []models.LaborBillingRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.laborBillingLocked()
}

// ===== ANÁLISES =====

func (s *inventoryService) SaveAnalysis(ctx context.Context, a models.ProductAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ProductCode = normalizeCode(a.ProductCode)
	if a.Key() == "" {
		return fmt.Errorf("%w: análise exige lote ou código de produto", ErrValidation)
	}

	previous := s.data.Analyses
	s.data.Analyses = ledger.Upsert(s.data.Analyses, a)
	if err := s.data.SaveCollection(ctx, s.store, store.KeyAnalyses); err != nil {
		s.data.Analyses = previous
		return fmt.Errorf("failed to persist analyses: %w", err)
	}
	// A análise viaja acoplada ao saldo, então o snapshot envelheceu.
	s.snapshot.Invalidate(ctx)
	return nil
}

func (s *inventoryService) AnalysisFor(_ context.Context, batchID, productCode string) models.ProductAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Resolve(batchID, normalizeCode(productCode), s.data.Analyses)
}

// ===== PROCESSAMENTO =====

func (s *inventoryService) ProcessOrder(ctx context.Context, req models.ProcessOrderRequest) (*models.ProductionOrder, []models.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.SupplierCode = normalizeCode(req.SupplierCode)

	// O lote de origem precisa existir, ser do tipo declarado e ter saldo.
	for i := range s.data.Movements {
		m := &s.data.Movements[i]
		if m.BatchID == req.SourceBatchID && m.IsService != req.SourceIsService {
			return nil, nil, fmt.Errorf("%w: lote %s pertence a outro tipo de estoque",
				ErrValidation, req.SourceBatchID)
		}
	}
	balances := ledger.Aggregate(s.data.Movements, s.data.Analyses)
	remaining := ledger.Remaining(balances, req.SourceBatchID)
	if remaining+models.Epsilon < req.ProcessedQuantity {
		return nil, nil, fmt.Errorf("%w: lote %s tem %.4f disponível, pedido %.4f",
			ErrInsufficientStock, req.SourceBatchID, remaining, req.ProcessedQuantity)
	}

	outputs := make([]models.ProcessOutput, 0, len(req.Outputs))
	for _, o := range req.Outputs {
		outputs = append(outputs, models.ProcessOutput{
			ProductName:          o.ProductName,
			ProductCode:          normalizeCode(o.ProductCode),
			Quantity:             o.Quantity,
			DestinationIsService: o.DestinationIsService,
			UnitCost:             o.UnitCost,
		})
	}

	// A perda declarada é do operador; divergência do balanço de massa
	// fica registrada, não bloqueia.
	expectedLoss := req.ProcessedQuantity - ledger.OutputsTotal(outputs)
	if diff := req.Loss - expectedLoss; diff > models.Epsilon || diff < -models.Epsilon {
		s.logger.Warn("Perda declarada diverge do balanço de massa",
			zap.String("sourceBatch", req.SourceBatchID),
			zap.Float64("declaredLoss", req.Loss),
			zap.Float64("expectedLoss", expectedLoss),
		)
	}

	newMovements, order := ledger.BuildProcessing(ledger.ProcessInput{
		SourceBatchID:     req.SourceBatchID,
		SourceProduct:     req.SourceProduct,
		SourceIsService:   req.SourceIsService,
		ProcessedQuantity: req.ProcessedQuantity,
		Supplier:          req.Supplier,
		SupplierCode:      req.SupplierCode,
		Date:              req.Date,
		Outputs:           outputs,
		Loss:              req.Loss,
	}, s.data.Movements)

	// Anexo atômico: ou movimentos e ordem entram juntos, ou nada entra.
	prevMovements := s.data.Movements
	prevOrders := s.data.ProductionOrders
	s.data.Movements = append(s.data.Movements, newMovements...)
	s.data.ProductionOrders = append(s.data.ProductionOrders, order)

	if err := s.data.SaveCollection(ctx, s.store, store.KeyMovements); err != nil {
		s.data.Movements = prevMovements
		s.data.ProductionOrders = prevOrders
		return nil, nil, fmt.Errorf("failed to persist movements: %w", err)
	}
	if err := s.data.SaveCollection(ctx, s.store, store.KeyProductionOrders); err != nil {
		s.data.Movements = prevMovements
		s.data.ProductionOrders = prevOrders
		if rerr := s.data.SaveCollection(ctx, s.store, store.KeyMovements); rerr != nil {
			s.logger.Error("Falha revertendo movimentos após erro na ordem", zap.Error(rerr))
		}
		return nil, nil, fmt.Errorf("failed to persist production order: %w", err)
	}
	s.snapshot.Invalidate(ctx)

	s.logger.Info("Processamento registrado",
		zap.String("order", order.ID),
		zap.String("sourceBatch", req.SourceBatchID),
		zap.Int("outputs", len(order.Outputs)),
		zap.Float64("loss", req.Loss),
	)
	return &order, newMovements, nil
}

func (s *inventoryService) ProductionOrders(_ context.Context) []models.ProductionOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ProductionOrder, len(s.data.ProductionOrders))
	copy(out, s.data.ProductionOrders)
	return out
}

func (s *inventoryService) CacheStats() cache.CacheStats {
	return s.snapshot.GetStats()
}

// normalizeCode completa códigos de cadastro com zeros à esquerda na
// largura padrão de 3 dígitos.
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < 3 {
		code = "0" + code
	}
	return code
}
