package handlers

import (
	"errors"
	"net/http"
	"time"

	"greenstock-service/internal/models"
	"greenstock-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// InventoryHandler atende as rotas do livro de estoque: movimentos,
// visões agregadas, análises e processamento.
type InventoryHandler struct {
	service   services.InventoryService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInventoryHandler cria uma nova instância do handler
func NewInventoryHandler(service services.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// logDebug logs apenas em modo debug
func (h *InventoryHandler) logDebug(msg string, fields ...zap.Field) {
	h.logger.Debug("🔍 [DEBUG] "+msg, fields...)
}

// logError logs de erro em todos os modos
func (h *InventoryHandler) logError(msg string, fields ...zap.Field) {
	h.logger.Error("❌ "+msg, fields...)
}

// logSuccess logs de sucesso em todos os modos
func (h *InventoryHandler) logSuccess(msg string, fields ...zap.Field) {
	h.logger.Info("✅ "+msg, fields...)
}

// serviceErrorStatus traduz os erros sentinela do service em status HTTP.
func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInsufficientStock), errors.Is(err, services.ErrCodeConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	default:
		return http.StatusInternalServerError
	}
}

// AddMovement lança um movimento (entrada ou saída) no livro
func (h *InventoryHandler) AddMovement(c *gin.Context) {
	start := time.Now()

	var req models.AddMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Erro no binding do JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Formato de dados inválido",
			"error":   err.Error(),
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logError("Erro de validação", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Dados do movimento inválidos",
			"error":   err.Error(),
		})
		return
	}

	h.logDebug("Lançando movimento",
		zap.String("batchId", req.BatchID),
		zap.String("productCode", req.ProductCode),
		zap.Float64("quantity", req.Quantity))

	movement, err := h.service.AddMovement(c.Request.Context(), req)
	if err != nil {
		h.logError("Erro lançando movimento", zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro lançando movimento",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Movimento lançado",
		zap.String("id", movement.ID),
		zap.String("batchId", movement.BatchID),
		zap.Duration("latency", time.Since(start)))

	c.JSON(http.StatusCreated, models.MovementResponse{
		Success:  true,
		Message:  "✅ Movimento lançado com sucesso",
		Movement: movement,
	})
}

// DeleteMovement remove um movimento do histórico. Operação sem volta:
// exige confirm=true na query.
func (h *InventoryHandler) DeleteMovement(c *gin.Context) {
	id := c.Param("id")
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusPreconditionRequired, gin.H{
			"success": false,
			"message": "❌ Exclusão de movimento exige confirm=true",
		})
		return
	}

	if err := h.service.DeleteMovement(c.Request.Context(), id); err != nil {
		h.logError("Erro excluindo movimento", zap.String("id", id), zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro excluindo movimento",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Movimento excluído", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Movimento excluído",
	})
}

// GetMovements lista o histórico com filtros opcionais de query
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	filter := models.MovementFilter{}

	if v := c.Query("lote"); v != "" {
		filter.BatchID = &v
	}
	if v := c.Query("produto"); v != "" {
		filter.ProductCode = &v
	}
	if v := c.Query("fornecedor"); v != "" {
		filter.SupplierCode = &v
	}
	switch c.Query("tipo") {
	case "fisico":
		kind := models.KindPhysical
		filter.Kind = &kind
	case "mo":
		kind := models.KindService
		filter.Kind = &kind
	}
	if v := c.Query("data_de"); v != "" {
		filter.DateFrom = &v
	}
	if v := c.Query("data_ate"); v != "" {
		filter.DateTo = &v
	}
	switch c.Query("sentido") {
	case "entrada":
		filter.OnlyEntries = true
	case "saida":
		filter.OnlyExits = true
	}

	movements := h.service.Movements(c.Request.Context(), filter)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Movimentos obtidos",
		"data": gin.H{
			"movements": movements,
			"total":     len(movements),
		},
	})
}

// GetStock retorna a visão agregada do estoque físico
func (h *InventoryHandler) GetStock(c *gin.Context) {
	kind := models.KindPhysical
	stock := h.service.CurrentStock(c.Request.Context(), &kind)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Estoque obtido",
		"data": gin.H{
			"stock": stock,
			"total": len(stock),
		},
	})
}

// GetServiceStock retorna a visão agregada do estoque de mão de obra
func (h *InventoryHandler) GetServiceStock(c *gin.Context) {
	kind := models.KindService
	stock := h.service.CurrentStock(c.Request.Context(), &kind)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Estoque de mão de obra obtido",
		"data": gin.H{
			"stock": stock,
			"total": len(stock),
		},
	})
}

// GetBatches retorna todos os lotes com saldo, dos dois tipos
func (h *InventoryHandler) GetBatches(c *gin.Context) {
	batches := h.service.AvailableBatches(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Lotes disponíveis obtidos",
		"data": gin.H{
			"batches": batches,
			"total":   len(batches),
		},
	})
}

// SaveAnalysis grava a análise química de um lote ou produto
func (h *InventoryHandler) SaveAnalysis(c *gin.Context) {
	var analysis models.ProductAnalysis
	if err := c.ShouldBindJSON(&analysis); err != nil {
		h.logError("Erro no binding do JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Formato de dados inválido",
			"error":   err.Error(),
		})
		return
	}

	if err := h.service.SaveAnalysis(c.Request.Context(), analysis); err != nil {
		h.logError("Erro gravando análise", zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro gravando análise",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Análise gravada",
		zap.String("batchId", analysis.BatchID),
		zap.String("productCode", analysis.ProductCode))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Análise gravada com sucesso",
	})
}

// GetAnalysis resolve a análise de um lote (com fallback legado por produto)
func (h *InventoryHandler) GetAnalysis(c *gin.Context) {
	batchID := c.Query("lote")
	productCode := c.Query("produto")
	if batchID == "" && productCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Informe lote ou produto",
		})
		return
	}

	analysis := h.service.AnalysisFor(c.Request.Context(), batchID, productCode)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Análise obtida",
		"data":    analysis,
	})
}

// ProcessOrder executa o processamento de um lote de origem
func (h *InventoryHandler) ProcessOrder(c *gin.Context) {
	start := time.Now()

	var req models.ProcessOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Erro no binding do JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Formato de dados inválido",
			"error":   err.Error(),
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logError("Erro de validação", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Dados do processamento inválidos",
			"error":   err.Error(),
		})
		return
	}

	order, movements, err := h.service.ProcessOrder(c.Request.Context(), req)
	if err != nil {
		h.logError("Erro no processamento", zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro processando o lote",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Processamento concluído",
		zap.String("order", order.ID),
		zap.Int("outputs", len(order.Outputs)),
		zap.Duration("latency", time.Since(start)))

	c.JSON(http.StatusCreated, models.ProcessOrderResponse{
		Success:   true,
		Message:   "✅ Processamento registrado com sucesso",
		Order:     order,
		Movements: movements,
	})
}

// GetProductionOrders lista as ordens de produção registradas
func (h *InventoryHandler) GetProductionOrders(c *gin.Context) {
	orders := h.service.ProductionOrders(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Ordens de produção obtidas",
		"data": gin.H{
			"orders": orders,
			"total":  len(orders),
		},
	})
}

// GetLaborBilling lista as linhas de cobrança de mão de obra
func (h *InventoryHandler) GetLaborBilling(c *gin.Context) {
	rows := h.service.LaborBilling(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Cobrança de mão de obra obtida",
		"data": gin.H{
			"rows":  rows,
			"total": len(rows),
		},
	})
}

// GetDashboard retorna os totais do painel
func (h *InventoryHandler) GetDashboard(c *gin.Context) {
	stats := h.service.DashboardStats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Painel obtido",
		"data":    stats,
	})
}
