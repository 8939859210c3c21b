package handlers

import (
	"context"
	"net/http"

	"greenstock-service/internal/models"
	"greenstock-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RegistryHandler atende as rotas de cadastro: fornecedores, clientes,
// produtos e serviços.
type RegistryHandler struct {
	service   services.InventoryService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewRegistryHandler(service services.InventoryService, logger *zap.Logger) *RegistryHandler {
	return &RegistryHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *RegistryHandler) logError(msg string, fields ...zap.Field) {
	h.logger.Error("❌ "+msg, fields...)
}

func (h *RegistryHandler) logSuccess(msg string, fields ...zap.Field) {
	h.logger.Info("✅ "+msg, fields...)
}

// GetSuppliers lista os fornecedores cadastrados
func (h *RegistryHandler) GetSuppliers(c *gin.Context) {
	suppliers := h.service.Suppliers(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Fornecedores obtidos",
		"data":    gin.H{"suppliers": suppliers, "total": len(suppliers)},
	})
}

// GetClients lista os clientes cadastrados
func (h *RegistryHandler) GetClients(c *gin.Context) {
	clients := h.service.Clients(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Clientes obtidos",
		"data":    gin.H{"clients": clients, "total": len(clients)},
	})
}

// GetProducts lista os produtos cadastrados
func (h *RegistryHandler) GetProducts(c *gin.Context) {
	products := h.service.Products(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Produtos obtidos",
		"data":    gin.H{"products": products, "total": len(products)},
	})
}

// GetServices lista os serviços cadastrados
func (h *RegistryHandler) GetServices(c *gin.Context) {
	servicesList := h.service.Services(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Serviços obtidos",
		"data":    gin.H{"services": servicesList, "total": len(servicesList)},
	})
}

// SaveSupplier cria ou atualiza um fornecedor
func (h *RegistryHandler) SaveSupplier(c *gin.Context) {
	h.saveCounterparty(c, h.service.SaveSupplier, "fornecedor")
}

// SaveClient cria ou atualiza um cliente
func (h *RegistryHandler) SaveClient(c *gin.Context) {
	h.saveCounterparty(c, h.service.SaveClient, "cliente")
}

// saveCounterparty fluxo comum de gravação de fornecedor/cliente: as duas
// listas compartilham o DTO e as regras de conflito de código.
func (h *RegistryHandler) saveCounterparty(
	c *gin.Context,
	save func(ctx context.Context, req models.SaveRegistryRequest) (*models.RegistryEntity, error),
	label string,
) {
	var req models.SaveRegistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Erro no binding do JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Formato de dados inválido",
			"error":   err.Error(),
		})
		return
	}

	entity, err := save(c.Request.Context(), req)
	if err != nil {
		h.logError("Erro gravando "+label, zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro gravando " + label,
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Cadastro gravado",
		zap.String("tipo", label),
		zap.String("id", entity.ID),
		zap.String("code", entity.Code))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Cadastro gravado com sucesso",
		"data":    entity,
	})
}

// SaveProduct cria ou atualiza um produto
func (h *RegistryHandler) SaveProduct(c *gin.Context) {
	var req struct {
		models.ProductEntity
		Overwrite bool `json:"overwrite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Erro no binding do JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Formato de dados inválido",
			"error":   err.Error(),
		})
		return
	}

	product, err := h.service.SaveProduct(c.Request.Context(), req.ProductEntity, req.Overwrite)
	if err != nil {
		h.logError("Erro gravando produto", zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro gravando produto",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Produto gravado", zap.String("id", product.ID), zap.String("code", product.Code))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Produto gravado com sucesso",
		"data":    product,
	})
}

// SaveService cria ou atualiza um serviço
func (h *RegistryHandler) SaveService(c *gin.Context) {
	var req struct {
		models.ServiceEntity
		Overwrite bool `json:"overwrite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Erro no binding do JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Formato de dados inválido",
			"error":   err.Error(),
		})
		return
	}

	service, err := h.service.SaveService(c.Request.Context(), req.ServiceEntity, req.Overwrite)
	if err != nil {
		h.logError("Erro gravando serviço", zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro gravando serviço",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Serviço gravado", zap.String("id", service.ID), zap.String("code", service.Code))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Serviço gravado com sucesso",
		"data":    service,
	})
}

// DeleteSupplier remove um fornecedor
func (h *RegistryHandler) DeleteSupplier(c *gin.Context) {
	h.deleteEntity(c, h.service.DeleteSupplier, "fornecedor")
}

// DeleteClient remove um cliente
func (h *RegistryHandler) DeleteClient(c *gin.Context) {
	h.deleteEntity(c, h.service.DeleteClient, "cliente")
}

// DeleteProduct remove um produto
func (h *RegistryHandler) DeleteProduct(c *gin.Context) {
	h.deleteEntity(c, h.service.DeleteProduct, "produto")
}

// DeleteService remove um serviço
func (h *RegistryHandler) DeleteService(c *gin.Context) {
	h.deleteEntity(c, h.service.DeleteService, "serviço")
}

func (h *RegistryHandler) deleteEntity(c *gin.Context, del func(ctx context.Context, id string) error, label string) {
	id := c.Param("id")
	if err := del(c.Request.Context(), id); err != nil {
		h.logError("Erro excluindo "+label, zap.String("id", id), zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro excluindo " + label,
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Cadastro excluído", zap.String("tipo", label), zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Cadastro excluído",
	})
}

// ReplicateSupplier copia um fornecedor para a lista de clientes
func (h *RegistryHandler) ReplicateSupplier(c *gin.Context) {
	id := c.Param("id")
	client, err := h.service.ReplicateSupplierToClients(c.Request.Context(), id)
	if err != nil {
		h.logError("Erro replicando fornecedor", zap.String("id", id), zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro replicando fornecedor para clientes",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Fornecedor replicado para clientes",
		zap.String("supplierId", id),
		zap.String("clientId", client.ID))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Fornecedor replicado para clientes",
		"data":    client,
	})
}
