package routes

import (
	"greenstock-service/internal/handlers"
	"greenstock-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configura todas as rotas da aplicação
func SetupRoutes(
	router *gin.Engine,
	inventoryHandler *handlers.InventoryHandler,
	registryHandler *handlers.RegistryHandler,
	interchangeHandler *handlers.InterchangeHandler,
	streamHandler *handlers.StreamHandler,
	healthChecker *middleware.HealthChecker,
) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Movimentos do livro
		movements := v1.Group("/movimentos")
		{
			movements.POST("", inventoryHandler.AddMovement)
			movements.GET("", inventoryHandler.GetMovements)
			movements.DELETE("/:id", inventoryHandler.DeleteMovement)
		}

		// Visões agregadas
		stock := v1.Group("/stock")
		{
			stock.GET("", inventoryHandler.GetStock)
			stock.GET("/mo", inventoryHandler.GetServiceStock)
			stock.GET("/lotes", inventoryHandler.GetBatches)
			stock.GET("/ws", streamHandler.StockStream)
		}

		// Análises químicas
		analyses := v1.Group("/analises")
		{
			analyses.POST("", inventoryHandler.SaveAnalysis)
			analyses.GET("", inventoryHandler.GetAnalysis)
		}

		// Processamento e ordens de produção
		v1.POST("/processamento", inventoryHandler.ProcessOrder)
		v1.GET("/ordens-producao", inventoryHandler.GetProductionOrders)

		// Cobrança de mão de obra e painel
		v1.GET("/cobranca-mo", inventoryHandler.GetLaborBilling)
		v1.GET("/dashboard", inventoryHandler.GetDashboard)

		// Cadastros
		suppliers := v1.Group("/fornecedores")
		{
			suppliers.GET("", registryHandler.GetSuppliers)
			suppliers.POST("", registryHandler.SaveSupplier)
			suppliers.DELETE("/:id", registryHandler.DeleteSupplier)
			suppliers.POST("/:id/replicar-cliente", registryHandler.ReplicateSupplier)
		}
		clients := v1.Group("/clientes")
		{
			clients.GET("", registryHandler.GetClients)
			clients.POST("", registryHandler.SaveClient)
			clients.DELETE("/:id", registryHandler.DeleteClient)
		}
		products := v1.Group("/produtos")
		{
			products.GET("", registryHandler.GetProducts)
			products.POST("", registryHandler.SaveProduct)
			products.DELETE("/:id", registryHandler.DeleteProduct)
		}
		servicesGroup := v1.Group("/servicos")
		{
			servicesGroup.GET("", registryHandler.GetServices)
			servicesGroup.POST("", registryHandler.SaveService)
			servicesGroup.DELETE("/:id", registryHandler.DeleteService)
		}

		// Intercâmbio de planilhas
		v1.GET("/exportar", interchangeHandler.ExportWorkbook)
		v1.POST("/importar", interchangeHandler.ImportWorkbook)
	}

	// Health check na raiz
	router.GET("/health", healthChecker.HealthCheck)

	// API info na raiz
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "GreenStock Service API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health": "/health",
				"api":    "/api/v1",
				"movimentos": gin.H{
					"lancar":  "POST /api/v1/movimentos",
					"listar":  "GET /api/v1/movimentos",
					"excluir": "DELETE /api/v1/movimentos/:id?confirm=true",
				},
				"stock": gin.H{
					"fisico": "GET /api/v1/stock",
					"mo":     "GET /api/v1/stock/mo",
					"lotes":  "GET /api/v1/stock/lotes",
					"stream": "GET /api/v1/stock/ws",
				},
				"processamento": "POST /api/v1/processamento",
				"exportar":      "GET /api/v1/exportar",
				"importar":      "POST /api/v1/importar",
			},
		})
	})
}
