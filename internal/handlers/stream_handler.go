package handlers

import (
	"net/http"
	"time"

	"greenstock-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StreamHandler transmite o snapshot de estoque por WebSocket.
type StreamHandler struct {
	service  services.InventoryService
	logger   *zap.Logger
	interval time.Duration
}

func NewStreamHandler(service services.InventoryService, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		service:  service,
		logger:   logger,
		interval: 10 * time.Second,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Permitir todas as origens em desenvolvimento
	},
}

// StockStream envia a visão agregada do estoque no intervalo configurado,
// até o cliente desconectar.
func (h *StreamHandler) StockStream(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "stock_stream"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Erro atualizando para WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	logger.Info("Conexão WebSocket estabelecida")

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Primeiro envio imediato, depois no intervalo.
	if err := h.sendSnapshot(c, conn); err != nil {
		logger.Error("Erro enviando snapshot inicial", zap.Error(err))
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.sendSnapshot(c, conn); err != nil {
				logger.Error("Erro enviando snapshot por WebSocket", zap.Error(err))
				return
			}
		case <-c.Request.Context().Done():
			logger.Info("Conexão WebSocket encerrada pelo contexto")
			return
		}
	}
}

func (h *StreamHandler) sendSnapshot(c *gin.Context, conn *websocket.Conn) error {
	snapshot := h.service.AvailableBatches(c.Request.Context())
	return conn.WriteJSON(gin.H{
		"timestamp": time.Now().Format(time.RFC3339),
		"batches":   snapshot,
		"total":     len(snapshot),
	})
}
