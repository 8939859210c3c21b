package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"greenstock-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImportSize = 20 << 20 // 20 MB

// InterchangeHandler atende a exportação e a importação de planilhas.
type InterchangeHandler struct {
	service services.InventoryService
	logger  *zap.Logger
}

func NewInterchangeHandler(service services.InventoryService, logger *zap.Logger) *InterchangeHandler {
	return &InterchangeHandler{service: service, logger: logger}
}

func (h *InterchangeHandler) logError(msg string, fields ...zap.Field) {
	h.logger.Error("❌ "+msg, fields...)
}

func (h *InterchangeHandler) logSuccess(msg string, fields ...zap.Field) {
	h.logger.Info("✅ "+msg, fields...)
}

// ExportWorkbook gera e devolve o arquivo xlsx completo
func (h *InterchangeHandler) ExportWorkbook(c *gin.Context) {
	start := time.Now()

	data, err := h.service.ExportWorkbook(c.Request.Context())
	if err != nil {
		h.logError("Erro gerando exportação", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Erro gerando arquivo de exportação",
			"error":   err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("estoque_%s.xlsx", time.Now().Format("2006-01-02"))
	h.logSuccess("Exportação enviada",
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
		zap.Duration("latency", time.Since(start)))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ImportWorkbook recebe a planilha via multipart e substitui o estado.
// A confirmação vem no campo de formulário confirm=true.
func (h *InterchangeHandler) ImportWorkbook(c *gin.Context) {
	start := time.Now()

	file, err := c.FormFile("file")
	if err != nil {
		h.logError("Arquivo de importação ausente", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Envie a planilha no campo 'file'",
			"error":   err.Error(),
		})
		return
	}
	if file.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"message": "❌ Arquivo excede o tamanho máximo de importação",
		})
		return
	}

	f, err := file.Open()
	if err != nil {
		h.logError("Erro abrindo arquivo de importação", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Erro lendo o arquivo enviado",
			"error":   err.Error(),
		})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.logError("Erro lendo arquivo de importação", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Erro lendo o arquivo enviado",
			"error":   err.Error(),
		})
		return
	}

	confirm := c.PostForm("confirm") == "true"
	result, err := h.service.ImportWorkbook(c.Request.Context(), data, confirm)
	if err != nil {
		h.logError("Erro na importação", zap.Error(err))
		c.JSON(serviceErrorStatus(err), gin.H{
			"success": false,
			"message": "❌ Erro importando planilha",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Importação concluída",
		zap.String("filename", file.Filename),
		zap.Any("collections", result.Collections),
		zap.Duration("latency", time.Since(start)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Planilha importada com sucesso",
		"data":    result,
	})
}
