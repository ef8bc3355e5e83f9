package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stemtrack/cartline-backend/internal/http/response"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	log           *logger.Logger
	exportService services.ExportService
}

func NewExportHandler(log *logger.Logger, exportService services.ExportService) *ExportHandler {
	return &ExportHandler{
		log:           log.With("handler", "ExportHandler"),
		exportService: exportService,
	}
}

func (h *ExportHandler) ExportExcel(c *gin.Context) {
	// Buffer the whole workbook first so a failure mid-build never leaves
	// a partial attachment on the wire.
	var buf bytes.Buffer
	if err := h.exportService.WriteWorkbook(c.Request.Context(), &buf); err != nil {
		h.log.Error("ExportExcel failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}

	filename := h.exportService.Filename(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
