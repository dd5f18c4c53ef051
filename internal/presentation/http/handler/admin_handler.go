package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/application/service"
	"github.com/sangkips/salespos-api/internal/presentation/http/dto/response"
)

// AdminHandler handles whole-store maintenance requests
type AdminHandler struct {
	backupService *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(backupService *service.BackupService) *AdminHandler {
	return &AdminHandler{backupService: backupService}
}

// ExportBackup returns the full store as a JSON download
func (h *AdminHandler) ExportBackup(c *gin.Context) {
	backup, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	name := "salespos-backup-" + backup.ExportedAt.Format("20060102-150405") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.JSON(http.StatusOK, backup)
}

// ImportBackup replaces the store with the backup document in the body
func (h *AdminHandler) ImportBackup(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	summary, err := h.backupService.Import(c.Request.Context(), body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Backup restored successfully", summary)
}

// ClearData removes every item, transaction and setting
func (h *AdminHandler) ClearData(c *gin.Context) {
	if err := h.backupService.ClearAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "All data cleared", gin.H{"cleared_at": time.Now().UTC()})
}
