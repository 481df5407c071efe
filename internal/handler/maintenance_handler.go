package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruchikageeminda97/tms-api/internal/service"
	"github.com/ruchikageeminda97/tms-api/pkg/response"
)

// MaintenanceHandler exposes the data repair endpoints.
type MaintenanceHandler struct {
	maintenance *service.MaintenanceService
}

// NewMaintenanceHandler constructs MaintenanceHandler.
func NewMaintenanceHandler(maintenance *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance}
}

// CleanClasses godoc
// @Summary Backfill missing class fields with defaults
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /maintenance/clean-classes [post]
func (h *MaintenanceHandler) CleanClasses(c *gin.Context) {
	report, err := h.maintenance.RepairClasses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// CleanPayments godoc
// @Summary Reassign missing, malformed or duplicate payment identifiers
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /maintenance/clean-payments [post]
func (h *MaintenanceHandler) CleanPayments(c *gin.Context) {
	report, err := h.maintenance.RepairPayments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
