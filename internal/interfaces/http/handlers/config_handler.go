package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turtacn/tgroups/internal/application/dto"
	"github.com/turtacn/tgroups/internal/application/service"
)

// ConfigHandler reads and updates the account credentials.
type ConfigHandler struct {
	configService service.ConfigAppService
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(configService service.ConfigAppService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

// GetConfig handles GET /api/config.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	result, err := h.configService.GetConfig(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// UpdateConfig handles POST /api/config.
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.configService.UpdateConfig(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}
