package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turtacn/tgroups/internal/application/dto"
	"github.com/turtacn/tgroups/internal/application/service"
)

// GroupHandler handles the group directory and batch leave endpoints.
type GroupHandler struct {
	groupService service.GroupAppService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService service.GroupAppService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// ListGroups handles GET /api/groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	result, err := h.groupService.ListGroups(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// LeaveGroups handles POST /api/leave-groups.
func (h *GroupHandler) LeaveGroups(c *gin.Context) {
	var req dto.LeaveGroupsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.groupService.LeaveGroups(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}
