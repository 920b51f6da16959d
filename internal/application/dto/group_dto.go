package dto

import "github.com/turtacn/tgroups/internal/domain/models"

// GroupListResponse answers GET /api/groups.
type GroupListResponse struct {
	Success bool           `json:"success"`
	Groups  []models.Group `json:"groups"`
}

// LeaveGroupsRequest lists the groups to leave, in order.
type LeaveGroupsRequest struct {
	GroupIDs []models.LeaveTarget `json:"groupIds" validate:"required,min=1" msg:"Group list is invalid or empty."`
}

// LeaveGroupsResponse carries one result per requested group, in request order.
type LeaveGroupsResponse struct {
	Success bool                 `json:"success"`
	Results []models.LeaveResult `json:"results"`
}
