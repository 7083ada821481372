package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bukukas/internal/models"
	"bukukas/internal/services"
)

// GroupHandler handles transaction group requests.
type GroupHandler struct {
	groupService services.GroupServicer
	auditService services.AuditServicer
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService services.GroupServicer, auditService services.AuditServicer) *GroupHandler {
	return &GroupHandler{groupService: groupService, auditService: auditService}
}

// GroupRequest represents the create and update payload.
type GroupRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Description string           `json:"description" binding:"max=1000"`
	Type        models.GroupType `json:"type" binding:"omitempty,group_type"`
	Color       string           `json:"color" binding:"omitempty,hex_color" example:"#3B82F6"`
	IsActive    *bool            `json:"is_active"`
}

func (r *GroupRequest) input() services.GroupInput {
	return services.GroupInput{
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Color:       r.Color,
		IsActive:    r.IsActive,
	}
}

// ListGroups lists active groups with their statistics
// @Summary     List transaction groups
// @Tags        transaction-groups
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=[]services.GroupSummary}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Router      /transaction-groups [get]
func (h *GroupHandler) ListGroups(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.groupService.ListGroups(actor)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, groups, "")
}

// GetGroupOptions lists groups for pickers, seeding defaults on first use
// @Summary     Transaction group options
// @Tags        transaction-groups
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=[]models.TransactionGroup}
// @Router      /transaction-groups/options [get]
func (h *GroupHandler) GetGroupOptions(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.groupService.GetGroupOptions(actor)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, groups, "")
}

// GetGroup returns a group with its statistics and transactions
// @Summary     Get a transaction group
// @Tags        transaction-groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} Response{data=services.GroupDetail}
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /transaction-groups/{id} [get]
func (h *GroupHandler) GetGroup(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.groupService.GetGroupByID(actor, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, group, "")
}

// CreateGroup creates a group owned by the caller
// @Summary     Create a transaction group
// @Tags        transaction-groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GroupRequest true "Group data"
// @Success     201 {object} Response{data=models.TransactionGroup}
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /transaction-groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GroupRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.groupService.CreateGroup(actor, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "CREATE_TRANSACTION_GROUP", "transaction_group", group.ID, c.ClientIP(),
		map[string]any{"name": group.Name, "type": group.Type})
	respond(c, http.StatusCreated, group, "Transaction group created successfully")
}

// UpdateGroup updates a group
// @Summary     Update a transaction group
// @Description Only the creator or an admin may update; the Simpaskor group cannot be renamed.
// @Tags        transaction-groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Param       request body GroupRequest true "Group data"
// @Success     200 {object} Response{data=models.TransactionGroup}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden or protected"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /transaction-groups/{id} [put]
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GroupRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.groupService.UpdateGroup(actor, c.Param("id"), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "UPDATE_TRANSACTION_GROUP", "transaction_group", group.ID, c.ClientIP(),
		map[string]any{"name": group.Name, "color": group.Color, "is_active": group.IsActive})
	respond(c, http.StatusOK, group, "Transaction group updated successfully")
}

// DeleteGroup deletes an unused group
// @Summary     Delete a transaction group
// @Tags        transaction-groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} middleware.ErrorResponse "Group still has transactions"
// @Failure     403 {object} middleware.ErrorResponse "Forbidden or protected"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /transaction-groups/{id} [delete]
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.groupService.DeleteGroup(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "DELETE_TRANSACTION_GROUP", "transaction_group", id, c.ClientIP(), nil)
	respondMessage(c, "Transaction group deleted successfully")
}
