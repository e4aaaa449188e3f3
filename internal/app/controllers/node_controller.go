package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/osmelmr/nodosiot-server/internal/app/middleware"
	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/domain/services/container"
	"github.com/osmelmr/nodosiot-server/internal/error/code"
	"github.com/osmelmr/nodosiot-server/internal/error/response"
)

// InterfaceNodeController defines the node controller interface
type InterfaceNodeController interface {
	GetNodes()
	GetNode()
	CreateNode()
	UpdateNode()
	DeleteNode()
}

// NodeController handles deployment site requests
type NodeController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewNodeController creates a new node controller
func NewNodeController(ctx *gin.Context, container *container.ServiceContainer) *NodeController {
	return &NodeController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateNodeRequest represents a node creation request
type CreateNodeRequest struct {
	Name             string   `json:"name" binding:"required" example:"greenhouse-01"`
	Description      string   `json:"description"`
	Location         string   `json:"location" example:"north field"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	SamplingInterval int      `json:"sampling_interval" example:"10"`
}

// UpdateNodeRequest represents a partial node update
type UpdateNodeRequest struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	Location         *string  `json:"location"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	SamplingInterval *int     `json:"sampling_interval"`
	IsActive         *bool    `json:"is_active"`
}

// HandleNodeFunc returns a Gin handler dispatching node requests
func HandleNodeFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewNodeController(ctx, container)

		switch method {
		case "getNodes":
			controller.GetNodes()
		case "getNode":
			controller.GetNode()
		case "createNode":
			controller.CreateNode()
		case "updateNode":
			controller.UpdateNode()
		case "deleteNode":
			controller.DeleteNode()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *NodeController) nodeService() services.InterfaceNodeService {
	return c.Container.GetService("node").(services.InterfaceNodeService)
}

// can checks the permission table for a node action. ownerID is the node's
// owning user, 0 for collection-level actions.
func (c *NodeController) can(action services.Action, ownerID uint) bool {
	p, ok := currentPrincipal(c.Ctx)
	if !ok {
		return false
	}
	perm := c.Container.GetService("permission").(services.InterfacePermissionService)
	if !perm.Can(p, services.EntityNode, action, ownerID) {
		response.Forbidden(c.Ctx)
		return false
	}
	return true
}

// GetNodes lists all deployment sites
// @Summary      List nodes
// @Description  List every active node
// @Tags         Node
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /nodes [get]
// @Security     BearerAuth
func (c *NodeController) GetNodes() {
	if !c.can(services.ActionRead, 0) {
		return
	}

	nodes, err := c.nodeService().GetAllNodes()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "listing nodes: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nodes)
}

// GetNode fetches one node
// @Summary      Get node
// @Description  Get a node by ID
// @Tags         Node
// @Produce      json
// @Param        id path int true "Node ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /nodes/{id} [get]
// @Security     BearerAuth
func (c *NodeController) GetNode() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	node, err := c.nodeService().GetNodeByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrNodeNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionRead, node.UserID) {
		return
	}

	response.Success(c.Ctx, node)
}

// CreateNode registers a new node owned by the caller
// @Summary      Create node
// @Description  Register a new deployment site; the creator becomes the owner
// @Tags         Node
// @Accept       json
// @Produce      json
// @Param        request body CreateNodeRequest true "Node attributes"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Router       /nodes [post]
// @Security     BearerAuth
func (c *NodeController) CreateNode() {
	p, ok := currentPrincipal(c.Ctx)
	if !ok {
		return
	}
	if !c.can(services.ActionCreate, 0) {
		return
	}

	var req CreateNodeRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	node := &models.Node{
		Name:             req.Name,
		Description:      req.Description,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		SamplingInterval: req.SamplingInterval,
		UserID:           p.ID,
	}

	if err := c.nodeService().CreateNode(node); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "creating node: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.Created(c.Ctx, node)
}

// UpdateNode applies a partial update to a node
// @Summary      Update node
// @Description  Partially update a node (owner or admin)
// @Tags         Node
// @Accept       json
// @Produce      json
// @Param        id path int true "Node ID"
// @Param        request body UpdateNodeRequest true "Changed fields"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /nodes/{id} [patch]
// @Security     BearerAuth
func (c *NodeController) UpdateNode() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	node, err := c.nodeService().GetNodeByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrNodeNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionUpdate, node.UserID) {
		return
	}

	var req UpdateNodeRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.SamplingInterval != nil {
		updates["sampling_interval"] = *req.SamplingInterval
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	updated, err := c.nodeService().UpdateNode(id, updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "updating node: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.Success(c.Ctx, updated)
}

// DeleteNode soft-deletes a node
// @Summary      Delete node
// @Description  Soft-delete a node (owner or admin)
// @Tags         Node
// @Produce      json
// @Param        id path int true "Node ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /nodes/{id} [delete]
// @Security     BearerAuth
func (c *NodeController) DeleteNode() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	node, err := c.nodeService().GetNodeByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrNodeNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionDelete, node.UserID) {
		return
	}

	if err := c.nodeService().DeleteNode(id); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "deleting node: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.NoContent(c.Ctx)
}
