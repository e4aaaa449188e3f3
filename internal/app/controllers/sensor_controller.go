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

// InterfaceSensorController defines the sensor controller interface
type InterfaceSensorController interface {
	GetSensors()
	GetSensor()
	CreateSensor()
	UpdateSensor()
	DeleteSensor()
}

// SensorController handles measurement instrument requests
type SensorController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSensorController creates a new sensor controller
func NewSensorController(ctx *gin.Context, container *container.ServiceContainer) *SensorController {
	return &SensorController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateSensorRequest represents a sensor creation request
type CreateSensorRequest struct {
	NodeID     uint     `json:"node_id" binding:"required" example:"1"`
	Name       string   `json:"name" binding:"required" example:"dht22-temp"`
	SensorType string   `json:"sensor_type" binding:"required" example:"temperature"`
	Model      string   `json:"model" example:"DHT22"`
	Unit       string   `json:"unit" example:"C"`
	MinValue   *float64 `json:"min_value"`
	MaxValue   *float64 `json:"max_value"`
}

// UpdateSensorRequest represents a partial sensor update
type UpdateSensorRequest struct {
	Name       *string  `json:"name"`
	SensorType *string  `json:"sensor_type"`
	Model      *string  `json:"model"`
	Unit       *string  `json:"unit"`
	MinValue   *float64 `json:"min_value"`
	MaxValue   *float64 `json:"max_value"`
	IsActive   *bool    `json:"is_active"`
}

// HandleSensorFunc returns a Gin handler dispatching sensor requests
func HandleSensorFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSensorController(ctx, container)

		switch method {
		case "getSensors":
			controller.GetSensors()
		case "getSensor":
			controller.GetSensor()
		case "createSensor":
			controller.CreateSensor()
		case "updateSensor":
			controller.UpdateSensor()
		case "deleteSensor":
			controller.DeleteSensor()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *SensorController) sensorService() services.InterfaceSensorService {
	return c.Container.GetService("sensor").(services.InterfaceSensorService)
}

func (c *SensorController) nodeService() services.InterfaceNodeService {
	return c.Container.GetService("node").(services.InterfaceNodeService)
}

// can checks the permission table for a sensor action. Sensor ownership
// flows through the parent node's owner.
func (c *SensorController) can(action services.Action, ownerID uint) bool {
	p, ok := currentPrincipal(c.Ctx)
	if !ok {
		return false
	}
	perm := c.Container.GetService("permission").(services.InterfacePermissionService)
	if !perm.Can(p, services.EntitySensor, action, ownerID) {
		response.Forbidden(c.Ctx)
		return false
	}
	return true
}

// GetSensors lists sensors, optionally filtered by node
// @Summary      List sensors
// @Description  List active sensors, optionally scoped to one node
// @Tags         Sensor
// @Produce      json
// @Param        node_id query int false "Filter by node ID"
// @Success      200  {object}  response.Response
// @Router       /sensors [get]
// @Security     BearerAuth
func (c *SensorController) GetSensors() {
	if !c.can(services.ActionRead, 0) {
		return
	}

	nodeID := parseUintQuery(c.Ctx, "node_id")

	sensors, err := c.sensorService().GetAllSensors(nodeID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "listing sensors: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, sensors)
}

// GetSensor fetches one sensor
// @Summary      Get sensor
// @Description  Get a sensor by ID
// @Tags         Sensor
// @Produce      json
// @Param        id path int true "Sensor ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /sensors/{id} [get]
// @Security     BearerAuth
func (c *SensorController) GetSensor() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	sensor, err := c.sensorService().GetSensorByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrSensorNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching sensor: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionRead, 0) {
		return
	}

	response.Success(c.Ctx, sensor)
}

// CreateSensor attaches a new sensor to a node
// @Summary      Create sensor
// @Description  Attach a sensor to a node (node owner or admin)
// @Tags         Sensor
// @Accept       json
// @Produce      json
// @Param        request body CreateSensorRequest true "Sensor attributes"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sensors [post]
// @Security     BearerAuth
func (c *SensorController) CreateSensor() {
	var req CreateSensorRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	if !models.IsValidSensorType(req.SensorType) {
		response.ValidationError(c.Ctx, map[string]string{"sensor_type": "unknown sensor type"})
		return
	}

	ownerID, err := c.nodeService().GetNodeOwnerID(req.NodeID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrNodeNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionCreate, ownerID) {
		return
	}

	sensor := &models.Sensor{
		NodeID:     req.NodeID,
		Name:       req.Name,
		SensorType: models.SensorType(req.SensorType),
		Model:      req.Model,
		Unit:       req.Unit,
		MinValue:   req.MinValue,
		MaxValue:   req.MaxValue,
	}

	if err := c.sensorService().CreateSensor(sensor); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownNode):
			response.NotFound(c.Ctx, code.ErrNodeNotFound)
		case errors.Is(err, services.ErrSensorNameTaken):
			response.Fail(c.Ctx, code.ErrSensorNameTaken, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "creating sensor: "+err.Error(), nil)
		}
		return
	}

	middleware.PurgeCache()
	response.Created(c.Ctx, sensor)
}

// UpdateSensor applies a partial update to a sensor
// @Summary      Update sensor
// @Description  Partially update a sensor (node owner or admin)
// @Tags         Sensor
// @Accept       json
// @Produce      json
// @Param        id path int true "Sensor ID"
// @Param        request body UpdateSensorRequest true "Changed fields"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sensors/{id} [patch]
// @Security     BearerAuth
func (c *SensorController) UpdateSensor() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	sensor, err := c.sensorService().GetSensorByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrSensorNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching sensor: "+err.Error(), nil)
		return
	}

	ownerID, err := c.nodeService().GetNodeOwnerID(sensor.NodeID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionUpdate, ownerID) {
		return
	}

	var req UpdateSensorRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SensorType != nil {
		if !models.IsValidSensorType(*req.SensorType) {
			response.ValidationError(c.Ctx, map[string]string{"sensor_type": "unknown sensor type"})
			return
		}
		updates["sensor_type"] = *req.SensorType
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.MinValue != nil {
		updates["min_value"] = *req.MinValue
	}
	if req.MaxValue != nil {
		updates["max_value"] = *req.MaxValue
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	updated, err := c.sensorService().UpdateSensor(id, updates)
	if err != nil {
		if errors.Is(err, services.ErrSensorNameTaken) {
			response.Fail(c.Ctx, code.ErrSensorNameTaken, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "updating sensor: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.Success(c.Ctx, updated)
}

// DeleteSensor soft-deletes a sensor
// @Summary      Delete sensor
// @Description  Soft-delete a sensor (node owner or admin)
// @Tags         Sensor
// @Produce      json
// @Param        id path int true "Sensor ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sensors/{id} [delete]
// @Security     BearerAuth
func (c *SensorController) DeleteSensor() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	sensor, err := c.sensorService().GetSensorByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrSensorNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching sensor: "+err.Error(), nil)
		return
	}

	ownerID, err := c.nodeService().GetNodeOwnerID(sensor.NodeID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionDelete, ownerID) {
		return
	}

	if err := c.sensorService().DeleteSensor(id); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "deleting sensor: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.NoContent(c.Ctx)
}
