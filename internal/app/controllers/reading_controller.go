package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osmelmr/nodosiot-server/internal/app/middleware"
	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/domain/services/container"
	"github.com/osmelmr/nodosiot-server/internal/error/code"
	"github.com/osmelmr/nodosiot-server/internal/error/response"
)

// InterfaceReadingController defines the reading controller interface
type InterfaceReadingController interface {
	GetReadings()
	GetReading()
	CreateReading()
	UpdateReading()
	DeleteReading()
	GetLatestReadings()
	GetLatestReadingForSensor()
}

// ReadingController handles measurement ingestion and query requests
type ReadingController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewReadingController creates a new reading controller
func NewReadingController(ctx *gin.Context, container *container.ServiceContainer) *ReadingController {
	return &ReadingController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateReadingRequest represents a measurement submission. Timestamp is
// RFC 3339; when omitted the server stamps the arrival time.
type CreateReadingRequest struct {
	SensorID         uint     `json:"sensor_id" binding:"required" example:"1"`
	NodeID           uint     `json:"node_id" binding:"required" example:"1"`
	Value            *float64 `json:"value" binding:"required" example:"23.5"`
	Timestamp        string   `json:"timestamp" example:"2026-08-28T10:30:00Z"`
	ValidationStatus string   `json:"validation_status" example:"valid"`
}

// UpdateReadingRequest represents a partial reading update
type UpdateReadingRequest struct {
	Value            *float64 `json:"value"`
	ValidationStatus *string  `json:"validation_status"`
}

// HandleReadingFunc returns a Gin handler dispatching reading requests
func HandleReadingFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewReadingController(ctx, container)

		switch method {
		case "getReadings":
			controller.GetReadings()
		case "getReading":
			controller.GetReading()
		case "createReading":
			controller.CreateReading()
		case "updateReading":
			controller.UpdateReading()
		case "deleteReading":
			controller.DeleteReading()
		case "getLatestReadings":
			controller.GetLatestReadings()
		case "getLatestReadingForSensor":
			controller.GetLatestReadingForSensor()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *ReadingController) readingService() services.InterfaceReadingService {
	return c.Container.GetService("reading").(services.InterfaceReadingService)
}

func (c *ReadingController) nodeService() services.InterfaceNodeService {
	return c.Container.GetService("node").(services.InterfaceNodeService)
}

// can checks the permission table for a reading action. Ownership flows
// through the reading's node.
func (c *ReadingController) can(action services.Action, ownerID uint) bool {
	p, ok := currentPrincipal(c.Ctx)
	if !ok {
		return false
	}
	perm := c.Container.GetService("permission").(services.InterfacePermissionService)
	if !perm.Can(p, services.EntityReading, action, ownerID) {
		response.Forbidden(c.Ctx)
		return false
	}
	return true
}

// GetReadings lists readings, optionally filtered by node and sensor
// @Summary      List readings
// @Description  List active readings newest first, optionally filtered by node and sensor
// @Tags         Reading
// @Produce      json
// @Param        node_id query int false "Filter by node ID"
// @Param        sensor_id query int false "Filter by sensor ID"
// @Success      200  {object}  response.Response
// @Router       /readings [get]
// @Security     BearerAuth
func (c *ReadingController) GetReadings() {
	if !c.can(services.ActionRead, 0) {
		return
	}

	nodeID := parseUintQuery(c.Ctx, "node_id")
	sensorID := parseUintQuery(c.Ctx, "sensor_id")

	readings, err := c.readingService().GetAllReadings(nodeID, sensorID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "listing readings: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, readings)
}

// GetReading fetches one reading
// @Summary      Get reading
// @Description  Get a reading by ID
// @Tags         Reading
// @Produce      json
// @Param        id path int true "Reading ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /readings/{id} [get]
// @Security     BearerAuth
func (c *ReadingController) GetReading() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	reading, err := c.readingService().GetReadingByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrReadingNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching reading: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionRead, 0) {
		return
	}

	response.Success(c.Ctx, reading)
}

// CreateReading ingests a measurement and runs threshold evaluation
// @Summary      Submit reading
// @Description  Ingest a measurement; returns the stored reading plus any alerts it raised
// @Tags         Reading
// @Accept       json
// @Produce      json
// @Param        request body CreateReadingRequest true "Measurement"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /readings [post]
// @Security     BearerAuth
func (c *ReadingController) CreateReading() {
	if !c.can(services.ActionCreate, 0) {
		return
	}

	var req CreateReadingRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	if req.ValidationStatus != "" && !models.IsValidValidationStatus(req.ValidationStatus) {
		response.ValidationError(c.Ctx, map[string]string{"validation_status": "unknown validation status"})
		return
	}

	timestamp := time.Now()
	if req.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			response.ValidationError(c.Ctx, map[string]string{"timestamp": "must be RFC 3339"})
			return
		}
		timestamp = t
	}

	reading, alerts, err := c.readingService().SubmitReading(services.SubmitReadingInput{
		SensorID:         req.SensorID,
		NodeID:           req.NodeID,
		Value:            *req.Value,
		Timestamp:        timestamp,
		ValidationStatus: req.ValidationStatus,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownSensor):
			response.ValidationError(c.Ctx, map[string]string{"sensor_id": "unknown sensor"})
		case errors.Is(err, services.ErrUnknownNode):
			response.ValidationError(c.Ctx, map[string]string{"node_id": "unknown node"})
		case errors.Is(err, services.ErrSensorNodeMismatch):
			response.ValidationError(c.Ctx, map[string]string{"sensor_id": "sensor does not belong to node"})
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "storing reading: "+err.Error(), nil)
		}
		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}

	middleware.PurgeCache()
	response.Created(c.Ctx, gin.H{
		"reading": reading,
		"alerts":  alerts,
	})
}

// UpdateReading applies a partial update to a reading
// @Summary      Update reading
// @Description  Partially update a reading (node owner or admin)
// @Tags         Reading
// @Accept       json
// @Produce      json
// @Param        id path int true "Reading ID"
// @Param        request body UpdateReadingRequest true "Changed fields"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /readings/{id} [patch]
// @Security     BearerAuth
func (c *ReadingController) UpdateReading() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	reading, err := c.readingService().GetReadingByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrReadingNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching reading: "+err.Error(), nil)
		return
	}

	ownerID, err := c.nodeService().GetNodeOwnerID(reading.NodeID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionUpdate, ownerID) {
		return
	}

	var req UpdateReadingRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.ValidationStatus != nil {
		if !models.IsValidValidationStatus(*req.ValidationStatus) {
			response.ValidationError(c.Ctx, map[string]string{"validation_status": "unknown validation status"})
			return
		}
		updates["validation_status"] = *req.ValidationStatus
	}

	updated, err := c.readingService().UpdateReading(id, updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "updating reading: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.Success(c.Ctx, updated)
}

// DeleteReading soft-deletes a reading
// @Summary      Delete reading
// @Description  Soft-delete a reading (node owner or admin)
// @Tags         Reading
// @Produce      json
// @Param        id path int true "Reading ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /readings/{id} [delete]
// @Security     BearerAuth
func (c *ReadingController) DeleteReading() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	reading, err := c.readingService().GetReadingByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrReadingNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching reading: "+err.Error(), nil)
		return
	}

	ownerID, err := c.nodeService().GetNodeOwnerID(reading.NodeID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionDelete, ownerID) {
		return
	}

	if err := c.readingService().DeleteReading(id); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "deleting reading: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.NoContent(c.Ctx)
}

// GetLatestReadings lists readings inside a recency window
// @Summary      Latest readings
// @Description  List readings whose event time falls within the last interval (default 60 minutes)
// @Tags         Reading
// @Produce      json
// @Param        interval query int false "Window size, default 60"
// @Param        unit query string false "Window unit: minutes or seconds, default minutes"
// @Param        node_id query int false "Filter by node ID"
// @Param        sensor_id query int false "Filter by sensor ID"
// @Success      200  {object}  response.Response
// @Router       /readings/latest [get]
// @Security     BearerAuth
func (c *ReadingController) GetLatestReadings() {
	if !c.can(services.ActionRead, 0) {
		return
	}

	interval := int(parseUintQuery(c.Ctx, "interval"))
	unit := c.Ctx.DefaultQuery("unit", "minutes")
	nodeID := parseUintQuery(c.Ctx, "node_id")
	sensorID := parseUintQuery(c.Ctx, "sensor_id")

	readings, err := c.readingService().GetLatestReadings(interval, unit, nodeID, sensorID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "listing latest readings: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, readings)
}

// GetLatestReadingForSensor fetches one sensor's newest reading
// @Summary      Latest reading for a sensor
// @Description  Newest reading for one sensor, served from the hot cache when fresh
// @Tags         Reading
// @Produce      json
// @Param        sensor_id path int true "Sensor ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /readings/latest/{sensor_id} [get]
// @Security     BearerAuth
func (c *ReadingController) GetLatestReadingForSensor() {
	if !c.can(services.ActionRead, 0) {
		return
	}

	sensorID, err := strconv.ParseUint(c.Ctx.Param("sensor_id"), 10, 32)
	if err != nil || sensorID == 0 {
		response.ParamError(c.Ctx, "invalid sensor id")
		return
	}

	reading, err := c.readingService().GetLatestReadingForSensor(uint(sensorID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrReadingNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching latest reading: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, reading)
}
