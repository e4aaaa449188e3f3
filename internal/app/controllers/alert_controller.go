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

// InterfaceAlertController defines the alert controller interface
type InterfaceAlertController interface {
	GetAlerts()
	FilterAlerts()
	GetAlert()
	CreateAlert()
	UpdateAlert()
	DeleteAlert()
}

// AlertController handles threshold-breach notification requests
type AlertController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAlertController creates a new alert controller
func NewAlertController(ctx *gin.Context, container *container.ServiceContainer) *AlertController {
	return &AlertController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateAlertRequest represents a manual alert backfill request
type CreateAlertRequest struct {
	SensorID      uint     `json:"sensor_id" binding:"required" example:"1"`
	NodeID        uint     `json:"node_id" binding:"required" example:"1"`
	ReadingID     uint     `json:"reading_id" binding:"required" example:"1"`
	AlertType     string   `json:"alert_type" binding:"required" example:"high_temperature"`
	DetectedValue *float64 `json:"detected_value" binding:"required" example:"41.2"`
	Status        string   `json:"status" example:"pending"`
}

// UpdateAlertRequest represents a partial alert update
type UpdateAlertRequest struct {
	Status *string `json:"status"`
}

// HandleAlertFunc returns a Gin handler dispatching alert requests
func HandleAlertFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAlertController(ctx, container)

		switch method {
		case "getAlerts":
			controller.GetAlerts()
		case "filterAlerts":
			controller.FilterAlerts()
		case "getAlert":
			controller.GetAlert()
		case "createAlert":
			controller.CreateAlert()
		case "updateAlert":
			controller.UpdateAlert()
		case "deleteAlert":
			controller.DeleteAlert()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *AlertController) alertService() services.InterfaceAlertService {
	return c.Container.GetService("alert").(services.InterfaceAlertService)
}

func (c *AlertController) nodeService() services.InterfaceNodeService {
	return c.Container.GetService("node").(services.InterfaceNodeService)
}

// can checks the permission table for an alert action. Ownership flows
// through the alert's node.
func (c *AlertController) can(action services.Action, ownerID uint) bool {
	p, ok := currentPrincipal(c.Ctx)
	if !ok {
		return false
	}
	perm := c.Container.GetService("permission").(services.InterfacePermissionService)
	if !perm.Can(p, services.EntityAlert, action, ownerID) {
		response.Forbidden(c.Ctx)
		return false
	}
	return true
}

// GetAlerts lists alerts matching the query filters
// @Summary      List alerts
// @Description  List active alerts newest first. Unrecognized filter values are ignored. Set mine=true to scope to the caller's nodes.
// @Tags         Alert
// @Produce      json
// @Param        node_id query int false "Filter by node ID"
// @Param        sensor_id query int false "Filter by sensor ID"
// @Param        alert_type query string false "Filter by alert type, e.g. high_temperature"
// @Param        status query string false "Filter by status: pending or attended"
// @Param        start_date query string false "Inclusive start date YYYY-MM-DD"
// @Param        end_date query string false "Inclusive end date YYYY-MM-DD"
// @Param        mine query bool false "Only alerts on nodes owned by the caller"
// @Success      200  {object}  response.Response
// @Router       /alerts [get]
// @Security     BearerAuth
func (c *AlertController) GetAlerts() {
	p, ok := currentPrincipal(c.Ctx)
	if !ok {
		return
	}
	if !c.can(services.ActionRead, 0) {
		return
	}

	filters := services.AlertFilters{
		NodeID:    parseUintQuery(c.Ctx, "node_id"),
		SensorID:  parseUintQuery(c.Ctx, "sensor_id"),
		AlertType: c.Ctx.Query("alert_type"),
		Status:    c.Ctx.Query("status"),
		StartDate: c.Ctx.Query("start_date"),
		EndDate:   c.Ctx.Query("end_date"),
	}
	if c.Ctx.Query("mine") == "true" {
		filters.OwnerID = p.ID
	}

	alerts, err := c.alertService().FilterAlerts(filters)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "listing alerts: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, alerts)
}

// FilterAlerts serves the dedicated filter endpoint with explicit
// owner/date parameters
// @Summary      Filter alerts
// @Description  Filter alerts by owner, node, sensor, type, status and date window. Unrecognized values are ignored rather than erroring.
// @Tags         Alert
// @Produce      json
// @Param        owner_id query int false "Alerts whose node belongs to this user"
// @Param        node_id query int false "Filter by node ID"
// @Param        sensor_id query int false "Filter by sensor ID"
// @Param        alert_type query string false "Filter by alert type, e.g. high_temperature"
// @Param        status query string false "Filter by status: pending or attended"
// @Param        from_date query string false "Inclusive start date YYYY-MM-DD"
// @Param        to_date query string false "Inclusive end date YYYY-MM-DD"
// @Success      200  {object}  response.Response
// @Router       /alerts/filter [get]
// @Security     BearerAuth
func (c *AlertController) FilterAlerts() {
	if !c.can(services.ActionRead, 0) {
		return
	}

	filters := services.AlertFilters{
		OwnerID:   parseUintQuery(c.Ctx, "owner_id"),
		NodeID:    parseUintQuery(c.Ctx, "node_id"),
		SensorID:  parseUintQuery(c.Ctx, "sensor_id"),
		AlertType: c.Ctx.Query("alert_type"),
		Status:    c.Ctx.Query("status"),
		StartDate: c.Ctx.Query("from_date"),
		EndDate:   c.Ctx.Query("to_date"),
	}

	alerts, err := c.alertService().FilterAlerts(filters)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "filtering alerts: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, alerts)
}

// GetAlert fetches one alert
// @Summary      Get alert
// @Description  Get an alert by ID
// @Tags         Alert
// @Produce      json
// @Param        id path int true "Alert ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /alerts/{id} [get]
// @Security     BearerAuth
func (c *AlertController) GetAlert() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	alert, err := c.alertService().GetAlertByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrAlertNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching alert: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionRead, 0) {
		return
	}

	response.Success(c.Ctx, alert)
}

// CreateAlert backfills an alert record manually
// @Summary      Create alert
// @Description  Manually record an alert against an existing reading
// @Tags         Alert
// @Accept       json
// @Produce      json
// @Param        request body CreateAlertRequest true "Alert attributes"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /alerts [post]
// @Security     BearerAuth
func (c *AlertController) CreateAlert() {
	if !c.can(services.ActionCreate, 0) {
		return
	}

	var req CreateAlertRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	if !models.IsValidAlertType(req.AlertType) {
		response.ValidationError(c.Ctx, map[string]string{"alert_type": "unknown alert type"})
		return
	}
	if req.Status != "" && !models.IsValidAlertStatus(req.Status) {
		response.ValidationError(c.Ctx, map[string]string{"status": "unknown alert status"})
		return
	}

	alert := &models.Alert{
		SensorID:      req.SensorID,
		NodeID:        req.NodeID,
		ReadingID:     req.ReadingID,
		AlertType:     models.AlertType(req.AlertType),
		DetectedValue: *req.DetectedValue,
		Status:        models.AlertStatus(req.Status),
	}

	if err := c.alertService().CreateAlert(alert); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownSensor):
			response.NotFound(c.Ctx, code.ErrSensorNotFound)
		case errors.Is(err, services.ErrUnknownNode):
			response.NotFound(c.Ctx, code.ErrNodeNotFound)
		case errors.Is(err, services.ErrUnknownReading):
			response.NotFound(c.Ctx, code.ErrReadingNotFound)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "creating alert: "+err.Error(), nil)
		}
		return
	}

	middleware.PurgeCache()
	response.Created(c.Ctx, alert)
}

// UpdateAlert applies a partial update to an alert
// @Summary      Update alert
// @Description  Update an alert, typically marking it attended (node owner or admin)
// @Tags         Alert
// @Accept       json
// @Produce      json
// @Param        id path int true "Alert ID"
// @Param        request body UpdateAlertRequest true "Changed fields"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /alerts/{id} [patch]
// @Security     BearerAuth
func (c *AlertController) UpdateAlert() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	alert, err := c.alertService().GetAlertByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrAlertNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching alert: "+err.Error(), nil)
		return
	}

	ownerID, err := c.nodeService().GetNodeOwnerID(alert.NodeID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionUpdate, ownerID) {
		return
	}

	var req UpdateAlertRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		if !models.IsValidAlertStatus(*req.Status) {
			response.ValidationError(c.Ctx, map[string]string{"status": "unknown alert status"})
			return
		}
		updates["status"] = *req.Status
	}

	updated, err := c.alertService().UpdateAlert(id, updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "updating alert: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.Success(c.Ctx, updated)
}

// DeleteAlert soft-deletes an alert
// @Summary      Delete alert
// @Description  Soft-delete an alert (node owner or admin)
// @Tags         Alert
// @Produce      json
// @Param        id path int true "Alert ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /alerts/{id} [delete]
// @Security     BearerAuth
func (c *AlertController) DeleteAlert() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	alert, err := c.alertService().GetAlertByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrAlertNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching alert: "+err.Error(), nil)
		return
	}

	ownerID, err := c.nodeService().GetNodeOwnerID(alert.NodeID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching node: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionDelete, ownerID) {
		return
	}

	if err := c.alertService().DeleteAlert(id); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "deleting alert: "+err.Error(), nil)
		return
	}

	middleware.PurgeCache()
	response.NoContent(c.Ctx)
}
