package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/domain/services/container"
	"github.com/osmelmr/nodosiot-server/internal/error/code"
	"github.com/osmelmr/nodosiot-server/internal/error/response"
)

// InterfaceAnalyticsController defines the analytics controller interface
type InterfaceAnalyticsController interface {
	GetDailySummary()
}

// AnalyticsController handles aggregation report requests
type AnalyticsController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAnalyticsController creates a new analytics controller
func NewAnalyticsController(ctx *gin.Context, container *container.ServiceContainer) *AnalyticsController {
	return &AnalyticsController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAnalyticsFunc returns a Gin handler dispatching analytics requests
func HandleAnalyticsFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAnalyticsController(ctx, container)

		switch method {
		case "getDailySummary":
			controller.GetDailySummary()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// GetDailySummary reports avg/max/min over the filtered reading set
// @Summary      Daily summary
// @Description  Aggregate readings matching the node/sensor/date filters; aggregates are null when nothing matches. Unparseable dates are ignored.
// @Tags         Analytics
// @Produce      json
// @Param        node_id query int false "Filter by node ID"
// @Param        sensor_id query int false "Filter by sensor ID"
// @Param        start_date query string false "Inclusive start date YYYY-MM-DD"
// @Param        end_date query string false "Inclusive end date YYYY-MM-DD"
// @Success      200  {object}  response.Response
// @Router       /analytics/daily-summary [get]
// @Security     BearerAuth
func (c *AnalyticsController) GetDailySummary() {
	if _, ok := currentPrincipal(c.Ctx); !ok {
		return
	}

	filters := services.SummaryFilters{
		NodeID:    parseUintQuery(c.Ctx, "node_id"),
		SensorID:  parseUintQuery(c.Ctx, "sensor_id"),
		StartDate: c.Ctx.Query("start_date"),
		EndDate:   c.Ctx.Query("end_date"),
	}

	analyticsService := c.Container.GetService("analytics").(services.InterfaceAnalyticsService)

	summary, err := analyticsService.GetDailySummary(filters)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "computing daily summary: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, summary)
}
