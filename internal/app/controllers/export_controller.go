package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/domain/services/container"
	"github.com/osmelmr/nodosiot-server/internal/error/code"
	"github.com/osmelmr/nodosiot-server/internal/error/response"
)

// InterfaceExportController defines the export controller interface
type InterfaceExportController interface {
	ExportReadingsCSV()
	ExportAlertsCSV()
	ExportReadingsPDF()
}

// ExportController handles data download requests
type ExportController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewExportController creates a new export controller
func NewExportController(ctx *gin.Context, container *container.ServiceContainer) *ExportController {
	return &ExportController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleExportFunc returns a Gin handler dispatching export requests
func HandleExportFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewExportController(ctx, container)

		switch method {
		case "readingsCSV":
			controller.ExportReadingsCSV()
		case "alertsCSV":
			controller.ExportAlertsCSV()
		case "readingsPDF":
			controller.ExportReadingsPDF()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *ExportController) exportService() services.InterfaceExportService {
	return c.Container.GetService("export").(services.InterfaceExportService)
}

func attachmentName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext)
}

// ExportReadingsCSV downloads all readings as CSV
// @Summary      Export readings CSV
// @Description  Download every active reading as a CSV attachment
// @Tags         Export
// @Produce      text/csv
// @Success      200  {string}  string  "CSV content"
// @Router       /exports/readings.csv [get]
// @Security     BearerAuth
func (c *ExportController) ExportReadingsCSV() {
	if _, ok := currentPrincipal(c.Ctx); !ok {
		return
	}

	data, err := c.exportService().ReadingsCSV()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "exporting readings: "+err.Error(), nil)
		return
	}

	c.Ctx.Header("Content-Disposition", "attachment; filename="+attachmentName("readings", "csv"))
	c.Ctx.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportAlertsCSV downloads all alerts as CSV
// @Summary      Export alerts CSV
// @Description  Download every active alert as a CSV attachment
// @Tags         Export
// @Produce      text/csv
// @Success      200  {string}  string  "CSV content"
// @Router       /exports/alerts.csv [get]
// @Security     BearerAuth
func (c *ExportController) ExportAlertsCSV() {
	if _, ok := currentPrincipal(c.Ctx); !ok {
		return
	}

	data, err := c.exportService().AlertsCSV()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "exporting alerts: "+err.Error(), nil)
		return
	}

	c.Ctx.Header("Content-Disposition", "attachment; filename="+attachmentName("alerts", "csv"))
	c.Ctx.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportReadingsPDF downloads all readings as a PDF report
// @Summary      Export readings PDF
// @Description  Download every active reading as a tabular PDF report
// @Tags         Export
// @Produce      application/pdf
// @Success      200  {string}  string  "PDF content"
// @Router       /exports/readings.pdf [get]
// @Security     BearerAuth
func (c *ExportController) ExportReadingsPDF() {
	if _, ok := currentPrincipal(c.Ctx); !ok {
		return
	}

	data, err := c.exportService().ReadingsPDF()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "exporting readings PDF: "+err.Error(), nil)
		return
	}

	c.Ctx.Header("Content-Disposition", "attachment; filename="+attachmentName("readings", "pdf"))
	c.Ctx.Data(http.StatusOK, "application/pdf", data)
}
