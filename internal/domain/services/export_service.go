package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
)

// InterfaceExportService defines the export service interface
type InterfaceExportService interface {
	ReadingsCSV() ([]byte, error)
	AlertsCSV() ([]byte, error)
	ReadingsPDF() ([]byte, error)
}

// ExportService renders readings and alerts into download formats
type ExportService struct {
	Readings InterfaceReadingService
	Alerts   InterfaceAlertService
}

// NewExportService creates a new export service
func NewExportService(readings InterfaceReadingService, alerts InterfaceAlertService) InterfaceExportService {
	return &ExportService{
		Readings: readings,
		Alerts:   alerts,
	}
}

// 1 ReadingsCSV renders all non-deleted readings as CSV, newest first.
func (s *ExportService) ReadingsCSV() ([]byte, error) {
	readings, err := s.Readings.GetReadingsForExport()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "node", "sensor", "sensor_type", "value", "unit", "status", "timestamp"}); err != nil {
		return nil, err
	}

	for _, r := range readings {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			exportNodeName(r.Node),
			exportSensorName(r.Sensor),
			exportSensorType(r.Sensor),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			exportSensorUnit(r.Sensor),
			string(r.ValidationStatus),
			r.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// 2 AlertsCSV renders all non-deleted alerts as CSV, newest first.
func (s *ExportService) AlertsCSV() ([]byte, error) {
	alerts, err := s.Alerts.GetAlertsForExport()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "node", "sensor", "alert_type", "detected_value", "status", "created_at"}); err != nil {
		return nil, err
	}

	for _, a := range alerts {
		record := []string{
			strconv.FormatUint(uint64(a.ID), 10),
			exportNodeName(a.Node),
			exportSensorName(a.Sensor),
			string(a.AlertType),
			strconv.FormatFloat(a.DetectedValue, 'f', -1, 64),
			string(a.Status),
			a.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// 3 ReadingsPDF renders all non-deleted readings as a tabular PDF report.
func (s *ExportService) ReadingsPDF() ([]byte, error) {
	readings, err := s.Readings.GetReadingsForExport()
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sensor Readings Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Sensor Readings Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s - %d readings", time.Now().Format("2006-01-02 15:04"), len(readings)))
	pdf.Ln(10)

	headers := []string{"Node", "Sensor", "Value", "Unit", "Status", "Timestamp"}
	widths := []float64{35, 35, 22, 18, 28, 52}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range readings {
		row := []string{
			exportNodeName(r.Node),
			exportSensorName(r.Sensor),
			strconv.FormatFloat(r.Value, 'f', 2, 64),
			exportSensorUnit(r.Sensor),
			string(r.ValidationStatus),
			r.Timestamp.Format("2006-01-02 15:04:05"),
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportNodeName(n *models.Node) string {
	if n == nil {
		return ""
	}
	return n.Name
}

func exportSensorName(s *models.Sensor) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func exportSensorType(s *models.Sensor) string {
	if s == nil {
		return ""
	}
	return string(s.SensorType)
}

func exportSensorUnit(s *models.Sensor) string {
	if s == nil {
		return ""
	}
	return s.Unit
}
