package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

// AlertFilters carries the raw filter values from the query string. Parsing
// is loose: unrecognized values drop their clause instead of failing the
// request, so a bad filter widens the result set rather than erroring.
type AlertFilters struct {
	NodeID    uint
	SensorID  uint
	AlertType string
	Status    string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	OwnerID   uint   // restrict to alerts on nodes owned by this user
}

// InterfaceAlertService defines the alert service interface
type InterfaceAlertService interface {
	FilterAlerts(filters AlertFilters) ([]models.Alert, error)
	GetAlertByID(id uint) (*models.Alert, error)
	CreateAlert(alert *models.Alert) error
	UpdateAlert(id uint, updates map[string]interface{}) (*models.Alert, error)
	DeleteAlert(id uint) error
	GetAlertsForExport() ([]models.Alert, error)
}

// AlertService manages threshold-breach notifications
type AlertService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAlertService creates a new alert service
func NewAlertService(db *gorm.DB, cfg *config.Config) InterfaceAlertService {
	return &AlertService{
		DB:     db,
		Config: cfg,
	}
}

// 1 FilterAlerts lists non-deleted alerts matching the recognized filters,
// newest first. Ownership scoping joins through the node table.
func (s *AlertService) FilterAlerts(filters AlertFilters) ([]models.Alert, error) {
	query := s.DB.Model(&models.Alert{}).Where("alerts.is_deleted = ?", false)

	if filters.NodeID != 0 {
		query = query.Where("alerts.node_id = ?", filters.NodeID)
	}
	if filters.SensorID != 0 {
		query = query.Where("alerts.sensor_id = ?", filters.SensorID)
	}
	if models.IsValidAlertType(filters.AlertType) {
		query = query.Where("alerts.alert_type = ?", filters.AlertType)
	}
	if models.IsValidAlertStatus(filters.Status) {
		query = query.Where("alerts.status = ?", filters.Status)
	}
	if t, err := time.Parse("2006-01-02", filters.StartDate); filters.StartDate != "" && err == nil {
		query = query.Where("alerts.created_at >= ?", t)
	}
	if t, err := time.Parse("2006-01-02", filters.EndDate); filters.EndDate != "" && err == nil {
		// End date is inclusive: cover the whole day.
		query = query.Where("alerts.created_at < ?", t.AddDate(0, 0, 1))
	}
	if filters.OwnerID != 0 {
		query = query.Joins("JOIN nodes ON nodes.id = alerts.node_id").
			Where("nodes.user_id = ?", filters.OwnerID)
	}

	var alerts []models.Alert
	if err := query.Order("alerts.created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// 2 GetAlertByID fetches an alert, treating soft-deleted rows as missing.
func (s *AlertService) GetAlertByID(id uint) (*models.Alert, error) {
	var alert models.Alert
	if err := s.DB.Where("id = ? AND is_deleted = ?", id, false).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// 3 CreateAlert stores a manually backfilled alert after checking every
// referenced record exists. The ingestion pipeline bypasses this and writes
// alerts directly, since it has already validated the references.
func (s *AlertService) CreateAlert(alert *models.Alert) error {
	var sensor models.Sensor
	if err := s.DB.Where("id = ? AND is_deleted = ?", alert.SensorID, false).First(&sensor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownSensor
		}
		return err
	}

	var nodeCount int64
	if err := s.DB.Model(&models.Node{}).
		Where("id = ? AND is_deleted = ?", alert.NodeID, false).
		Count(&nodeCount).Error; err != nil {
		return err
	}
	if nodeCount == 0 {
		return ErrUnknownNode
	}

	var readingCount int64
	if err := s.DB.Model(&models.Reading{}).
		Where("id = ? AND is_deleted = ?", alert.ReadingID, false).
		Count(&readingCount).Error; err != nil {
		return err
	}
	if readingCount == 0 {
		return ErrUnknownReading
	}

	if alert.Status == "" {
		alert.Status = models.AlertStatusPending
	}

	return s.DB.Create(alert).Error
}

// 4 UpdateAlert applies a partial field map, typically flipping the status
// from pending to attended.
func (s *AlertService) UpdateAlert(id uint, updates map[string]interface{}) (*models.Alert, error) {
	alert, err := s.GetAlertByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(alert).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetAlertByID(id)
}

// 5 DeleteAlert soft-deletes the alert.
func (s *AlertService) DeleteAlert(id uint) error {
	alert, err := s.GetAlertByID(id)
	if err != nil {
		return err
	}

	return s.DB.Model(&models.Alert{}).Where("id = ?", alert.ID).
		Updates(models.SoftDeleteUpdates(time.Now())).Error
}

// 6 GetAlertsForExport returns non-deleted alerts with sensor and node
// preloaded, for the CSV writer.
func (s *AlertService) GetAlertsForExport() ([]models.Alert, error) {
	var alerts []models.Alert
	if err := s.DB.Where("is_deleted = ?", false).
		Preload("Sensor").Preload("Node").
		Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}
