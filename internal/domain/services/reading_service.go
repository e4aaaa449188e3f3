package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
	"github.com/osmelmr/nodosiot-server/pkg/logger"
)

// SubmitReadingInput carries one measurement into the ingestion pipeline.
// ValidationStatus is optional; when empty it is derived from the sensor
// thresholds, a client-supplied value is persisted untouched.
type SubmitReadingInput struct {
	SensorID         uint
	NodeID           uint
	Value            float64
	Timestamp        time.Time
	ValidationStatus string
}

// InterfaceReadingService defines the reading service interface
type InterfaceReadingService interface {
	SubmitReading(in SubmitReadingInput) (*models.Reading, []models.Alert, error)
	GetAllReadings(nodeID, sensorID uint) ([]models.Reading, error)
	GetReadingByID(id uint) (*models.Reading, error)
	UpdateReading(id uint, updates map[string]interface{}) (*models.Reading, error)
	DeleteReading(id uint) error
	GetLatestReadings(interval int, unit string, nodeID, sensorID uint) ([]models.Reading, error)
	GetLatestReadingForSensor(sensorID uint) (*models.Reading, error)
	GetReadingsForExport() ([]models.Reading, error)
}

// ReadingService runs the ingestion-and-alerting pipeline and the reading
// query paths.
type ReadingService struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  InterfaceRedisService // optional hot cache, may be nil
}

// NewReadingService creates a new reading service
func NewReadingService(db *gorm.DB, cfg *config.Config, redis InterfaceRedisService) InterfaceReadingService {
	return &ReadingService{
		DB:     db,
		Config: cfg,
		Redis:  redis,
	}
}

// 1 SubmitReading validates the references, persists the reading exactly as
// submitted, then evaluates the sensor thresholds. Alert evaluation failure
// never rolls back the reading: the stored measurement is the primary
// contract. Concurrent submissions evaluate independently; duplicate alerts
// under concurrent load are acceptable since each reading is its own event.
func (s *ReadingService) SubmitReading(in SubmitReadingInput) (*models.Reading, []models.Alert, error) {
	var sensor models.Sensor
	if err := s.DB.Where("id = ? AND is_deleted = ?", in.SensorID, false).First(&sensor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnknownSensor
		}
		return nil, nil, err
	}

	var node models.Node
	if err := s.DB.Where("id = ? AND is_deleted = ?", in.NodeID, false).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnknownNode
		}
		return nil, nil, err
	}

	if sensor.NodeID != node.ID {
		return nil, nil, ErrSensorNodeMismatch
	}

	status := models.ValidationStatus(in.ValidationStatus)
	if in.ValidationStatus == "" {
		status = deriveValidationStatus(&sensor, in.Value)
	}

	reading := &models.Reading{
		SensorID:         sensor.ID,
		NodeID:           node.ID,
		Value:            in.Value,
		Timestamp:        in.Timestamp,
		ValidationStatus: status,
	}

	if err := s.DB.Create(reading).Error; err != nil {
		return nil, nil, err
	}

	// The reading is durable from here on; threshold evaluation must not
	// surface as an ingestion failure.
	alerts := s.evaluateThresholds(&sensor, reading)

	if s.Redis != nil {
		if err := s.Redis.CacheLatestReading(sensor.ID, reading); err != nil {
			logger.Warning("caching latest reading for sensor %d: %v", sensor.ID, err)
		}
	}

	return reading, alerts, nil
}

// deriveValidationStatus classifies a value against the sensor thresholds.
func deriveValidationStatus(sensor *models.Sensor, value float64) models.ValidationStatus {
	if sensor.MaxValue != nil && value > *sensor.MaxValue {
		return models.ValidationOutOfRange
	}
	if sensor.MinValue != nil && value < *sensor.MinValue {
		return models.ValidationOutOfRange
	}
	return models.ValidationValid
}

// evaluateThresholds creates one alert per breached threshold. A max and a
// min breach can both fire for the same reading when the thresholds are
// inverted. Creation errors are logged and swallowed.
func (s *ReadingService) evaluateThresholds(sensor *models.Sensor, reading *models.Reading) []models.Alert {
	var alerts []models.Alert

	if sensor.MaxValue != nil && reading.Value > *sensor.MaxValue {
		if alert := s.createAlert(sensor, reading, models.HighBreachType(sensor.SensorType)); alert != nil {
			alerts = append(alerts, *alert)
		}
	}
	if sensor.MinValue != nil && reading.Value < *sensor.MinValue {
		if alert := s.createAlert(sensor, reading, models.LowBreachType(sensor.SensorType)); alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	return alerts
}

func (s *ReadingService) createAlert(sensor *models.Sensor, reading *models.Reading, alertType models.AlertType) *models.Alert {
	alert := &models.Alert{
		SensorID:      sensor.ID,
		NodeID:        reading.NodeID,
		ReadingID:     reading.ID,
		AlertType:     alertType,
		DetectedValue: reading.Value, // immutable snapshot of the trigger value
		Status:        models.AlertStatusPending,
	}
	if err := s.DB.Create(alert).Error; err != nil {
		logger.Error("creating %s alert for reading %d: %v", alertType, reading.ID, err)
		return nil
	}
	return alert
}

// 2 GetAllReadings lists non-deleted readings, newest event first.
func (s *ReadingService) GetAllReadings(nodeID, sensorID uint) ([]models.Reading, error) {
	var readings []models.Reading
	query := s.DB.Where("is_deleted = ?", false)
	if nodeID != 0 {
		query = query.Where("node_id = ?", nodeID)
	}
	if sensorID != 0 {
		query = query.Where("sensor_id = ?", sensorID)
	}
	if err := query.Order("timestamp DESC").Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// 3 GetReadingByID fetches a reading, treating soft-deleted rows as missing.
func (s *ReadingService) GetReadingByID(id uint) (*models.Reading, error) {
	var reading models.Reading
	if err := s.DB.Where("id = ? AND is_deleted = ?", id, false).First(&reading).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reading, nil
}

// 4 UpdateReading applies a partial field map in one atomic Updates call.
func (s *ReadingService) UpdateReading(id uint, updates map[string]interface{}) (*models.Reading, error) {
	reading, err := s.GetReadingByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(reading).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetReadingByID(id)
}

// 5 DeleteReading soft-deletes the reading.
func (s *ReadingService) DeleteReading(id uint) error {
	reading, err := s.GetReadingByID(id)
	if err != nil {
		return err
	}

	return s.DB.Model(&models.Reading{}).Where("id = ?", reading.ID).
		Updates(models.SoftDeleteUpdates(time.Now())).Error
}

// 6 GetLatestReadings returns readings whose event timestamp falls at or
// after now − interval. Unit is "seconds" or "minutes" (default minutes,
// default interval 60); node/sensor filters compose with the window.
func (s *ReadingService) GetLatestReadings(interval int, unit string, nodeID, sensorID uint) ([]models.Reading, error) {
	if interval <= 0 {
		interval = 60
	}

	var cutoff time.Time
	if unit == "seconds" {
		cutoff = time.Now().Add(-time.Duration(interval) * time.Second)
	} else {
		cutoff = time.Now().Add(-time.Duration(interval) * time.Minute)
	}

	var readings []models.Reading
	query := s.DB.Where("is_deleted = ? AND timestamp >= ?", false, cutoff)
	if nodeID != 0 {
		query = query.Where("node_id = ?", nodeID)
	}
	if sensorID != 0 {
		query = query.Where("sensor_id = ?", sensorID)
	}
	if err := query.Order("timestamp DESC").Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// 7 GetLatestReadingForSensor serves the newest reading for one sensor from
// the hot cache when possible; a miss falls back to the database and warms
// the cache for the next caller.
func (s *ReadingService) GetLatestReadingForSensor(sensorID uint) (*models.Reading, error) {
	if s.Redis != nil {
		if reading, err := s.Redis.GetLatestReading(sensorID); err == nil {
			return reading, nil
		}
	}

	var reading models.Reading
	if err := s.DB.Where("sensor_id = ? AND is_deleted = ?", sensorID, false).
		Order("timestamp DESC").First(&reading).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if err := s.Redis.CacheLatestReading(sensorID, &reading); err != nil {
			logger.Warning("caching latest reading for sensor %d: %v", sensorID, err)
		}
	}

	return &reading, nil
}

// 8 GetReadingsForExport returns non-deleted readings with their sensor and
// node preloaded, for the CSV/PDF writers.
func (s *ReadingService) GetReadingsForExport() ([]models.Reading, error) {
	var readings []models.Reading
	if err := s.DB.Where("is_deleted = ?", false).
		Preload("Sensor").Preload("Node").
		Order("timestamp DESC").Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}
