package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

// InterfaceSensorService defines the sensor service interface
type InterfaceSensorService interface {
	GetAllSensors(nodeID uint) ([]models.Sensor, error)
	GetSensorByID(id uint) (*models.Sensor, error)
	CreateSensor(sensor *models.Sensor) error
	UpdateSensor(id uint, updates map[string]interface{}) (*models.Sensor, error)
	DeleteSensor(id uint) error
}

// SensorService manages measurement instruments
type SensorService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewSensorService creates a new sensor service
func NewSensorService(db *gorm.DB, cfg *config.Config) InterfaceSensorService {
	return &SensorService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllSensors lists non-deleted sensors, optionally scoped to a node.
func (s *SensorService) GetAllSensors(nodeID uint) ([]models.Sensor, error) {
	var sensors []models.Sensor
	query := s.DB.Where("is_deleted = ?", false)
	if nodeID != 0 {
		query = query.Where("node_id = ?", nodeID)
	}
	if err := query.Find(&sensors).Error; err != nil {
		return nil, err
	}
	return sensors, nil
}

// 2 GetSensorByID fetches a sensor, treating soft-deleted rows as missing.
func (s *SensorService) GetSensorByID(id uint) (*models.Sensor, error) {
	var sensor models.Sensor
	if err := s.DB.Where("id = ? AND is_deleted = ?", id, false).First(&sensor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sensor, nil
}

// 3 CreateSensor stores a new sensor after checking the parent node exists
// and the (node, name) pair stays unique.
func (s *SensorService) CreateSensor(sensor *models.Sensor) error {
	var nodeCount int64
	if err := s.DB.Model(&models.Node{}).
		Where("id = ? AND is_deleted = ?", sensor.NodeID, false).
		Count(&nodeCount).Error; err != nil {
		return err
	}
	if nodeCount == 0 {
		return ErrUnknownNode
	}

	var count int64
	if err := s.DB.Model(&models.Sensor{}).
		Where("node_id = ? AND name = ? AND is_deleted = ?", sensor.NodeID, sensor.Name, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSensorNameTaken
	}

	return s.DB.Create(sensor).Error
}

// 4 UpdateSensor applies a partial field map, re-checking name uniqueness
// when the name changes.
func (s *SensorService) UpdateSensor(id uint, updates map[string]interface{}) (*models.Sensor, error) {
	sensor, err := s.GetSensorByID(id)
	if err != nil {
		return nil, err
	}

	if name, ok := updates["name"].(string); ok && name != sensor.Name {
		var count int64
		if err := s.DB.Model(&models.Sensor{}).
			Where("node_id = ? AND name = ? AND id != ? AND is_deleted = ?", sensor.NodeID, name, sensor.ID, false).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSensorNameTaken
		}
	}

	if err := s.DB.Model(sensor).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetSensorByID(id)
}

// 5 DeleteSensor soft-deletes the sensor.
func (s *SensorService) DeleteSensor(id uint) error {
	sensor, err := s.GetSensorByID(id)
	if err != nil {
		return err
	}

	return s.DB.Model(&models.Sensor{}).Where("id = ?", sensor.ID).
		Updates(models.SoftDeleteUpdates(time.Now())).Error
}
