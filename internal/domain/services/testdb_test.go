package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Node{},
		&models.Sensor{},
		&models.Reading{},
		&models.Alert{},
	)
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:      "test-secret",
		PermissionProfile: config.PermissionProfileLoose,
	}
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:    email,
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedNode(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Node {
	t.Helper()
	node := &models.Node{
		Name:   name,
		UserID: ownerID,
	}
	require.NoError(t, db.Create(node).Error)
	return node
}

func seedSensor(t *testing.T, db *gorm.DB, nodeID uint, name string, min, max *float64) *models.Sensor {
	t.Helper()
	sensor := &models.Sensor{
		NodeID:     nodeID,
		Name:       name,
		SensorType: models.SensorTypeTemperature,
		Unit:       "C",
		MinValue:   min,
		MaxValue:   max,
	}
	require.NoError(t, db.Create(sensor).Error)
	return sensor
}

func seedReading(t *testing.T, db *gorm.DB, sensorID, nodeID uint, value float64, ts time.Time) *models.Reading {
	t.Helper()
	reading := &models.Reading{
		SensorID:         sensorID,
		NodeID:           nodeID,
		Value:            value,
		Timestamp:        ts,
		ValidationStatus: models.ValidationValid,
	}
	require.NoError(t, db.Create(reading).Error)
	return reading
}

func floatPtr(v float64) *float64 {
	return &v
}
