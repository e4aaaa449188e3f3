package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
)

func seedAlert(t *testing.T, db *gorm.DB, sensorID, nodeID, readingID uint, alertType models.AlertType) *models.Alert {
	t.Helper()
	alert := &models.Alert{
		SensorID:      sensorID,
		NodeID:        nodeID,
		ReadingID:     readingID,
		AlertType:     alertType,
		DetectedValue: 42,
		Status:        models.AlertStatusPending,
	}
	require.NoError(t, db.Create(alert).Error)
	return alert
}

func TestFilterAlerts_ByTypeAndStatus(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.local", models.RoleFarmer)
	node := seedNode(t, db, owner.ID, "greenhouse-01")
	sensor := seedSensor(t, db, node.ID, "temp", nil, nil)
	reading := seedReading(t, db, sensor.ID, node.ID, 42, time.Now())

	high := seedAlert(t, db, sensor.ID, node.ID, reading.ID, "high_temperature")
	low := seedAlert(t, db, sensor.ID, node.ID, reading.ID, "low_temperature")
	require.NoError(t, db.Model(low).Update("status", models.AlertStatusAttended).Error)

	svc := NewAlertService(db, testConfig())

	alerts, err := svc.FilterAlerts(AlertFilters{AlertType: "high_temperature"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, high.ID, alerts[0].ID)

	alerts, err = svc.FilterAlerts(AlertFilters{Status: "attended"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, low.ID, alerts[0].ID)
}

func TestFilterAlerts_UnrecognizedValuesWidenResults(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.local", models.RoleFarmer)
	node := seedNode(t, db, owner.ID, "greenhouse-01")
	sensor := seedSensor(t, db, node.ID, "temp", nil, nil)
	reading := seedReading(t, db, sensor.ID, node.ID, 42, time.Now())
	seedAlert(t, db, sensor.ID, node.ID, reading.ID, "high_temperature")
	seedAlert(t, db, sensor.ID, node.ID, reading.ID, "low_temperature")

	svc := NewAlertService(db, testConfig())

	// Bogus filter values are dropped rather than erroring or matching nothing.
	alerts, err := svc.FilterAlerts(AlertFilters{
		AlertType: "exploded",
		Status:    "on-fire",
		StartDate: "not-a-date",
	})
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestFilterAlerts_DateWindowInclusive(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.local", models.RoleFarmer)
	node := seedNode(t, db, owner.ID, "greenhouse-01")
	sensor := seedSensor(t, db, node.ID, "temp", nil, nil)
	reading := seedReading(t, db, sensor.ID, node.ID, 42, time.Now())
	seedAlert(t, db, sensor.ID, node.ID, reading.ID, "high_temperature")

	svc := NewAlertService(db, testConfig())

	today := time.Now().Format("2006-01-02")

	alerts, err := svc.FilterAlerts(AlertFilters{StartDate: today, EndDate: today})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	alerts, err = svc.FilterAlerts(AlertFilters{EndDate: yesterday})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestFilterAlerts_OwnerScope(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.local", models.RoleFarmer)
	other := seedUser(t, db, "other@test.local", models.RoleFarmer)
	ownNode := seedNode(t, db, owner.ID, "mine")
	otherNode := seedNode(t, db, other.ID, "theirs")
	ownSensor := seedSensor(t, db, ownNode.ID, "temp", nil, nil)
	otherSensor := seedSensor(t, db, otherNode.ID, "temp", nil, nil)
	ownReading := seedReading(t, db, ownSensor.ID, ownNode.ID, 42, time.Now())
	otherReading := seedReading(t, db, otherSensor.ID, otherNode.ID, 42, time.Now())

	mine := seedAlert(t, db, ownSensor.ID, ownNode.ID, ownReading.ID, "high_temperature")
	seedAlert(t, db, otherSensor.ID, otherNode.ID, otherReading.ID, "high_temperature")

	svc := NewAlertService(db, testConfig())

	alerts, err := svc.FilterAlerts(AlertFilters{OwnerID: owner.ID})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, mine.ID, alerts[0].ID)
}

func TestCreateAlert_ValidatesReferences(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.local", models.RoleFarmer)
	node := seedNode(t, db, owner.ID, "greenhouse-01")
	sensor := seedSensor(t, db, node.ID, "temp", nil, nil)
	reading := seedReading(t, db, sensor.ID, node.ID, 42, time.Now())

	svc := NewAlertService(db, testConfig())

	err := svc.CreateAlert(&models.Alert{SensorID: 999, NodeID: node.ID, ReadingID: reading.ID, AlertType: "high_temperature"})
	assert.ErrorIs(t, err, ErrUnknownSensor)

	err = svc.CreateAlert(&models.Alert{SensorID: sensor.ID, NodeID: 999, ReadingID: reading.ID, AlertType: "high_temperature"})
	assert.ErrorIs(t, err, ErrUnknownNode)

	err = svc.CreateAlert(&models.Alert{SensorID: sensor.ID, NodeID: node.ID, ReadingID: 999, AlertType: "high_temperature"})
	assert.ErrorIs(t, err, ErrUnknownReading)

	alert := &models.Alert{SensorID: sensor.ID, NodeID: node.ID, ReadingID: reading.ID, AlertType: "high_temperature", DetectedValue: 42}
	require.NoError(t, svc.CreateAlert(alert))
	assert.Equal(t, models.AlertStatusPending, alert.Status)
}

func TestUpdateAlert_MarkAttended(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.local", models.RoleFarmer)
	node := seedNode(t, db, owner.ID, "greenhouse-01")
	sensor := seedSensor(t, db, node.ID, "temp", nil, nil)
	reading := seedReading(t, db, sensor.ID, node.ID, 42, time.Now())
	alert := seedAlert(t, db, sensor.ID, node.ID, reading.ID, "high_temperature")

	svc := NewAlertService(db, testConfig())

	updated, err := svc.UpdateAlert(alert.ID, map[string]interface{}{"status": "attended"})
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusAttended, updated.Status)
	// The snapshot value never changes.
	assert.Equal(t, 42.0, updated.DetectedValue)
}
