package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
)

func setupExportFixtures(t *testing.T) InterfaceExportService {
	t.Helper()
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.local", models.RoleFarmer)
	node := seedNode(t, db, owner.ID, "greenhouse-01")
	sensor := seedSensor(t, db, node.ID, "temp", floatPtr(0), floatPtr(40))
	reading := seedReading(t, db, sensor.ID, node.ID, 41.5, time.Now())
	seedAlert(t, db, sensor.ID, node.ID, reading.ID, "high_temperature")

	readings := NewReadingService(db, testConfig(), nil)
	alerts := NewAlertService(db, testConfig())
	return NewExportService(readings, alerts)
}

func TestReadingsCSV(t *testing.T) {
	svc := setupExportFixtures(t)

	data, err := svc.ReadingsCSV()
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"id", "node", "sensor", "sensor_type", "value", "unit", "status", "timestamp"}, records[0])
	assert.Equal(t, "greenhouse-01", records[1][1])
	assert.Equal(t, "temp", records[1][2])
	assert.Equal(t, "41.5", records[1][4])
}

func TestAlertsCSV(t *testing.T) {
	svc := setupExportFixtures(t)

	data, err := svc.AlertsCSV()
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"id", "node", "sensor", "alert_type", "detected_value", "status", "created_at"}, records[0])
	assert.Equal(t, "high_temperature", records[1][3])
	assert.Equal(t, "pending", records[1][5])
}

func TestReadingsPDF(t *testing.T) {
	svc := setupExportFixtures(t)

	data, err := svc.ReadingsPDF()
	require.NoError(t, err)

	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "expected a PDF header")
}
