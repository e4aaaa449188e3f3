package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
)

// stubReadingService records what the bridge feeds into the pipeline.
type stubReadingService struct {
	calls   int
	input   SubmitReadingInput
	reading *models.Reading
	alerts  []models.Alert
	err     error
}

func (s *stubReadingService) SubmitReading(in SubmitReadingInput) (*models.Reading, []models.Alert, error) {
	s.calls++
	s.input = in
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.reading, s.alerts, nil
}

func (s *stubReadingService) GetAllReadings(nodeID, sensorID uint) ([]models.Reading, error) {
	return nil, nil
}

func (s *stubReadingService) GetReadingByID(id uint) (*models.Reading, error) { return nil, nil }

func (s *stubReadingService) UpdateReading(id uint, updates map[string]interface{}) (*models.Reading, error) {
	return nil, nil
}

func (s *stubReadingService) DeleteReading(id uint) error { return nil }

func (s *stubReadingService) GetLatestReadings(interval int, unit string, nodeID, sensorID uint) ([]models.Reading, error) {
	return nil, nil
}

func (s *stubReadingService) GetLatestReadingForSensor(sensorID uint) (*models.Reading, error) {
	return nil, nil
}

func (s *stubReadingService) GetReadingsForExport() ([]models.Reading, error) { return nil, nil }

// fakeMessage is a broker message handed to the subscription callback.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type stubToken struct{}

func (stubToken) Wait() bool                     { return true }
func (stubToken) WaitTimeout(time.Duration) bool { return true }
func (stubToken) Error() error                   { return nil }
func (stubToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// recordingClient captures outbound publishes. The embedded interface covers
// the methods the bridge never touches in these tests.
type recordingClient struct {
	mqtt.Client
	topics   []string
	payloads [][]byte
}

func (c *recordingClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return stubToken{}
}

func newBridgeUnderTest(readings *stubReadingService) (*MQTTIngestService, *recordingClient) {
	client := &recordingClient{}
	return &MQTTIngestService{
		Config:   testConfig(),
		Readings: readings,
		Client:   client,
	}, client
}

func TestHandleReadingMessage_SubmitsAndPublishesAlerts(t *testing.T) {
	eventTime := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	readings := &stubReadingService{
		reading: &models.Reading{
			BaseModel: models.BaseModel{ID: 3},
			SensorID:  7,
			NodeID:    42,
			Value:     55.5,
			Timestamp: eventTime,
		},
		alerts: []models.Alert{{
			BaseModel:     models.BaseModel{ID: 9},
			SensorID:      7,
			NodeID:        42,
			AlertType:     models.AlertType("high_temperature"),
			DetectedValue: 55.5,
		}},
	}
	bridge, client := newBridgeUnderTest(readings)

	bridge.handleReadingMessage(nil, fakeMessage{
		topic:   "nodes/42/readings",
		payload: []byte(`{"sensor_id":7,"value":55.5}`),
	})

	require.Equal(t, 1, readings.calls)
	assert.Equal(t, uint(42), readings.input.NodeID)
	assert.Equal(t, uint(7), readings.input.SensorID)
	assert.Equal(t, 55.5, readings.input.Value)
	// No timestamp in the payload means the arrival time is stamped.
	assert.WithinDuration(t, time.Now(), readings.input.Timestamp, 5*time.Second)

	require.Len(t, client.topics, 1)
	assert.Equal(t, TopicAlertNotify, client.topics[0])

	var notification AlertNotification
	require.NoError(t, json.Unmarshal(client.payloads[0], &notification))
	assert.Equal(t, uint(9), notification.AlertID)
	assert.Equal(t, uint(42), notification.NodeID)
	assert.Equal(t, uint(7), notification.SensorID)
	assert.Equal(t, "high_temperature", notification.AlertType)
	assert.Equal(t, 55.5, notification.DetectedValue)
	assert.Equal(t, eventTime.Unix(), notification.Timestamp)
}

func TestHandleReadingMessage_ExplicitTimestampHonored(t *testing.T) {
	readings := &stubReadingService{reading: &models.Reading{}}
	bridge, _ := newBridgeUnderTest(readings)

	bridge.handleReadingMessage(nil, fakeMessage{
		topic:   "nodes/42/readings",
		payload: []byte(`{"sensor_id":7,"value":1.0,"timestamp":1700000000}`),
	})

	require.Equal(t, 1, readings.calls)
	assert.Equal(t, int64(1700000000), readings.input.Timestamp.Unix())
}

func TestHandleReadingMessage_MalformedPayloadDropped(t *testing.T) {
	readings := &stubReadingService{}
	bridge, client := newBridgeUnderTest(readings)

	bridge.handleReadingMessage(nil, fakeMessage{
		topic:   "nodes/42/readings",
		payload: []byte(`{not json`),
	})

	assert.Zero(t, readings.calls)
	assert.Empty(t, client.topics)
}

func TestHandleReadingMessage_BadTopicDropped(t *testing.T) {
	readings := &stubReadingService{}
	bridge, client := newBridgeUnderTest(readings)

	bridge.handleReadingMessage(nil, fakeMessage{
		topic:   "sensors/42/readings",
		payload: []byte(`{"sensor_id":7,"value":1.0}`),
	})

	assert.Zero(t, readings.calls)
	assert.Empty(t, client.topics)
}

func TestHandleReadingMessage_RejectedReadingNotPublished(t *testing.T) {
	readings := &stubReadingService{err: errors.New("unknown sensor")}
	bridge, client := newBridgeUnderTest(readings)

	bridge.handleReadingMessage(nil, fakeMessage{
		topic:   "nodes/42/readings",
		payload: []byte(`{"sensor_id":999,"value":1.0}`),
	})

	assert.Equal(t, 1, readings.calls)
	assert.Empty(t, client.topics)
}

func TestNodeIDFromTopic(t *testing.T) {
	id, err := nodeIDFromTopic("nodes/42/readings")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, topic := range []string{
		"nodes/42",
		"nodes/42/readings/extra",
		"sensors/42/readings",
		"nodes/abc/readings",
		"nodes/0/readings",
		"nodes//readings",
	} {
		_, err := nodeIDFromTopic(topic)
		assert.Error(t, err, "topic %q should be rejected", topic)
	}
}
