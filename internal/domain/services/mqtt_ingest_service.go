package services

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
	"github.com/osmelmr/nodosiot-server/pkg/logger"
)

// Topic layout of the ingestion bridge.
const (
	// TopicReadings is the subscription filter for device submissions. The
	// wildcard segment carries the node ID: nodes/<node_id>/readings.
	TopicReadings = "nodes/+/readings"

	// TopicAlertNotify is where fired alerts are published for downstream
	// consumers (dashboards, notifiers).
	TopicAlertNotify = "alerts/notify"
)

// ReadingMessage is the JSON payload devices publish on the readings topic.
// Timestamp is Unix seconds; zero means "now". The node ID comes from the
// topic, not the payload.
type ReadingMessage struct {
	SensorID  uint    `json:"sensor_id"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// AlertNotification is the payload published on TopicAlertNotify when a
// threshold breach fires during MQTT ingestion.
type AlertNotification struct {
	AlertID       uint    `json:"alert_id"`
	NodeID        uint    `json:"node_id"`
	SensorID      uint    `json:"sensor_id"`
	AlertType     string  `json:"alert_type"`
	DetectedValue float64 `json:"detected_value"`
	Timestamp     int64   `json:"timestamp"`
}

// InterfaceMQTTIngestService defines the MQTT ingestion bridge interface
type InterfaceMQTTIngestService interface {
	Connect() error
	Disconnect()
	SubscribeToTopics() error
	PublishAlert(notification AlertNotification) error
}

// MQTTIngestService bridges device submissions from an MQTT broker into the
// same ingestion pipeline the HTTP endpoint uses.
type MQTTIngestService struct {
	Config         *config.Config
	Readings       InterfaceReadingService
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex
	PublishMutex   sync.Mutex
}

// NewMQTTIngestService creates a new MQTT ingestion bridge
func NewMQTTIngestService(cfg *config.Config, readings InterfaceReadingService) InterfaceMQTTIngestService {
	service := &MQTTIngestService{
		Config:   cfg,
		Readings: readings,
	}

	service.setupMQTTClient()

	return service
}

// setupMQTTClient configures the paho client with auto-reconnect and the
// resubscribe-on-connect handler.
func (s *MQTTIngestService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// Unique client ID so multiple server instances do not evict each other.
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Second * 30)
	opts.SetKeepAlive(time.Second * 60)
	opts.SetPingTimeout(time.Second * 10)
	opts.SetCleanSession(true)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	if strings.HasPrefix(s.Config.MQTTBrokerURL, "ssl://") || strings.HasPrefix(s.Config.MQTTBrokerURL, "tls://") || s.Config.MQTTSSLEnabled {
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warning("[MQTT] connection lost: %v", err)
		s.connectedMutex.Lock()
		s.IsConnected = false
		s.connectedMutex.Unlock()
	})

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("[MQTT] connected to %s", s.Config.MQTTBrokerURL)
		s.connectedMutex.Lock()
		s.IsConnected = true
		s.connectedMutex.Unlock()

		if err := s.SubscribeToTopics(); err != nil {
			logger.Error("[MQTT] subscribing to topics: %v", err)
		}
	})

	s.Client = mqtt.NewClient(opts)
}

// 1 Connect connects to the MQTT broker.
func (s *MQTTIngestService) Connect() error {
	s.connectedMutex.RLock()
	connected := s.IsConnected && s.Client.IsConnected()
	s.connectedMutex.RUnlock()
	if connected {
		return nil
	}

	token := s.Client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("connecting to MQTT broker %s: timeout", s.Config.MQTTBrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connecting to MQTT broker %s: %w", s.Config.MQTTBrokerURL, err)
	}
	return nil
}

// 2 Disconnect closes the broker connection.
func (s *MQTTIngestService) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
	s.connectedMutex.Lock()
	s.IsConnected = false
	s.connectedMutex.Unlock()
}

// 3 SubscribeToTopics subscribes the readings handler. Called again on every
// reconnect because sessions are clean.
func (s *MQTTIngestService) SubscribeToTopics() error {
	token := s.Client.Subscribe(TopicReadings, byte(s.Config.MQTTQoS), s.handleReadingMessage)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribing to %s: timeout", TopicReadings)
	}
	return token.Error()
}

// handleReadingMessage feeds one device submission into the ingestion
// pipeline. Malformed payloads and rejected references are logged and
// dropped; a broker message can not be answered with a 400.
func (s *MQTTIngestService) handleReadingMessage(client mqtt.Client, msg mqtt.Message) {
	nodeID, err := nodeIDFromTopic(msg.Topic())
	if err != nil {
		logger.Warning("[MQTT] dropping message on %s: %v", msg.Topic(), err)
		return
	}

	var payload ReadingMessage
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		logger.Warning("[MQTT] dropping malformed payload on %s: %v", msg.Topic(), err)
		return
	}

	timestamp := time.Now()
	if payload.Timestamp > 0 {
		timestamp = time.Unix(payload.Timestamp, 0)
	}

	reading, alerts, err := s.Readings.SubmitReading(SubmitReadingInput{
		SensorID:  payload.SensorID,
		NodeID:    nodeID,
		Value:     payload.Value,
		Timestamp: timestamp,
	})
	if err != nil {
		logger.Warning("[MQTT] rejected reading from node %d sensor %d: %v", nodeID, payload.SensorID, err)
		return
	}

	for _, alert := range alerts {
		notification := AlertNotification{
			AlertID:       alert.ID,
			NodeID:        alert.NodeID,
			SensorID:      alert.SensorID,
			AlertType:     string(alert.AlertType),
			DetectedValue: alert.DetectedValue,
			Timestamp:     reading.Timestamp.Unix(),
		}
		if err := s.PublishAlert(notification); err != nil {
			logger.Error("[MQTT] publishing alert %d: %v", alert.ID, err)
		}
	}
}

// 4 PublishAlert publishes a fired alert on the notification topic.
func (s *MQTTIngestService) PublishAlert(notification AlertNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	s.PublishMutex.Lock()
	defer s.PublishMutex.Unlock()

	token := s.Client.Publish(TopicAlertNotify, byte(s.Config.MQTTQoS), false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publishing to %s: timeout", TopicAlertNotify)
	}
	return token.Error()
}

// nodeIDFromTopic extracts the node ID segment from nodes/<id>/readings.
func nodeIDFromTopic(topic string) (uint, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "nodes" || parts[2] != "readings" {
		return 0, fmt.Errorf("unexpected topic layout %q", topic)
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid node id %q", parts[1])
	}
	return uint(id), nil
}
