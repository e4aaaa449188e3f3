package container

import (
	"sync"

	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
	"github.com/osmelmr/nodosiot-server/pkg/logger"
)

// ServiceContainer wires the service graph once at startup and hands the
// controllers their dependencies by name.
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	// Base services
	jwtService        services.InterfaceJWTService
	permissionService services.InterfacePermissionService
	redisService      services.InterfaceRedisService

	// MQTT ingestion bridge
	mqttIngestService services.InterfaceMQTTIngestService

	// Business services
	userService      services.InterfaceUserService
	nodeService      services.InterfaceNodeService
	sensorService    services.InterfaceSensorService
	readingService   services.InterfaceReadingService
	alertService     services.InterfaceAlertService
	analyticsService services.InterfaceAnalyticsService
	exportService    services.InterfaceExportService

	mu sync.RWMutex
}

// NewServiceContainer creates a new service container
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}

	if cfg == nil {
		panic("config is nil")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
	}
	container.initializeServices()
	return container
}

// initializeServices builds every service in dependency order.
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Base services
	c.jwtService = services.NewJWTService(c.config, c.db)
	c.permissionService = services.NewPermissionService(c.config)

	// The hot cache degrades to database reads per operation when the
	// broker is unreachable, so a failed probe is only worth a warning.
	c.redisService = services.NewRedisService(c.config)
	if err := c.redisService.Ping(); err != nil {
		logger.Warning("Redis ping failed: %v, latest-reading cache will fall back to the database", err)
	}

	// Business services
	c.userService = services.NewUserService(c.db, c.config)
	c.nodeService = services.NewNodeService(c.db, c.config)
	c.sensorService = services.NewSensorService(c.db, c.config)
	c.readingService = services.NewReadingService(c.db, c.config, c.redisService)
	c.alertService = services.NewAlertService(c.db, c.config)
	c.analyticsService = services.NewAnalyticsService(c.db, c.config)
	c.exportService = services.NewExportService(c.readingService, c.alertService)

	// MQTT ingestion bridge, disabled by default
	if c.config.MQTTEnabled {
		c.mqttIngestService = services.NewMQTTIngestService(c.config, c.readingService)
		if err := c.mqttIngestService.Connect(); err != nil {
			logger.Error("MQTT bridge connection failed: %v", err)
		}
	}
}

// GetService returns the service registered under name, or nil.
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "permission":
		return c.permissionService
	case "redis":
		return c.redisService
	case "mqtt_ingest":
		return c.mqttIngestService
	case "user":
		return c.userService
	case "node":
		return c.nodeService
	case "sensor":
		return c.sensorService
	case "reading":
		return c.readingService
	case "alert":
		return c.alertService
	case "analytics":
		return c.analyticsService
	case "export":
		return c.exportService
	default:
		return nil
	}
}

// GetDB returns the database handle
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
