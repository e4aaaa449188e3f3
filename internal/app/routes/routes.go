package routes

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/app/controllers"
	"github.com/osmelmr/nodosiot-server/internal/app/middleware"
	"github.com/osmelmr/nodosiot-server/internal/domain/services/container"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

// SetupRouter initializes and returns the configured router
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Structured request logging with in-memory metrics
	requestLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	r.Use(middleware.StructuredLogging(requestLogger))

	serviceContainer := container.NewServiceContainer(db, cfg)
	middleware.InitAuthMiddleware(cfg, db)

	// Swagger documentation route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes configures all API routes
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes registers the routes reachable without a token
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// IP rate limiting: 10 req/s, burst 20
	api.Use(middleware.IPRateLimiter(10, 20))

	health := controllers.NewHealthCheckController()
	api.GET("/ping", health.Ping)
	api.GET("/health/status", health.Ping)
	api.GET("/health/metrics", health.Metrics)
	api.GET("/health/cache-stats", health.CacheStats)

	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))
}

// registerAuthenticatedRoutes registers the routes behind token auth
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/")
	auth.Use(middleware.Authentication())

	// Device fleets submit readings alongside human traffic: 30 req/s, burst 50
	auth.Use(middleware.IPRateLimiter(30, 50))

	// User routes
	usersGroup := auth.Group("/users")
	{
		usersGroup.GET("", controllers.HandleUserFunc(container, "getUsers"))
		usersGroup.GET("/:id", controllers.HandleUserFunc(container, "getUser"))
		usersGroup.POST("", controllers.HandleUserFunc(container, "createUser"))
		usersGroup.PATCH("/:id", controllers.HandleUserFunc(container, "updateUser"))
		usersGroup.DELETE("/:id", controllers.HandleUserFunc(container, "deleteUser"))
	}

	// Node routes
	nodesGroup := auth.Group("/nodes")
	{
		nodesGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleNodeFunc(container, "getNodes"))
		nodesGroup.GET("/:id", controllers.HandleNodeFunc(container, "getNode"))
		nodesGroup.POST("", controllers.HandleNodeFunc(container, "createNode"))
		nodesGroup.PATCH("/:id", controllers.HandleNodeFunc(container, "updateNode"))
		nodesGroup.DELETE("/:id", controllers.HandleNodeFunc(container, "deleteNode"))
	}

	// Sensor routes
	sensorsGroup := auth.Group("/sensors")
	{
		sensorsGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleSensorFunc(container, "getSensors"))
		sensorsGroup.GET("/:id", controllers.HandleSensorFunc(container, "getSensor"))
		sensorsGroup.POST("", controllers.HandleSensorFunc(container, "createSensor"))
		sensorsGroup.PATCH("/:id", controllers.HandleSensorFunc(container, "updateSensor"))
		sensorsGroup.DELETE("/:id", controllers.HandleSensorFunc(container, "deleteSensor"))
	}

	// Reading routes. The latest window is cached briefly, keyed on its
	// query parameters.
	readingsGroup := auth.Group("/readings")
	{
		readingsGroup.GET("", controllers.HandleReadingFunc(container, "getReadings"))
		readingsGroup.GET("/latest", middleware.CacheByParams(5*time.Second, "interval", "unit", "node_id", "sensor_id"), controllers.HandleReadingFunc(container, "getLatestReadings"))
		readingsGroup.GET("/latest/:sensor_id", controllers.HandleReadingFunc(container, "getLatestReadingForSensor"))
		readingsGroup.GET("/:id", controllers.HandleReadingFunc(container, "getReading"))
		readingsGroup.POST("", controllers.HandleReadingFunc(container, "createReading"))
		readingsGroup.PATCH("/:id", controllers.HandleReadingFunc(container, "updateReading"))
		readingsGroup.DELETE("/:id", controllers.HandleReadingFunc(container, "deleteReading"))
	}

	// Alert routes
	alertsGroup := auth.Group("/alerts")
	{
		alertsGroup.GET("", controllers.HandleAlertFunc(container, "getAlerts"))
		alertsGroup.GET("/filter", controllers.HandleAlertFunc(container, "filterAlerts"))
		alertsGroup.GET("/:id", controllers.HandleAlertFunc(container, "getAlert"))
		alertsGroup.POST("", controllers.HandleAlertFunc(container, "createAlert"))
		alertsGroup.PATCH("/:id", controllers.HandleAlertFunc(container, "updateAlert"))
		alertsGroup.DELETE("/:id", controllers.HandleAlertFunc(container, "deleteAlert"))
	}

	// Analytics routes
	analyticsGroup := auth.Group("/analytics")
	{
		analyticsGroup.GET("/daily-summary", middleware.CacheByParams(time.Minute, "node_id", "sensor_id", "start_date", "end_date"), controllers.HandleAnalyticsFunc(container, "getDailySummary"))
	}

	// Export routes
	exportsGroup := auth.Group("/exports")
	{
		exportsGroup.GET("/readings.csv", controllers.HandleExportFunc(container, "readingsCSV"))
		exportsGroup.GET("/alerts.csv", controllers.HandleExportFunc(container, "alertsCSV"))
		exportsGroup.GET("/readings.pdf", controllers.HandleExportFunc(container, "readingsPDF"))
	}
}
