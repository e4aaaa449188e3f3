package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/osmelmr/nodosiot-server/internal/app/middleware"
	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/domain/services/container"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
	"github.com/osmelmr/nodosiot-server/utils"
)

type testEnv struct {
	db        *gorm.DB
	cfg       *config.Config
	container *container.ServiceContainer
	router    *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Node{},
		&models.Sensor{},
		&models.Reading{},
		&models.Alert{},
	))

	cfg := &config.Config{
		JWTSecretKey:      "test-secret",
		PermissionProfile: config.PermissionProfileLoose,
	}

	c := container.NewServiceContainer(db, cfg)
	middleware.InitAuthMiddleware(cfg, db)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/login", HandleJWTFunc(c, "login"))

	auth := api.Group("/")
	auth.Use(middleware.Authentication())

	auth.GET("/users", HandleUserFunc(c, "getUsers"))
	auth.POST("/users", HandleUserFunc(c, "createUser"))
	auth.DELETE("/users/:id", HandleUserFunc(c, "deleteUser"))

	auth.GET("/nodes", HandleNodeFunc(c, "getNodes"))
	auth.GET("/nodes/:id", HandleNodeFunc(c, "getNode"))
	auth.POST("/nodes", HandleNodeFunc(c, "createNode"))
	auth.PATCH("/nodes/:id", HandleNodeFunc(c, "updateNode"))
	auth.DELETE("/nodes/:id", HandleNodeFunc(c, "deleteNode"))

	auth.POST("/sensors", HandleSensorFunc(c, "createSensor"))

	auth.GET("/readings", HandleReadingFunc(c, "getReadings"))
	auth.GET("/readings/latest", HandleReadingFunc(c, "getLatestReadings"))
	auth.GET("/readings/latest/:sensor_id", HandleReadingFunc(c, "getLatestReadingForSensor"))
	auth.GET("/readings/:id", HandleReadingFunc(c, "getReading"))
	auth.POST("/readings", HandleReadingFunc(c, "createReading"))

	auth.GET("/alerts", HandleAlertFunc(c, "getAlerts"))
	auth.GET("/alerts/filter", HandleAlertFunc(c, "filterAlerts"))
	auth.PATCH("/alerts/:id", HandleAlertFunc(c, "updateAlert"))

	auth.GET("/analytics/daily-summary", HandleAnalyticsFunc(c, "getDailySummary"))
	auth.GET("/exports/readings.csv", HandleExportFunc(c, "readingsCSV"))

	return &testEnv{db: db, cfg: cfg, container: c, router: r}
}

// createUser registers an account directly and returns a valid token for it.
func (e *testEnv) createUser(t *testing.T, email string, role models.UserRole) (*models.User, string) {
	t.Helper()
	hashed, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	user := &models.User{Email: email, Password: hashed, Role: role}
	require.NoError(t, e.db.Create(user).Error)

	jwtService := e.container.GetService("jwt").(services.InterfaceJWTService)
	token, err := jwtService.GenerateToken(user.ID, string(user.Role))
	require.NoError(t, err)

	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAuthentication_MissingOrBadToken(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/nodes", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/nodes", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_IssuesToken(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "farmer@test.local", models.RoleFarmer)

	w := env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "farmer@test.local",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope(t, w)["data"].(map[string]interface{})
	require.NotEmpty(t, data["token"])

	// Wrong password is rejected.
	w = env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "farmer@test.local",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNodeLifecycle_OwnershipEnforced(t *testing.T) {
	env := setupTestEnv(t)
	owner, ownerToken := env.createUser(t, "owner@test.local", models.RoleFarmer)
	_, strangerToken := env.createUser(t, "stranger@test.local", models.RoleResearcher)
	_, adminToken := env.createUser(t, "admin@test.local", models.RoleAdmin)

	// Any authenticated user may register a node and becomes its owner.
	w := env.request(t, http.MethodPost, "/api/nodes", ownerToken, gin.H{"name": "greenhouse-01"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := envelope(t, w)["data"].(map[string]interface{})
	nodeID := int(created["user_id"].(float64))
	require.Equal(t, int(owner.ID), nodeID)

	id := int(created["id"].(float64))

	// Everyone authenticated can read it.
	w = env.request(t, http.MethodGet, "/api/nodes", strangerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A non-owner cannot update or delete; the owner and an admin can.
	w = env.request(t, http.MethodPatch, nodePath(id), strangerToken, gin.H{"name": "hacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPatch, nodePath(id), ownerToken, gin.H{"name": "renamed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodDelete, nodePath(id), adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Soft-deleted nodes read as missing.
	w = env.request(t, http.MethodGet, nodePath(id), ownerToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func nodePath(id int) string {
	return "/api/nodes/" + itoa(id)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func TestUserEndpoints_AdminOnly(t *testing.T) {
	env := setupTestEnv(t)
	_, farmerToken := env.createUser(t, "farmer@test.local", models.RoleFarmer)
	_, adminToken := env.createUser(t, "admin@test.local", models.RoleAdmin)

	w := env.request(t, http.MethodGet, "/api/users", farmerToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/users", adminToken, gin.H{
		"email":    "new@test.local",
		"password": "secret123",
		"role":     "researcher",
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmitReading_ReturnsAlertsOnBreach(t *testing.T) {
	env := setupTestEnv(t)
	owner, ownerToken := env.createUser(t, "owner@test.local", models.RoleFarmer)

	node := &models.Node{Name: "greenhouse-01", UserID: owner.ID}
	require.NoError(t, env.db.Create(node).Error)
	maxVal := 40.0
	sensor := &models.Sensor{NodeID: node.ID, Name: "temp", SensorType: models.SensorTypeTemperature, MaxValue: &maxVal}
	require.NoError(t, env.db.Create(sensor).Error)

	w := env.request(t, http.MethodPost, "/api/readings", ownerToken, gin.H{
		"sensor_id": sensor.ID,
		"node_id":   node.ID,
		"value":     41.2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := envelope(t, w)["data"].(map[string]interface{})
	reading := data["reading"].(map[string]interface{})
	require.Equal(t, "out_of_range", reading["validation_status"])

	alerts := data["alerts"].([]interface{})
	require.Len(t, alerts, 1)
	alert := alerts[0].(map[string]interface{})
	require.Equal(t, "high_temperature", alert["alert_type"])
	require.Equal(t, 41.2, alert["detected_value"])

	// An in-range value answers 201 with an empty alert list.
	w = env.request(t, http.MethodPost, "/api/readings", ownerToken, gin.H{
		"sensor_id": sensor.ID,
		"node_id":   node.ID,
		"value":     20.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data = envelope(t, w)["data"].(map[string]interface{})
	require.Empty(t, data["alerts"].([]interface{}))
}

func TestGetLatestReadingForSensor_Endpoint(t *testing.T) {
	env := setupTestEnv(t)
	owner, token := env.createUser(t, "owner@test.local", models.RoleFarmer)

	node := &models.Node{Name: "greenhouse-01", UserID: owner.ID}
	require.NoError(t, env.db.Create(node).Error)
	sensor := &models.Sensor{NodeID: node.ID, Name: "temp", SensorType: models.SensorTypeTemperature}
	require.NoError(t, env.db.Create(sensor).Error)

	old := &models.Reading{SensorID: sensor.ID, NodeID: node.ID, Value: 18.0, Timestamp: time.Now().Add(-time.Hour), ValidationStatus: models.ValidationValid}
	require.NoError(t, env.db.Create(old).Error)
	newest := &models.Reading{SensorID: sensor.ID, NodeID: node.ID, Value: 22.5, Timestamp: time.Now(), ValidationStatus: models.ValidationValid}
	require.NoError(t, env.db.Create(newest).Error)

	w := env.request(t, http.MethodGet, "/api/readings/latest/"+itoa(int(sensor.ID)), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope(t, w)["data"].(map[string]interface{})
	require.Equal(t, 22.5, data["value"].(float64))

	// A sensor with no readings answers not found.
	empty := &models.Sensor{NodeID: node.ID, Name: "hum", SensorType: models.SensorTypeHumidity}
	require.NoError(t, env.db.Create(empty).Error)
	w = env.request(t, http.MethodGet, "/api/readings/latest/"+itoa(int(empty.ID)), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitReading_UnknownSensorIsValidationError(t *testing.T) {
	env := setupTestEnv(t)
	owner, token := env.createUser(t, "owner@test.local", models.RoleFarmer)

	node := &models.Node{Name: "greenhouse-01", UserID: owner.ID}
	require.NoError(t, env.db.Create(node).Error)

	w := env.request(t, http.MethodPost, "/api/readings", token, gin.H{
		"sensor_id": 999,
		"node_id":   node.ID,
		"value":     1.0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := envelope(t, w)["data"].(map[string]interface{})["fields"].(map[string]interface{})
	require.Contains(t, fields, "sensor_id")
}

func TestAlertWorkflow_FilterAndAttend(t *testing.T) {
	env := setupTestEnv(t)
	owner, ownerToken := env.createUser(t, "owner@test.local", models.RoleFarmer)
	_, strangerToken := env.createUser(t, "stranger@test.local", models.RoleFarmer)

	node := &models.Node{Name: "greenhouse-01", UserID: owner.ID}
	require.NoError(t, env.db.Create(node).Error)
	minVal := 5.0
	sensor := &models.Sensor{NodeID: node.ID, Name: "temp", SensorType: models.SensorTypeTemperature, MinValue: &minVal}
	require.NoError(t, env.db.Create(sensor).Error)

	w := env.request(t, http.MethodPost, "/api/readings", ownerToken, gin.H{
		"sensor_id": sensor.ID,
		"node_id":   node.ID,
		"value":     -3.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// The breach shows up in the filter endpoint.
	w = env.request(t, http.MethodGet, "/api/alerts?alert_type=low_temperature&status=pending", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	alerts := envelope(t, w)["data"].([]interface{})
	require.Len(t, alerts, 1)
	alertID := int(alerts[0].(map[string]interface{})["id"].(float64))

	// Unrecognized filter values widen instead of failing.
	w = env.request(t, http.MethodGet, "/api/alerts?status=bogus", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, envelope(t, w)["data"].([]interface{}), 1)

	// The dedicated filter endpoint resolves ownership through the node.
	w = env.request(t, http.MethodGet, "/api/alerts/filter?owner_id="+itoa(int(owner.ID))+"&alert_type=low_temperature", strangerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, envelope(t, w)["data"].([]interface{}), 1)

	w = env.request(t, http.MethodGet, "/api/alerts/filter?owner_id=99999", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, envelope(t, w)["data"])

	// A stranger cannot attend someone else's alert; the owner can.
	w = env.request(t, http.MethodPatch, "/api/alerts/"+itoa(alertID), strangerToken, gin.H{"status": "attended"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPatch, "/api/alerts/"+itoa(alertID), ownerToken, gin.H{"status": "attended"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDailySummary_Endpoint(t *testing.T) {
	env := setupTestEnv(t)
	owner, token := env.createUser(t, "owner@test.local", models.RoleFarmer)

	node := &models.Node{Name: "greenhouse-01", UserID: owner.ID}
	require.NoError(t, env.db.Create(node).Error)
	sensor := &models.Sensor{NodeID: node.ID, Name: "temp", SensorType: models.SensorTypeTemperature}
	require.NoError(t, env.db.Create(sensor).Error)

	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	for i, v := range []float64{10, 20, 30} {
		reading := &models.Reading{
			SensorID:         sensor.ID,
			NodeID:           node.ID,
			Value:            v,
			Timestamp:        day.Add(time.Duration(i) * time.Hour),
			ValidationStatus: models.ValidationValid,
		}
		require.NoError(t, env.db.Create(reading).Error)
	}

	w := env.request(t, http.MethodGet, "/api/analytics/daily-summary?sensor_id="+itoa(int(sensor.ID))+"&start_date=2026-08-27&end_date=2026-08-27", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := envelope(t, w)["data"].(map[string]interface{})
	require.InDelta(t, 20, data["avg_value"].(float64), 0.001)

	// A window with no readings reports null aggregates, not zeros.
	w = env.request(t, http.MethodGet, "/api/analytics/daily-summary?sensor_id="+itoa(int(sensor.ID))+"&start_date=2026-01-01&end_date=2026-01-01", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = envelope(t, w)["data"].(map[string]interface{})
	require.Nil(t, data["avg_value"])
}

func TestExportReadingsCSV_Endpoint(t *testing.T) {
	env := setupTestEnv(t)
	owner, token := env.createUser(t, "owner@test.local", models.RoleFarmer)

	node := &models.Node{Name: "greenhouse-01", UserID: owner.ID}
	require.NoError(t, env.db.Create(node).Error)
	sensor := &models.Sensor{NodeID: node.ID, Name: "temp", SensorType: models.SensorTypeTemperature, Unit: "C"}
	require.NoError(t, env.db.Create(sensor).Error)
	reading := &models.Reading{SensorID: sensor.ID, NodeID: node.ID, Value: 21.5, Timestamp: time.Now(), ValidationStatus: models.ValidationValid}
	require.NoError(t, env.db.Create(reading).Error)

	w := env.request(t, http.MethodGet, "/api/exports/readings.csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, w.Body.String(), "greenhouse-01")
	require.Contains(t, w.Body.String(), "21.5")
}

func TestUserDelete_CascadeHidesNodes(t *testing.T) {
	env := setupTestEnv(t)
	victim, victimToken := env.createUser(t, "victim@test.local", models.RoleFarmer)
	_, adminToken := env.createUser(t, "admin@test.local", models.RoleAdmin)

	node := &models.Node{Name: "greenhouse-01", UserID: victim.ID}
	require.NoError(t, env.db.Create(node).Error)

	w := env.request(t, http.MethodDelete, "/api/users/"+itoa(int(victim.ID)), adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The victim's token still parses but their node is gone for everyone.
	w = env.request(t, http.MethodGet, nodePath(int(node.ID)), victimToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
