package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/utils"
)

func TestCreateUser_HashesPasswordAndDefaultsRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, testConfig())

	user := &models.User{Email: "new@test.local"}
	require.NoError(t, svc.CreateUser(user, "secret123"))

	assert.Equal(t, models.RoleFarmer, user.Role)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, utils.CheckPasswordHash("secret123", user.Password))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "taken@test.local", models.RoleFarmer)
	svc := NewUserService(db, testConfig())

	err := svc.CreateUser(&models.User{Email: "taken@test.local"}, "secret123")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateUser_SuperuserGetsAdminRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, testConfig())

	user := &models.User{Email: "root@test.local", IsSuperuser: true, Role: models.RoleFarmer}
	require.NoError(t, svc.CreateUser(user, "secret123"))

	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestUpdateUser_SuperuserFlagCoercesRole(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "user@test.local", models.RoleFarmer)
	svc := NewUserService(db, testConfig())

	updated, err := svc.UpdateUser(user.ID, map[string]interface{}{"is_superuser": true})
	require.NoError(t, err)

	assert.True(t, updated.IsSuperuser)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestUpdateUser_EmailConflict(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "a@test.local", models.RoleFarmer)
	b := seedUser(t, db, "b@test.local", models.RoleFarmer)
	svc := NewUserService(db, testConfig())

	_, err := svc.UpdateUser(b.ID, map[string]interface{}{"email": "a@test.local"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeleteUser_CascadesToOwnedNodesOnly(t *testing.T) {
	db := setupTestDB(t)
	victim := seedUser(t, db, "victim@test.local", models.RoleFarmer)
	other := seedUser(t, db, "other@test.local", models.RoleFarmer)
	owned := seedNode(t, db, victim.ID, "owned")
	foreign := seedNode(t, db, other.ID, "foreign")
	sensor := seedSensor(t, db, owned.ID, "temp", nil, nil)

	userSvc := NewUserService(db, testConfig())
	nodeSvc := NewNodeService(db, testConfig())
	sensorSvc := NewSensorService(db, testConfig())

	require.NoError(t, userSvc.DeleteUser(victim.ID))

	_, err := userSvc.GetUserByID(victim.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = nodeSvc.GetNodeByID(owned.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Other users' nodes survive; sensors under the deleted node survive too.
	_, err = nodeSvc.GetNodeByID(foreign.ID)
	assert.NoError(t, err)

	_, err = sensorSvc.GetSensorByID(sensor.ID)
	assert.NoError(t, err)
}
