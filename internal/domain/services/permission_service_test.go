package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

func TestPermissionTable_LooseProfile(t *testing.T) {
	svc := NewPermissionService(testConfig())

	admin := Principal{ID: 1, Role: models.RoleAdmin}
	owner := Principal{ID: 2, Role: models.RoleFarmer}
	stranger := Principal{ID: 3, Role: models.RoleResearcher}

	// User records are admin territory.
	assert.True(t, svc.Can(admin, EntityUser, ActionRead, 0))
	assert.False(t, svc.Can(owner, EntityUser, ActionRead, 0))
	assert.False(t, svc.Can(stranger, EntityUser, ActionDelete, 0))

	// Reads are open to any authenticated principal.
	assert.True(t, svc.Can(stranger, EntityNode, ActionRead, owner.ID))
	assert.True(t, svc.Can(stranger, EntityReading, ActionRead, owner.ID))
	assert.True(t, svc.Can(stranger, EntityAlert, ActionRead, owner.ID))

	// Writes on owned entities gate on the node owner; admins pass.
	assert.True(t, svc.Can(owner, EntityNode, ActionUpdate, owner.ID))
	assert.False(t, svc.Can(stranger, EntityNode, ActionUpdate, owner.ID))
	assert.True(t, svc.Can(admin, EntityNode, ActionUpdate, owner.ID))

	assert.True(t, svc.Can(owner, EntitySensor, ActionCreate, owner.ID))
	assert.False(t, svc.Can(stranger, EntitySensor, ActionCreate, owner.ID))

	assert.True(t, svc.Can(owner, EntityAlert, ActionDelete, owner.ID))
	assert.False(t, svc.Can(stranger, EntityAlert, ActionDelete, owner.ID))

	// Ingestion and node registration stay open.
	assert.True(t, svc.Can(stranger, EntityReading, ActionCreate, 0))
	assert.True(t, svc.Can(stranger, EntityNode, ActionCreate, 0))
}

func TestPermissionTable_StrictProfile(t *testing.T) {
	cfg := &config.Config{PermissionProfile: config.PermissionProfileStrict}
	svc := NewPermissionService(cfg)

	adminOwner := Principal{ID: 1, Role: models.RoleAdmin}
	plainOwner := Principal{ID: 2, Role: models.RoleFarmer}
	adminStranger := Principal{ID: 3, Role: models.RoleAdmin}

	// Strict writes demand ownership AND the admin role.
	assert.True(t, svc.Can(adminOwner, EntityNode, ActionUpdate, adminOwner.ID))
	assert.False(t, svc.Can(plainOwner, EntityNode, ActionUpdate, plainOwner.ID))
	assert.False(t, svc.Can(adminStranger, EntityNode, ActionUpdate, plainOwner.ID))

	// Reads stay open in both profiles.
	assert.True(t, svc.Can(plainOwner, EntityNode, ActionRead, 0))
}

func TestPermissionTable_UnknownPairFallsBackToAdmin(t *testing.T) {
	svc := NewPermissionService(testConfig())

	admin := Principal{ID: 1, Role: models.RoleAdmin}
	farmer := Principal{ID: 2, Role: models.RoleFarmer}

	assert.Equal(t, RequireAdmin, svc.Requirement(Entity("gadget"), ActionRead))
	assert.True(t, svc.Can(admin, Entity("gadget"), ActionRead, 0))
	assert.False(t, svc.Can(farmer, Entity("gadget"), ActionRead, 0))
}
