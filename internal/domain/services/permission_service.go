package services

import (
	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	ID   uint
	Role models.UserRole
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Entity names an authorization target.
type Entity string

const (
	EntityUser    Entity = "user"
	EntityNode    Entity = "node"
	EntitySensor  Entity = "sensor"
	EntityReading Entity = "reading"
	EntityAlert   Entity = "alert"
)

// Action names an operation on an entity.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Requirement is the capability a principal must satisfy for an
// (entity, action) pair.
type Requirement int

const (
	// RequireAnyAuthenticated admits every authenticated principal.
	RequireAnyAuthenticated Requirement = iota
	// RequireOwner admits the owner of the target's node; admins also pass.
	RequireOwner
	// RequireAdmin admits only admins.
	RequireAdmin
	// RequireOwnerAndAdmin admits only admins that also own the target's node.
	RequireOwnerAndAdmin
)

// InterfacePermissionService exposes the per-entity-per-action permission table.
// Every controller consults it instead of doing ad hoc role checks. The check
// order is fixed by contract: authentication, then existence, then this table.
type InterfacePermissionService interface {
	Requirement(entity Entity, action Action) Requirement
	Can(p Principal, entity Entity, action Action, ownerID uint) bool
}

// PermissionService holds the declarative permission table.
type PermissionService struct {
	table map[Entity]map[Action]Requirement
}

// NewPermissionService builds the table for the configured profile. The
// strict profile upgrades every owner-gated write to owner-and-admin.
func NewPermissionService(cfg *config.Config) InterfacePermissionService {
	ownerWrite := RequireOwner
	if cfg != nil && cfg.StrictOwnership() {
		ownerWrite = RequireOwnerAndAdmin
	}

	table := map[Entity]map[Action]Requirement{
		EntityUser: {
			ActionRead:   RequireAdmin,
			ActionCreate: RequireAdmin,
			ActionUpdate: RequireAdmin,
			ActionDelete: RequireAdmin,
		},
		EntityNode: {
			ActionRead: RequireAnyAuthenticated,
			// Node creation is open; the creator becomes the owner.
			ActionCreate: RequireAnyAuthenticated,
			ActionUpdate: ownerWrite,
			ActionDelete: ownerWrite,
		},
		EntitySensor: {
			ActionRead:   RequireAnyAuthenticated,
			ActionCreate: ownerWrite,
			ActionUpdate: ownerWrite,
			ActionDelete: ownerWrite,
		},
		EntityReading: {
			ActionRead:   RequireAnyAuthenticated,
			ActionCreate: RequireAnyAuthenticated,
			ActionUpdate: ownerWrite,
			ActionDelete: ownerWrite,
		},
		EntityAlert: {
			ActionRead: RequireAnyAuthenticated,
			// Alerts are machine-generated; direct creation stays open for
			// administrative backfill.
			ActionCreate: RequireAnyAuthenticated,
			ActionUpdate: ownerWrite,
			ActionDelete: ownerWrite,
		},
	}

	return &PermissionService{table: table}
}

// 1 Requirement returns the capability required for an (entity, action) pair.
func (s *PermissionService) Requirement(entity Entity, action Action) Requirement {
	if actions, ok := s.table[entity]; ok {
		if req, ok := actions[action]; ok {
			return req
		}
	}
	// Unknown pairs fall back to admin-only rather than open access.
	return RequireAdmin
}

// 2 Can reports whether the principal satisfies the table for the target.
// ownerID is the id of the user owning the target's node; pass 0 when the
// requirement does not involve ownership.
func (s *PermissionService) Can(p Principal, entity Entity, action Action, ownerID uint) bool {
	switch s.Requirement(entity, action) {
	case RequireAnyAuthenticated:
		return true
	case RequireAdmin:
		return p.IsAdmin()
	case RequireOwner:
		return p.ID == ownerID || p.IsAdmin()
	case RequireOwnerAndAdmin:
		return p.ID == ownerID && p.IsAdmin()
	}
	return false
}
