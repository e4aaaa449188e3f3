package models

import (
	"gorm.io/gorm"
)

// UserRole represents the role of a platform user
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleResearcher UserRole = "researcher"
	RoleFarmer     UserRole = "farmer"
)

// IsValidRole reports whether v is one of the known user roles.
func IsValidRole(v string) bool {
	switch UserRole(v) {
	case RoleAdmin, RoleResearcher, RoleFarmer:
		return true
	}
	return false
}

// User represents a platform account identified by email
type User struct {
	BaseModel
	Email       string   `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password    string   `gorm:"type:varchar(100);not null" json:"-"` // bcrypt hash, never exposed
	Role        UserRole `gorm:"type:varchar(20);default:'farmer'" json:"role"`
	IsSuperuser bool     `gorm:"default:false" json:"is_superuser"`

	// Relations
	Nodes []Node `gorm:"foreignKey:UserID" json:"nodes,omitempty"`
}

// BeforeSave enforces the role invariant at the construction boundary:
// a superuser account always carries the admin role, on create and update alike.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.IsSuperuser {
		u.Role = RoleAdmin
	}
	return nil
}
