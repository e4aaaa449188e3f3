package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
	"github.com/osmelmr/nodosiot-server/utils"
)

// InterfaceUserService defines the user service interface
type InterfaceUserService interface {
	GetAllUsers() ([]models.User, error)
	GetUserByID(id uint) (*models.User, error)
	CreateUser(user *models.User, password string) error
	UpdateUser(id uint, updates map[string]interface{}) (*models.User, error)
	DeleteUser(id uint) error
}

// UserService manages platform accounts
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllUsers lists every non-deleted user.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Where("is_deleted = ?", false).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// 2 GetUserByID fetches a user, treating soft-deleted rows as missing.
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("id = ? AND is_deleted = ?", id, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// 3 CreateUser registers an account with a bcrypt-hashed password. The
// superuser→admin role coercion happens in the model hook.
func (s *UserService) CreateUser(user *models.User, password string) error {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.Password = hashed

	if user.Role == "" {
		user.Role = models.RoleFarmer
	}

	return s.DB.Create(user).Error
}

// 4 UpdateUser applies a partial field map. A "password" entry is hashed,
// the rest is written in a single atomic Updates call.
func (s *UserService) UpdateUser(id uint, updates map[string]interface{}) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if email, ok := updates["email"].(string); ok && email != user.Email {
		var count int64
		if err := s.DB.Model(&models.User{}).Where("email = ? AND id != ?", email, user.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrEmailTaken
		}
	}

	if password, ok := updates["password"].(string); ok {
		if password != "" {
			hashed, err := utils.HashPassword(password)
			if err != nil {
				return nil, fmt.Errorf("hashing password: %w", err)
			}
			updates["password"] = hashed
		} else {
			delete(updates, "password")
		}
	}

	// Superuser accounts always carry the admin role, also through updates.
	superuser := user.IsSuperuser
	if v, ok := updates["is_superuser"].(bool); ok {
		superuser = v
	}
	if superuser {
		updates["role"] = string(models.RoleAdmin)
	}

	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetUserByID(id)
}

// 5 DeleteUser soft-deletes the account and cascades to soft-deleting every
// node it owns. Sensors and readings under those nodes stay untouched.
func (s *UserService) DeleteUser(id uint) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(models.SoftDeleteUpdates(now)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Node{}).
			Where("user_id = ? AND is_deleted = ?", user.ID, false).
			Updates(models.SoftDeleteUpdates(now)).Error
	})
}
