package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

// InterfaceNodeService defines the node service interface
type InterfaceNodeService interface {
	GetAllNodes() ([]models.Node, error)
	GetNodeByID(id uint) (*models.Node, error)
	GetNodeOwnerID(id uint) (uint, error)
	CreateNode(node *models.Node) error
	UpdateNode(id uint, updates map[string]interface{}) (*models.Node, error)
	DeleteNode(id uint) error
}

// NodeService manages deployment sites
type NodeService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewNodeService creates a new node service
func NewNodeService(db *gorm.DB, cfg *config.Config) InterfaceNodeService {
	return &NodeService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllNodes lists every non-deleted node.
func (s *NodeService) GetAllNodes() ([]models.Node, error) {
	var nodes []models.Node
	if err := s.DB.Where("is_deleted = ?", false).Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// 2 GetNodeByID fetches a node, treating soft-deleted rows as missing.
func (s *NodeService) GetNodeByID(id uint) (*models.Node, error) {
	var node models.Node
	if err := s.DB.Where("id = ? AND is_deleted = ?", id, false).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &node, nil
}

// 3 GetNodeOwnerID resolves the owning user of a node. Used by the
// controllers to feed the permission table's ownership checks.
func (s *NodeService) GetNodeOwnerID(id uint) (uint, error) {
	node, err := s.GetNodeByID(id)
	if err != nil {
		return 0, err
	}
	return node.UserID, nil
}

// 4 CreateNode stores a new node. The caller sets UserID to the creator.
func (s *NodeService) CreateNode(node *models.Node) error {
	if node.SamplingInterval <= 0 {
		node.SamplingInterval = 10
	}
	return s.DB.Create(node).Error
}

// 5 UpdateNode applies a partial field map in a single atomic Updates call.
func (s *NodeService) UpdateNode(id uint, updates map[string]interface{}) (*models.Node, error) {
	node, err := s.GetNodeByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(node).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetNodeByID(id)
}

// 6 DeleteNode soft-deletes the node. Sensors and readings beneath it are
// not cascaded; they stay reachable through explicit filters.
func (s *NodeService) DeleteNode(id uint) error {
	node, err := s.GetNodeByID(id)
	if err != nil {
		return err
	}

	return s.DB.Model(&models.Node{}).Where("id = ?", node.ID).
		Updates(models.SoftDeleteUpdates(time.Now())).Error
}
